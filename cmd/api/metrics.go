package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var buildInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "acrs",
		Subsystem: "api",
		Name:      "build_info",
		Help:      "Build and deployment information",
	},
	[]string{"version", "environment"},
)

// SetBuildInfo publishes the running version as a constant gauge
func SetBuildInfo(version, environment string) {
	buildInfo.WithLabelValues(version, environment).Set(1)
}
