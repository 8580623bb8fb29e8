package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/monitoring"
	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/scoring"
)

// HealthStatus is the status of a single health check
type HealthStatus string

const (
	HealthStatusPass HealthStatus = "pass"
	HealthStatusWarn HealthStatus = "warn"
	HealthStatusFail HealthStatus = "fail"
)

// HealthChecker checks the health of one component
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) HealthCheckResult
}

// HealthCheckResult is the outcome of one component check
type HealthCheckResult struct {
	Status   HealthStatus   `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration time.Duration  `json:"duration_ms"`
	Details  map[string]any `json:"details,omitempty"`
}

// HealthResponse is the aggregate health document
type HealthResponse struct {
	Status    HealthStatus                 `json:"status"`
	Version   string                       `json:"version"`
	Timestamp time.Time                    `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks,omitempty"`
}

// HealthService runs registered checkers and caches results briefly
type HealthService struct {
	mu       sync.RWMutex
	checkers []HealthChecker
	version  string

	cached   *HealthResponse
	cachedAt time.Time
	cacheTTL time.Duration
}

func NewHealthService(version string) *HealthService {
	return &HealthService{
		version:  version,
		cacheTTL: 5 * time.Second,
	}
}

func (h *HealthService) RegisterChecker(c HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, c)
}

// LivenessHandler reports process liveness only, no dependency checks
func (h *HealthService) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    HealthStatusPass,
			Version:   h.version,
			Timestamp: time.Now().UTC(),
		}
		writeHealthResponse(w, http.StatusOK, resp)
	}
}

// ReadinessHandler runs all registered checks
func (h *HealthService) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.runChecks(r.Context())

		status := http.StatusOK
		if resp.Status == HealthStatusFail {
			status = http.StatusServiceUnavailable
		}
		writeHealthResponse(w, status, resp)
	}
}

func (h *HealthService) runChecks(ctx context.Context) HealthResponse {
	h.mu.RLock()
	if h.cached != nil && time.Since(h.cachedAt) < h.cacheTTL {
		cached := *h.cached
		h.mu.RUnlock()
		return cached
	}
	checkers := make([]HealthChecker, len(h.checkers))
	copy(checkers, h.checkers)
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	type namedResult struct {
		name   string
		result HealthCheckResult
	}

	results := make(chan namedResult, len(checkers))
	var wg sync.WaitGroup
	for _, checker := range checkers {
		wg.Add(1)
		go func(c HealthChecker) {
			defer wg.Done()
			start := time.Now()
			result := c.Check(ctx)
			result.Duration = time.Since(start)
			results <- namedResult{name: c.Name(), result: result}
		}(checker)
	}
	wg.Wait()
	close(results)

	resp := HealthResponse{
		Status:    HealthStatusPass,
		Version:   h.version,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]HealthCheckResult),
	}
	for nr := range results {
		resp.Checks[nr.name] = nr.result
		switch nr.result.Status {
		case HealthStatusFail:
			resp.Status = HealthStatusFail
		case HealthStatusWarn:
			if resp.Status == HealthStatusPass {
				resp.Status = HealthStatusWarn
			}
		}
	}

	h.mu.Lock()
	h.cached = &resp
	h.cachedAt = time.Now()
	h.mu.Unlock()

	return resp
}

func writeHealthResponse(w http.ResponseWriter, status int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/health+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// ModelHealthChecker reports whether the scoring model is loaded
type ModelHealthChecker struct {
	scorer scoring.Scorer
}

func NewModelHealthChecker(s scoring.Scorer) *ModelHealthChecker {
	return &ModelHealthChecker{scorer: s}
}

func (c *ModelHealthChecker) Name() string { return "model" }

func (c *ModelHealthChecker) Check(ctx context.Context) HealthCheckResult {
	if !c.scorer.Ready() {
		return HealthCheckResult{
			Status:  HealthStatusFail,
			Message: "scoring model is not loaded",
		}
	}

	info := c.scorer.Info()
	return HealthCheckResult{
		Status: HealthStatusPass,
		Details: map[string]any{
			"model":   info.Name,
			"version": info.Version,
		},
	}
}

// MonitoringHealthChecker reports aggregator liveness and volume
type MonitoringHealthChecker struct {
	aggregator *monitoring.Aggregator
}

func NewMonitoringHealthChecker(agg *monitoring.Aggregator) *MonitoringHealthChecker {
	return &MonitoringHealthChecker{aggregator: agg}
}

func (c *MonitoringHealthChecker) Name() string { return "monitoring" }

func (c *MonitoringHealthChecker) Check(ctx context.Context) HealthCheckResult {
	snap := c.aggregator.Snapshot()
	return HealthCheckResult{
		Status: HealthStatusPass,
		Details: map[string]any{
			"total_transactions": snap.TotalTransactions,
			"uptime_seconds":     snap.UptimeSeconds,
		},
	}
}
