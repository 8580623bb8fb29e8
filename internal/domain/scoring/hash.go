package scoring

import "hash/fnv"

// Bucket sizes for categorical feature hashing. Account identifiers get a
// wide space; payment types, currencies and bank locations share a narrow one.
const (
	AccountBuckets  = 1_000_000
	CategoryBuckets = 100
)

// hashBucket maps a categorical string into [0, buckets) using FNV-1a 64-bit
// over its UTF-8 bytes. FNV-1a is unseeded and fully specified, so the same
// input yields the same bucket on every run, platform and reimplementation —
// a requirement for reproducible feature vectors.
func hashBucket(s string, buckets uint64) float64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return float64(h.Sum64() % buckets)
}
