package extractor

import (
	"socialpulse-backend/lib/metrics"
)

// PlatformStats counts outcomes for one platform within a batch.
type PlatformStats struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

// Summary is the batch-level accounting attached to every response.
type Summary struct {
	TotalProcessed      int                              `json:"total_processed"`
	PlatformStats       map[metrics.Platform]PlatformStats `json:"platform_stats"`
	RateLimitingApplied bool                             `json:"rate_limiting_applied"`
}

// BatchResult is the full batch response envelope: one record per input
// link in input order, plus derived summary statistics.
type BatchResult struct {
	Results []metrics.MetricRecord `json:"results"`
	Summary Summary                `json:"summary"`
}

// Summarize derives per-platform stats from a completed record sequence.
// It is a pure function of its input: recomputing it never changes the
// answer, and it is always derived after the fact rather than maintained
// incrementally.
func Summarize(records []metrics.MetricRecord) map[metrics.Platform]PlatformStats {
	stats := map[metrics.Platform]PlatformStats{}
	for _, rec := range records {
		s := stats[rec.Platform]
		s.Total++
		if rec.Failed() {
			s.Errors++
		} else {
			s.Success++
		}
		stats[rec.Platform] = s
	}
	return stats
}
