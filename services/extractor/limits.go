package extractor

import (
	"time"

	"socialpulse-backend/lib/metrics"
)

// Limits is the per-platform throttling profile: sliding-window ceiling,
// jittered delay between requests, and the retry budget for quota errors.
// BatchSize is advisory grouping metadata, not a concurrency cap.
type Limits struct {
	RequestsPerMinute int           `json:"requests_per_minute"`
	BaseDelay         time.Duration `json:"base_delay"`
	BatchSize         int           `json:"batch_size"`
	MaxRetries        int           `json:"max_retries"`
}

// DefaultLimits applies to any platform without a dedicated profile.
var DefaultLimits = Limits{
	RequestsPerMinute: 60,
	BaseDelay:         1 * time.Second,
	BatchSize:         40,
	MaxRetries:        2,
}

var platformLimits = map[metrics.Platform]Limits{
	metrics.PlatformX: {
		RequestsPerMinute: 50,
		BaseDelay:         1200 * time.Millisecond,
		BatchSize:         25,
		MaxRetries:        2,
	},
	metrics.PlatformInstagram: {
		// instagram throttles aggressively, keep this one slow
		RequestsPerMinute: 30,
		BaseDelay:         2500 * time.Millisecond,
		BatchSize:         15,
		MaxRetries:        3,
	},
	metrics.PlatformYouTube: {
		RequestsPerMinute: 100,
		BaseDelay:         500 * time.Millisecond,
		BatchSize:         50,
		MaxRetries:        2,
	},
	metrics.PlatformTikTok: {
		RequestsPerMinute: 40,
		BaseDelay:         1500 * time.Millisecond,
		BatchSize:         30,
		MaxRetries:        2,
	},
}

// LimitsFor returns the throttling profile for a platform, falling back
// to DefaultLimits.
func LimitsFor(platform metrics.Platform) Limits {
	if limits, ok := platformLimits[platform]; ok {
		return limits
	}
	return DefaultLimits
}
