package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"socialpulse-backend/lib/metrics"
	"socialpulse-backend/lib/ratelimit"

	"go.opentelemetry.io/otel/attribute"
)

// ErrEmptyBatch rejects batches that contain no usable links. It is the
// only failure that aborts processing up front; everything later is
// captured per record.
var ErrEmptyBatch = errors.New("no links provided")

type Options struct {
	// Fetchers maps each supported platform to its collaborator.
	// Links for a recognized platform without a fetcher come back as
	// errored records naming the unconfigured platform.
	Fetchers map[metrics.Platform]Fetcher
	// History archives completed batches when non-nil.
	History *History
	// OnProgress, when set, observes incremental batch progress. It is
	// called concurrently from per-platform workers and must be safe
	// for concurrent use.
	OnProgress func(done, total int)
}

// Service is the extraction orchestrator: it classifies URLs, serializes
// same-platform fetches through per-platform limiters, retries quota
// errors and assembles order-preserving results. Limiter state lives for
// the life of the process and is shared across batches.
type Service struct {
	fetchers   map[metrics.Platform]Fetcher
	limiters   map[metrics.Platform]*ratelimit.Limiter
	history    *History
	onProgress func(done, total int)

	// sleep is the retry backoff wait, injectable in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func NewService(opts Options) *Service {
	limiters := map[metrics.Platform]*ratelimit.Limiter{}
	for _, platform := range metrics.Platforms {
		limits := LimitsFor(platform)
		limiters[platform] = ratelimit.New(limits.RequestsPerMinute, limits.BaseDelay)
	}

	return &Service{
		fetchers:   opts.Fetchers,
		limiters:   limiters,
		history:    opts.History,
		onProgress: opts.OnProgress,
		sleep:      ratelimit.Sleep,
	}
}

// ProcessBatch extracts engagement metrics for every link, returning one
// record per usable input link in input order. Blank links are dropped
// during validation; a batch with nothing left is rejected with
// ErrEmptyBatch before any fetching starts.
func (s *Service) ProcessBatch(ctx context.Context, links []string) (BatchResult, error) {
	ctx, span := tracer.Start(ctx, "ProcessBatch")
	defer span.End()

	cleaned := make([]string, 0, len(links))
	for _, link := range links {
		link = strings.TrimSpace(link)
		if link != "" {
			cleaned = append(cleaned, link)
		}
	}
	if len(cleaned) == 0 {
		return BatchResult{}, ErrEmptyBatch
	}
	span.SetAttributes(attribute.Int("links", len(cleaned)))

	// group positions by platform; grouping never reorders anything,
	// results land back in their input slot
	groups := map[metrics.Platform][]int{}
	for i, link := range cleaned {
		platform := metrics.Classify(link)
		groups[platform] = append(groups[platform], i)
	}
	for platform, positions := range groups {
		slog.InfoContext(
			ctx, "platform breakdown",
			"platform", platform,
			"links", len(positions),
		)
	}

	results := make([]metrics.MetricRecord, len(cleaned))
	total := len(cleaned)
	var done atomic.Int64

	// one worker per platform: same-platform links stay serialized behind
	// their limiter, different platforms proceed independently
	var wg sync.WaitGroup
	for platform, positions := range groups {
		wg.Add(1)
		go func(platform metrics.Platform, positions []int) {
			defer wg.Done()
			for _, i := range positions {
				results[i] = s.processLink(ctx, platform, cleaned[i])
				s.reportProgress(ctx, int(done.Add(1)), total)
			}
		}(platform, positions)
	}
	wg.Wait()

	result := BatchResult{
		Results: results,
		Summary: Summary{
			TotalProcessed:      len(results),
			PlatformStats:       Summarize(results),
			RateLimitingApplied: true,
		},
	}

	if s.history != nil {
		if _, err := s.history.SaveBatch(ctx, result); err != nil {
			slog.WarnContext(ctx, "failed to archive batch", "err", err)
		}
	}

	return result, nil
}

// ProcessOne runs a single URL through the same classify -> admit ->
// fetch -> retry path as a batch, without batch accounting.
func (s *Service) ProcessOne(ctx context.Context, link string) (metrics.MetricRecord, error) {
	ctx, span := tracer.Start(ctx, "ProcessOne")
	defer span.End()

	link = strings.TrimSpace(link)
	if link == "" {
		return metrics.MetricRecord{}, ErrEmptyBatch
	}

	return s.processLink(ctx, metrics.Classify(link), link), nil
}

func (s *Service) processLink(ctx context.Context, platform metrics.Platform, link string) metrics.MetricRecord {
	if platform == metrics.PlatformUnknown {
		return metrics.Errored(link, metrics.PlatformUnknown, "Unsupported platform")
	}
	fetcher, ok := s.fetchers[platform]
	if !ok {
		// a recognized platform without a fetcher is a configuration
		// gap, not a classification miss; the record keeps its platform
		return metrics.Errored(link, platform, fmt.Sprintf("%s not configured", platform))
	}
	return s.execute(ctx, platform, fetcher, link)
}

func (s *Service) reportProgress(ctx context.Context, done, total int) {
	slog.DebugContext(ctx, "batch progress", "done", done, "total", total)
	if s.onProgress != nil {
		s.onProgress(done, total)
	}
}

// SupportedPlatforms lists the platforms this service has fetchers for,
// with their throttling profiles. Used by the /platforms endpoint and CLI.
func (s *Service) SupportedPlatforms() map[metrics.Platform]Limits {
	out := map[metrics.Platform]Limits{}
	for platform := range s.fetchers {
		out[platform] = LimitsFor(platform)
	}
	return out
}

// InWindow reports the current admission count for a platform, mostly for
// operational visibility.
func (s *Service) InWindow(platform metrics.Platform) (int, error) {
	limiter, ok := s.limiters[platform]
	if !ok {
		return 0, fmt.Errorf("no limiter for platform %q", platform)
	}
	return limiter.InWindow(), nil
}
