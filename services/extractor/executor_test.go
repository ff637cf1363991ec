package extractor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"socialpulse-backend/lib/metrics"
	"socialpulse-backend/lib/ratelimit"

	"github.com/stretchr/testify/require"
)

// newTestService builds a Service whose limiters and backoff sleeps are
// instant, so retry behavior can be asserted without wall-clock waits.
func newTestService(fetchers map[metrics.Platform]Fetcher) *Service {
	s := NewService(Options{Fetchers: fetchers})
	for platform := range s.limiters {
		s.limiters[platform] = ratelimit.New(100000, 0)
	}
	s.sleep = func(ctx context.Context, d time.Duration) error {
		return ctx.Err()
	}
	return s
}

// countingFetcher fails with the given error until `failures` attempts
// have happened, then succeeds.
type countingFetcher struct {
	failures int
	err      error
	attempts int
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) (metrics.MetricRecord, error) {
	f.attempts++
	if f.attempts <= f.failures {
		return metrics.MetricRecord{}, f.err
	}
	return metrics.MetricRecord{
		Url:      url,
		Platform: metrics.PlatformX,
		Likes:    metrics.Int64(42),
	}, nil
}

func TestExecuteRetriesQuotaErrors(t *testing.T) {
	// x has max_retries = 2: failing twice with a quota error then
	// succeeding should take exactly 3 attempts and return the success
	fetcher := &countingFetcher{failures: 2, err: metrics.Quotaf("rate limit hit")}
	s := newTestService(map[metrics.Platform]Fetcher{metrics.PlatformX: fetcher})

	rec := s.execute(context.Background(), metrics.PlatformX, fetcher, "https://x.com/u/status/1")
	require.False(t, rec.Failed())
	require.Equal(t, 3, fetcher.attempts)
	require.Equal(t, int64(42), *rec.Likes)
}

func TestExecutePermanentErrorsGetOneAttempt(t *testing.T) {
	fetcher := &countingFetcher{failures: 10, err: fmt.Errorf("video not found")}
	s := newTestService(map[metrics.Platform]Fetcher{metrics.PlatformX: fetcher})

	rec := s.execute(context.Background(), metrics.PlatformX, fetcher, "https://x.com/u/status/1")
	require.True(t, rec.Failed())
	require.Equal(t, "video not found", *rec.Error)
	require.Equal(t, 1, fetcher.attempts)
}

func TestExecuteQuotaExhaustion(t *testing.T) {
	fetcher := &countingFetcher{failures: 100, err: fmt.Errorf("rate limit exceeded")}
	s := newTestService(map[metrics.Platform]Fetcher{metrics.PlatformX: fetcher})

	rec := s.execute(context.Background(), metrics.PlatformX, fetcher, "https://x.com/u/status/1")
	require.True(t, rec.Failed())
	require.Contains(t, *rec.Error, "Rate limit exceeded after 2 retries")
	// initial attempt + 2 retries
	require.Equal(t, 3, fetcher.attempts)
}

func TestExecuteErrorBearingRecordIsClassifiedToo(t *testing.T) {
	// collaborators that only return free-text errors inside records
	// still get retried when the message matches a quota marker
	attempts := 0
	fetcher := FetcherFunc(func(ctx context.Context, url string) (metrics.MetricRecord, error) {
		attempts++
		if attempts == 1 {
			return metrics.Errored(url, metrics.PlatformTikTok, "upstream said: too many requests"), nil
		}
		return metrics.MetricRecord{Url: url, Platform: metrics.PlatformTikTok}, nil
	})
	s := newTestService(map[metrics.Platform]Fetcher{metrics.PlatformTikTok: fetcher})

	rec := s.execute(context.Background(), metrics.PlatformTikTok, fetcher, "https://tiktok.com/@u/video/1")
	require.False(t, rec.Failed())
	require.Equal(t, 2, attempts)
}

func TestExecuteNormalizesUrlAndPlatform(t *testing.T) {
	fetcher := FetcherFunc(func(ctx context.Context, url string) (metrics.MetricRecord, error) {
		// sloppy collaborator leaves url/platform blank
		return metrics.MetricRecord{Views: metrics.Int64(7)}, nil
	})
	s := newTestService(map[metrics.Platform]Fetcher{metrics.PlatformYouTube: fetcher})

	rec := s.execute(context.Background(), metrics.PlatformYouTube, fetcher, "https://youtu.be/abc")
	require.Equal(t, "https://youtu.be/abc", rec.Url)
	require.Equal(t, metrics.PlatformYouTube, rec.Platform)
}

func TestExecuteInstagramRetryBudget(t *testing.T) {
	// instagram carries a bigger retry budget (3) than the default
	fetcher := &countingFetcher{failures: 100, err: metrics.Quotaf("quota exhausted")}
	s := newTestService(map[metrics.Platform]Fetcher{metrics.PlatformInstagram: fetcher})

	rec := s.execute(context.Background(), metrics.PlatformInstagram, fetcher, "https://instagram.com/p/abc/")
	require.True(t, rec.Failed())
	require.Contains(t, *rec.Error, "Rate limit exceeded after 3 retries")
	require.Equal(t, 4, fetcher.attempts)
}
