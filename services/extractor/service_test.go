package extractor

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"socialpulse-backend/lib/metrics"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func echoFetcher(platform metrics.Platform) Fetcher {
	return FetcherFunc(func(ctx context.Context, url string) (metrics.MetricRecord, error) {
		return metrics.MetricRecord{
			Url:      url,
			Platform: platform,
			Likes:    metrics.Int64(1),
		}, nil
	})
}

func allEchoFetchers() map[metrics.Platform]Fetcher {
	fetchers := map[metrics.Platform]Fetcher{}
	for _, platform := range metrics.Platforms {
		fetchers[platform] = echoFetcher(platform)
	}
	return fetchers
}

func TestProcessBatchPreservesInputOrder(t *testing.T) {
	s := newTestService(allEchoFetchers())

	links := []string{
		"https://x.com/u/status/1",
		"https://youtube.com/watch?v=abcdefghijk",
		"https://x.com/u/status/2",
		"https://tiktok.com/@u/video/3",
		"https://instagram.com/p/abc/",
		"https://x.com/u/status/4",
	}
	result, err := s.ProcessBatch(context.Background(), links)
	require.NoError(t, err)
	require.Len(t, result.Results, len(links))
	for i, link := range links {
		require.Equal(t, link, result.Results[i].Url, "record %d out of order", i)
	}
}

func TestProcessBatchMixedPlatforms(t *testing.T) {
	s := newTestService(allEchoFetchers())

	result, err := s.ProcessBatch(context.Background(), []string{
		"https://x.com/u/status/123",
		"https://unknown.example/1",
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	require.False(t, result.Results[0].Failed())
	require.Equal(t, metrics.PlatformX, result.Results[0].Platform)

	require.True(t, result.Results[1].Failed())
	require.Equal(t, metrics.PlatformUnknown, result.Results[1].Platform)
	require.Equal(t, "Unsupported platform", *result.Results[1].Error)

	require.Equal(t, 2, result.Summary.TotalProcessed)
	require.True(t, result.Summary.RateLimitingApplied)
	require.Equal(t, PlatformStats{Total: 1, Success: 1}, result.Summary.PlatformStats[metrics.PlatformX])
	require.Equal(t, PlatformStats{Total: 1, Errors: 1}, result.Summary.PlatformStats[metrics.PlatformUnknown])
}

func TestProcessBatchRejectsEmptyInput(t *testing.T) {
	s := newTestService(allEchoFetchers())

	_, err := s.ProcessBatch(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyBatch)

	// whitespace-only entries do not count either
	_, err = s.ProcessBatch(context.Background(), []string{"", "   ", "\n"})
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestProcessBatchTrimsLinks(t *testing.T) {
	s := newTestService(allEchoFetchers())

	result, err := s.ProcessBatch(context.Background(), []string{
		"  https://x.com/u/status/1  ",
		"",
		"https://x.com/u/status/2",
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	require.Equal(t, "https://x.com/u/status/1", result.Results[0].Url)
	require.Equal(t, "https://x.com/u/status/2", result.Results[1].Url)
}

func TestProcessBatchErrorsNeverAbortTheBatch(t *testing.T) {
	fetchers := allEchoFetchers()
	fetchers[metrics.PlatformYouTube] = FetcherFunc(func(ctx context.Context, url string) (metrics.MetricRecord, error) {
		return metrics.MetricRecord{}, fmt.Errorf("video not found")
	})
	s := newTestService(fetchers)

	result, err := s.ProcessBatch(context.Background(), []string{
		"https://youtube.com/watch?v=abcdefghijk",
		"https://x.com/u/status/1",
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	require.True(t, result.Results[0].Failed())
	require.Equal(t, "video not found", *result.Results[0].Error)
	require.False(t, result.Results[1].Failed())
}

func TestProcessBatchReportsProgress(t *testing.T) {
	var calls atomic.Int64
	var lastDone, lastTotal atomic.Int64

	s := newTestService(allEchoFetchers())
	s.onProgress = func(done, total int) {
		calls.Add(1)
		lastDone.Store(int64(done))
		lastTotal.Store(int64(total))
	}

	_, err := s.ProcessBatch(context.Background(), []string{
		"https://x.com/u/status/1",
		"https://tiktok.com/@u/video/2",
		"https://instagram.com/p/abc/",
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), calls.Load())
	require.Equal(t, int64(3), lastDone.Load())
	require.Equal(t, int64(3), lastTotal.Load())
}

func TestProcessOne(t *testing.T) {
	s := newTestService(allEchoFetchers())

	rec, err := s.ProcessOne(context.Background(), " https://stockbit.com/post/123 ")
	require.NoError(t, err)
	require.Equal(t, "https://stockbit.com/post/123", rec.Url)
	require.Equal(t, metrics.PlatformStockbit, rec.Platform)

	_, err = s.ProcessOne(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyBatch)

	rec, err = s.ProcessOne(context.Background(), "https://unknown.example/1")
	require.NoError(t, err)
	require.True(t, rec.Failed())
	require.Equal(t, "Unsupported platform", *rec.Error)
}

func TestProcessLinkMissingFetcherKeepsPlatform(t *testing.T) {
	// only x is wired up; a youtube link must keep its classified
	// platform and report the configuration gap, not "Unsupported
	// platform"
	s := newTestService(map[metrics.Platform]Fetcher{
		metrics.PlatformX: echoFetcher(metrics.PlatformX),
	})

	rec, err := s.ProcessOne(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	require.True(t, rec.Failed())
	require.Equal(t, metrics.PlatformYouTube, rec.Platform)
	require.Equal(t, "youtube not configured", *rec.Error)

	// unknown URLs still get the classification-miss message
	rec, err = s.ProcessOne(context.Background(), "https://unknown.example/1")
	require.NoError(t, err)
	require.Equal(t, metrics.PlatformUnknown, rec.Platform)
	require.Equal(t, "Unsupported platform", *rec.Error)
}

func TestSummarizeIsIdempotent(t *testing.T) {
	records := []metrics.MetricRecord{
		{Url: "a", Platform: metrics.PlatformX},
		{Url: "b", Platform: metrics.PlatformX, Error: metrics.String("boom")},
		{Url: "c", Platform: metrics.PlatformYouTube},
	}
	first := Summarize(records)
	second := Summarize(records)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("summaries diverged (-first +second):\n%s", diff)
	}
	require.Equal(t, PlatformStats{Total: 2, Success: 1, Errors: 1}, first[metrics.PlatformX])
}

func TestSupportedPlatforms(t *testing.T) {
	s := newTestService(allEchoFetchers())

	supported := s.SupportedPlatforms()
	require.Len(t, supported, len(metrics.Platforms))
	for _, platform := range metrics.Platforms {
		limits, ok := supported[platform]
		require.True(t, ok, "missing %s", platform)
		require.Positive(t, limits.RequestsPerMinute)
	}
	// linkedin has no dedicated row, it inherits the defaults
	require.Equal(t, DefaultLimits, supported[metrics.PlatformLinkedIn])
}

func TestProcessBatchManyLinksStayAligned(t *testing.T) {
	s := newTestService(allEchoFetchers())

	var links []string
	for i := 0; i < 40; i++ {
		switch i % 4 {
		case 0:
			links = append(links, fmt.Sprintf("https://x.com/u/status/%d", i))
		case 1:
			links = append(links, fmt.Sprintf("https://tiktok.com/@u/video/%d", i))
		case 2:
			links = append(links, fmt.Sprintf("https://youtu.be/video%06d", i))
		case 3:
			links = append(links, fmt.Sprintf("https://linkedin.com/posts/update-%d", i))
		}
	}
	result, err := s.ProcessBatch(context.Background(), links)
	require.NoError(t, err)
	require.Len(t, result.Results, len(links))
	for i, link := range links {
		require.Equal(t, link, result.Results[i].Url)
		require.False(t, result.Results[i].Failed(), "unexpected error at %d: %v", i, result.Results[i].Error)
		require.False(t, strings.EqualFold(string(result.Results[i].Platform), string(metrics.PlatformUnknown)))
	}
}
