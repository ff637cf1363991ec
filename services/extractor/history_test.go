package extractor

import (
	"context"
	"testing"

	"socialpulse-backend/lib/metrics"
	"socialpulse-backend/lib/sqliteutil"
	"socialpulse-backend/services/extractor/db"

	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) *History {
	sqldb, err := sqliteutil.OpenDB(db.Schema, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })
	return NewHistory(sqldb)
}

func TestHistoryRoundTrip(t *testing.T) {
	history := newTestHistory(t)
	ctx := context.Background()

	records := []metrics.MetricRecord{
		{
			Url:      "https://x.com/u/status/1",
			Platform: metrics.PlatformX,
			Likes:    metrics.Int64(10),
			Views:    metrics.Int64(200),
		},
		metrics.Errored("https://unknown.example/1", metrics.PlatformUnknown, "Unsupported platform"),
		{
			Url:      "https://youtube.com/watch?v=abcdefghijk",
			Platform: metrics.PlatformYouTube,
			Author:   metrics.String("some channel"),
		},
	}
	result := BatchResult{
		Results: records,
		Summary: Summary{
			TotalProcessed:      len(records),
			PlatformStats:       Summarize(records),
			RateLimitingApplied: true,
		},
	}

	batchId, err := history.SaveBatch(ctx, result)
	require.NoError(t, err)
	require.Positive(t, batchId)

	batches, err := history.RecentBatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Equal(t, batchId, batches[0].Id)
	require.Equal(t, 3, batches[0].Total)
	require.Equal(t, 2, batches[0].Success)
	require.Equal(t, 1, batches[0].Errors)

	replayed, err := history.BatchRecords(ctx, batchId)
	require.NoError(t, err)
	require.Equal(t, records, replayed)
}

func TestHistoryRecentBatchesOrder(t *testing.T) {
	history := newTestHistory(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		records := []metrics.MetricRecord{
			{Url: "https://x.com/u/status/1", Platform: metrics.PlatformX},
		}
		id, err := history.SaveBatch(ctx, BatchResult{
			Results: records,
			Summary: Summary{TotalProcessed: 1, PlatformStats: Summarize(records)},
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	batches, err := history.RecentBatches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	require.Equal(t, ids[2], batches[0].Id)
	require.Equal(t, ids[1], batches[1].Id)
}

func TestHistoryUnknownBatchIsEmpty(t *testing.T) {
	history := newTestHistory(t)

	records, err := history.BatchRecords(context.Background(), 999)
	require.NoError(t, err)
	require.Empty(t, records)
}
