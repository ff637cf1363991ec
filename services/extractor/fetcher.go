package extractor

import (
	"context"

	"socialpulse-backend/lib/metrics"
)

// Fetcher is the per-platform collaborator performing the actual network
// or browser work. The orchestrator treats it as a black box: a fetch
// either yields a populated record, a record with Error set, or a raised
// error. Throttling failures must surface as *metrics.QuotaError (or at
// least carry a recognizable message) to be retried.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (metrics.MetricRecord, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) (metrics.MetricRecord, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) (metrics.MetricRecord, error) {
	return f(ctx, url)
}
