package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"socialpulse-backend/lib/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// execute runs one URL through the full admit -> fetch -> classify ->
// retry pipeline for its platform. It never returns a Go error: every
// failure mode ends up inside the record, so one bad URL can't sink a
// batch.
func (s *Service) execute(ctx context.Context, platform metrics.Platform, fetcher Fetcher, url string) metrics.MetricRecord {
	ctx, span := tracer.Start(ctx, "execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("platform", string(platform)),
		attribute.String("url", url),
	)

	limits := LimitsFor(platform)
	limiter := s.limiters[platform]

	for attempt := 0; attempt <= limits.MaxRetries; attempt++ {
		// every attempt pays the admission toll, retries included
		if err := limiter.Admit(ctx); err != nil {
			span.SetStatus(codes.Error, "admission interrupted")
			return metrics.Errored(url, platform, err.Error())
		}

		rec, err := fetcher.Fetch(ctx, url)
		failure := foldFailure(rec, err)
		if failure == nil {
			return s.normalize(rec, url, platform)
		}

		if !metrics.IsQuota(failure) {
			// permanent errors get exactly one attempt
			span.RecordError(failure)
			return metrics.Errored(url, platform, failure.Error())
		}

		if attempt >= limits.MaxRetries {
			span.SetStatus(codes.Error, "retries exhausted")
			return metrics.Errored(url, platform, fmt.Sprintf(
				"Rate limit exceeded after %d retries", limits.MaxRetries,
			))
		}

		backoff := time.Duration(float64(time.Second) * (float64(int64(1)<<attempt) + rand.Float64()*2))
		slog.WarnContext(
			ctx, "quota error, backing off",
			"platform", platform,
			"attempt", attempt+1,
			"max_retries", limits.MaxRetries,
			"backoff", backoff,
			"err", failure,
		)
		span.AddEvent("retry", trace.WithAttributes(
			attribute.Int("attempt", attempt+1),
			attribute.String("backoff", backoff.String()),
		))
		if err := s.sleep(ctx, backoff); err != nil {
			return metrics.Errored(url, platform, err.Error())
		}
	}

	// unreachable unless the loop bound and the exhaustion check drift apart
	return metrics.Errored(url, platform, fmt.Sprintf(
		"Max retries (%d) exceeded", limits.MaxRetries,
	))
}

// foldFailure merges the two ways a collaborator can fail (raised error
// vs. error-bearing record) into one error value, nil on success.
func foldFailure(rec metrics.MetricRecord, err error) error {
	if err != nil {
		return err
	}
	if rec.Failed() {
		return errors.New(*rec.Error)
	}
	return nil
}

// normalize pins the fields the orchestrator owns: url and platform are
// always present on the canonical record no matter what the collaborator
// filled in.
func (s *Service) normalize(rec metrics.MetricRecord, url string, platform metrics.Platform) metrics.MetricRecord {
	if rec.Url == "" {
		rec.Url = url
	}
	if rec.Platform == "" {
		rec.Platform = platform
	}
	return rec
}
