package metrics

import (
	"errors"
	"fmt"
	"strings"
)

// QuotaError marks a fetch failure caused by platform-side throttling.
// The extractor retries these with backoff; every other error is terminal.
type QuotaError struct {
	Message string
}

func (e *QuotaError) Error() string {
	return e.Message
}

// Quotaf builds a *QuotaError the way fmt.Errorf builds errors.
func Quotaf(format string, args ...any) *QuotaError {
	return &QuotaError{Message: fmt.Sprintf(format, args...)}
}

// quotaMarkers is the free-text fallback classification: collaborators that
// only surface string errors still get retried when the message contains
// one of these.
var quotaMarkers = []string{
	"rate limit",
	"too many requests",
	"quota",
	"limit exceeded",
}

// IsQuotaMessage reports whether a free-text error message looks like a
// rate-limit or quota failure. Matching is case-insensitive substring.
func IsQuotaMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range quotaMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// IsQuota reports whether err should be treated as a throttling failure.
// Structured *QuotaError values match directly, anything else falls back to
// the message heuristic.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	var quota *QuotaError
	if errors.As(err, &quota) {
		return true
	}
	return IsQuotaMessage(err.Error())
}
