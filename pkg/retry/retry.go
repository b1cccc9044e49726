package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Import-AF/pipedream-libs/pkg/logger"
	"github.com/Import-AF/pipedream-libs/pkg/monday"
)

// Manager retries an operation with exponential backoff. The delay for
// attempt n is baseDelay*2^(n-1), capped at maxDelay. Only errors the
// predicate classifies as retryable trigger another attempt.
type Manager struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	isRetryable func(error) bool
	log         *logger.Logger
}

// NewManager creates a new retry manager. maxAttempts counts the initial
// attempt, so maxAttempts=1 disables retries. A nil predicate defaults to
// IsTransient.
func NewManager(maxAttempts int, baseDelay, maxDelay time.Duration, isRetryable func(error) bool, log *logger.Logger) *Manager {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if isRetryable == nil {
		isRetryable = IsTransient
	}
	return &Manager{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		isRetryable: isRetryable,
		log:         log,
	}
}

// Do runs the operation, retrying on retryable failures until the attempt
// budget is exhausted. The last error is returned; context cancellation
// aborts the backoff wait immediately.
func (m *Manager) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !m.isRetryable(lastErr) {
			m.log.Debugf("Error is not retryable, giving up: %v", lastErr)
			return lastErr
		}

		if attempt == m.maxAttempts {
			break
		}

		delay := m.delayFor(attempt)
		m.log.Warnf("Attempt %d/%d failed, retrying in %s: %v", attempt, m.maxAttempts, delay, lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", m.maxAttempts, lastErr)
}

func (m *Manager) delayFor(attempt int) time.Duration {
	delay := m.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= m.maxDelay {
			return m.maxDelay
		}
	}
	if m.maxDelay > 0 && delay > m.maxDelay {
		return m.maxDelay
	}
	return delay
}

// transientPhrases are message fragments the Monday.com API and intermediate
// proxies use for failures that usually clear on their own.
var transientPhrases = []string{
	"timeout",
	"rate limit",
	"server error",
	"internal error",
	"service unavailable",
	"temporarily unavailable",
	"complexity budget",
	"too many requests",
}

// retryableStatuses are HTTP statuses below 500 that still indicate a
// transient condition.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests: true,
}

// IsTransient classifies an error as worth retrying: transport-level
// connection failures, throttling or 5xx HTTP statuses, GraphQL errors that
// report themselves retryable, and anything whose message matches a known
// transient phrase.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var transportErr *monday.TransportError
	if errors.As(err, &transportErr) {
		return true
	}

	var httpErr *monday.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode >= 500 || retryableStatuses[httpErr.StatusCode] {
			return true
		}
	}

	var gqlErr *monday.GraphQLError
	if errors.As(err, &gqlErr) {
		if gqlErr.Retryable() {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, phrase := range transientPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}

	return false
}
