package aclkit

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// INTERNAL HELPERS
// ============================================================================

func (s *Service) logAudit(ctx context.Context, entry *AuditEntry) error {
	_, err := s.db.NewInsert().Model(entry.ToModel()).Exec(ctx)
	return dbkit.WithErr1(err, "LogAudit").Err()
}

// nextPosition returns the declaration position for the next row of a
// definition table. Definitions are append-only outside ReplaceData, which
// rewrites all positions, so row count + 1 is stable.
func nextPosition[T any](ctx context.Context, db dbkit.IDB) (int64, error) {
	count, err := dbkit.Count[T](ctx, db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q
	})
	if err != nil {
		return 0, dbkit.WithErr1(err, "NextPosition").Err()
	}
	return int64(count) + 1, nil
}

// ============================================================================
// RETRY
// ============================================================================

// ReplaceDataWithRetry replaces the stored definitions with automatic retry
// for transient errors.
func (s *Service) ReplaceDataWithRetry(ctx context.Context, data *AclData) error {
	return s.replaceDataWithRetry(ctx, data, 3)
}

// replaceDataWithRetry is the internal implementation of retry logic with
// configurable attempts.
func (s *Service) replaceDataWithRetry(ctx context.Context, data *AclData, maxAttempts int) error {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := s.ReplaceData(ctx, data)
		if err == nil {
			return nil
		}

		lastErr = err

		// Don't retry on non-transient errors
		if !isTransientError(err) {
			return err
		}

		// If this is the last attempt, don't wait
		if attempt == maxAttempts-1 {
			break
		}

		// Exponential backoff with jitter
		backoff := time.Duration(1<<uint(attempt)) * time.Second
		jitter := time.Duration(float64(backoff) * 0.1 * (0.5 + rand.Float64()))
		time.Sleep(backoff + jitter)
	}

	return lastErr
}

// isTransientError checks if an error is transient and can be retried.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// PostgreSQL transient failure modes
	transientErrors := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"deadlock",
		"lock wait timeout",
		"temporary failure",
		"try again",
		"resource temporarily unavailable",
	}

	for _, transient := range transientErrors {
		if strings.Contains(errStr, transient) {
			return true
		}
	}

	return false
}
