package aclkit

import (
	"context"
	"time"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// TRANSACTIONS
// ============================================================================

// Transaction executes fn with a service bound to a database transaction.
// Every query made through the bound service runs inside the transaction;
// returning an error rolls back, returning nil commits. When the service is
// already transaction-bound a savepoint is used, so nested calls compose.
//
// Example:
//
//	err := service.Transaction(ctx, func(tx *aclkit.Service) error {
//	    if err := tx.AddRole(ctx, "editor", "user"); err != nil {
//	        return err // This will cause a rollback
//	    }
//	    return tx.Allow(ctx, []string{"editor"}, []string{"blog"}, []string{"update"})
//	})
func (s *Service) Transaction(ctx context.Context, fn func(tx *Service) error) error {
	start := time.Now()
	var err error

	switch db := s.db.(type) {
	case *dbkit.Tx:
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(s.bound(tx))
		})
	case *dbkit.DBKit:
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(s.bound(tx))
		})
	default:
		err = NewError(ErrDatabaseError, "transaction support requires a dbkit.DBKit or dbkit.Tx instance")
	}

	duration := time.Since(start)
	s.txMonitor.recordTransaction(duration, err == nil)

	return err
}

// TransactionWithOptions executes fn within a transaction using custom
// options. Supports read-only transactions, isolation levels, and other
// transaction parameters. Options do not apply when the service is already
// transaction-bound: nesting falls back to a savepoint.
//
// Example:
//
//	err := service.TransactionWithOptions(ctx, dbkit.SerializableTxOptions(), func(tx *aclkit.Service) error {
//	    return tx.ReplaceData(ctx, data)
//	})
func (s *Service) TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(tx *Service) error) error {
	start := time.Now()
	var err error

	switch db := s.db.(type) {
	case *dbkit.Tx:
		err = db.Transaction(ctx, func(tx *dbkit.Tx) error {
			return fn(s.bound(tx))
		})
	case *dbkit.DBKit:
		err = db.TransactionWithOptions(ctx, opts, func(tx *dbkit.Tx) error {
			return fn(s.bound(tx))
		})
	default:
		err = NewError(ErrDatabaseError, "transaction support requires a dbkit.DBKit or dbkit.Tx instance")
	}

	duration := time.Since(start)
	s.txMonitor.recordTransaction(duration, err == nil)

	return err
}

// ReadOnlyTransaction executes fn within a read-only transaction. Useful
// for multi-query reads that need a consistent snapshot.
//
// Example:
//
//	var data *aclkit.AclData
//	err := service.ReadOnlyTransaction(ctx, func(tx *aclkit.Service) error {
//	    var err error
//	    data, err = tx.LoadData(ctx)
//	    return err
//	})
func (s *Service) ReadOnlyTransaction(ctx context.Context, fn func(tx *Service) error) error {
	return s.TransactionWithOptions(ctx, dbkit.ReadOnlyTxOptions(), fn)
}

// bound returns a copy of the service whose queries run on tx. The copy
// shares the transaction monitor, so nested work is recorded in one place.
func (s *Service) bound(tx *dbkit.Tx) *Service {
	clone := *s
	clone.db = tx
	return &clone
}

// ============================================================================
// TRANSACTION METRICS
// ============================================================================

// GetTransactionMetrics returns transaction statistics for this service.
func (s *Service) GetTransactionMetrics() TransactionMetrics {
	return s.txMonitor.getMetrics()
}

// ResetTransactionMetrics clears the accumulated transaction statistics.
func (s *Service) ResetTransactionMetrics() {
	s.txMonitor.reset()
}

// IsTransactionHealthy reports whether recent transactions look sound:
// failure rate at or under 5% and average duration at or under a second.
// Fewer than 10 recorded transactions always counts as healthy.
func (s *Service) IsTransactionHealthy() bool {
	metrics := s.txMonitor.getMetrics()

	if metrics.TotalTransactions < 10 {
		return true
	}

	failureRate := float64(metrics.FailedTransactions) / float64(metrics.TotalTransactions)
	if failureRate > 0.05 {
		return false
	}

	return metrics.AverageDuration <= time.Second
}
