package aclkit

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// TestTransactionSupportIntegration tests transaction functionality with real database
func TestTransactionSupportIntegration(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := SetupTestDatabase(ctx)
	if err != nil {
		t.Fatalf("Failed to setup test database: %v", err)
	}

	ctx = WithActorID(ctx, "tx-admin")

	t.Run("Transaction commit", func(t *testing.T) {
		// Test successful transaction
		err := service.Transaction(ctx, func(tx *Service) error {
			if err := tx.AddRole(ctx, "committed-role"); err != nil {
				return err
			}
			return tx.Allow(ctx, []string{"committed-role"}, nil, []string{"read"})
		})

		if err != nil {
			t.Errorf("Transaction should have succeeded: %v", err)
		}

		// Verify the definitions were stored
		acl, err := service.LoadAcl(ctx)
		if err != nil {
			t.Fatalf("LoadAcl failed: %v", err)
		}
		if !acl.HasRole("committed-role") {
			t.Error("Role should be stored after successful transaction")
		}
		if !acl.IsAllowed("committed-role", "anything", "read") {
			t.Error("Rule should resolve after successful transaction")
		}
	})

	t.Run("Transaction rollback", func(t *testing.T) {
		// Test transaction rollback on error
		err := service.Transaction(ctx, func(tx *Service) error {
			if err := tx.AddRole(ctx, "rolled-back-role"); err != nil {
				return err
			}

			// Return an error to trigger rollback
			return errors.New("intentional error for rollback test")
		})

		if err == nil {
			t.Error("Transaction should have failed")
		}

		// Verify the role was NOT stored (rollback worked)
		acl, err := service.LoadAcl(ctx)
		if err != nil {
			t.Fatalf("LoadAcl failed: %v", err)
		}
		if acl.HasRole("rolled-back-role") {
			t.Error("Role should not be stored after failed transaction")
		}
	})

	t.Run("Nested transaction", func(t *testing.T) {
		// Test nested transactions (savepoints)
		err := service.Transaction(ctx, func(tx *Service) error {
			// Outer transaction
			if err := tx.AddRole(ctx, "outer-role"); err != nil {
				return err
			}

			// Inner transaction (should use savepoint)
			return tx.Transaction(ctx, func(inner *Service) error {
				return inner.AddRole(ctx, "inner-role")
			})
		})

		if err != nil {
			t.Errorf("Nested transaction should have succeeded: %v", err)
		}

		// Verify both roles were stored
		acl, err := service.LoadAcl(ctx)
		if err != nil {
			t.Fatalf("LoadAcl failed: %v", err)
		}
		if !acl.HasRole("outer-role") {
			t.Error("Outer role should exist after nested transaction")
		}
		if !acl.HasRole("inner-role") {
			t.Error("Inner role should exist after nested transaction")
		}
	})

	t.Run("Savepoint rollback keeps outer work", func(t *testing.T) {
		// An inner failure rolls back to the savepoint; the outer
		// transaction decides whether to continue.
		err := service.Transaction(ctx, func(tx *Service) error {
			if err := tx.AddRole(ctx, "kept-role"); err != nil {
				return err
			}

			inner := tx.Transaction(ctx, func(inner *Service) error {
				if err := inner.AddRole(ctx, "discarded-role"); err != nil {
					return err
				}
				return errors.New("discard the inner work")
			})
			if inner == nil {
				return errors.New("inner transaction should have failed")
			}

			// Swallow the inner error and commit the outer work.
			return nil
		})

		if err != nil {
			t.Errorf("Outer transaction should have succeeded: %v", err)
		}

		acl, err := service.LoadAcl(ctx)
		if err != nil {
			t.Fatalf("LoadAcl failed: %v", err)
		}
		if !acl.HasRole("kept-role") {
			t.Error("Outer role should survive the inner rollback")
		}
		if acl.HasRole("discarded-role") {
			t.Error("Inner role should be gone after savepoint rollback")
		}
	})

	t.Run("Read-only transaction", func(t *testing.T) {
		// Test read-only transaction
		err := service.ReadOnlyTransaction(ctx, func(tx *Service) error {
			// Should be able to read
			data, err := tx.LoadData(ctx)
			if err != nil {
				return err
			}

			found := false
			for _, r := range data.Roles {
				if r.Name == "committed-role" {
					found = true
				}
			}
			if !found {
				return errors.New("committed role not visible in read-only snapshot")
			}

			// Should NOT be able to write in read-only transaction
			return tx.AddRole(ctx, "read-only-role")
		})

		// Read-only transaction should fail on write attempt
		if err == nil {
			t.Error("Read-only transaction should have failed on write attempt")
		}

		// Verify the role was NOT stored
		acl, err := service.LoadAcl(ctx)
		if err != nil {
			t.Fatalf("LoadAcl failed: %v", err)
		}
		if acl.HasRole("read-only-role") {
			t.Error("Role should not be stored after failed read-only transaction")
		}
	})
}

// TestReplaceDataRetryIntegration tests retry logic for transient errors
func TestReplaceDataRetryIntegration(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := SetupTestDatabase(ctx)
	if err != nil {
		t.Fatalf("Failed to setup test database: %v", err)
	}

	ctx = WithActorID(ctx, "retry-admin")

	t.Run("Retry on transient error", func(t *testing.T) {
		// Simulating transient errors needs a fault-injecting driver.
		// For now, just test that the method works for the successful case.
		doc := &AclData{
			Roles:     []SymbolData{{Name: "viewer"}},
			Resources: []SymbolData{{Name: "report"}},
			Allow:     []RuleData{{Roles: []string{"viewer"}, Resources: []string{"report"}, Privileges: []string{"read"}}},
		}

		err := service.ReplaceDataWithRetry(ctx, doc)
		if err != nil {
			t.Errorf("ReplaceDataWithRetry should have succeeded: %v", err)
		}

		// Verify the definitions were stored
		if !service.Can(ctx, "viewer", "report", "read") {
			t.Error("Definitions should be stored after retry helper")
		}
	})

	t.Run("No retry on validation error", func(t *testing.T) {
		// Validation failures are not transient and must surface immediately
		doc := &AclData{Roles: []SymbolData{{Name: ""}}}

		err := service.ReplaceDataWithRetry(ctx, doc)
		if err == nil {
			t.Fatal("Expected validation error")
		}
		if !IsInvalidData(err) && !IsInvalidInput(err) {
			t.Errorf("Expected invalid data error, got: %v", err)
		}
	})
}

// TestTransactionMetricsIntegration tests transaction monitoring
func TestTransactionMetricsIntegration(t *testing.T) {
	if !RequireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := SetupTestDatabase(ctx)
	if err != nil {
		t.Fatalf("Failed to setup test database: %v", err)
	}

	ctx = WithActorID(ctx, "metrics-admin")

	// Reset metrics to start fresh
	service.ResetTransactionMetrics()

	// Perform some transactions
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("metrics-role-%d", i)
		err := service.Transaction(ctx, func(tx *Service) error {
			return tx.AddRole(ctx, name)
		})
		if err != nil {
			t.Errorf("Transaction %d failed: %v", i, err)
		}
	}

	// Check metrics
	metrics := service.GetTransactionMetrics()
	if metrics.TotalTransactions != 5 {
		t.Errorf("Expected 5 total transactions, got %d", metrics.TotalTransactions)
	}

	if metrics.FailedTransactions != 0 {
		t.Errorf("Expected 0 failed transactions, got %d", metrics.FailedTransactions)
	}

	// Test health check
	if !service.IsTransactionHealthy() {
		t.Error("Transaction system should be healthy")
	}
}
