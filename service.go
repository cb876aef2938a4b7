package aclkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Service persists ACL definitions and rebuilds Acl engines from them.
// It integrates with the database through dbkit with enhanced error handling.
//
// The stored definitions are the declarations an Acl is built from (roles,
// resources, rule entries), not resolved verdicts: LoadAcl replays them in
// declaration order through a Builder, so a rebuilt engine answers exactly
// as one constructed by the equivalent Builder calls.
//
// Error Handling:
// All database operations use dbkit's chainable error wrapping to provide
// detailed context about failed operations. Errors include operation names,
// database context, and preserve original error types for classification.
//
// Example error handling:
//
//	err := service.AddRole(ctx, "editor", "user")
//	if err != nil {
//	    // Check for specific error types
//	    if dbkit.IsDuplicate(err) {
//	        // Handle concurrent definition changes
//	    }
//
//	    // Access rich error details
//	    var dbErr *dbkit.Error
//	    if errors.As(err, &dbErr) {
//	        fmt.Printf("Operation: %s, Table: %s, Constraint: %s\n",
//	            dbErr.Operation, dbErr.Table, dbErr.Constraint)
//	    }
//	}
type Service struct {
	db        dbkit.IDB
	txMonitor *transactionMonitor
}

// NewService creates a new ACLKit service.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := aclkit.NewService(db)
func NewService(db dbkit.IDB) *Service {
	return &Service{
		db:        db,
		txMonitor: newTransactionMonitor(),
	}
}

// ============================================================================
// AUDIT LOG
// ============================================================================

// GetAuditLog retrieves audit log entries with optional filters.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]DefinitionAuditLog, error) {
	var logs []DefinitionAuditLog
	q := s.db.NewSelect().Model(&logs)
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.Name != "" {
		q = q.Where("name = ?", filter.Name)
	}
	if filter.Effect != "" {
		q = q.Where("effect = ?", filter.Effect)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	err := dbkit.WithErr1(q.Scan(ctx), "GetAuditLog").Err()
	if err != nil {
		return nil, err
	}

	return logs, nil
}
