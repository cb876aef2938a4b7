package aclkit

import (
	"github.com/fernandezvara/dbkit"
)

// MigrationService provides migration management functionality as an extension to Service
type MigrationService struct {
	*Service
}

// NewMigrationService creates a new migration service extension
func NewMigrationService(service *Service) *MigrationService {
	return &MigrationService{Service: service}
}

// Migrations returns all database migrations required for the definition
// store. Run them with db.Migrate(ctx, service.Migrations()) before using
// the definition operations.
func (ms *MigrationService) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "aclkit-001",
			Description: "Create acl_roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS acl_roles (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    name TEXT NOT NULL UNIQUE,
                    parents TEXT[],
                    position BIGINT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "aclkit-002",
			Description: "Create acl_resources table",
			SQL: `
                CREATE TABLE IF NOT EXISTS acl_resources (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    name TEXT NOT NULL UNIQUE,
                    parents TEXT[],
                    position BIGINT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "aclkit-003",
			Description: "Create acl_rules table",
			SQL: `
                CREATE TABLE IF NOT EXISTS acl_rules (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    effect TEXT NOT NULL,
                    roles TEXT[],
                    resources TEXT[],
                    privileges TEXT[],
                    position BIGINT NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "aclkit-004",
			Description: "Create acl_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS acl_audit_log (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id TEXT NOT NULL,
                    action TEXT NOT NULL,
                    name TEXT,
                    parents TEXT[],
                    effect TEXT,
                    roles TEXT[],
                    resources TEXT[],
                    privileges TEXT[],
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT,
                    metadata JSONB
                )`,
		},
		{
			ID:          "aclkit-005",
			Description: "Index acl_audit_log by timestamp",
			SQL:         `CREATE INDEX IF NOT EXISTS idx_acl_audit_log_timestamp ON acl_audit_log (timestamp)`,
		},
		{
			ID:          "aclkit-006",
			Description: "Index acl_audit_log by actor",
			SQL:         `CREATE INDEX IF NOT EXISTS idx_acl_audit_log_actor ON acl_audit_log (actor_id)`,
		},
	}
}
