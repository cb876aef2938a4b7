package aclkit

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Authorizer is the query surface of a built Acl. It is what request
// handling code should depend on.
type Authorizer interface {
	IsAllowed(role, resource, privilege string) bool
	IsAllowedAny(roles, resources, privileges []string) bool
}

// Database defines the database operations interface for dependency injection
type Database interface {
	dbkit.IDB
}

// DefinitionWriter defines the definition change interface
type DefinitionWriter interface {
	AddRole(ctx context.Context, name string, parents ...string) error
	AddResource(ctx context.Context, name string, parents ...string) error
	Allow(ctx context.Context, roles, resources, privileges []string) error
	Deny(ctx context.Context, roles, resources, privileges []string) error
	ReplaceData(ctx context.Context, data *AclData) error
}

// DefinitionReader defines the definition retrieval interface
type DefinitionReader interface {
	LoadData(ctx context.Context) (*AclData, error)
	LoadAcl(ctx context.Context) (*Acl, error)
	Stats(ctx context.Context) (Stats, error)
}

// TransactionManager defines the transaction management interface
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(tx *Service) error) error
	TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(tx *Service) error) error
	ReadOnlyTransaction(ctx context.Context, fn func(tx *Service) error) error
}

// MigrationManager defines the migration management interface
type MigrationManager interface {
	Migrations() []dbkit.Migration
}

// HealthMonitor defines the health monitoring interface
type HealthMonitor interface {
	Health(ctx context.Context) dbkit.HealthStatus
	IsHealthy(ctx context.Context) bool
	Ping(ctx context.Context) error
	GetPoolStats() dbkit.PoolStats
}

// PoolManager defines the connection pool management interface
type PoolManager interface {
	ConfigureConnectionPool(config PoolConfig) error
	GetConnectionPoolConfig() (*PoolConfig, error)
	OptimizeConnectionPool() error
	ResetConnectionPool() error
}

// AuditLogger defines the audit logging interface
type AuditLogger interface {
	logAudit(ctx context.Context, entry *AuditEntry) error
}

// TransactionMonitor defines the transaction monitoring interface
type TransactionMonitor interface {
	GetTransactionMetrics() TransactionMetrics
	ResetTransactionMetrics()
	IsTransactionHealthy() bool
}
