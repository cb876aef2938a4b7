package aclkit

import (
	"time"

	"github.com/uptrace/bun"
)

// RoleDefinition is one stored role and its direct parents. Position
// records declaration order: definitions are replayed in position order
// when an Acl is rebuilt from the database, which keeps the hierarchy
// walk deterministic.
type RoleDefinition struct {
	bun.BaseModel `bun:"table:acl_roles,alias:rl"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name      string    `bun:"name,notnull"`
	Parents   []string  `bun:"parents,type:text[]"`
	Position  int64     `bun:"position,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ResourceDefinition is one stored resource and its direct parents.
type ResourceDefinition struct {
	bun.BaseModel `bun:"table:acl_resources,alias:rs"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name      string    `bun:"name,notnull"`
	Parents   []string  `bun:"parents,type:text[]"`
	Position  int64     `bun:"position,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// RuleDefinition is one stored allow/deny declaration. A NULL axis means
// "all" on that axis, matching the engine's nil-slice convention. Rules
// are replayed in position order, so later declarations override earlier
// ones exactly as repeated Builder calls would.
type RuleDefinition struct {
	bun.BaseModel `bun:"table:acl_rules,alias:ru"`

	ID         string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Effect     string    `bun:"effect,notnull"` // "allow" or "deny"
	Roles      []string  `bun:"roles,type:text[]"`
	Resources  []string  `bun:"resources,type:text[]"`
	Privileges []string  `bun:"privileges,type:text[]"`
	Position   int64     `bun:"position,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// DefinitionAuditLog records all definition changes for compliance and
// debugging.
type DefinitionAuditLog struct {
	bun.BaseModel `bun:"table:acl_audit_log,alias:al"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	// Who performed the change
	ActorID string `bun:"actor_id,notnull"`

	// What change was performed
	Action string `bun:"action,notnull"` // "role_added", "resource_added", "rule_added", "data_replaced"

	// Target of a symbol change
	Name    string   `bun:"name"`
	Parents []string `bun:"parents,type:text[]"`

	// Target of a rule change; NULL axes mean "all"
	Effect     string   `bun:"effect"`
	Roles      []string `bun:"roles,type:text[]"`
	Resources  []string `bun:"resources,type:text[]"`
	Privileges []string `bun:"privileges,type:text[]"`

	// Request metadata for forensics
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`

	// Additional context (JSON)
	Metadata map[string]any `bun:"metadata,type:jsonb"`
}

// AuditAction represents the type of change in the audit log.
type AuditAction string

const (
	AuditActionRoleAdded     AuditAction = "role_added"
	AuditActionResourceAdded AuditAction = "resource_added"
	AuditActionRuleAdded     AuditAction = "rule_added"
	AuditActionDataReplaced  AuditAction = "data_replaced"
)

// AuditEntry is used to create new audit log entries.
type AuditEntry struct {
	ActorID    string
	Action     AuditAction
	Name       string
	Parents    []string
	Effect     Rule
	Roles      []string
	Resources  []string
	Privileges []string
	IPAddress  string
	UserAgent  string
	RequestID  string
	Metadata   map[string]any
}

// ToModel converts an AuditEntry to a DefinitionAuditLog model.
func (e *AuditEntry) ToModel() *DefinitionAuditLog {
	return &DefinitionAuditLog{
		ActorID:    e.ActorID,
		Action:     string(e.Action),
		Name:       e.Name,
		Parents:    e.Parents,
		Effect:     string(e.Effect),
		Roles:      e.Roles,
		Resources:  e.Resources,
		Privileges: e.Privileges,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		RequestID:  e.RequestID,
		Metadata:   e.Metadata,
		Timestamp:  time.Now(),
	}
}
