package aclkit

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// DEFINITION CHANGE OPERATIONS
// ============================================================================

// AddRole stores a role declaration. Parents are auto-registered so the
// stored rows always replay into a complete graph, and re-adding an
// existing role merges any new parents into its parent list. The actor ID
// from the context is recorded in the audit log.
//
// Example:
//
//	ctx = aclkit.WithActorID(ctx, adminID)
//	err := service.AddRole(ctx, "editor", "user")
func (s *Service) AddRole(ctx context.Context, name string, parents ...string) error {
	if err := validateSymbols(name, parents); err != nil {
		return err.WithGraph("role")
	}

	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for definition changes")
	}

	changed, err := s.storeRoleDefinition(ctx, name, parents)
	if err != nil {
		return err
	}
	if !changed {
		// Declaration already stored; adding a role twice is a no-op.
		return nil
	}

	audit := GetAuditContext(ctx)
	entry := &AuditEntry{
		ActorID:   actorID,
		Action:    AuditActionRoleAdded,
		Name:      name,
		Parents:   parents,
		IPAddress: audit.IPAddress,
		UserAgent: audit.UserAgent,
		RequestID: audit.RequestID,
	}

	_ = s.logAudit(ctx, entry) // Log error but don't fail the change

	return nil
}

// AddResource stores a resource declaration with the same semantics as
// AddRole: parents auto-register and repeated declarations merge.
//
// Example:
//
//	err := service.AddResource(ctx, "blog", "index")
func (s *Service) AddResource(ctx context.Context, name string, parents ...string) error {
	if err := validateSymbols(name, parents); err != nil {
		return err.WithGraph("resource")
	}

	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for definition changes")
	}

	changed, err := s.storeResourceDefinition(ctx, name, parents)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	audit := GetAuditContext(ctx)
	entry := &AuditEntry{
		ActorID:   actorID,
		Action:    AuditActionResourceAdded,
		Name:      name,
		Parents:   parents,
		IPAddress: audit.IPAddress,
		UserAgent: audit.UserAgent,
		RequestID: audit.RequestID,
	}

	_ = s.logAudit(ctx, entry)

	return nil
}

// Allow stores an allow rule declaration. A nil or empty slice means "all"
// on that axis, and Wildcard inside a list collapses the axis the same
// way. Names are not checked against the stored symbols here: rules
// resolve against the declared roles and resources when the Acl is
// rebuilt, exactly as Builder rules do.
//
// Example:
//
//	err := service.Allow(ctx, []string{"editor"}, []string{"blog"}, []string{"update", "publish"})
func (s *Service) Allow(ctx context.Context, roles, resources, privileges []string) error {
	return s.addRuleDefinition(ctx, RuleAllow, roles, resources, privileges)
}

// Deny stores a deny rule declaration with the same axis semantics as
// Allow.
func (s *Service) Deny(ctx context.Context, roles, resources, privileges []string) error {
	return s.addRuleDefinition(ctx, RuleDeny, roles, resources, privileges)
}

func (s *Service) addRuleDefinition(ctx context.Context, effect Rule, roles, resources, privileges []string) error {
	if err := validateRuleAxes(roles, resources, privileges); err != nil {
		return err
	}

	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for definition changes")
	}

	position, err := nextPosition[RuleDefinition](ctx, s.db)
	if err != nil {
		return err
	}

	rule := &RuleDefinition{
		Effect:     string(effect),
		Roles:      normalizeAxis(roles),
		Resources:  normalizeAxis(resources),
		Privileges: normalizeAxis(privileges),
		Position:   position,
	}

	result, ierr := s.db.NewInsert().Model(rule).Exec(ctx)
	if err := dbkit.WithErr(result, ierr, "AddRule").Err(); err != nil {
		return NewError(ErrDatabaseError, "failed to store rule definition")
	}

	audit := GetAuditContext(ctx)
	entry := &AuditEntry{
		ActorID:    actorID,
		Action:     AuditActionRuleAdded,
		Effect:     effect,
		Roles:      rule.Roles,
		Resources:  rule.Resources,
		Privileges: rule.Privileges,
		IPAddress:  audit.IPAddress,
		UserAgent:  audit.UserAgent,
		RequestID:  audit.RequestID,
	}

	_ = s.logAudit(ctx, entry)

	return nil
}

// ReplaceData atomically replaces every stored definition with the
// contents of a document. Positions are rewritten to the document's
// declaration order: roles, resources, allow entries, then deny entries.
//
// Example:
//
//	data, _ := aclkit.DataFromYAML(raw)
//	err := service.ReplaceData(ctx, data)
func (s *Service) ReplaceData(ctx context.Context, data *AclData) error {
	if data == nil {
		return NewError(ErrInvalidInput, "nil acl data")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actorID := GetActorID(ctx)
	if actorID == "" {
		return NewError(ErrNoActorID, "actor ID required for definition changes")
	}

	err := s.Transaction(ctx, func(tx *Service) error {
		for _, table := range []string{"acl_rules", "acl_resources", "acl_roles"} {
			result, derr := tx.db.NewDelete().Table(table).Where("1 = 1").Exec(ctx)
			if err := dbkit.WithErr(result, derr, "ReplaceData").Err(); err != nil {
				return NewError(ErrDatabaseError, fmt.Sprintf("failed to clear %s", table))
			}
		}

		if roles := collapseSymbols(data.Roles); len(roles) > 0 {
			models := make([]*RoleDefinition, len(roles))
			for i, sd := range roles {
				models[i] = &RoleDefinition{
					Name:     sd.Name,
					Parents:  sd.Parents,
					Position: int64(i + 1),
				}
			}
			_, berr := dbkit.BatchInsert(ctx, tx.db, models, dbkit.BatchSize)
			if err := dbkit.WithErr1(berr, "ReplaceData").Err(); err != nil {
				return NewError(ErrDatabaseError, "failed to batch insert role definitions")
			}
		}

		if resources := collapseSymbols(data.Resources); len(resources) > 0 {
			models := make([]*ResourceDefinition, len(resources))
			for i, sd := range resources {
				models[i] = &ResourceDefinition{
					Name:     sd.Name,
					Parents:  sd.Parents,
					Position: int64(i + 1),
				}
			}
			_, berr := dbkit.BatchInsert(ctx, tx.db, models, dbkit.BatchSize)
			if err := dbkit.WithErr1(berr, "ReplaceData").Err(); err != nil {
				return NewError(ErrDatabaseError, "failed to batch insert resource definitions")
			}
		}

		if len(data.Allow)+len(data.Deny) > 0 {
			models := make([]*RuleDefinition, 0, len(data.Allow)+len(data.Deny))
			position := int64(0)
			appendRules := func(effect Rule, entries []RuleData) {
				for _, e := range entries {
					position++
					models = append(models, &RuleDefinition{
						Effect:     string(effect),
						Roles:      normalizeAxis(e.Roles),
						Resources:  normalizeAxis(e.Resources),
						Privileges: normalizeAxis(e.Privileges),
						Position:   position,
					})
				}
			}
			appendRules(RuleAllow, data.Allow)
			appendRules(RuleDeny, data.Deny)

			_, berr := dbkit.BatchInsert(ctx, tx.db, models, dbkit.BatchSize)
			if err := dbkit.WithErr1(berr, "ReplaceData").Err(); err != nil {
				return NewError(ErrDatabaseError, "failed to batch insert rule definitions")
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	audit := GetAuditContext(ctx)
	entry := &AuditEntry{
		ActorID: actorID,
		Action:  AuditActionDataReplaced,
		Metadata: map[string]any{
			"roles":     len(data.Roles),
			"resources": len(data.Resources),
			"rules":     len(data.Allow) + len(data.Deny),
		},
		IPAddress: audit.IPAddress,
		UserAgent: audit.UserAgent,
		RequestID: audit.RequestID,
	}

	_ = s.logAudit(ctx, entry)

	return nil
}

// ============================================================================
// DEFINITION STORAGE
// ============================================================================

// storeRoleDefinition writes one role row, registering missing parents
// first. It reports whether anything actually changed.
func (s *Service) storeRoleDefinition(ctx context.Context, name string, parents []string) (bool, error) {
	changed := false

	for _, parent := range parents {
		registered, err := s.registerRoleName(ctx, parent)
		if err != nil {
			return changed, err
		}
		if registered {
			changed = true
		}
	}

	var existing RoleDefinition
	err := s.db.NewSelect().Model(&existing).Where("name = ?", name).Limit(1).Scan(ctx)
	switch {
	case err == nil:
		merged, grew := mergeParents(existing.Parents, parents)
		if !grew {
			return changed, nil
		}
		existing.Parents = merged
		existing.UpdatedAt = time.Now()
		result, uerr := s.db.NewUpdate().Model(&existing).
			Column("parents", "updated_at").
			WherePK().
			Exec(ctx)
		if err := dbkit.WithErr(result, uerr, "AddRole").Err(); err != nil {
			return changed, NewError(ErrDatabaseError, "failed to update role definition").
				WithGraph("role").
				WithSymbol(name)
		}
		return true, nil

	case dbkit.IsNotFound(err):
		position, perr := nextPosition[RoleDefinition](ctx, s.db)
		if perr != nil {
			return changed, perr
		}
		def := &RoleDefinition{Name: name, Parents: parents, Position: position}
		result, ierr := s.db.NewInsert().Model(def).Exec(ctx)
		if err := dbkit.WithErr(result, ierr, "AddRole").Err(); err != nil {
			if dbkit.IsDuplicate(err) {
				// Raced with a concurrent registration; merge into it.
				return s.storeRoleDefinition(ctx, name, parents)
			}
			return changed, NewError(ErrDatabaseError, "failed to store role definition").
				WithGraph("role").
				WithSymbol(name)
		}
		return true, nil

	default:
		return changed, dbkit.WithErr1(err, "AddRole").Err()
	}
}

// registerRoleName inserts a bare role row if the name is unknown.
func (s *Service) registerRoleName(ctx context.Context, name string) (bool, error) {
	exists, err := dbkit.Exists[RoleDefinition](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("name = ?", name)
	})
	if err != nil {
		return false, dbkit.WithErr1(err, "AddRole").Err()
	}
	if exists {
		return false, nil
	}

	position, err := nextPosition[RoleDefinition](ctx, s.db)
	if err != nil {
		return false, err
	}
	def := &RoleDefinition{Name: name, Position: position}
	result, ierr := s.db.NewInsert().Model(def).Exec(ctx)
	if err := dbkit.WithErr(result, ierr, "AddRole").Err(); err != nil {
		if dbkit.IsDuplicate(err) {
			return false, nil
		}
		return false, NewError(ErrDatabaseError, "failed to store role definition").
			WithGraph("role").
			WithSymbol(name)
	}
	return true, nil
}

// storeResourceDefinition mirrors storeRoleDefinition for resources.
func (s *Service) storeResourceDefinition(ctx context.Context, name string, parents []string) (bool, error) {
	changed := false

	for _, parent := range parents {
		registered, err := s.registerResourceName(ctx, parent)
		if err != nil {
			return changed, err
		}
		if registered {
			changed = true
		}
	}

	var existing ResourceDefinition
	err := s.db.NewSelect().Model(&existing).Where("name = ?", name).Limit(1).Scan(ctx)
	switch {
	case err == nil:
		merged, grew := mergeParents(existing.Parents, parents)
		if !grew {
			return changed, nil
		}
		existing.Parents = merged
		existing.UpdatedAt = time.Now()
		result, uerr := s.db.NewUpdate().Model(&existing).
			Column("parents", "updated_at").
			WherePK().
			Exec(ctx)
		if err := dbkit.WithErr(result, uerr, "AddResource").Err(); err != nil {
			return changed, NewError(ErrDatabaseError, "failed to update resource definition").
				WithGraph("resource").
				WithSymbol(name)
		}
		return true, nil

	case dbkit.IsNotFound(err):
		position, perr := nextPosition[ResourceDefinition](ctx, s.db)
		if perr != nil {
			return changed, perr
		}
		def := &ResourceDefinition{Name: name, Parents: parents, Position: position}
		result, ierr := s.db.NewInsert().Model(def).Exec(ctx)
		if err := dbkit.WithErr(result, ierr, "AddResource").Err(); err != nil {
			if dbkit.IsDuplicate(err) {
				return s.storeResourceDefinition(ctx, name, parents)
			}
			return changed, NewError(ErrDatabaseError, "failed to store resource definition").
				WithGraph("resource").
				WithSymbol(name)
		}
		return true, nil

	default:
		return changed, dbkit.WithErr1(err, "AddResource").Err()
	}
}

// registerResourceName inserts a bare resource row if the name is unknown.
func (s *Service) registerResourceName(ctx context.Context, name string) (bool, error) {
	exists, err := dbkit.Exists[ResourceDefinition](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("name = ?", name)
	})
	if err != nil {
		return false, dbkit.WithErr1(err, "AddResource").Err()
	}
	if exists {
		return false, nil
	}

	position, err := nextPosition[ResourceDefinition](ctx, s.db)
	if err != nil {
		return false, err
	}
	def := &ResourceDefinition{Name: name, Position: position}
	result, ierr := s.db.NewInsert().Model(def).Exec(ctx)
	if err := dbkit.WithErr(result, ierr, "AddResource").Err(); err != nil {
		if dbkit.IsDuplicate(err) {
			return false, nil
		}
		return false, NewError(ErrDatabaseError, "failed to store resource definition").
			WithGraph("resource").
			WithSymbol(name)
	}
	return true, nil
}

// mergeParents appends parents not already present, preserving order.
func mergeParents(existing, incoming []string) ([]string, bool) {
	merged := make([]string, len(existing))
	copy(merged, existing)
	grew := false
	for _, p := range incoming {
		found := false
		for _, e := range merged {
			if e == p {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, p)
			grew = true
		}
	}
	return merged, grew
}

// collapseSymbols merges repeated declarations of the same name into one,
// keeping first-seen order. The definition tables key symbols by name, so
// a document that declares a role twice must land as one row.
func collapseSymbols(symbols []SymbolData) []SymbolData {
	if len(symbols) == 0 {
		return nil
	}
	indexOf := make(map[string]int, len(symbols))
	out := make([]SymbolData, 0, len(symbols))
	for _, sd := range symbols {
		if i, ok := indexOf[sd.Name]; ok {
			merged, _ := mergeParents(out[i].Parents, sd.Parents)
			out[i].Parents = merged
			continue
		}
		indexOf[sd.Name] = len(out)
		out = append(out, SymbolData{Name: sd.Name, Parents: sd.Parents})
	}
	return out
}

// validateRuleAxes rejects empty names inside rule axis lists; "all" is
// said with an empty list or Wildcard, never with an empty string.
func validateRuleAxes(roles, resources, privileges []string) error {
	for _, axis := range [][]string{roles, resources, privileges} {
		for _, v := range axis {
			if v == "" {
				return NewError(ErrInvalidInput, "rule axis values must not be empty")
			}
		}
	}
	return nil
}
