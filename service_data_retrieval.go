package aclkit

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// ============================================================================
// DATA RETRIEVAL
// ============================================================================

// Stats summarizes the stored definitions.
type Stats struct {
	Roles     int `json:"roles"`
	Resources int `json:"resources"`
	Rules     int `json:"rules"`
}

// LoadData retrieves the stored definitions as a document. Symbols keep
// their declaration order; rules are grouped into allow entries and deny
// entries because that is the document shape, so ordering between the two
// effects is not preserved. Use LoadAcl when the exact stored sequence
// matters.
func (s *Service) LoadData(ctx context.Context) (*AclData, error) {
	roles, resources, rules, err := s.loadDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	data := &AclData{}
	for _, def := range roles {
		data.Roles = append(data.Roles, SymbolData{Name: def.Name, Parents: def.Parents})
	}
	for _, def := range resources {
		data.Resources = append(data.Resources, SymbolData{Name: def.Name, Parents: def.Parents})
	}
	for _, def := range rules {
		entry := RuleData{
			Roles:      def.Roles,
			Resources:  def.Resources,
			Privileges: def.Privileges,
		}
		switch Rule(def.Effect) {
		case RuleAllow:
			data.Allow = append(data.Allow, entry)
		case RuleDeny:
			data.Deny = append(data.Deny, entry)
		default:
			return nil, NewError(ErrInvalidData,
				fmt.Sprintf("stored rule has unknown effect %q", def.Effect))
		}
	}
	return data, nil
}

// LoadAcl rebuilds an Acl from the stored definitions by replaying them
// through a Builder in declaration order: every role, every resource, then
// every rule in the exact sequence the definition calls arrived. Rules
// naming symbols that were never declared drop out during resolution, the
// same way Builder rules do.
//
// Example:
//
//	acl, err := service.LoadAcl(ctx)
//	if err != nil {
//	    return err
//	}
//	allowed := acl.IsAllowed("editor", "blog", "update")
func (s *Service) LoadAcl(ctx context.Context) (*Acl, error) {
	roles, resources, rules, err := s.loadDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	b := NewBuilder()
	for _, def := range roles {
		b.AddRole(def.Name, def.Parents...)
	}
	for _, def := range resources {
		b.AddResource(def.Name, def.Parents...)
	}
	for _, def := range rules {
		switch Rule(def.Effect) {
		case RuleAllow:
			b.Allow(def.Roles, def.Resources, def.Privileges)
		case RuleDeny:
			b.Deny(def.Roles, def.Resources, def.Privileges)
		default:
			return nil, NewError(ErrInvalidData,
				fmt.Sprintf("stored rule has unknown effect %q", def.Effect))
		}
	}
	return b.Build()
}

// GetChecker rebuilds the Acl and binds a set of roles to it.
// The result can be stored in context for permission checks in handlers.
func (s *Service) GetChecker(ctx context.Context, roles ...string) (*Checker, error) {
	acl, err := s.LoadAcl(ctx)
	if err != nil {
		return nil, err
	}
	return acl.Checker(roles...), nil
}

// GetCheckerFromContext rebuilds the Acl and binds the roles carried by
// the context.
func (s *Service) GetCheckerFromContext(ctx context.Context) (*Checker, error) {
	roles := GetRoles(ctx)
	if len(roles) == 0 {
		return nil, ErrNoRoles
	}
	return s.GetChecker(ctx, roles...)
}

// Stats counts the stored definitions.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all := func(q *bun.SelectQuery) *bun.SelectQuery { return q }

	roles, err := dbkit.Count[RoleDefinition](ctx, s.db, all)
	if err != nil {
		return Stats{}, dbkit.WithErr1(err, "Stats").Err()
	}
	resources, err := dbkit.Count[ResourceDefinition](ctx, s.db, all)
	if err != nil {
		return Stats{}, dbkit.WithErr1(err, "Stats").Err()
	}
	rules, err := dbkit.Count[RuleDefinition](ctx, s.db, all)
	if err != nil {
		return Stats{}, dbkit.WithErr1(err, "Stats").Err()
	}

	return Stats{Roles: roles, Resources: resources, Rules: rules}, nil
}

// loadDefinitions fetches all three definition tables in position order.
func (s *Service) loadDefinitions(ctx context.Context) ([]RoleDefinition, []ResourceDefinition, []RuleDefinition, error) {
	var roles []RoleDefinition
	err := dbkit.WithErr1(s.db.NewSelect().Model(&roles).Order("position ASC").Scan(ctx), "LoadDefinitions").Err()
	if err != nil {
		return nil, nil, nil, err
	}

	var resources []ResourceDefinition
	err = dbkit.WithErr1(s.db.NewSelect().Model(&resources).Order("position ASC").Scan(ctx), "LoadDefinitions").Err()
	if err != nil {
		return nil, nil, nil, err
	}

	var rules []RuleDefinition
	err = dbkit.WithErr1(s.db.NewSelect().Model(&rules).Order("position ASC").Scan(ctx), "LoadDefinitions").Err()
	if err != nil {
		return nil, nil, nil, err
	}

	return roles, resources, rules, nil
}
