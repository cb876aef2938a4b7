package aclkit

// Acl is the built access-control engine: a role hierarchy, a resource
// hierarchy, and the nested rule table. It is immutable after Build and
// safe to share across goroutines without locking; queries never mutate
// state. Mutation happens only through a Builder (see BuilderFromAcl for
// round-tripping).
type Acl struct {
	roles     *SymbolGraph
	resources *SymbolGraph
	rules     *ResourceRoleRules
}

// IsAllowed decides whether role may exercise privilege on resource.
// An empty string means "all" on that axis. The walk searches from
// specific toward general: the resource, its ancestors, then the wildcard
// slot form the outer order; at each resource level the role, its
// ancestors, then the wildcard slot form the inner order. The first pair
// holding a rule for the privilege (a privilege-specific entry, else that
// pair's configured for-all-privileges slot) decides. Nothing configured
// anywhere means deny.
//
// IsAllowed never fails: unknown names simply match no specific rule and
// fall through to the wildcard slots or the default deny.
func (a *Acl) IsAllowed(role, resource, privilege string) bool {
	resourceOrder := searchOrder(a.resources, resource)
	roleOrder := searchOrder(a.roles, role)

	for _, res := range resourceOrder {
		entry := a.rules.configuredRules(res)
		if entry == nil {
			continue
		}
		for _, rol := range roleOrder {
			pr := entry.configuredPrivilegeRules(rol)
			if pr == nil {
				continue
			}
			if rule, ok := pr.Lookup(privilege); ok {
				return rule == RuleAllow
			}
		}
	}
	return false
}

// IsAllowedAny reports whether any combination drawn from the given roles,
// resources and privileges is allowed. A nil or empty slice stands for the
// single wildcard query on that axis.
func (a *Acl) IsAllowedAny(roles, resources, privileges []string) bool {
	if len(roles) == 0 {
		roles = []string{""}
	}
	if len(resources) == 0 {
		resources = []string{""}
	}
	if len(privileges) == 0 {
		privileges = []string{""}
	}

	for _, role := range roles {
		for _, resource := range resources {
			for _, privilege := range privileges {
				if a.IsAllowed(role, resource, privilege) {
					return true
				}
			}
		}
	}
	return false
}

// HasRole reports whether the role is registered.
func (a *Acl) HasRole(role string) bool {
	return a.roles.Contains(role)
}

// HasResource reports whether the resource is registered.
func (a *Acl) HasResource(resource string) bool {
	return a.resources.Contains(resource)
}

// InheritsRole reports whether ancestor is role itself or one of its
// ancestors in the role hierarchy.
func (a *Acl) InheritsRole(role, ancestor string) bool {
	return a.roles.Inherits(role, ancestor)
}

// InheritsResource reports whether ancestor is resource itself or one of
// its ancestors in the resource hierarchy.
func (a *Acl) InheritsResource(resource, ancestor string) bool {
	return a.resources.Inherits(resource, ancestor)
}

// RoleCount returns the number of registered roles.
func (a *Acl) RoleCount() int {
	return a.roles.VertexCount()
}

// ResourceCount returns the number of registered resources.
func (a *Acl) ResourceCount() int {
	return a.resources.VertexCount()
}

// Roles returns all registered roles in registration order.
func (a *Acl) Roles() []string {
	return a.roles.Symbols()
}

// Resources returns all registered resources in registration order.
func (a *Acl) Resources() []string {
	return a.resources.Symbols()
}

// RoleParents returns the direct parents of a role.
func (a *Acl) RoleParents(role string) []string {
	return a.roles.Parents(role)
}

// ResourceParents returns the direct parents of a resource.
func (a *Acl) ResourceParents(resource string) []string {
	return a.resources.Parents(resource)
}

// CheckForCycles validates both hierarchies and returns an error naming
// the offending cycle if one exists. Build calls this; a successfully
// built Acl always passes.
func (a *Acl) CheckForCycles() error {
	if cycle := a.roles.FindCycle(); cycle != nil {
		return cycleError("role", cycle)
	}
	if cycle := a.resources.FindCycle(); cycle != nil {
		return cycleError("resource", cycle)
	}
	return nil
}

// searchOrder builds the specific-to-general walk for one hierarchy: the
// symbol and its ancestors in lineage order, then the wildcard slot. An
// empty or unknown symbol reduces to the wildcard slot alone.
func searchOrder(sg *SymbolGraph, symbol string) []string {
	if symbol == "" {
		return []string{""}
	}
	return append(sg.Lineage(symbol), "")
}
