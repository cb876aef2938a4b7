package aclkit

import "sort"

// Rule is the effect attached to a rule coordinate: allow or deny.
// The zero value means "no rule" and is never returned by a successful
// lookup.
type Rule string

const (
	RuleAllow Rule = "allow"
	RuleDeny  Rule = "deny"
)

// Valid reports whether the rule is one of the two declared effects.
func (r Rule) Valid() bool {
	return r == RuleAllow || r == RuleDeny
}

// RuleContextScope describes which slot a rule write targeted: the
// "for all symbols" fallback slot or one or more per-symbol entries.
type RuleContextScope string

const (
	ScopeForAllSymbols RuleContextScope = "for_all_symbols"
	ScopePerSymbol     RuleContextScope = "per_symbol"
)

// ============================================================================
// PRIVILEGE LEVEL
// ============================================================================

// PrivilegeRules is the rule set for one fixed (resource, role) pair: a
// "for all privileges" fallback slot plus optional per-privilege entries.
// Per-privilege entries take precedence over the fallback slot.
type PrivilegeRules struct {
	forAll        Rule
	byPrivilegeID map[string]Rule
}

func newPrivilegeRules() *PrivilegeRules {
	return &PrivilegeRules{}
}

// ForAllPrivileges returns the fallback rule for this pair and whether it
// was explicitly configured.
func (pr *PrivilegeRules) ForAllPrivileges() (Rule, bool) {
	return pr.forAll, pr.forAll != ""
}

// GetPrivilege returns the per-privilege entry, if one exists.
func (pr *PrivilegeRules) GetPrivilege(privilege string) (Rule, bool) {
	r, ok := pr.byPrivilegeID[privilege]
	return r, ok
}

// PrivilegeIDs returns the privileges with specific entries, sorted.
func (pr *PrivilegeRules) PrivilegeIDs() []string {
	if len(pr.byPrivilegeID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(pr.byPrivilegeID))
	for id := range pr.byPrivilegeID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup resolves a privilege against this pair: the per-privilege entry
// when present, otherwise the configured fallback slot. A "" privilege
// consults only the fallback slot. The second return is false when the pair
// holds no applicable rule, in which case resolution continues elsewhere.
func (pr *PrivilegeRules) Lookup(privilege string) (Rule, bool) {
	if privilege != "" {
		if r, ok := pr.byPrivilegeID[privilege]; ok {
			return r, true
		}
	}
	if pr.forAll != "" {
		return pr.forAll, true
	}
	return "", false
}

// setAll sets the fallback slot and clears all per-privilege entries.
func (pr *PrivilegeRules) setAll(rule Rule) {
	pr.forAll = rule
	pr.byPrivilegeID = nil
}

// set writes one per-privilege entry, leaving the fallback slot untouched.
func (pr *PrivilegeRules) set(privilege string, rule Rule) {
	if pr.byPrivilegeID == nil {
		pr.byPrivilegeID = make(map[string]Rule)
	}
	pr.byPrivilegeID[privilege] = rule
}

func (pr *PrivilegeRules) clone() *PrivilegeRules {
	c := &PrivilegeRules{forAll: pr.forAll}
	if pr.byPrivilegeID != nil {
		c.byPrivilegeID = make(map[string]Rule, len(pr.byPrivilegeID))
		for id, r := range pr.byPrivilegeID {
			c.byPrivilegeID[id] = r
		}
	}
	return c
}

// ============================================================================
// ROLE LEVEL
// ============================================================================

// RolePrivilegeRules is the rule set for one fixed resource across all
// roles: a "for all roles" fallback plus optional per-role entries.
type RolePrivilegeRules struct {
	forAllRoles *PrivilegeRules
	byRoleID    map[string]*PrivilegeRules
}

func newRolePrivilegeRules() *RolePrivilegeRules {
	return &RolePrivilegeRules{forAllRoles: newPrivilegeRules()}
}

// ForAllRoles returns the fallback privilege rules applying to all roles.
func (rr *RolePrivilegeRules) ForAllRoles() *PrivilegeRules {
	return rr.forAllRoles
}

// GetRole returns the per-role entry, if one exists.
func (rr *RolePrivilegeRules) GetRole(role string) (*PrivilegeRules, bool) {
	pr, ok := rr.byRoleID[role]
	return pr, ok
}

// RoleIDs returns the roles with specific entries, sorted.
func (rr *RolePrivilegeRules) RoleIDs() []string {
	if len(rr.byRoleID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(rr.byRoleID))
	for id := range rr.byRoleID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetPrivilegeRules returns the role-specific entry when role is non-empty
// and present, otherwise the "for all roles" fallback slot.
func (rr *RolePrivilegeRules) GetPrivilegeRules(role string) *PrivilegeRules {
	if role != "" {
		if pr, ok := rr.byRoleID[role]; ok {
			return pr
		}
	}
	return rr.forAllRoles
}

// configuredPrivilegeRules returns the entry resolution should consult for
// a role level, or nil when that level was never configured: the per-role
// entry for a named role, the fallback slot for the "" wildcard level.
func (rr *RolePrivilegeRules) configuredPrivilegeRules(role string) *PrivilegeRules {
	if role == "" {
		return rr.forAllRoles
	}
	return rr.byRoleID[role]
}

// fetchPrivilegeRules returns the slot for a role, creating a per-role
// entry when needed. A "" role addresses the fallback slot.
func (rr *RolePrivilegeRules) fetchPrivilegeRules(role string) *PrivilegeRules {
	if role == "" {
		return rr.forAllRoles
	}
	if pr, ok := rr.byRoleID[role]; ok {
		return pr
	}
	pr := newPrivilegeRules()
	if rr.byRoleID == nil {
		rr.byRoleID = make(map[string]*PrivilegeRules)
	}
	rr.byRoleID[role] = pr
	return pr
}

// setPrivilegeRules writes rules at this level. With no role ids the
// fallback slot is replaced (reset to empty when rules is nil); with role
// ids every listed role receives its own copy. The returned scope tag
// reports which branch fired.
func (rr *RolePrivilegeRules) setPrivilegeRules(roleIDs []string, rules *PrivilegeRules) RuleContextScope {
	if len(roleIDs) == 0 {
		if rules == nil {
			rules = newPrivilegeRules()
		}
		rr.forAllRoles = rules
		return ScopeForAllSymbols
	}

	if rr.byRoleID == nil {
		rr.byRoleID = make(map[string]*PrivilegeRules)
	}
	for _, id := range roleIDs {
		if rules == nil {
			rr.byRoleID[id] = newPrivilegeRules()
		} else {
			rr.byRoleID[id] = rules.clone()
		}
	}
	return ScopePerSymbol
}

// clearRole removes the per-role entry for one role.
func (rr *RolePrivilegeRules) clearRole(role string) {
	delete(rr.byRoleID, role)
}

// clearAllRoles drops every per-role entry.
func (rr *RolePrivilegeRules) clearAllRoles() {
	rr.byRoleID = nil
}

func (rr *RolePrivilegeRules) clone() *RolePrivilegeRules {
	c := &RolePrivilegeRules{forAllRoles: rr.forAllRoles.clone()}
	if rr.byRoleID != nil {
		c.byRoleID = make(map[string]*PrivilegeRules, len(rr.byRoleID))
		for id, pr := range rr.byRoleID {
			c.byRoleID[id] = pr.clone()
		}
	}
	return c
}

// ============================================================================
// RESOURCE LEVEL
// ============================================================================

// ResourceRoleRules is the top-level rule table: one entry per resource
// plus a "for all resources" catch-all.
type ResourceRoleRules struct {
	forAllResources *RolePrivilegeRules
	byResourceID    map[string]*RolePrivilegeRules
}

func newResourceRoleRules() *ResourceRoleRules {
	return &ResourceRoleRules{
		forAllResources: newRolePrivilegeRules(),
		byResourceID:    make(map[string]*RolePrivilegeRules),
	}
}

// ForAllResources returns the catch-all entry applying to all resources.
func (t *ResourceRoleRules) ForAllResources() *RolePrivilegeRules {
	return t.forAllResources
}

// GetResource returns the per-resource entry, if one exists.
func (t *ResourceRoleRules) GetResource(resource string) (*RolePrivilegeRules, bool) {
	rr, ok := t.byResourceID[resource]
	return rr, ok
}

// ResourceIDs returns the resources with specific entries, sorted.
func (t *ResourceRoleRules) ResourceIDs() []string {
	if len(t.byResourceID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(t.byResourceID))
	for id := range t.byResourceID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the resource-specific entry when resource is non-empty and
// present, otherwise the "for all resources" catch-all.
func (t *ResourceRoleRules) Get(resource string) *RolePrivilegeRules {
	if resource != "" {
		if rr, ok := t.byResourceID[resource]; ok {
			return rr
		}
	}
	return t.forAllResources
}

// configuredRules returns the entry resolution should consult for a
// resource level, or nil when that level was never configured.
func (t *ResourceRoleRules) configuredRules(resource string) *RolePrivilegeRules {
	if resource == "" {
		return t.forAllResources
	}
	return t.byResourceID[resource]
}

// fetch returns the slot for a resource, creating a per-resource entry
// when needed. A "" resource addresses the catch-all slot.
func (t *ResourceRoleRules) fetch(resource string) *RolePrivilegeRules {
	if resource == "" {
		return t.forAllResources
	}
	if rr, ok := t.byResourceID[resource]; ok {
		return rr
	}
	rr := newRolePrivilegeRules()
	t.byResourceID[resource] = rr
	return rr
}

// setRolePrivilegeRules mirrors setPrivilegeRules at the resource level.
func (t *ResourceRoleRules) setRolePrivilegeRules(resourceIDs []string, rules *RolePrivilegeRules) RuleContextScope {
	if len(resourceIDs) == 0 {
		if rules == nil {
			rules = newRolePrivilegeRules()
		}
		t.forAllResources = rules
		return ScopeForAllSymbols
	}

	for _, id := range resourceIDs {
		if rules == nil {
			t.byResourceID[id] = newRolePrivilegeRules()
		} else {
			t.byResourceID[id] = rules.clone()
		}
	}
	return ScopePerSymbol
}

// clearAllResources drops every per-resource entry.
func (t *ResourceRoleRules) clearAllResources() {
	t.byResourceID = make(map[string]*RolePrivilegeRules)
}

func (t *ResourceRoleRules) clone() *ResourceRoleRules {
	c := &ResourceRoleRules{
		forAllResources: t.forAllResources.clone(),
		byResourceID:    make(map[string]*RolePrivilegeRules, len(t.byResourceID)),
	}
	for id, rr := range t.byResourceID {
		c.byResourceID[id] = rr.clone()
	}
	return c
}
