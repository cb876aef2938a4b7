package aclkit

import (
	"fmt"
	"strings"
)

// Builder assembles an Acl: it registers roles and resources (with their
// parents), records allow/deny rules at any specificity, and produces an
// immutable Acl via Build. The zero-argument slices in Allow/Deny mean
// "all" on that axis.
//
// Builder methods are chainable; construction errors are deferred and
// surfaced by Build (or Err). A Builder is not safe for concurrent use.
//
// Example:
//
//	acl, err := aclkit.NewBuilder().
//	    AddRole("guest").
//	    AddRole("user", "guest").
//	    AddRole("admin", "user").
//	    AddResource("index").
//	    AddResource("blog", "index").
//	    Allow([]string{"guest"}, []string{"index"}, nil).
//	    Deny([]string{"guest"}, []string{"blog"}, []string{"delete"}).
//	    Build()
type Builder struct {
	roles     *SymbolGraph
	resources *SymbolGraph
	rules     *ResourceRoleRules
	err       error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		roles:     NewSymbolGraph(),
		resources: NewSymbolGraph(),
		rules:     newResourceRoleRules(),
	}
}

// BuilderFromAcl round-trips an existing Acl back into a mutable Builder
// by deep-cloning its graphs and rule table, enabling incremental
// extension of a previously built ACL.
func BuilderFromAcl(a *Acl) *Builder {
	return &Builder{
		roles:     a.roles.clone(),
		resources: a.resources.clone(),
		rules:     a.rules.clone(),
	}
}

// AddRole registers a role and, when parents are given, a child -> parent
// inheritance edge to each parent. Parents are auto-registered. Adding an
// existing role is a no-op. Empty names are rejected; "" is reserved for
// the wildcard slot.
func (b *Builder) AddRole(name string, parents ...string) *Builder {
	if b.err != nil {
		return b
	}
	if err := validateSymbols(name, parents); err != nil {
		b.err = err.WithGraph("role")
		return b
	}
	if err := b.roles.AddEdge(name, parents...); err != nil {
		b.err = err
	}
	return b
}

// AddResource registers a resource and, when parents are given, a
// child -> parent inheritance edge to each parent. Parents are
// auto-registered. Adding an existing resource is a no-op. Empty names are
// rejected; "" is reserved for the wildcard slot.
func (b *Builder) AddResource(name string, parents ...string) *Builder {
	if b.err != nil {
		return b
	}
	if err := validateSymbols(name, parents); err != nil {
		b.err = err.WithGraph("resource")
		return b
	}
	if err := b.resources.AddEdge(name, parents...); err != nil {
		b.err = err
	}
	return b
}

// Allow records an allow rule. A nil or empty slice means "all" on that
// axis; unknown role/resource names in a non-empty filter are silently
// dropped.
func (b *Builder) Allow(roles, resources, privileges []string) *Builder {
	b.addRule(RuleAllow, roles, resources, privileges)
	return b
}

// Deny records a deny rule with the same axis semantics as Allow.
func (b *Builder) Deny(roles, resources, privileges []string) *Builder {
	b.addRule(RuleDeny, roles, resources, privileges)
	return b
}

// Err returns the first deferred construction error, if any.
func (b *Builder) Err() error {
	return b.err
}

// Build validates and assembles the Acl. Any deferred construction error
// is returned first; then both hierarchies are checked for cycles and a
// detected cycle fails the build, identifying the offending cycle by name.
// The returned Acl is an independent snapshot: the Builder remains usable
// and later mutations do not affect ACLs already built.
func (b *Builder) Build() (*Acl, error) {
	if b.err != nil {
		return nil, b.err
	}

	acl := &Acl{
		roles:     b.roles.clone(),
		resources: b.resources.clone(),
		rules:     b.rules.clone(),
	}
	if err := acl.CheckForCycles(); err != nil {
		return nil, err
	}
	return acl, nil
}

// addRule writes one allow/deny declaration into the rule table. Wildcard
// writes clear the more specific entries they supersede so stale rules
// cannot shadow a broader declaration.
func (b *Builder) addRule(rule Rule, roles, resources, privileges []string) {
	if b.err != nil {
		return
	}

	allRoles := len(roles) == 0
	allResources := len(resources) == 0
	allPrivileges := len(privileges) == 0

	// Allow/deny everything: the whole table is replaced by a single rule.
	if allRoles && allResources && allPrivileges {
		b.rules = newResourceRoleRules()
		b.rules.forAllResources.forAllRoles.setAll(rule)
		return
	}

	roleTargets := []string{""}
	if !allRoles {
		roleTargets = resolveSymbols(b.roles, roles)
		if len(roleTargets) == 0 {
			// Every named role is unknown; nothing to write.
			return
		}
	}

	resourceTargets := []string{""}
	if !allResources {
		resourceTargets = resolveSymbols(b.resources, resources)
		if len(resourceTargets) == 0 {
			return
		}
	}

	// A wildcard write on both symbol axes supersedes every specific
	// entry: drop all per-resource entries and the catch-all's per-role
	// entries before writing into the wildcard slot.
	if allRoles && allResources {
		b.rules.clearAllResources()
		b.rules.forAllResources.clearAllRoles()
	}

	// A "for all resources" rule for specific roles must not be shadowed
	// by stale per-resource entries for those roles.
	if allResources && !allRoles {
		for _, res := range b.rules.ResourceIDs() {
			entry, _ := b.rules.GetResource(res)
			for _, role := range roleTargets {
				entry.clearRole(role)
			}
		}
	}

	for _, res := range resourceTargets {
		entry := b.rules.fetch(res)

		// A "for all roles" rule for a specific resource supersedes that
		// resource's role-specific entries.
		if allRoles && res != "" {
			entry.clearAllRoles()
		}

		for _, role := range roleTargets {
			pr := entry.fetchPrivilegeRules(role)
			if allPrivileges {
				pr.setAll(rule)
			} else {
				for _, privilege := range privileges {
					pr.set(privilege, rule)
				}
			}
		}
	}
}

// validateSymbols rejects empty names before they reach a graph: "" is
// reserved for the wildcard slot of the rule table and must never become
// a vertex.
func validateSymbols(name string, parents []string) *Error {
	if name == "" {
		return NewError(ErrInvalidInput, "symbol name must not be empty")
	}
	for _, parent := range parents {
		if parent == "" {
			return NewError(ErrInvalidInput,
				fmt.Sprintf("parent of %q must not be empty", name)).
				WithSymbol(name)
		}
	}
	return nil
}

// resolveSymbols keeps only the symbols registered in the graph.
func resolveSymbols(sg *SymbolGraph, symbols []string) []string {
	var out []string
	for _, s := range symbols {
		if sg.Contains(s) {
			out = append(out, s)
		}
	}
	return out
}

// cycleError builds the build-time validation error for one hierarchy.
func cycleError(graph string, cycle []string) error {
	return NewError(ErrCycleDetected,
		fmt.Sprintf("%s hierarchy contains a cycle: %s", graph, strings.Join(cycle, " -> "))).
		WithGraph(graph).
		WithCycle(cycle)
}
