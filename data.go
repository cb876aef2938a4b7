package aclkit

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"
)

// Wildcard is the axis value AclData documents use to say "all". Inside
// the engine the same thing is said with a nil or empty slice; the two
// spellings are interchangeable at this boundary.
const Wildcard = "*"

// SymbolData declares one role or resource and its direct parents.
type SymbolData struct {
	Name    string   `json:"name" yaml:"name"`
	Parents []string `json:"parents,omitempty" yaml:"parents,omitempty"`
}

// RuleData declares one allow or deny entry. An absent axis, or an axis
// containing Wildcard, applies the entry to everything on that axis.
type RuleData struct {
	Roles      []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	Resources  []string `json:"resources,omitempty" yaml:"resources,omitempty"`
	Privileges []string `json:"privileges,omitempty" yaml:"privileges,omitempty"`
}

// AclData is the declarative exchange format for an Acl: the roles and
// resources with their parents, followed by allow and deny rule entries.
// Replay order is fixed by the format: roles, resources, every allow
// entry in order, then every deny entry in order.
type AclData struct {
	Roles     []SymbolData `json:"roles,omitempty" yaml:"roles,omitempty"`
	Resources []SymbolData `json:"resources,omitempty" yaml:"resources,omitempty"`
	Allow     []RuleData   `json:"allow,omitempty" yaml:"allow,omitempty"`
	Deny      []RuleData   `json:"deny,omitempty" yaml:"deny,omitempty"`
}

// DataFromJSON parses an AclData document from JSON.
func DataFromJSON(data []byte) (*AclData, error) {
	var d AclData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, NewError(ErrInvalidData, fmt.Sprintf("parsing json: %v", err))
	}
	return &d, nil
}

// DataFromYAML parses an AclData document from YAML.
func DataFromYAML(data []byte) (*AclData, error) {
	var d AclData
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, NewError(ErrInvalidData, fmt.Sprintf("parsing yaml: %v", err))
	}
	return &d, nil
}

// JSON renders the document as indented JSON.
func (d *AclData) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, NewError(ErrInvalidData, fmt.Sprintf("encoding json: %v", err))
	}
	return out, nil
}

// YAML renders the document as YAML.
func (d *AclData) YAML() ([]byte, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return nil, NewError(ErrInvalidData, fmt.Sprintf("encoding yaml: %v", err))
	}
	return out, nil
}

// Validate checks the document shape: every declared role and resource
// needs a non-empty name, Wildcard is not a declarable name, and parents
// must be real names too.
func (d *AclData) Validate() error {
	if err := validateSymbolData("role", d.Roles); err != nil {
		return err
	}
	return validateSymbolData("resource", d.Resources)
}

func validateSymbolData(graph string, symbols []SymbolData) error {
	for _, s := range symbols {
		if s.Name == "" {
			return NewError(ErrInvalidData,
				fmt.Sprintf("%s name must not be empty", graph)).
				WithGraph(graph)
		}
		if s.Name == Wildcard {
			return NewError(ErrInvalidData,
				fmt.Sprintf("%q is not a declarable %s name", Wildcard, graph)).
				WithGraph(graph).
				WithSymbol(s.Name)
		}
		for _, p := range s.Parents {
			if p == "" || p == Wildcard {
				return NewError(ErrInvalidData,
					fmt.Sprintf("invalid parent %q for %s %q", p, graph, s.Name)).
					WithGraph(graph).
					WithSymbol(s.Name)
			}
		}
	}
	return nil
}

// BuilderFromData replays a document into a Builder: roles and resources
// are registered first, then the allow entries, then the deny entries,
// each in declaration order. The Builder stays mutable, so a document can
// seed an ACL that is then extended in code before Build.
func BuilderFromData(d *AclData) (*Builder, error) {
	if d == nil {
		return nil, NewError(ErrInvalidData, "nil acl data")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	b := NewBuilder()
	for _, s := range d.Roles {
		b.AddRole(s.Name, s.Parents...)
	}
	for _, s := range d.Resources {
		b.AddResource(s.Name, s.Parents...)
	}
	for _, e := range d.Allow {
		b.Allow(normalizeAxis(e.Roles), normalizeAxis(e.Resources), normalizeAxis(e.Privileges))
	}
	for _, e := range d.Deny {
		b.Deny(normalizeAxis(e.Roles), normalizeAxis(e.Resources), normalizeAxis(e.Privileges))
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// AclFromData builds an Acl straight from a document.
func AclFromData(d *AclData) (*Acl, error) {
	b, err := BuilderFromData(d)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// AclFromJSON parses a JSON document and builds the Acl in one step.
func AclFromJSON(data []byte) (*Acl, error) {
	d, err := DataFromJSON(data)
	if err != nil {
		return nil, err
	}
	return AclFromData(d)
}

// AclFromYAML parses a YAML document and builds the Acl in one step.
func AclFromYAML(data []byte) (*Acl, error) {
	d, err := DataFromYAML(data)
	if err != nil {
		return nil, err
	}
	return AclFromData(d)
}

// normalizeAxis maps the document's "all" spellings onto the engine's:
// an empty list or any occurrence of Wildcard collapses to nil.
func normalizeAxis(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	for _, v := range values {
		if v == Wildcard {
			return nil
		}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Data exports the current definitions back into a document. Roles and
// resources appear in registration order; rule entries are emitted from
// broad to specific within each effect list, wildcard slots first, so
// that replaying the document rebuilds the same rule table.
//
// The format replays allow entries before deny entries. Rule tables that
// no document can produce under that order (an allow written into a slot
// more specific than a deny wildcard at the same coordinate) export only
// what the table still holds; documents round-trip exactly.
func (a *Acl) Data() *AclData {
	d := &AclData{}

	for _, name := range a.roles.Symbols() {
		d.Roles = append(d.Roles, SymbolData{Name: name, Parents: a.roles.Parents(name)})
	}
	for _, name := range a.resources.Symbols() {
		d.Resources = append(d.Resources, SymbolData{Name: name, Parents: a.resources.Parents(name)})
	}

	appendEntry := func(effect Rule, e RuleData) {
		if effect == RuleAllow {
			d.Allow = append(d.Allow, e)
		} else {
			d.Deny = append(d.Deny, e)
		}
	}

	// emitPair writes one (resource, role) pair: its for-all-privileges
	// slot first, then the per-privilege entries grouped by effect.
	emitPair := func(roles, resources []string, pr *PrivilegeRules) {
		if r, ok := pr.ForAllPrivileges(); ok {
			appendEntry(r, RuleData{Roles: roles, Resources: resources})
		}
		var allows, denies []string
		for _, p := range pr.PrivilegeIDs() {
			r, _ := pr.GetPrivilege(p)
			if r == RuleAllow {
				allows = append(allows, p)
			} else {
				denies = append(denies, p)
			}
		}
		if len(allows) > 0 {
			appendEntry(RuleAllow, RuleData{Roles: roles, Resources: resources, Privileges: allows})
		}
		if len(denies) > 0 {
			appendEntry(RuleDeny, RuleData{Roles: roles, Resources: resources, Privileges: denies})
		}
	}

	emitResourceLevel := func(resources []string, rr *RolePrivilegeRules) {
		emitPair(nil, resources, rr.ForAllRoles())
		for _, role := range rr.RoleIDs() {
			pr, _ := rr.GetRole(role)
			emitPair([]string{role}, resources, pr)
		}
	}

	emitResourceLevel(nil, a.rules.ForAllResources())
	for _, res := range a.rules.ResourceIDs() {
		rr, _ := a.rules.GetResource(res)
		emitResourceLevel([]string{res}, rr)
	}

	return d
}
