package aclkit

// Checker answers privilege questions for one fixed set of roles against
// one Acl. It is typically created once per request — resolve the caller's
// roles, bind them to the current engine, and pass the Checker along via
// the context helpers. A Checker is read-only and safe for concurrent use.
type Checker struct {
	acl   *Acl
	roles []string
}

// NewChecker binds a set of roles to an Acl.
func NewChecker(acl *Acl, roles ...string) *Checker {
	c := &Checker{acl: acl}
	if len(roles) > 0 {
		c.roles = make([]string, len(roles))
		copy(c.roles, roles)
	}
	return c
}

// Checker binds a set of roles to this Acl.
//
// Example:
//
//	checker := acl.Checker("editor", "reviewer")
func (a *Acl) Checker(roles ...string) *Checker {
	return NewChecker(a, roles...)
}

// Roles returns a copy of the bound role set.
func (c *Checker) Roles() []string {
	if len(c.roles) == 0 {
		return nil
	}
	out := make([]string, len(c.roles))
	copy(out, c.roles)
	return out
}

// HasRole checks if the exact role is in the bound set. Inheritance is
// not consulted; use InheritsRole for that.
func (c *Checker) HasRole(role string) bool {
	for _, r := range c.roles {
		if r == role {
			return true
		}
	}
	return false
}

// InheritsRole checks if any bound role is the given role or inherits
// from it.
//
// Example:
//
//	if checker.InheritsRole("user") {
//	    // caller is a user, or an admin, or anything else built on user
//	}
func (c *Checker) InheritsRole(ancestor string) bool {
	for _, r := range c.roles {
		if c.acl.InheritsRole(r, ancestor) {
			return true
		}
	}
	return false
}

// IsEmpty returns true if the checker carries no roles. An empty checker
// can still pass Can when a "for all roles" rule allows the privilege.
func (c *Checker) IsEmpty() bool {
	return len(c.roles) == 0
}

// Can checks if any bound role may exercise the privilege on the
// resource. With no bound roles only the wildcard role slot is consulted.
//
// Example:
//
//	if checker.Can("blog", "publish") {
//	    // caller may publish to the blog
//	}
func (c *Checker) Can(resource, privilege string) bool {
	return c.acl.IsAllowedAny(c.roles, []string{resource}, []string{privilege})
}

// CanAny checks if at least one of the privileges is allowed on the
// resource.
//
// Example:
//
//	if checker.CanAny("blog", "update", "publish") {
//	    // caller can change the blog in some way
//	}
func (c *Checker) CanAny(resource string, privileges ...string) bool {
	for _, p := range privileges {
		if c.Can(resource, p) {
			return true
		}
	}
	return false
}

// CanAll checks if every one of the privileges is allowed on the
// resource. Vacuously true for an empty privilege list.
func (c *Checker) CanAll(resource string, privileges ...string) bool {
	for _, p := range privileges {
		if !c.Can(resource, p) {
			return false
		}
	}
	return true
}
