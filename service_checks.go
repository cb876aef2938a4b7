package aclkit

import "context"

// ============================================================================
// PRIVILEGE CHECKING
// ============================================================================

// Can reports whether a role may exercise a privilege on a resource
// according to the stored definitions. The Acl is rebuilt for the call, so
// prefer LoadAcl or GetChecker when checking many queries.
//
// Example:
//
//	if service.Can(ctx, "editor", "blog", "update") {
//	    // Editor may update the blog
//	}
func (s *Service) Can(ctx context.Context, role, resource, privilege string) bool {
	acl, err := s.LoadAcl(ctx)
	if err != nil {
		return false
	}
	return acl.IsAllowed(role, resource, privilege)
}

// CanAny reports whether any combination drawn from the given roles,
// resources, and privileges resolves to allow. A nil slice means "all
// known values" on that axis.
//
// Example:
//
//	if service.CanAny(ctx, userRoles, []string{"blog"}, []string{"update"}) {
//	    // At least one of the user's roles may update the blog
//	}
func (s *Service) CanAny(ctx context.Context, roles, resources, privileges []string) bool {
	acl, err := s.LoadAcl(ctx)
	if err != nil {
		return false
	}
	return acl.IsAllowedAny(roles, resources, privileges)
}

// CanFromContext checks a single resource and privilege against the roles
// carried by the context. Returns false when the context has no roles.
func (s *Service) CanFromContext(ctx context.Context, resource, privilege string) bool {
	roles := GetRoles(ctx)
	if len(roles) == 0 {
		return false
	}
	return s.CanAny(ctx, roles, []string{resource}, []string{privilege})
}
