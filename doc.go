// Package aclkit provides a hierarchical access control list engine with
// allow/deny rules, wildcards, and optional database-backed definitions.
//
// ACLKit models authorization as two directed acyclic graphs - one of roles,
// one of resources - plus a rule table keyed by (resource, role, privilege).
// Queries walk both hierarchies from the most specific pair outward and the
// most specific rule wins; anything left unmatched is denied.
//
// # Core Concepts
//
// Role: a named actor class. Roles inherit from any number of parent roles;
// a child is consulted before its parents, so "editor" can tighten or relax
// what it inherits from "user".
//
// Resource: a named thing being protected. Resources form their own parent
// hierarchy, independent of roles. A rule on "cms" covers "blog" when
// "blog" declares "cms" as a parent.
//
// Privilege: a free-form verb such as "read", "update", or "publish".
// Privileges have no hierarchy; a rule either names privileges or covers
// all of them.
//
// Rule: an allow or deny verdict attached to a (resource, role) pair,
// either for named privileges or for every privilege. Omitting an axis -
// roles, resources, or privileges - applies the rule to all values of that
// axis.
//
// # Key Features
//
//   - Deny by default: only an explicit allow grants access
//   - Most-specific wins: child rules override parent rules, privilege
//     rules override all-privilege rules
//   - Multiple inheritance: roles and resources may declare several parents,
//     consulted in a deterministic registration order
//   - Wildcard axes: a rule can cover all roles, all resources, or all
//     privileges at once
//   - Cycle detection: Build rejects hierarchies with inheritance loops and
//     reports the offending path
//   - Document form: declarations round-trip through JSON or YAML
//   - Database-backed definitions with audit logging via dbkit
//
// # Basic Usage
//
//	acl, err := aclkit.NewBuilder().
//	    AddRole("guest").
//	    AddRole("user", "guest").
//	    AddRole("admin", "user").
//	    AddResource("index").
//	    AddResource("blog", "index").
//	    Allow([]string{"guest"}, []string{"index"}, []string{"read"}).
//	    Allow([]string{"user"}, []string{"blog"}, []string{"read", "comment"}).
//	    Allow([]string{"admin"}, nil, nil). // admin may do anything
//	    Deny([]string{"user"}, []string{"blog"}, []string{"publish"}).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	acl.IsAllowed("guest", "blog", "read")   // true, inherited from index
//	acl.IsAllowed("user", "blog", "publish") // false, denied explicitly
//	acl.IsAllowed("admin", "index", "write") // true, admin allows everything
//
// # Documents
//
// Declarations load from and export to a document form:
//
//	data, err := aclkit.DataFromYAML(raw)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	acl, err := aclkit.AclFromData(data)
//
// # Middleware Usage
//
//	mw := aclkit.NewMiddleware(aclkit.StaticAcl(acl))
//
//	mux.Handle("POST /blog/{resource}/publish",
//	    mw.RequirePrivilege("publish", aclkit.ResourceFromParam("resource"))(publishHandler))
//
//	mux.Handle("GET /api/{resource}",
//	    mw.RequireMethodPrivilege(aclkit.ResourceFromParam("resource"))(apiHandler))
//
// Roles reach the middleware through the request context, normally placed
// there by the authentication layer via WithRoles.
//
// # Persistence
//
// Definitions can live in PostgreSQL through a Service backed by dbkit:
//
//	db, err := dbkit.New(dbkit.Config{URL: databaseURL})
//	service := aclkit.NewService(db)
//	db.Migrate(ctx, aclkit.NewMigrationService(service).Migrations())
//
//	ctx = aclkit.WithActorID(ctx, adminID)
//	service.AddRole(ctx, "editor", "user")
//	service.Allow(ctx, []string{"editor"}, []string{"blog"}, []string{"update"})
//
//	acl, err := service.LoadAcl(ctx)
//
// # Audit Log
//
// Every definition change is recorded with:
//   - Actor (who made the change)
//   - Action (role_added, resource_added, rule_added, data_replaced)
//   - The declared names, parents, effect, and axes
//   - Timestamp
//   - Request metadata (IP, user agent, request ID)
package aclkit
