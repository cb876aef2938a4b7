package aclkit

import (
	"errors"
	"fmt"
	"net/http"
)

// AclSource supplies the Acl a middleware consults. Returning the current
// engine from a source lets an application swap in a freshly built Acl
// (after definition changes) without recreating its middleware.
type AclSource func() *Acl

// StaticAcl wraps a fixed Acl as an AclSource.
func StaticAcl(acl *Acl) AclSource {
	return func() *Acl { return acl }
}

// Middleware provides HTTP middleware for privilege checking.
type Middleware struct {
	source           AclSource
	getRoles         func(*http.Request) []string
	getActorID       func(*http.Request) string
	errorHandler     func(http.ResponseWriter, *http.Request, error)
	methodPrivileges map[string]string
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := aclkit.NewMiddleware(aclkit.StaticAcl(acl),
//	    aclkit.WithRolesExtractor(func(r *http.Request) []string {
//	        return rolesFromToken(r)
//	    }),
//	)
func NewMiddleware(source AclSource, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		source:           source,
		getRoles:         defaultGetRoles,
		getActorID:       defaultGetActorID,
		errorHandler:     defaultErrorHandler,
		methodPrivileges: defaultMethodPrivileges(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithRolesExtractor sets a custom function to extract the caller's roles
// from a request.
func WithRolesExtractor(fn func(*http.Request) []string) MiddlewareOption {
	return func(m *Middleware) {
		m.getRoles = fn
	}
}

// WithActorIDExtractor sets a custom function to extract the acting
// identity from a request, used by InjectAuditContext.
func WithActorIDExtractor(fn func(*http.Request) string) MiddlewareOption {
	return func(m *Middleware) {
		m.getActorID = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

// WithMethodPrivileges replaces the HTTP method to privilege mapping used
// by RequireMethodPrivilege.
func WithMethodPrivileges(mapping map[string]string) MiddlewareOption {
	return func(m *Middleware) {
		m.methodPrivileges = mapping
	}
}

func defaultGetRoles(r *http.Request) []string {
	return GetRoles(r.Context())
}

func defaultGetActorID(r *http.Request) string {
	return GetActorID(r.Context())
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	if IsPermissionDenied(err) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if errors.Is(err, ErrNoRoles) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if IsInvalidInput(err) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// defaultMethodPrivileges is the conventional CRUD mapping.
func defaultMethodPrivileges() map[string]string {
	return map[string]string{
		http.MethodGet:    "read",
		http.MethodHead:   "read",
		http.MethodPost:   "create",
		http.MethodPut:    "update",
		http.MethodPatch:  "update",
		http.MethodDelete: "delete",
	}
}

// ResourceExtractor extracts the resource name from an HTTP request.
type ResourceExtractor func(*http.Request) (string, error)

// ResourceFromParam creates a ResourceExtractor that reads the resource
// from URL parameters. Compatible with chi, gorilla/mux, and standard
// library patterns.
//
// Example:
//
//	// For route /content/{section}
//	mw.RequirePrivilege("read", aclkit.ResourceFromParam("section"))
func ResourceFromParam(paramName string) ResourceExtractor {
	return func(r *http.Request) (string, error) {
		// Try chi/go-chi style
		resource := r.PathValue(paramName)
		if resource == "" {
			// Try context (set by router middleware)
			if v := r.Context().Value(paramName); v != nil {
				if s, ok := v.(string); ok {
					resource = s
				}
			}
		}
		if resource == "" {
			return "", NewError(ErrInvalidInput, "resource not found in request").
				WithGraph("resource")
		}
		return resource, nil
	}
}

// ResourceFromQuery creates a ResourceExtractor that reads the resource
// from query parameters.
//
// Example:
//
//	// For route /api/pages?section=blog
//	mw.RequirePrivilege("read", aclkit.ResourceFromQuery("section"))
func ResourceFromQuery(queryParam string) ResourceExtractor {
	return func(r *http.Request) (string, error) {
		resource := r.URL.Query().Get(queryParam)
		if resource == "" {
			return "", NewError(ErrInvalidInput, "resource not found in query").
				WithGraph("resource")
		}
		return resource, nil
	}
}

// ResourceFromHeader creates a ResourceExtractor that reads the resource
// from a header.
//
// Example:
//
//	// For header X-Resource: blog
//	mw.RequirePrivilege("update", aclkit.ResourceFromHeader("X-Resource"))
func ResourceFromHeader(headerName string) ResourceExtractor {
	return func(r *http.Request) (string, error) {
		resource := r.Header.Get(headerName)
		if resource == "" {
			return "", NewError(ErrInvalidInput, "resource not found in header").
				WithGraph("resource")
		}
		return resource, nil
	}
}

// ResourceFromContext creates a ResourceExtractor that reads the resource
// from context values.
//
// Example:
//
//	mw.RequirePrivilege("read", aclkit.ResourceFromContext("section"))
func ResourceFromContext(contextKey string) ResourceExtractor {
	return func(r *http.Request) (string, error) {
		if v := r.Context().Value(contextKey); v != nil {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
		return "", NewError(ErrInvalidInput, "resource not found in context").
			WithGraph("resource")
	}
}

// StaticResource creates a ResourceExtractor that always returns the same
// resource. Useful for fixed endpoints.
//
// Example:
//
//	mw.RequirePrivilege("publish", aclkit.StaticResource("blog"))
func StaticResource(resource string) ResourceExtractor {
	return func(r *http.Request) (string, error) {
		return resource, nil
	}
}

// RequirePrivilege creates middleware that requires a privilege on the
// extracted resource for any of the caller's roles.
//
// Example:
//
//	router.With(mw.RequirePrivilege("publish", aclkit.ResourceFromParam("section"))).
//	    Post("/content/{section}", publishHandler)
func (m *Middleware) RequirePrivilege(privilege string, extractor ResourceExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			roles := m.getRoles(r)
			if len(roles) == 0 {
				m.errorHandler(w, r, ErrNoRoles)
				return
			}

			resource, err := extractor(r)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}

			acl := m.source()
			if acl == nil {
				m.errorHandler(w, r, ErrNoAcl)
				return
			}

			if !acl.IsAllowedAny(roles, []string{resource}, []string{privilege}) {
				m.errorHandler(w, r, NewError(ErrPermissionDenied, "missing required privilege").
					WithResource(resource).
					WithPrivilege(privilege).
					WithRoles(roles))
				return
			}

			// Add checker to context for use in handlers
			ctx = WithChecker(ctx, NewChecker(acl, roles...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAnyPrivilege creates middleware that requires any of the
// privileges on the extracted resource.
//
// Example:
//
//	router.With(mw.RequireAnyPrivilege([]string{"update", "publish"}, extractor)).
//	    Put("/content/{section}", editHandler)
func (m *Middleware) RequireAnyPrivilege(privileges []string, extractor ResourceExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			roles := m.getRoles(r)
			if len(roles) == 0 {
				m.errorHandler(w, r, ErrNoRoles)
				return
			}

			resource, err := extractor(r)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}

			acl := m.source()
			if acl == nil {
				m.errorHandler(w, r, ErrNoAcl)
				return
			}

			if !acl.IsAllowedAny(roles, []string{resource}, privileges) {
				m.errorHandler(w, r, NewError(ErrPermissionDenied, "missing required privilege").
					WithResource(resource).
					WithRoles(roles))
				return
			}

			ctx = WithChecker(ctx, NewChecker(acl, roles...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireMethodPrivilege creates middleware that maps the HTTP method to a
// privilege (GET/HEAD read, POST create, PUT/PATCH update, DELETE delete
// by default) and requires it on the extracted resource. The mapping is
// replaceable via WithMethodPrivileges.
//
// Example:
//
//	router.Use(mw.RequireMethodPrivilege(aclkit.ResourceFromParam("section")))
func (m *Middleware) RequireMethodPrivilege(extractor ResourceExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			privilege, ok := m.methodPrivileges[r.Method]
			if !ok {
				m.errorHandler(w, r, NewError(ErrInvalidInput,
					fmt.Sprintf("no privilege mapped for method %s", r.Method)))
				return
			}
			m.RequirePrivilege(privilege, extractor)(next).ServeHTTP(w, r)
		})
	}
}

// LoadChecker creates middleware that binds the caller's roles to the
// current Acl and stores the resulting Checker in context. Use this when
// you want to decide in the handler rather than in middleware.
//
// Example:
//
//	router.With(mw.LoadChecker()).Get("/dashboard", dashboardHandler)
//
//	func dashboardHandler(w http.ResponseWriter, r *http.Request) {
//	    checker := aclkit.FromContext(r.Context())
//	    if checker != nil && checker.Can("settings", "update") {
//	        // Show admin features
//	    }
//	}
func (m *Middleware) LoadChecker() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			roles := m.getRoles(r)
			acl := m.source()
			if acl == nil || len(roles) == 0 {
				// Nothing to bind, continue without checker
				next.ServeHTTP(w, r)
				return
			}

			ctx = WithChecker(ctx, NewChecker(acl, roles...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// InjectAuditContext creates middleware that extracts audit information
// from the request and adds it to the context for use in definition
// change operations.
//
// Example:
//
//	router.Use(mw.InjectAuditContext())
func (m *Middleware) InjectAuditContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Extract IP address
			ip := r.Header.Get("X-Forwarded-For")
			if ip == "" {
				ip = r.Header.Get("X-Real-IP")
			}
			if ip == "" {
				ip = r.RemoteAddr
			}
			ctx = WithIPAddress(ctx, ip)

			// Extract User Agent
			ctx = WithUserAgent(ctx, r.UserAgent())

			// Extract Request ID (commonly set by other middleware)
			requestID := r.Header.Get("X-Request-ID")
			if requestID != "" {
				ctx = WithRequestID(ctx, requestID)
			}

			// Record the acting identity if one is available
			if actorID := m.getActorID(r); actorID != "" {
				ctx = WithActorID(ctx, actorID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
