package aclkit

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for ACLKit operations.
var (
	// ErrInvalidVertex is returned when a graph operation references a vertex
	// outside the graph's current range.
	ErrInvalidVertex = errors.New("aclkit: invalid vertex")

	// ErrCycleDetected is returned by Build when a role or resource hierarchy
	// contains a cycle.
	ErrCycleDetected = errors.New("aclkit: cycle detected")

	// ErrInvalidData is returned when an AclData document cannot be parsed or
	// has an invalid shape.
	ErrInvalidData = errors.New("aclkit: invalid acl data")

	// ErrInvalidInput is returned when a caller provides unusable input, such
	// as an empty symbol name.
	ErrInvalidInput = errors.New("aclkit: invalid input")

	// ErrPermissionDenied is returned when a request lacks the required
	// privilege on a resource.
	ErrPermissionDenied = errors.New("aclkit: permission denied")

	// ErrNoRoles is returned when no roles could be resolved for a request.
	ErrNoRoles = errors.New("aclkit: no roles in context")

	// ErrNoAcl is returned when an ACL source has no engine to offer.
	ErrNoAcl = errors.New("aclkit: no acl available")

	// ErrNoActorID is returned when a definition change is attempted without
	// an actor ID in the context. Every definition change is audited.
	ErrNoActorID = errors.New("aclkit: no actor ID in context")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("aclkit: database error")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	Err         error    // Underlying sentinel error
	Message     string   // Additional context
	Graph       string   // Which hierarchy was involved: "role" or "resource"
	Symbol      string   // Symbol involved (if applicable)
	Vertex      int      // Offending vertex index (if applicable)
	VertexCount int      // Vertex count at the time of the failure
	Cycle       []string // Cycle path by symbol name, first == last
	Roles       []string // Roles the failed check ran with (if applicable)
	Resource    string   // Resource involved (if applicable)
	Privilege   string   // Privilege involved (if applicable)
	ActorID     string   // Actor who triggered the error (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithGraph records which hierarchy ("role" or "resource") the error concerns.
func (e *Error) WithGraph(graph string) *Error {
	e.Graph = graph
	return e
}

// WithSymbol adds the symbol involved to the error.
func (e *Error) WithSymbol(symbol string) *Error {
	e.Symbol = symbol
	return e
}

// WithVertex records the offending vertex index and the vertex count at the
// time of the failure.
func (e *Error) WithVertex(vertex, vertexCount int) *Error {
	e.Vertex = vertex
	e.VertexCount = vertexCount
	return e
}

// WithCycle records the cycle path by symbol name (first == last).
func (e *Error) WithCycle(cycle []string) *Error {
	e.Cycle = cycle
	return e
}

// WithRoles records the role set a failed check ran with.
func (e *Error) WithRoles(roles []string) *Error {
	e.Roles = roles
	return e
}

// WithResource adds the resource involved to the error.
func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

// WithPrivilege adds the privilege involved to the error.
func (e *Error) WithPrivilege(privilege string) *Error {
	e.Privilege = privilege
	return e
}

// WithActor adds actor information to the error.
func (e *Error) WithActor(actorID string) *Error {
	e.ActorID = actorID
	return e
}

// CyclePath renders the recorded cycle as "a -> b -> a", or "" when no cycle
// was recorded.
func (e *Error) CyclePath() string {
	if len(e.Cycle) == 0 {
		return ""
	}
	return strings.Join(e.Cycle, " -> ")
}

// IsInvalidVertex checks if an error is due to an out-of-range vertex.
func IsInvalidVertex(err error) bool {
	return errors.Is(err, ErrInvalidVertex)
}

// IsCycleDetected checks if an error is due to a hierarchy cycle.
func IsCycleDetected(err error) bool {
	return errors.Is(err, ErrCycleDetected)
}

// IsInvalidData checks if an error is due to malformed AclData.
func IsInvalidData(err error) bool {
	return errors.Is(err, ErrInvalidData)
}

// IsInvalidInput checks if an error is due to unusable caller input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsPermissionDenied checks if an error is an authorization verdict.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsDatabaseError checks if an error comes from the storage layer.
func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabaseError)
}
