package graph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrInvalidNodeReference = errors.New("invalid node reference")
	ErrEdgeNotFound         = errors.New("edge not found")
	ErrInvalidAmount        = errors.New("invalid frequency amount")
)

// GraphError provides structured error information for graph operations.
type GraphError struct {
	Op      string // Operation that failed (e.g., "AddEdge", "OutEdges")
	Entity  string // Entity type ("node", "edge")
	Ref     string // Index or source->target reference
	Context string // Additional context
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.Ref != "" {
		if e.Context != "" {
			return fmt.Sprintf("%s %s %s (%s): %v", e.Op, e.Entity, e.Ref, e.Context, e.Cause)
		}
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.Ref, e.Cause)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Entity, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// ErrorBuilder provides a fluent interface for building GraphErrors.
type ErrorBuilder struct {
	err GraphError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: GraphError{Op: op}}
}

// Node sets the entity to "node" with the given index.
func (b *ErrorBuilder) Node(index int) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.Ref = fmt.Sprintf("%d", index)
	return b
}

// Edge sets the entity to "edge" with the given endpoints.
func (b *ErrorBuilder) Edge(source, target int) *ErrorBuilder {
	b.err.Entity = "edge"
	b.err.Ref = fmt.Sprintf("%d->%d", source, target)
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	e := b.err
	return &e
}

// InvalidNodeError reports an index outside the current node range.
func InvalidNodeError(op string, index, nodeCount int) error {
	return NewError(op).
		Node(index).
		Context(fmt.Sprintf("graph has %d nodes", nodeCount)).
		Cause(ErrInvalidNodeReference).
		Err()
}

// EdgeNotFoundError creates an edge not found error.
func EdgeNotFoundError(source, target int) error {
	return NewError("get").Edge(source, target).Cause(ErrEdgeNotFound).Err()
}

// IsInvalidReference returns true if the error was caused by an out-of-range index.
func IsInvalidReference(err error) bool {
	return errors.Is(err, ErrInvalidNodeReference)
}

// IsNotFound returns true if the error is an edge not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEdgeNotFound)
}
