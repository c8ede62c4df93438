package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidID        = errors.New("invalid ID")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrDepthExceeded    = errors.New("depth exceeded")
	ErrMissingRoot      = errors.New("missing root")
	ErrEmptyScheme      = errors.New("empty scheme")
	ErrNotIndexed       = errors.New("scheme not indexed")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DepthExceededError is raised when a traversal walks deeper than the
// configured guard, which in practice means the graph contains a cycle
type DepthExceededError struct {
	ConceptID int64
	Depth     int
	Cycle     bool // concept was met again on its own branch
}

func (e *DepthExceededError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("depth exceeded: concept %d appears in its own hierarchy", e.ConceptID)
	}
	return fmt.Sprintf("depth exceeded: concept %d is deeper than %d levels", e.ConceptID, e.Depth)
}

func (e *DepthExceededError) Is(target error) bool {
	return target == ErrDepthExceeded
}

// MissingRootError reports a non-root entry met before any root while indexing
type MissingRootError struct {
	SchemeID  int64
	ConceptID int64
	Position  int
}

func (e *MissingRootError) Error() string {
	return fmt.Sprintf("scheme %d: concept %d at position %d has no root", e.SchemeID, e.ConceptID, e.Position)
}

func (e *MissingRootError) Is(target error) bool {
	return target == ErrMissingRoot
}

// SchemeError ties a failure to the scheme it happened in
type SchemeError struct {
	SchemeID int64
	Err      error
}

func (e *SchemeError) Error() string {
	return fmt.Sprintf("scheme %d: %v", e.SchemeID, e.Err)
}

func (e *SchemeError) Unwrap() error {
	return e.Err
}

// IsSkippable reports whether err marks an item that callers should log and skip
func IsSkippable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden)
}
