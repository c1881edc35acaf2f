package shared

import "errors"

var (
	// ErrNotFound indicates an entity id absent from the store.
	ErrNotFound = errors.New("not found")
	// ErrConstraint indicates a referential, uniqueness, or domain
	// constraint violation. Violations propagate to the caller and are
	// never silently corrected.
	ErrConstraint = errors.New("constraint violation")
)
