package repo

import (
	"errors"
	"fmt"
)

// ErrNotARepository is returned by Open when the path has no object store.
var ErrNotARepository = errors.New("not a git repository")

// RefNotFoundError reports a ref string that cannot be resolved to a
// commit.
type RefNotFoundError struct {
	Ref string
}

func (e *RefNotFoundError) Error() string {
	return fmt.Sprintf("reference not found: %s", e.Ref)
}

// AmbiguousRefError reports a short hash prefix matching more than one
// commit.
type AmbiguousRefError struct {
	Ref string
}

func (e *AmbiguousRefError) Error() string {
	return fmt.Sprintf("short commit hash '%s' is ambiguous", e.Ref)
}

func notFound(ref string) error {
	return &RefNotFoundError{Ref: ref}
}
