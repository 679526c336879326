package provider

import (
	"errors"
	"fmt"
)

// ErrNotFound marks benign absence: a deletion target that is already gone,
// or a listing against a scope that does not exist.
var ErrNotFound = errors.New("resource not found")

// ErrNotLoggedIn means no usable credential is available. Fatal: the run
// aborts before any mutation.
var ErrNotLoggedIn = errors.New("not logged in to the cloud provider")

// ErrDependencyUnavailable means required tooling or network access is
// missing. Fatal: the run aborts before any mutation.
var ErrDependencyUnavailable = errors.New("required dependency unavailable")

// ValidationError is a spec rejected before any mutating call was issued.
type ValidationError struct {
	Address string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid spec %s: %s", e.Address, e.Reason)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
