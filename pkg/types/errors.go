package types

import (
	"errors"
	"fmt"
)

// Composition errors. All of them are raised while a type is being composed
// and are fatal for that type.
var (
	ErrPlumbingCollision = errors.New("plumbing collision")
	ErrTypeConstraint    = errors.New("cannot be plumbed")
	ErrMissingEndpoint   = errors.New("missing endpoint")
	ErrInvalidName       = errors.New("invalid name")
	ErrNilPlugin         = errors.New("plugin must not be nil")
)

// Descriptor errors. The dispatch errors are returned at call time by the
// Descriptor helpers, never by Compose.
var (
	ErrDescriptorSealed = errors.New("descriptor is sealed")
	ErrNoSuchAttribute  = errors.New("no such attribute")
	ErrNotCallable      = errors.New("attribute is not callable")
	ErrNotProperty      = errors.New("attribute is not a property")
	ErrAccessorMissing  = errors.New("accessor not provided")
)

// CollisionError reports two incompatible declarations for the same name.
// It matches ErrPlumbingCollision under errors.Is.
type CollisionError struct {
	Name   string // Member name both declarations target.
	Plugin string // Plugin whose declaration was rejected.
	Reason string
}

func (e *CollisionError) Error() string {
	if e.Plugin == "" {
		return fmt.Sprintf("plumbing collision on %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("plumbing collision on %q in plugin %q: %s", e.Name, e.Plugin, e.Reason)
}

func (e *CollisionError) Unwrap() error {
	return ErrPlumbingCollision
}
