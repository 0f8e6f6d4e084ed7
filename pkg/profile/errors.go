package profile

import "errors"

var (
	// ErrNotFound is returned when a profile is not registered or stored.
	ErrNotFound = errors.New("profile not found")

	// ErrInvalidProfile is returned when a profile breaks a scoring invariant.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrBuiltInReadOnly is returned when trying to overwrite or delete a built-in.
	ErrBuiltInReadOnly = errors.New("built-in profiles are read-only")
)
