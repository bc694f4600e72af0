package domain

import "errors"

var (
	// ErrUpstream marks failures of the remote fire/shelter/route API.
	ErrUpstream = errors.New("upstream api error")

	// ErrNotFound marks a lookup with no result, such as a location the
	// route API has no safe path for.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks caller input the service cannot act on, such
	// as a non-finite location.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidFireState marks a fire-state payload that cannot be rendered.
	ErrInvalidFireState = errors.New("invalid fire state")
)
