package graticule

import "errors"

var (
	// ErrInvalidConfiguration is returned for a config that cannot produce a
	// grid: a non-positive step, a major interval below one, a negative or
	// non-finite margin, or a line cap below one.
	ErrInvalidConfiguration = errors.New("invalid graticule configuration")

	// ErrProjection is returned when a coordinate falls outside the
	// projection's domain.
	ErrProjection = errors.New("projection error")
)
