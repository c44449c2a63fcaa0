package generator

import "errors"

var (
	// ErrResolution indicates the settings could not be assembled: the
	// network could not be determined from the chosen source, or the
	// account failed to derive its change address. The cause is wrapped.
	ErrResolution = errors.New("generator: settings resolution failed")

	// ErrInvalidSigning indicates signature parameters below 1. Only
	// reported by Settings.Validate.
	ErrInvalidSigning = errors.New("generator: invalid signing parameters")
)
