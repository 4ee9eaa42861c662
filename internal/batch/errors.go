package batch

import "errors"

// Domain errors for the batch package.
//
// These errors can be checked using errors.Is() for error handling.
var (
	// ErrNotFound is returned when a batch ID or slug does not exist.
	ErrNotFound = errors.New("batch: not found")

	// ErrExists is returned when creating a batch with an ID or slug that
	// already exists.
	ErrExists = errors.New("batch: already exists")

	// ErrDisabled is returned when attempting to run a disabled batch.
	ErrDisabled = errors.New("batch: disabled")

	// ErrInvalid is returned when batch validation fails.
	ErrInvalid = errors.New("batch: invalid")

	// ErrInvalidName is returned when a batch name is empty or too long.
	ErrInvalidName = errors.New("batch: invalid name")

	// ErrInvalidSlug is returned when a slug format is invalid.
	ErrInvalidSlug = errors.New("batch: invalid slug")

	// ErrOverlappingSets is returned when the unload set and load set
	// share a scene name. The two halves of a batch run in parallel, so
	// overlapping names would race.
	ErrOverlappingSets = errors.New("batch: unload and load sets overlap")
)
