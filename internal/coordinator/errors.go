package coordinator

import "errors"

// Domain errors for the coordinator package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, coordinator.ErrNotLoaded) {
//	    // handle not loaded case
//	}
var (
	// ErrInvalidTarget is returned when an operation names a scene that is
	// not present on the stage.
	ErrInvalidTarget = errors.New("coordinator: invalid target")

	// ErrDuplicateRequest is returned when an unload request contains the
	// same scene name more than once. Unload resolution is first-match by
	// name, so duplicate names make the request ambiguous.
	ErrDuplicateRequest = errors.New("coordinator: duplicate scene name in request")

	// ErrNotLoaded is returned per name when an unload is requested for a
	// scene with no matching Handle Cache entry.
	ErrNotLoaded = errors.New("coordinator: scene not loaded")

	// ErrProviderFailure wraps errors from the content provider's load or
	// unload calls.
	ErrProviderFailure = errors.New("coordinator: provider failure")

	// ErrLastSceneProtected is returned when an unload would remove the
	// only remaining scene from the stage.
	ErrLastSceneProtected = errors.New("coordinator: cannot unload the only remaining scene")
)
