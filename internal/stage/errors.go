package stage

import "errors"

// Domain errors for the stage package.
var (
	// ErrNotStaged is returned when activating or removing a scene that is
	// not on the stage.
	ErrNotStaged = errors.New("stage: scene not staged")

	// ErrAlreadyStaged is returned when adding a RuntimeID that is already
	// present.
	ErrAlreadyStaged = errors.New("stage: runtime id already staged")
)
