package content

import "errors"

// Domain errors for the content package.
var (
	// ErrUnknownScene is returned when a load names a scene absent from
	// the manifest.
	ErrUnknownScene = errors.New("content: unknown scene")

	// ErrMissingAsset is returned when a scene's backing asset cannot be
	// found on disk.
	ErrMissingAsset = errors.New("content: missing asset")

	// ErrForeignHandle is returned when an unload presents a handle this
	// provider did not issue.
	ErrForeignHandle = errors.New("content: foreign handle")

	// ErrStaleHandle is returned when an unload presents a handle whose
	// instance is no longer loaded.
	ErrStaleHandle = errors.New("content: stale handle")

	// ErrInvalidManifest is returned when the manifest fails validation.
	ErrInvalidManifest = errors.New("content: invalid manifest")
)
