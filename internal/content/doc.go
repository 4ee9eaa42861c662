// Package content provides the scene content provider for SceneFlow Core.
//
// Scenes are declared in a YAML manifest that maps a scene name to its
// backing asset. The Provider resolves a name to a loaded instance,
// assigns each instance a RuntimeID, and keeps the stage registry in sync
// as instances come and go.
//
// RuntimeIDs are unique among currently-loaded instances, stable for an
// instance's lifetime, and recycled through a free list only after the
// instance is unloaded.
//
// Load latency declared in the manifest (load_time_ms) is honoured to
// model streaming from disk; a cancelled context aborts the wait.
//
// # Thread Safety
//
// Provider is safe for concurrent use from multiple goroutines.
package content
