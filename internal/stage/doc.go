// Package stage provides the in-memory active-scene registry for
// SceneFlow Core.
//
// The stage is the host environment's authoritative list of currently
// loaded scenes plus the single active one. The content provider adds and
// removes entries as it loads and unloads instances; the coordinator only
// queries the stage and switches the active scene.
//
// # Thread Safety
//
// Registry is safe for concurrent use from multiple goroutines. All
// public methods use appropriate synchronisation.
package stage
