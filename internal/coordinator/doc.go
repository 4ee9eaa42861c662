// Package coordinator provides the concurrent scene load/unload core for
// SceneFlow Core.
//
// Scenes are named, resource-backed units produced by an asynchronous
// content provider. The coordinator fans out one operation per scene name,
// joins them, and tracks which load operation produced which live scene
// instance so that a later unload request can be matched back to it.
//
// Architecture:
//
//	┌─────────────────────────────────────────────────────────┐
//	│             Coordinator (coordinator.go)                 │
//	│  Fan-out/join over scene names via errgroup              │
//	│  ┌──────────────┐     ┌──────────────┐                  │
//	│  │ Handle Cache │     │   Provider   │ (external)       │
//	│  │  (cache.go)  │     │ BeginLoad /  │                  │
//	│  │ RuntimeID →  │     │ BeginUnload  │                  │
//	│  │   Handle     │     └──────────────┘                  │
//	│  └──────────────┘                                       │
//	│        │              ┌──────────────┐                  │
//	│        ▼              │    Stage     │ (external)       │
//	│  ┌──────────────┐     │ active-scene │                  │
//	│  │ Batch runner │     │   registry   │                  │
//	│  │  (batch.go)  │     └──────────────┘                  │
//	│  └──────────────┘                                       │
//	└─────────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Coordinator: orchestrates concurrent loads/unloads and batches
//   - HandleCache: RuntimeID → Handle map, the coordinator's only state
//   - SceneBatch: unload set + load set + optional activation target
//   - Result: per-name outcome of one joined call
//
// # Concurrency Model
//
// Every per-name operation within one LoadMany/UnloadMany call runs on its
// own goroutine and all of them are joined before the call returns. The
// join uses a plain errgroup.Group, so the first failure is reported while
// sibling operations still run to completion; nothing is cancelled once
// started. The Handle Cache is the only shared mutable state and every
// mutation is serialised behind its mutex. No lock is held across a
// provider call.
//
// Precondition failures (duplicate unload names, unloading the last
// remaining scene) abort eagerly with zero side effects. Per-name failures
// never abort siblings; callers inspect the returned Results to learn what
// actually succeeded. Nothing is retried and nothing is rolled back: a
// batch joins its two halves but is not transactional.
//
// # Usage
//
//	coord := coordinator.New(provider, stage)
//	coord.SetLogger(log)
//
//	results, err := coord.LoadMany(ctx, []string{"lobby", "hangar"}, "lobby", true)
//	_, err = coord.UnloadMany(ctx, []string{"hangar"}, false)
//
// Fire-and-forget forms (GoLoadMany etc.) run the awaitable form on a
// background goroutine and invoke an optional completion callback.
package coordinator
