// Package batch provides named, persisted scene-batch definitions for
// SceneFlow Core.
//
// A batch definition is the editor-facing document behind one composed
// operation: which scenes to unload, which to load, and which (if any) to
// activate afterward. Definitions live in SQLite and are cached by a
// Registry for fast lookup; before execution a definition is resolved to
// a plain coordinator.SceneBatch value, which is the only form the core
// ever sees.
//
// Architecture:
//
//	┌─────────────────────────────────────────────┐
//	│           Registry (registry.go)             │
//	│  Thread-safe cache wrapping the Repository   │
//	│        ┌──────────────┐                     │
//	│        │  Repository  │  SQLite persistence │
//	│        │(repository.go)│                    │
//	│        └──────────────┘                     │
//	│               │                              │
//	│               ▼                              │
//	│    Resolve() → coordinator.SceneBatch        │
//	└─────────────────────────────────────────────┘
//
// # Thread Safety
//
// Registry is safe for concurrent use from multiple goroutines.
package batch
