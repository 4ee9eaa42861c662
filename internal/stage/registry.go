package stage

import (
	"sync"

	"github.com/nerrad567/sceneflow-core/internal/coordinator"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the in-memory stage. It keeps scenes in arrival order so
// that name lookups are deterministic for distinct names and first-match
// for duplicates.
//
// It implements coordinator.Stage.
type Registry struct {
	mu        sync.RWMutex
	scenes    []coordinator.SceneRef
	active    coordinator.RuntimeID
	hasActive bool
	logger    Logger
}

// NewRegistry creates an empty stage registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Add places a freshly loaded scene on the stage. The first scene added
// to an empty stage becomes active, matching host-environment behaviour
// where something is always active once anything is loaded.
func (r *Registry) Add(ref coordinator.SceneRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.scenes {
		if s.ID == ref.ID {
			return ErrAlreadyStaged
		}
	}
	r.scenes = append(r.scenes, ref)
	if !r.hasActive {
		r.active = ref.ID
		r.hasActive = true
	}
	r.logger.Debug("scene staged", "scene", ref.Name, "runtime_id", int(ref.ID))
	return nil
}

// Remove takes an unloaded scene off the stage. If the removed scene was
// active, the oldest remaining scene becomes active.
func (r *Registry) Remove(id coordinator.RuntimeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, s := range r.scenes {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotStaged
	}

	removed := r.scenes[idx]
	r.scenes = append(r.scenes[:idx], r.scenes[idx+1:]...)

	if r.hasActive && r.active == id {
		if len(r.scenes) > 0 {
			r.active = r.scenes[0].ID
		} else {
			r.hasActive = false
		}
	}
	r.logger.Debug("scene unstaged", "scene", removed.Name, "runtime_id", int(id))
	return nil
}

// FindByName returns the first staged scene with the given name.
func (r *Registry) FindByName(name string) (coordinator.SceneRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.scenes {
		if s.Name == name {
			return s, true
		}
	}
	return coordinator.SceneRef{}, false
}

// SetActive marks the referenced scene active. The scene must be staged.
func (r *Registry) SetActive(ref coordinator.SceneRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.scenes {
		if s.ID == ref.ID {
			r.active = ref.ID
			r.hasActive = true
			return nil
		}
	}
	return ErrNotStaged
}

// Active returns the currently active scene, if any.
func (r *Registry) Active() (coordinator.SceneRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.hasActive {
		return coordinator.SceneRef{}, false
	}
	for _, s := range r.scenes {
		if s.ID == r.active {
			return s, true
		}
	}
	return coordinator.SceneRef{}, false
}

// All enumerates every staged scene in arrival order.
func (r *Registry) All() []coordinator.SceneRef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	scenes := make([]coordinator.SceneRef, len(r.scenes))
	copy(scenes, r.scenes)
	return scenes
}

// Count returns the number of staged scenes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scenes)
}
