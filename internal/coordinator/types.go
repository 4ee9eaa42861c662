package coordinator

import "context"

// RuntimeID identifies one concrete loaded scene instance. It is assigned
// by the Provider, is unique among currently-loaded scenes, stays stable
// for the instance's lifetime, and may be reused only after that instance
// is unloaded.
type RuntimeID int

// Handle is the opaque token for one completed load operation. It is owned
// by the Provider; the Handle Cache references it but never mutates it.
type Handle interface {
	// RuntimeID returns the instance identifier of the loaded scene.
	RuntimeID() RuntimeID

	// SceneName returns the scene's current name. Unload requests are
	// resolved against this value.
	SceneName() string
}

// Provider is the interface the coordinator needs from the content-loading
// subsystem. Both calls block until the underlying asynchronous operation
// completes; timeout policy belongs to the Provider, not the coordinator.
type Provider interface {
	// BeginLoad resolves a scene name to a loaded instance handle.
	BeginLoad(ctx context.Context, name string) (Handle, error)

	// BeginUnload releases the instance behind a previously returned handle.
	BeginUnload(ctx context.Context, h Handle) error
}

// SceneRef identifies a scene currently present on the stage.
type SceneRef struct {
	ID   RuntimeID `json:"id"`
	Name string    `json:"name"`
}

// Stage is the interface the coordinator needs from the host's active-scene
// registry. The stage is authoritative for which scenes exist and which one
// is active; the coordinator only queries and activates.
type Stage interface {
	// FindByName returns the first stage entry with the given name.
	FindByName(name string) (SceneRef, bool)

	// SetActive marks the referenced scene as the active one.
	SetActive(ref SceneRef) error

	// Active returns the currently active scene, if any.
	Active() (SceneRef, bool)

	// All enumerates every scene currently on the stage.
	All() []SceneRef

	// Count returns the number of scenes on the stage.
	Count() int
}

// EventPublisher receives coordinator events destined for the message
// bus. The coordinator never builds bus topics itself; implementations
// own the topic scheme (the mqtt package provides the production one).
type EventPublisher interface {
	// PublishSceneEvent publishes one scene lifecycle event
	// (loaded, unloaded, activated, failed).
	PublishSceneEvent(scene, event string, payload []byte) error

	// PublishBatchCompleted publishes a batch completion summary.
	PublishBatchCompleted(payload []byte) error
}

// Broadcaster is the interface for pushing events to WebSocket clients.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// Recorder is the interface for recording operation timings to the
// time-series store. Implementations must be non-blocking.
type Recorder interface {
	RecordOperation(op, scene string, durationMS float64, success bool)
}

// RecalcFunc is the recalculation hook invoked once after a joined call
// completes (after activation on the load path, after both halves on the
// batch path). Typically rebuilds derived host state such as navigation
// or lighting data.
type RecalcFunc func(ctx context.Context)

// Logger defines the logging interface used by the Coordinator.
// This allows different logging implementations to be used.
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

// SceneBatch is a composed operation: unload a set of scenes, load another
// set, and optionally activate one of the loaded scenes afterward. Pure
// data; the two sets are assumed disjoint so both halves can run in
// parallel.
type SceneBatch struct {
	Unload   []string `json:"unload"`
	Load     []string `json:"load"`
	Activate string   `json:"activate,omitempty"`
}

// OpStatus is the terminal state of one per-name operation. A name passes
// through requested and in-flight phases internally, but only terminal
// outcomes are reported: once started, an operation runs to success or
// failure, never cancellation.
type OpStatus string

const (
	StatusSucceeded OpStatus = "succeeded"
	StatusFailed    OpStatus = "failed"
)

// Result is the per-name outcome of one joined LoadMany/UnloadMany call.
type Result struct {
	Name       string    `json:"name"`
	RuntimeID  RuntimeID `json:"runtime_id,omitempty"`
	Status     OpStatus  `json:"status"`
	DurationMS int64     `json:"duration_ms"`
	Err        error     `json:"-"`
	ErrorMsg   string    `json:"error,omitempty"`
}
