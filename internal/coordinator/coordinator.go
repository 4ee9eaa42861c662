package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Coordinator drives concurrent per-scene load and unload operations
// against the Provider and tracks their handles in the HandleCache.
//
// Thread Safety: all methods are safe for concurrent use. Note that two
// concurrent calls targeting the same scene name race by design; the
// coordinator only guarantees consistency within a single joined call.
type Coordinator struct {
	provider Provider
	stage    Stage
	cache    *HandleCache
	recalc   RecalcFunc
	events   EventPublisher // optional
	hub      Broadcaster    // optional
	metrics  Recorder       // optional
	logger   Logger
}

// New creates a coordinator with its own empty handle cache.
//
// Parameters:
//   - provider: Content provider for loading/unloading scene instances
//   - stage: Active-scene registry of the host environment
func New(provider Provider, stage Stage) *Coordinator {
	return &Coordinator{
		provider: provider,
		stage:    stage,
		cache:    NewHandleCache(),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the coordinator.
func (c *Coordinator) SetLogger(logger Logger) {
	c.logger = logger
}

// SetRecalcFunc installs the recalculation hook. A nil hook disables the
// recalc step regardless of the per-call flag.
func (c *Coordinator) SetRecalcFunc(fn RecalcFunc) {
	c.recalc = fn
}

// SetEventPublisher installs the message-bus publisher for scene events.
func (c *Coordinator) SetEventPublisher(p EventPublisher) {
	c.events = p
}

// SetBroadcaster installs the WebSocket hub for scene events.
func (c *Coordinator) SetBroadcaster(b Broadcaster) {
	c.hub = b
}

// SetRecorder installs the time-series recorder for operation timings.
func (c *Coordinator) SetRecorder(r Recorder) {
	c.metrics = r
}

// Cache exposes the handle cache for read-only inspection (API, tests).
func (c *Coordinator) Cache() *HandleCache {
	return c.cache
}

// LoadMany concurrently loads every named scene.
//
// An empty name list returns immediately with no results, no error and no
// side effects. Each name gets its own goroutine; a successful load
// inserts the instance's RuntimeID into the handle cache before that
// name's operation is considered complete. Insertion order across names
// is unspecified.
//
// The join waits for every sibling even when one fails; the first failure
// (in goroutine start order, not completion order) becomes the returned
// error while the Results carry every per-name outcome.
//
// After the join, a non-empty activeName is looked up on the stage and
// activated. A failed activation is a non-fatal diagnostic: it is logged
// and does not roll back the loads. When recalc is true the recalculation
// hook runs once, after activation, never per name.
func (c *Coordinator) LoadMany(ctx context.Context, names []string, activeName string, recalc bool) ([]Result, error) {
	if len(names) == 0 {
		return nil, nil
	}

	results := make([]Result, len(names))
	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			results[i] = c.loadOne(ctx, name)
			return results[i].Err
		})
	}
	err := g.Wait()

	if activeName != "" {
		if actErr := c.SetActive(ctx, activeName); actErr != nil {
			// Activation failure does not undo the loads.
			c.logger.Warn("activation after load failed",
				"scene", activeName,
				"error", actErr,
			)
		}
	}

	if recalc {
		c.runRecalc(ctx)
	}
	return results, err
}

// loadOne performs a single named load, including cache insertion and
// event/metric emission.
func (c *Coordinator) loadOne(ctx context.Context, name string) Result {
	started := time.Now()
	c.logger.Debug("scene load started", "scene", name)

	h, err := c.provider.BeginLoad(ctx, name)
	elapsed := time.Since(started).Milliseconds()
	if err != nil {
		wrapped := fmt.Errorf("%w: loading %q: %w", ErrProviderFailure, name, err)
		c.logger.Error("scene load failed", "scene", name, "error", err)
		c.recordOp("load", name, float64(elapsed), false)
		c.publishSceneEvent(name, "failed", map[string]any{
			"scene":       name,
			"op":          "load",
			"error":       err.Error(),
			"duration_ms": elapsed,
		})
		return Result{
			Name:       name,
			Status:     StatusFailed,
			DurationMS: elapsed,
			Err:        wrapped,
			ErrorMsg:   wrapped.Error(),
		}
	}

	c.cache.Insert(h)
	c.logger.Info("scene loaded",
		"scene", name,
		"runtime_id", int(h.RuntimeID()),
		"duration_ms", elapsed,
	)
	c.recordOp("load", name, float64(elapsed), true)
	c.publishSceneEvent(name, "loaded", map[string]any{
		"scene":       name,
		"runtime_id":  int(h.RuntimeID()),
		"duration_ms": elapsed,
	})

	return Result{
		Name:       name,
		RuntimeID:  h.RuntimeID(),
		Status:     StatusSucceeded,
		DurationMS: elapsed,
	}
}

// UnloadMany concurrently unloads every named scene.
//
// Duplicate names are rejected up front with ErrDuplicateRequest before
// any work starts: unload resolution is first-match by name, so a
// duplicated name would make the request ambiguous. Per name, the handle
// cache is searched for the first entry whose scene name matches; no
// match yields a per-name ErrNotLoaded outcome, a match is handed to the
// provider and, on success, removed from the cache. The join policy is
// the same as LoadMany's.
func (c *Coordinator) UnloadMany(ctx context.Context, names []string, recalc bool) ([]Result, error) {
	if dup, ok := firstDuplicate(names); ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateRequest, dup)
	}
	if len(names) == 0 {
		return nil, nil
	}

	results := make([]Result, len(names))
	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			results[i] = c.unloadOne(ctx, name)
			return results[i].Err
		})
	}
	err := g.Wait()

	if recalc {
		c.runRecalc(ctx)
	}
	return results, err
}

// unloadOne performs a single named unload via first-match cache lookup.
func (c *Coordinator) unloadOne(ctx context.Context, name string) Result {
	started := time.Now()

	h, ok := c.cache.FindByName(name)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrNotLoaded, name)
		c.logger.Warn("unload requested for scene with no cached load", "scene", name)
		return Result{
			Name:     name,
			Status:   StatusFailed,
			Err:      err,
			ErrorMsg: err.Error(),
		}
	}

	if err := c.provider.BeginUnload(ctx, h); err != nil {
		elapsed := time.Since(started).Milliseconds()
		wrapped := fmt.Errorf("%w: unloading %q: %w", ErrProviderFailure, name, err)
		c.logger.Error("scene unload failed", "scene", name, "error", err)
		c.recordOp("unload", name, float64(elapsed), false)
		c.publishSceneEvent(name, "failed", map[string]any{
			"scene":       name,
			"op":          "unload",
			"error":       err.Error(),
			"duration_ms": elapsed,
		})
		return Result{
			Name:       name,
			RuntimeID:  h.RuntimeID(),
			Status:     StatusFailed,
			DurationMS: elapsed,
			Err:        wrapped,
			ErrorMsg:   wrapped.Error(),
		}
	}

	c.cache.Remove(h.RuntimeID())
	elapsed := time.Since(started).Milliseconds()
	c.logger.Info("scene unloaded",
		"scene", name,
		"runtime_id", int(h.RuntimeID()),
		"duration_ms", elapsed,
	)
	c.recordOp("unload", name, float64(elapsed), true)
	c.publishSceneEvent(name, "unloaded", map[string]any{
		"scene":       name,
		"runtime_id":  int(h.RuntimeID()),
		"duration_ms": elapsed,
	})

	return Result{
		Name:       name,
		RuntimeID:  h.RuntimeID(),
		Status:     StatusSucceeded,
		DurationMS: elapsed,
	}
}

// UnloadAllExcept unloads every scene on the stage whose name is not in
// keep.
//
// A stage holding one scene or fewer fails fast with ErrLastSceneProtected
// before any provider call. The active scene is never unloaded: its name
// is dropped from the computed set and logged as a diagnostic rather than
// failing the call. The computed complement is deduplicated (stage entries
// may share a display name, and unload resolves by name) and handed to
// UnloadMany.
func (c *Coordinator) UnloadAllExcept(ctx context.Context, keep []string, recalc bool) error {
	if c.stage.Count() <= 1 {
		return ErrLastSceneProtected
	}

	keepSet := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		keepSet[name] = struct{}{}
	}

	active, hasActive := c.stage.Active()

	var toUnload []string
	seen := make(map[string]struct{})
	for _, ref := range c.stage.All() {
		if _, kept := keepSet[ref.Name]; kept {
			continue
		}
		if hasActive && ref.Name == active.Name {
			c.logger.Warn("skipping active scene in unload-all", "scene", ref.Name)
			continue
		}
		if _, dup := seen[ref.Name]; dup {
			continue
		}
		seen[ref.Name] = struct{}{}
		toUnload = append(toUnload, ref.Name)
	}

	_, err := c.UnloadMany(ctx, toUnload, recalc)
	return err
}

// SetActive activates the named scene on the stage.
//
// Activating the scene that is already active is a no-op with no error.
// An unknown name returns ErrInvalidTarget.
func (c *Coordinator) SetActive(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("activating %q: %w", name, err)
	}

	ref, ok := c.stage.FindByName(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, name)
	}

	if active, hasActive := c.stage.Active(); hasActive && active.ID == ref.ID {
		return nil
	}

	if err := c.stage.SetActive(ref); err != nil {
		return fmt.Errorf("activating %q: %w", name, err)
	}

	c.logger.Info("scene activated", "scene", name, "runtime_id", int(ref.ID))
	c.publishSceneEvent(name, "activated", map[string]any{
		"scene":      name,
		"runtime_id": int(ref.ID),
	})
	return nil
}

// runRecalc invokes the recalculation hook if one is installed.
func (c *Coordinator) runRecalc(ctx context.Context) {
	if c.recalc == nil {
		return
	}
	started := time.Now()
	c.recalc(ctx)
	c.logger.Debug("recalculation complete", "duration_ms", time.Since(started).Milliseconds())
}

// recordOp forwards an operation timing to the recorder if one is set.
func (c *Coordinator) recordOp(op, scene string, durationMS float64, success bool) {
	if c.metrics != nil {
		c.metrics.RecordOperation(op, scene, durationMS, success)
	}
}

// publishSceneEvent emits one scene event to the message bus and the
// WebSocket hub. Both sinks are best-effort.
func (c *Coordinator) publishSceneEvent(scene, event string, payload map[string]any) {
	if c.hub != nil {
		c.hub.Broadcast("scene."+event, payload)
	}
	if c.events == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("failed to marshal scene event", "event", event, "error", err)
		return
	}

	if pubErr := c.events.PublishSceneEvent(scene, event, data); pubErr != nil {
		c.logger.Warn("failed to publish scene event", "scene", scene, "event", event, "error", pubErr)
	}
}

// firstDuplicate returns the first name that appears more than once.
func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return name, true
		}
		seen[name] = struct{}{}
	}
	return "", false
}
