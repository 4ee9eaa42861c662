package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nerrad567/sceneflow-core/internal/coordinator"
	"github.com/nerrad567/sceneflow-core/internal/stage"
)

// Logger defines the logging interface used by the Provider.
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

// Handle is one issued load-operation token. It satisfies
// coordinator.Handle.
type Handle struct {
	id   coordinator.RuntimeID
	name string
}

// RuntimeID returns the instance identifier of the loaded scene.
func (h *Handle) RuntimeID() coordinator.RuntimeID { return h.id }

// SceneName returns the scene's name.
func (h *Handle) SceneName() string { return h.name }

// Provider resolves scene names from the manifest to loaded instances and
// mirrors every load/unload onto the stage registry.
//
// It implements coordinator.Provider.
type Provider struct {
	manifest *Manifest
	stage    *stage.Registry
	logger   Logger

	mu     sync.Mutex
	nextID coordinator.RuntimeID
	free   []coordinator.RuntimeID
	loaded map[coordinator.RuntimeID]*Handle
}

// NewProvider creates a provider over a validated manifest.
func NewProvider(manifest *Manifest, reg *stage.Registry) *Provider {
	return &Provider{
		manifest: manifest,
		stage:    reg,
		logger:   noopLogger{},
		nextID:   1,
		loaded:   make(map[coordinator.RuntimeID]*Handle),
	}
}

// SetLogger sets the logger for the provider.
func (p *Provider) SetLogger(logger Logger) {
	p.logger = logger
}

// BeginLoad resolves a scene name to a loaded instance.
//
// The call blocks for the descriptor's declared load time (modelling
// streaming) and aborts early if the context is cancelled. On success the
// new instance is staged before the handle is returned.
func (p *Provider) BeginLoad(ctx context.Context, name string) (coordinator.Handle, error) {
	desc, ok := p.manifest.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}

	if p.manifest.VerifyAssets && desc.Asset != "" {
		assetPath := filepath.Join(p.manifest.AssetRoot, desc.Asset)
		if _, err := os.Stat(assetPath); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMissingAsset, assetPath, err)
		}
	}

	if desc.LoadTimeMS > 0 {
		select {
		case <-time.After(time.Duration(desc.LoadTimeMS) * time.Millisecond):
		case <-ctx.Done():
			return nil, fmt.Errorf("loading %q: %w", name, ctx.Err())
		}
	}

	h := &Handle{id: p.allocateID(), name: name}
	if err := p.stage.Add(coordinator.SceneRef{ID: h.id, Name: name}); err != nil {
		p.releaseID(h.id)
		return nil, fmt.Errorf("staging %q: %w", name, err)
	}

	p.mu.Lock()
	p.loaded[h.id] = h
	p.mu.Unlock()

	p.logger.Debug("instance loaded", "scene", name, "runtime_id", int(h.id))
	return h, nil
}

// BeginUnload releases the instance behind a previously issued handle,
// removing it from the stage and recycling its RuntimeID.
func (p *Provider) BeginUnload(_ context.Context, h coordinator.Handle) error {
	own, ok := h.(*Handle)
	if !ok {
		return ErrForeignHandle
	}

	p.mu.Lock()
	live, loaded := p.loaded[own.id]
	if !loaded || live != own {
		p.mu.Unlock()
		return fmt.Errorf("%w: %q (runtime id %d)", ErrStaleHandle, own.name, int(own.id))
	}
	delete(p.loaded, own.id)
	p.mu.Unlock()

	if err := p.stage.Remove(own.id); err != nil {
		p.logger.Warn("unstaging failed", "scene", own.name, "error", err)
	}
	p.releaseID(own.id)

	p.logger.Debug("instance unloaded", "scene", own.name, "runtime_id", int(own.id))
	return nil
}

// LoadedCount returns the number of currently loaded instances.
func (p *Provider) LoadedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.loaded)
}

// allocateID hands out the lowest recycled RuntimeID, or a fresh one.
func (p *Provider) allocateID() coordinator.RuntimeID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		id := p.free[n-1]
		p.free = p.free[:n-1]
		return id
	}
	id := p.nextID
	p.nextID++
	return id
}

// releaseID returns a RuntimeID to the free list for reuse.
func (p *Provider) releaseID(id coordinator.RuntimeID) {
	p.mu.Lock()
	p.free = append(p.free, id)
	p.mu.Unlock()
}
