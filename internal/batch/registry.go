package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Registry.
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

// Registry provides batch management with caching and thread safety.
// It wraps a Repository and adds an in-memory cache for fast lookups.
//
// The cache is populated on startup via RefreshCache() and kept in sync
// by cache-invalidating CRUD operations.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Definition // Cached batches by ID
	cacheMu sync.RWMutex           // Protects cache
	logger  Logger
}

// NewRegistry creates a new batch registry.
// The repository is used for persistence; the registry adds caching.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Definition),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all batches from the repository into the cache.
// This should be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	defs, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading batches: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	// Clear and rebuild cache with deep copies
	r.cache = make(map[string]*Definition, len(defs))
	for i := range defs {
		d := defs[i]
		r.cache[d.ID] = d.DeepCopy()
	}

	r.logger.Info("batch cache refreshed", "count", len(defs))
	return nil
}

// GetBatch retrieves a batch by ID.
// The returned definition is a deep copy; callers can safely modify it.
func (r *Registry) GetBatch(_ context.Context, id string) (*Definition, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[id]
	r.cacheMu.RUnlock()

	if ok {
		return cached.DeepCopy(), nil
	}
	return nil, ErrNotFound
}

// GetBatchBySlug retrieves a batch by its slug.
// The returned definition is a deep copy.
func (r *Registry) GetBatchBySlug(_ context.Context, slug string) (*Definition, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	for _, d := range r.cache {
		if d.Slug == slug {
			return d.DeepCopy(), nil
		}
	}
	return nil, ErrNotFound
}

// ListBatches retrieves all batches from the cache.
// Returns deep copies sorted by sort_order then name for deterministic ordering.
func (r *Registry) ListBatches(_ context.Context) ([]Definition, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	defs := make([]Definition, 0, len(r.cache))
	for _, d := range r.cache {
		defs = append(defs, *d.DeepCopy())
	}
	sortBatches(defs)
	return defs, nil
}

// ListEnabledBatches retrieves all enabled batches from the cache.
func (r *Registry) ListEnabledBatches(_ context.Context) ([]Definition, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	var defs []Definition
	for _, d := range r.cache {
		if d.Enabled {
			defs = append(defs, *d.DeepCopy())
		}
	}
	sortBatches(defs)
	return defs, nil
}

// sortBatches sorts batches by sort_order then name, matching the DB query ordering.
func sortBatches(defs []Definition) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].SortOrder != defs[j].SortOrder {
			return defs[i].SortOrder < defs[j].SortOrder
		}
		return defs[i].Name < defs[j].Name
	})
}

// CreateBatch validates, persists, and caches a new batch.
func (r *Registry) CreateBatch(ctx context.Context, def *Definition) error {
	// Generate ID and slug if not provided
	if def.ID == "" {
		def.ID = GenerateID()
	}
	if def.Slug == "" {
		def.Slug = GenerateSlug(def.Name)
	}

	if err := ValidateDefinition(def); err != nil {
		return err
	}

	if err := r.repo.Create(ctx, def); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[def.ID] = def.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("batch created", "id", def.ID, "name", def.Name)
	return nil
}

// UpdateBatch validates, persists, and updates the cached batch.
func (r *Registry) UpdateBatch(ctx context.Context, def *Definition) error {
	if err := ValidateDefinition(def); err != nil {
		return err
	}

	if err := r.repo.Update(ctx, def); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[def.ID] = def.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("batch updated", "id", def.ID, "name", def.Name)
	return nil
}

// DeleteBatch removes a batch from persistence and cache.
func (r *Registry) DeleteBatch(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.cacheMu.Lock()
	delete(r.cache, id)
	r.cacheMu.Unlock()

	r.logger.Info("batch deleted", "id", id)
	return nil
}

// GetBatchCount returns the number of cached batches.
func (r *Registry) GetBatchCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}
