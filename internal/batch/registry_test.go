package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// mockRepository is an in-memory Repository for registry tests.
type mockRepository struct {
	mu      sync.Mutex
	defs    map[string]*Definition
	failAll bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{defs: make(map[string]*Definition)}
}

var errMockRepo = errors.New("mock repository failure")

func (m *mockRepository) GetByID(_ context.Context, id string) (*Definition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockRepo
	}
	d, ok := m.defs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.DeepCopy(), nil
}

func (m *mockRepository) GetBySlug(_ context.Context, slug string) (*Definition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockRepo
	}
	for _, d := range m.defs {
		if d.Slug == slug {
			return d.DeepCopy(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(_ context.Context) ([]Definition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockRepo
	}
	out := make([]Definition, 0, len(m.defs))
	for _, d := range m.defs {
		out = append(out, *d.DeepCopy())
	}
	return out, nil
}

func (m *mockRepository) ListEnabled(ctx context.Context) ([]Definition, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []Definition
	for _, d := range all {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, def *Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errMockRepo
	}
	if _, ok := m.defs[def.ID]; ok {
		return ErrExists
	}
	m.defs[def.ID] = def.DeepCopy()
	return nil
}

func (m *mockRepository) Update(_ context.Context, def *Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errMockRepo
	}
	if _, ok := m.defs[def.ID]; !ok {
		return ErrNotFound
	}
	m.defs[def.ID] = def.DeepCopy()
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errMockRepo
	}
	if _, ok := m.defs[id]; !ok {
		return ErrNotFound
	}
	delete(m.defs, id)
	return nil
}

func TestRegistryCreateGeneratesIDAndSlug(t *testing.T) {
	reg := NewRegistry(newMockRepository())

	def := &Definition{
		Name:    "Evening Swap",
		Load:    []string{"Evening"},
		Enabled: true,
	}
	if err := reg.CreateBatch(context.Background(), def); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}
	if def.ID == "" {
		t.Error("CreateBatch() did not generate an ID")
	}
	if def.Slug != "evening-swap" {
		t.Errorf("Slug = %q, want evening-swap", def.Slug)
	}

	got, err := reg.GetBatch(context.Background(), def.ID)
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if got.Name != "Evening Swap" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestRegistryCreateRejectsInvalid(t *testing.T) {
	repo := newMockRepository()
	reg := NewRegistry(repo)

	def := &Definition{
		Name:   "Bad Swap",
		Unload: []string{"Evening"},
		Load:   []string{"Evening"},
	}
	if err := reg.CreateBatch(context.Background(), def); !errors.Is(err, ErrOverlappingSets) {
		t.Fatalf("CreateBatch() error = %v, want ErrOverlappingSets", err)
	}

	// Nothing persisted, nothing cached
	if len(repo.defs) != 0 {
		t.Error("invalid batch reached the repository")
	}
	if reg.GetBatchCount() != 0 {
		t.Error("invalid batch reached the cache")
	}
}

func TestRegistryRefreshCache(t *testing.T) {
	repo := newMockRepository()
	repo.defs["batch-1"] = testBatch("batch-1", "Evening Swap")
	repo.defs["batch-2"] = testBatch("batch-2", "Morning Reset")

	reg := NewRegistry(repo)
	if reg.GetBatchCount() != 0 {
		t.Fatal("cache should start empty")
	}

	if err := reg.RefreshCache(context.Background()); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}
	if reg.GetBatchCount() != 2 {
		t.Errorf("GetBatchCount() = %d, want 2", reg.GetBatchCount())
	}

	got, err := reg.GetBatchBySlug(context.Background(), "morning-reset")
	if err != nil {
		t.Fatalf("GetBatchBySlug() error = %v", err)
	}
	if got.ID != "batch-2" {
		t.Errorf("ID = %q, want batch-2", got.ID)
	}
}

func TestRegistryRefreshCacheRepositoryFailure(t *testing.T) {
	repo := newMockRepository()
	repo.failAll = true

	reg := NewRegistry(repo)
	if err := reg.RefreshCache(context.Background()); !errors.Is(err, errMockRepo) {
		t.Errorf("RefreshCache() error = %v, want mock failure", err)
	}
}

func TestRegistryListSorted(t *testing.T) {
	repo := newMockRepository()
	a := testBatch("batch-a", "Alpha")
	a.SortOrder = 2
	b := testBatch("batch-b", "Beta")
	b.SortOrder = 1
	repo.defs[a.ID] = a
	repo.defs[b.ID] = b

	reg := NewRegistry(repo)
	if err := reg.RefreshCache(context.Background()); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}

	defs, err := reg.ListBatches(context.Background())
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}
	if len(defs) != 2 || defs[0].ID != "batch-b" || defs[1].ID != "batch-a" {
		t.Errorf("ListBatches() order unexpected: %+v", defs)
	}
}

func TestRegistryListEnabled(t *testing.T) {
	repo := newMockRepository()
	on := testBatch("batch-on", "On")
	off := testBatch("batch-off", "Off")
	off.Enabled = false
	repo.defs[on.ID] = on
	repo.defs[off.ID] = off

	reg := NewRegistry(repo)
	if err := reg.RefreshCache(context.Background()); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}

	defs, err := reg.ListEnabledBatches(context.Background())
	if err != nil {
		t.Fatalf("ListEnabledBatches() error = %v", err)
	}
	if len(defs) != 1 || defs[0].ID != "batch-on" {
		t.Errorf("ListEnabledBatches() = %+v, want only batch-on", defs)
	}
}

func TestRegistryUpdateAndDelete(t *testing.T) {
	repo := newMockRepository()
	reg := NewRegistry(repo)
	ctx := context.Background()

	def := testBatch("batch-1", "Evening Swap")
	if err := reg.CreateBatch(ctx, def); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	def.Name = "Evening Swap v2"
	if err := reg.UpdateBatch(ctx, def); err != nil {
		t.Fatalf("UpdateBatch() error = %v", err)
	}
	got, err := reg.GetBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if got.Name != "Evening Swap v2" {
		t.Errorf("Name = %q after update", got.Name)
	}

	if err := reg.DeleteBatch(ctx, "batch-1"); err != nil {
		t.Fatalf("DeleteBatch() error = %v", err)
	}
	if _, err := reg.GetBatch(ctx, "batch-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBatch(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestRegistryReturnsDeepCopies(t *testing.T) {
	repo := newMockRepository()
	reg := NewRegistry(repo)
	ctx := context.Background()

	def := testBatch("batch-1", "Evening Swap")
	if err := reg.CreateBatch(ctx, def); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	got, err := reg.GetBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	got.Load[0] = "Mutated"
	got.Name = "Mutated"

	again, err := reg.GetBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if again.Load[0] == "Mutated" || again.Name == "Mutated" {
		t.Error("mutating a returned batch leaked into the cache")
	}
}

func TestRegistryConcurrentReads(t *testing.T) {
	repo := newMockRepository()
	reg := NewRegistry(repo)
	ctx := context.Background()

	if err := reg.CreateBatch(ctx, testBatch("batch-1", "Evening Swap")); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := reg.GetBatch(ctx, "batch-1"); err != nil {
				t.Errorf("GetBatch() error = %v", err)
			}
			if _, err := reg.ListBatches(ctx); err != nil {
				t.Errorf("ListBatches() error = %v", err)
			}
		}()
	}
	wg.Wait()
}
