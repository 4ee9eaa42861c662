package coordinator

import (
	"fmt"
	"testing"
)

// setupBenchCache creates a cache pre-populated with n handles.
func setupBenchCache(b *testing.B, n int) *HandleCache {
	b.Helper()
	cache := NewHandleCache()
	for i := 0; i < n; i++ {
		cache.Insert(&mockHandle{
			id:   RuntimeID(i + 1),
			name: fmt.Sprintf("scene-%04d", i),
		})
	}
	return cache
}

func BenchmarkCacheFindByName(b *testing.B) {
	cache := setupBenchCache(b, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.FindByName("scene-0050")
	}
}

func BenchmarkCacheFindByName_Parallel(b *testing.B) {
	cache := setupBenchCache(b, 100)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			cache.FindByName("scene-0050")
		}
	})
}

func BenchmarkCacheInsertRemove(b *testing.B) {
	cache := setupBenchCache(b, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := &mockHandle{id: RuntimeID(1000 + i), name: "transient"}
		cache.Insert(h)
		cache.Remove(h.id)
	}
}

func BenchmarkCacheSnapshot(b *testing.B) {
	cache := setupBenchCache(b, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Snapshot()
	}
}
