package vocab

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSeed(t *testing.T) {
	s := NewMemoryStore()
	for _, code := range BaseAnnexes {
		assert.True(t, s.Contains(code), "seed code %q missing", code)
	}
}

func TestMemoryStoreNormalizes(t *testing.T) {
	s := NewMemoryStore()
	assert.True(t, s.Contains("sspa"))
	assert.True(t, s.Contains("  B-1  "))

	added := s.Add(" zz-9 ")
	assert.Equal(t, 1, added)
	assert.True(t, s.Contains("ZZ-9"))
}

func TestMemoryStoreAddCountsOnlyNew(t *testing.T) {
	s := NewMemoryStore()
	assert.Equal(t, 0, s.Add("A", "SSPA"))
	assert.Equal(t, 2, s.Add("X1", "X2", "X1", ""))
}

func TestMemoryStoreSnapshotSorted(t *testing.T) {
	s := NewMemoryStore()
	s.Add("ZZ", "AA")

	snap := s.Snapshot()
	require.NotEmpty(t, snap)
	assert.True(t, sort.StringsAreSorted(snap))

	// the snapshot is a copy, not a view
	snap[0] = "mutated"
	assert.False(t, s.Contains("mutated"))
}

func TestMemoryStoreConcurrentAdd(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add("NEW-CODE")
			_ = s.Contains("NEW-CODE")
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	assert.True(t, s.Contains("NEW-CODE"))
}
