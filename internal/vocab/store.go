package vocab

import (
	"sort"
	"strings"
	"sync"
)

// BaseAnnexes seeds every store. The set only ever grows: codes learned
// during extraction are added and never removed.
var BaseAnnexes = []string{
	"A", "B", "B-1", "C", "CN", "E", "F", "I", "SSPA", "PACMA",
	"AP", "MMRDD", "GNR", "PUE", "BDE", "GARANTÍAS", "FORMA", "DT-9",
	"II", "IV", "O",
}

// Store is the known-annex vocabulary. Implementations must be safe for
// concurrent use: the annex detector reads before matching and writes
// newly discovered codes after matching.
type Store interface {
	Contains(code string) bool
	// Add inserts codes (uppercased) and reports how many were new.
	Add(codes ...string) int
	// Snapshot returns a sorted copy of the current vocabulary.
	Snapshot() []string
}

// MemoryStore is the in-process vocabulary, guarded by a mutex so that
// parallel extractions cannot lose updates.
type MemoryStore struct {
	mu    sync.RWMutex
	codes map[string]struct{}
}

// NewMemoryStore returns a store seeded with BaseAnnexes.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{codes: make(map[string]struct{}, len(BaseAnnexes))}
	s.Add(BaseAnnexes...)
	return s
}

func normalizeCode(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}

func (s *MemoryStore) Contains(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codes[normalizeCode(code)]
	return ok
}

func (s *MemoryStore) Add(codes ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, c := range codes {
		c = normalizeCode(c)
		if c == "" {
			continue
		}
		if _, ok := s.codes[c]; !ok {
			s.codes[c] = struct{}{}
			added++
		}
	}
	return added
}

func (s *MemoryStore) Snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.codes))
	for c := range s.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
