package store

import (
	"sync"
	"time"

	"github.com/AngelCh415/pardot-insights/internal/engine"
	"github.com/AngelCh415/pardot-insights/internal/models"
)

type cached struct {
	res *engine.Result
	at  time.Time
}

// MemoryStore holds the current snapshot and a TTL cache of analysis results
// keyed by snapshot version and request parameters.
type MemoryStore struct {
	mu      sync.RWMutex
	snap    *models.Snapshot
	version uint64
	cache   map[string]cached
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: make(map[string]cached),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put replaces the current snapshot unless it already is the current one. A
// new snapshot bumps the version and drops every cached result.
func (s *MemoryStore) Put(snap *models.Snapshot) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// idempotencia solo contra el snapshot actual
	if s.snap != nil && s.snap.ID == snap.ID {
		return s.version, false
	}
	s.snap = snap
	s.version++
	s.cache = make(map[string]cached)
	return s.version, true
}

// Current returns the loaded snapshot and its version; nil before the first Put.
func (s *MemoryStore) Current() (*models.Snapshot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.version
}

func (s *MemoryStore) Result(key string) (*engine.Result, bool) {
	s.mu.RLock()
	c, ok := s.cache[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(c.at) > s.ttl {
		s.mu.Lock()
		delete(s.cache, key)
		s.mu.Unlock()
		return nil, false
	}
	return c.res, true
}

// SaveResult caches res under key if version is still current.
func (s *MemoryStore) SaveResult(version uint64, key string, res *engine.Result) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if version != s.version {
		return
	}
	s.cache[key] = cached{res: res, at: s.now()}
}
