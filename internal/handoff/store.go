package handoff

import (
	"sync"
	"time"

	"msktravels/pkg/logger"
	"msktravels/pkg/model"
)

// Key names one slot of the store and fixes the type stored under it.
type Key[T any] struct {
	name string
}

func (k Key[T]) String() string {
	return k.name
}

var (
	SelectedOffer  = Key[model.VehicleOffer]{name: "selected_offer"}
	SearchCriteria = Key[model.SearchCriteria]{name: "search_criteria"}
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is short-lived scratch space that carries the chosen offer from
// the results step to the review step.
type Store struct {
	mu       sync.Mutex
	entries  map[string]entry
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewStore(ttl time.Duration, log *logger.Logger) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
		log:     log,
		stopCh:  make(chan struct{}),
	}

	go s.janitor()

	return s
}

func (s *Store) janitor() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.log.Debug("Expired hand-off entries removed", "count", n)
			}
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func Put[T any](s *Store, key Key[T], value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key.name] = entry{value: value, expiresAt: s.now().Add(s.ttl)}
}

// Get returns the value under key unless it is missing or expired.
func Get[T any](s *Store, key Key[T]) (T, bool) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key.name]
	if !ok {
		return zero, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key.name)
		return zero, false
	}
	v, ok := e.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

func Delete[T any](s *Store, key Key[T]) {
	s.mu.Lock()
	delete(s.entries, key.name)
	s.mu.Unlock()
}
