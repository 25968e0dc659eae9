package memory

import (
	"context"
	"sort"
	"sync"

	audit "vouch/pkg/platform/audit"
)

// InMemoryStore keeps events in process, indexed by subject.
type InMemoryStore struct {
	mu        sync.RWMutex
	events    []audit.Event
	bySubject map[string][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{bySubject: make(map[string][]int)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.bySubject = make(map[string][]int)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if event.Subject != "" {
		s.bySubject[event.Subject] = append(s.bySubject[event.Subject], len(s.events)-1)
	}
	return nil
}

// ListBySubject returns events about one entity in append order.
func (s *InMemoryStore) ListBySubject(_ context.Context, subject string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.bySubject[subject]
	out := make([]audit.Event, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.events[i])
	}
	return out, nil
}

// ListRecent returns up to limit events, newest first. Events sharing a
// timestamp come back in reverse append order.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	all := make([]audit.Event, 0, len(s.events))
	for i := len(s.events) - 1; i >= 0; i-- {
		all = append(all, s.events[i])
	}
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
