// Package memory is an in-process event store for tests and single-node
// development.
package memory

import (
	"context"
	"slices"
	"sync"

	"avelements/internal/events"
)

type Store struct {
	mu     sync.RWMutex
	events []events.Event
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByForm returns the events of one form, oldest first, optionally
// restricted to the given names.
func (s *Store) ListByForm(_ context.Context, formID string, names ...string) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []events.Event
	for _, e := range s.events {
		if e.Payload.Form != formID {
			continue
		}
		if len(names) > 0 && !slices.Contains(names, e.Name) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ListRecent returns up to limit events, newest first.
func (s *Store) ListRecent(_ context.Context, limit int) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]events.Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}
