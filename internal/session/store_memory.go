package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"avelements/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in process memory. Suitable for a single
// gateway replica and for tests.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	locks    map[string]memoryLock
	marks    map[pageMark]time.Time
	ttl      time.Duration
	now      func() time.Time
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

type pageMark struct {
	page, mark string
}

type memoryLock struct {
	token     string
	expiresAt time.Time
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithMemoryTTL overrides DefaultTTL.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(s *InMemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func New(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]memoryLock),
		marks:    make(map[pageMark]time.Time),
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, sentinel.ErrNotFound
	}
	out := cloneSession(entry.session)
	return &out, nil
}

func (s *InMemoryStore) Save(_ context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return sentinel.ErrInvalidState
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now
	s.sessions[sess.ID] = memoryEntry{session: cloneSession(*sess), expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.locks, id)
	return nil
}

func (s *InMemoryStore) Lock(_ context.Context, id string, ttl time.Duration) (ReleaseFunc, error) {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if held, ok := s.locks[id]; ok && now.Before(held.expiresAt) {
		return nil, ErrLocked
	}
	token := uuid.NewString()
	s.locks[id] = memoryLock{token: token, expiresAt: now.Add(ttl)}

	return func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if held, ok := s.locks[id]; ok && held.token == token {
			delete(s.locks, id)
		}
		return nil
	}, nil
}

func (s *InMemoryStore) MarkPage(_ context.Context, page, mark string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	key := pageMark{page: page, mark: mark}
	if expiresAt, ok := s.marks[key]; ok && now.Before(expiresAt) {
		return false, nil
	}
	for k, expiresAt := range s.marks {
		if !now.Before(expiresAt) {
			delete(s.marks, k)
		}
	}
	s.marks[key] = now.Add(s.ttl)
	return true, nil
}

func cloneSession(in Session) Session {
	out := in
	if in.State.LastSnapshot != nil {
		snap := *in.State.LastSnapshot
		out.State.LastSnapshot = &snap
	}
	if in.Config.Messages != nil {
		out.Config.Messages = in.Config.Messages.Merge(nil)
	}
	return out
}
