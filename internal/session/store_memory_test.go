package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"avelements/internal/address"
	"avelements/internal/verification/controller"
	"avelements/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	now   time.Time
	store *InMemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = New(WithMemoryTTL(time.Hour), WithClock(func() time.Time { return s.now }))
}

func (s *MemoryStoreSuite) TestGet() {
	s.Run("returns the saved session", func() {
		sess := &Session{
			ID:     "form-1",
			Config: controller.Config{Strictness: address.StrictnessStrict, Denormalize: true},
			State: controller.State{
				Submitted:    true,
				LastSnapshot: &address.Fields{Primary: "185 Berry St"},
			},
		}
		s.Require().NoError(s.store.Save(s.ctx, sess))

		got, err := s.store.Get(s.ctx, "form-1")
		s.Require().NoError(err)
		s.Equal(address.StrictnessStrict, got.Config.Strictness)
		s.True(got.State.Submitted)
		s.Equal("185 Berry St", got.State.LastSnapshot.Primary)
		s.Equal(s.now, got.CreatedAt)
		s.Equal(s.now, got.UpdatedAt)
	})

	s.Run("returns ErrNotFound for unknown ids", func() {
		_, err := s.store.Get(s.ctx, "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound once the ttl elapsed", func() {
		s.Require().NoError(s.store.Save(s.ctx, &Session{ID: "form-2"}))
		s.now = s.now.Add(time.Hour)

		_, err := s.store.Get(s.ctx, "form-2")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("hands out copies", func() {
		s.Require().NoError(s.store.Save(s.ctx, &Session{
			ID:    "form-3",
			State: controller.State{LastSnapshot: &address.Fields{Zip: "94107"}},
		}))
		got, err := s.store.Get(s.ctx, "form-3")
		s.Require().NoError(err)
		got.State.LastSnapshot.Zip = "00000"

		again, err := s.store.Get(s.ctx, "form-3")
		s.Require().NoError(err)
		s.Equal("94107", again.State.LastSnapshot.Zip)
	})
}

func (s *MemoryStoreSuite) TestSave() {
	s.Run("keeps CreatedAt across updates", func() {
		sess := &Session{ID: "form-1"}
		s.Require().NoError(s.store.Save(s.ctx, sess))
		created := sess.CreatedAt

		s.now = s.now.Add(time.Minute)
		sess.State.Override = true
		s.Require().NoError(s.store.Save(s.ctx, sess))

		got, err := s.store.Get(s.ctx, "form-1")
		s.Require().NoError(err)
		s.Equal(created, got.CreatedAt)
		s.Equal(s.now, got.UpdatedAt)
		s.True(got.State.Override)
	})

	s.Run("rejects sessions without an id", func() {
		s.ErrorIs(s.store.Save(s.ctx, &Session{}), sentinel.ErrInvalidState)
		s.ErrorIs(s.store.Save(s.ctx, nil), sentinel.ErrInvalidState)
	})
}

func (s *MemoryStoreSuite) TestDelete() {
	s.Require().NoError(s.store.Save(s.ctx, &Session{ID: "form-1"}))
	s.Require().NoError(s.store.Delete(s.ctx, "form-1"))

	_, err := s.store.Get(s.ctx, "form-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestLock() {
	s.Run("second holder is refused until release", func() {
		release, err := s.store.Lock(s.ctx, "form-1", time.Second)
		s.Require().NoError(err)

		_, err = s.store.Lock(s.ctx, "form-1", time.Second)
		s.ErrorIs(err, ErrLocked)
		s.ErrorIs(err, sentinel.ErrConflict)

		s.Require().NoError(release(s.ctx))
		again, err := s.store.Lock(s.ctx, "form-1", time.Second)
		s.Require().NoError(err)
		s.Require().NoError(again(s.ctx))
	})

	s.Run("locks are per form", func() {
		a, err := s.store.Lock(s.ctx, "form-a", time.Second)
		s.Require().NoError(err)
		b, err := s.store.Lock(s.ctx, "form-b", time.Second)
		s.Require().NoError(err)
		s.NoError(a(s.ctx))
		s.NoError(b(s.ctx))
	})

	s.Run("expired lock can be taken and stale release leaves it alone", func() {
		stale, err := s.store.Lock(s.ctx, "form-2", time.Second)
		s.Require().NoError(err)

		s.now = s.now.Add(2 * time.Second)
		fresh, err := s.store.Lock(s.ctx, "form-2", time.Second)
		s.Require().NoError(err)

		s.Require().NoError(stale(s.ctx))
		_, err = s.store.Lock(s.ctx, "form-2", time.Second)
		s.ErrorIs(err, ErrLocked)
		s.Require().NoError(fresh(s.ctx))
	})

	s.Run("exactly one concurrent caller wins", func() {
		const goroutines = 16
		var (
			wg       sync.WaitGroup
			acquired atomic.Int32
		)
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.store.Lock(s.ctx, "form-race", time.Minute); err == nil {
					acquired.Add(1)
				}
			}()
		}
		wg.Wait()
		s.Equal(int32(1), acquired.Load())
	})
}

func (s *MemoryStoreSuite) TestMarkPage() {
	first, err := s.store.MarkPage(s.ctx, "shop", "styles:verify_message")
	s.Require().NoError(err)
	s.True(first)

	again, err := s.store.MarkPage(s.ctx, "shop", "styles:verify_message")
	s.Require().NoError(err)
	s.False(again)

	other, _ := s.store.MarkPage(s.ctx, "shop", "styles:autocomplete")
	s.True(other, "marks are independent")

	s.now = s.now.Add(time.Hour)
	expired, _ := s.store.MarkPage(s.ctx, "shop", "styles:verify_message")
	s.True(expired, "marks expire with the session TTL")
	s.Len(s.store.marks, 1, "expired marks are swept")
}
