//go:build integration

package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"avelements/internal/address"
	"avelements/internal/session"
	"avelements/internal/verification/controller"
	"avelements/pkg/platform/sentinel"
	"avelements/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = session.NewRedis(s.redis.Client, session.WithRedisTTL(time.Minute))
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	sess := &session.Session{
		ID: "form-1",
		Config: controller.Config{
			Strictness:  address.StrictnessPassthrough,
			Denormalize: true,
			Messages:    address.Messages{address.KindConfirm: "Sure?"},
		},
		State: controller.State{
			Submitted:    true,
			Confirmed:    true,
			LastSnapshot: &address.Fields{Primary: "185 Berry St", Zip: "94107"},
		},
	}
	s.Require().NoError(s.store.Save(ctx, sess))

	got, err := s.store.Get(ctx, "form-1")
	s.Require().NoError(err)
	s.Equal(sess.Config, got.Config)
	s.Equal(sess.State, got.State)
	s.WithinDuration(sess.UpdatedAt, got.UpdatedAt, time.Millisecond)

	ttl, err := s.redis.Client.TTL(ctx, "av:session:form-1").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 50*time.Second)
}

func (s *RedisStoreSuite) TestNotFound() {
	_, err := s.store.Get(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, &session.Session{ID: "form-1"}))
	s.Require().NoError(s.store.Delete(ctx, "form-1"))

	_, err := s.store.Get(ctx, "form-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestLock() {
	ctx := context.Background()

	s.Run("refuses a second holder", func() {
		release, err := s.store.Lock(ctx, "form-1", time.Second)
		s.Require().NoError(err)

		_, err = s.store.Lock(ctx, "form-1", time.Second)
		s.ErrorIs(err, session.ErrLocked)

		s.Require().NoError(release(ctx))
		again, err := s.store.Lock(ctx, "form-1", time.Second)
		s.Require().NoError(err)
		s.Require().NoError(again(ctx))
	})

	s.Run("lock expires on its own", func() {
		_, err := s.store.Lock(ctx, "form-2", 100*time.Millisecond)
		s.Require().NoError(err)

		s.Eventually(func() bool {
			release, err := s.store.Lock(ctx, "form-2", time.Second)
			if err != nil {
				return false
			}
			_ = release(ctx)
			return true
		}, 2*time.Second, 50*time.Millisecond)
	})

	s.Run("stale release does not drop the new holder", func() {
		stale, err := s.store.Lock(ctx, "form-3", 100*time.Millisecond)
		s.Require().NoError(err)
		time.Sleep(200 * time.Millisecond)

		fresh, err := s.store.Lock(ctx, "form-3", time.Second)
		s.Require().NoError(err)
		s.Require().NoError(stale(ctx))

		_, err = s.store.Lock(ctx, "form-3", time.Second)
		s.ErrorIs(err, session.ErrLocked)
		s.Require().NoError(fresh(ctx))
	})

	s.Run("exactly one concurrent caller wins", func() {
		const goroutines = 20
		var (
			wg       sync.WaitGroup
			acquired atomic.Int32
		)
		for range goroutines {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.store.Lock(ctx, "form-race", time.Minute); err == nil {
					acquired.Add(1)
				}
			}()
		}
		wg.Wait()
		s.Equal(int32(1), acquired.Load())
	})
}

func (s *RedisStoreSuite) TestMarkPage() {
	ctx := context.Background()

	first, err := s.store.MarkPage(ctx, "shop", "styles:verify_message")
	s.Require().NoError(err)
	s.True(first)

	again, err := s.store.MarkPage(ctx, "shop", "styles:verify_message")
	s.Require().NoError(err)
	s.False(again)

	ttl, err := s.redis.Client.TTL(ctx, "av:page:shop:styles:verify_message").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}
