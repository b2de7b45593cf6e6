package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"avelements/pkg/platform/circuit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubStore struct {
	mu     sync.Mutex
	events []Event
	err    error
	calls  int
}

func (s *stubStore) Append(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, e)
	return nil
}

func (s *stubStore) snapshot() ([]Event, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out, s.calls
}

func TestPublisherDeliversInOrder(t *testing.T) {
	store := &stubStore{}
	m := NewMetrics(prometheus.NewRegistry())
	p := NewPublisher(store, WithPublisherMetrics(m), WithFlushInterval(time.Hour))

	p.Emit(Verification, Payload{Form: "f", Code: 200})
	p.Emit(Alert, Payload{Form: "f"})

	require.Eventually(t, func() bool {
		got, _ := store.snapshot()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Close(context.Background()))

	got, _ := store.snapshot()
	assert.Equal(t, Verification, got[0].Name)
	assert.Equal(t, Alert, got[1].Name)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Published.WithLabelValues(Alert)))
}

func TestPublisherCloseDrainsBuffer(t *testing.T) {
	store := &stubStore{}
	p := NewPublisher(store, WithFlushInterval(time.Hour), WithBatchSize(3))
	for range 10 {
		p.Emit(Alert, Payload{Form: "f"})
	}
	require.NoError(t, p.Close(context.Background()))

	got, _ := store.snapshot()
	assert.Len(t, got, 10)

	p.Emit(Alert, Payload{Form: "late"})
	got, _ = store.snapshot()
	assert.Len(t, got, 10, "events after Close are dropped")
}

func TestPublisherBreakerStopsWritesToFailingStore(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	m := NewMetrics(prometheus.NewRegistry())
	breaker := circuit.New("event_store", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	p := NewPublisher(store,
		WithPublisherMetrics(m),
		WithStoreBreaker(breaker),
		WithFlushInterval(time.Hour),
	)
	for range 5 {
		p.Emit(Error, Payload{Form: "f"})
	}
	require.NoError(t, p.Close(context.Background()))

	_, calls := store.snapshot()
	assert.Equal(t, 2, calls)
	assert.True(t, breaker.IsOpen())
	assert.Equal(t, float64(3), testutil.ToFloat64(m.Dropped.WithLabelValues("circuit_open")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CircuitBreakerState))
}

func TestPublisherBufferOverflowDropsOldest(t *testing.T) {
	blocked := make(chan struct{})
	store := &blockingStore{release: blocked}
	p := NewPublisher(store, WithBufferSize(2), WithBatchSize(1), WithFlushInterval(time.Hour))

	p.Emit(Alert, Payload{Form: "0"})
	require.Eventually(t, func() bool { return store.started() }, time.Second, 5*time.Millisecond)

	for i := range 3 {
		p.Emit(Alert, Payload{Form: string(rune('1' + i))})
	}
	assert.Equal(t, int64(1), p.Dropped())

	close(blocked)
	require.NoError(t, p.Close(context.Background()))
}

func TestPublisherCloseHonoursContext(t *testing.T) {
	store := &stubStore{}
	p := NewPublisher(store, WithFlushInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Nothing buffered: a cancelled context does not matter.
	require.NoError(t, p.Close(ctx))
}

type blockingStore struct {
	mu      sync.Mutex
	begun   bool
	release chan struct{}
}

func (s *blockingStore) Append(ctx context.Context, _ Event) error {
	s.mu.Lock()
	s.begun = true
	s.mu.Unlock()
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *blockingStore) started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begun
}
