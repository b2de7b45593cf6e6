package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"avelements/pkg/platform/circuit"
)

// Store persists or forwards events. Implementations live under store/.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher is an asynchronous Sink in front of a Store. Emit never blocks:
// events are buffered (oldest dropped when full) and written by a background
// loop. A circuit breaker stops hammering an unhealthy store; events arriving
// while it is open are dropped. Close drains the buffer.
type Publisher struct {
	store   Store
	buffer  *ringBuffer
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *Metrics

	batchSize     int
	flushInterval time.Duration
	writeTimeout  time.Duration

	notify    chan struct{}
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithPublisherMetrics(m *Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithBufferSize bounds the number of undelivered events kept in memory.
func WithBufferSize(n int) PublisherOption {
	return func(p *Publisher) {
		p.buffer = newRingBuffer(n)
	}
}

// WithBatchSize sets how many events one flush writes at most.
func WithBatchSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithFlushInterval sets how often the buffer is flushed when idle.
func WithFlushInterval(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

// WithStoreBreaker replaces the default store circuit breaker.
func WithStoreBreaker(b *circuit.Breaker) PublisherOption {
	return func(p *Publisher) {
		if b != nil {
			p.breaker = b
		}
	}
}

// NewPublisher starts a publisher writing to store.
func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:         store,
		buffer:        newRingBuffer(1024),
		breaker:       circuit.New("event_store", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(1), circuit.WithCooldown(time.Minute)),
		logger:        slog.New(slog.DiscardHandler),
		batchSize:     64,
		flushInterval: time.Second,
		writeTimeout:  5 * time.Second,
		notify:        make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Emit buffers the event for delivery.
func (p *Publisher) Emit(name string, payload Payload) {
	if p.closed.Load() {
		p.metrics.incDropped("closed")
		return
	}
	if p.buffer.enqueue(NewEvent(name, payload)) {
		p.metrics.incDropped("buffer_full")
	}
	p.metrics.setBufferDepth(p.buffer.len())
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// Dropped returns how many events were evicted from a full buffer.
func (p *Publisher) Dropped() int64 {
	return p.buffer.droppedTotal()
}

// Close stops the background loop and writes whatever is still buffered,
// giving up when ctx is done.
func (p *Publisher) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.done)
	})
	p.wg.Wait()
	for p.buffer.len() > 0 {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("event publisher closed with undelivered events",
				"remaining", p.buffer.len(),
				"error", err,
			)
			return err
		}
		p.flush(ctx)
	}
	return nil
}

func (p *Publisher) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-p.notify:
			p.flush(context.Background())
		case <-ticker.C:
			p.flush(context.Background())
		}
	}
}

func (p *Publisher) flush(ctx context.Context) {
	for {
		batch := p.buffer.dequeueBatch(p.batchSize)
		if len(batch) == 0 {
			p.metrics.setBufferDepth(0)
			return
		}
		for _, event := range batch {
			p.write(ctx, event)
		}
		p.metrics.setBufferDepth(p.buffer.len())
	}
}

func (p *Publisher) write(ctx context.Context, event Event) {
	if !p.breaker.Allow() {
		p.metrics.incDropped("circuit_open")
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	if err := p.store.Append(writeCtx, event); err != nil {
		p.metrics.incPersistFailures()
		p.metrics.incDropped("store_error")
		_, change := p.breaker.RecordFailure()
		if change.Opened {
			p.metrics.setCircuitBreakerState(true)
			p.logger.Warn("event store circuit breaker opened", "breaker", p.breaker.Name())
		}
		p.logger.Error("failed to deliver event",
			"event", event.Name,
			"event_id", event.ID,
			"error", err,
		)
		return
	}

	_, change := p.breaker.RecordSuccess()
	if change.Closed {
		p.metrics.setCircuitBreakerState(false)
		p.logger.Info("event store circuit breaker closed", "breaker", p.breaker.Name())
	}
	p.metrics.incPublished(event.Name)
}
