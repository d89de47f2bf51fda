package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semrouter/internal/domain/routing"
	"github.com/kailas-cloud/semrouter/internal/metrics"
)

// DefaultBufferSize is the event buffer used when none is configured.
const DefaultBufferSize = 1000

const drainTimeout = 5 * time.Second

type publisher interface {
	Publish(ctx context.Context, ev routing.Event) error
}

// Collector buffers route events and publishes them from a single goroutine.
// Track never blocks: a full buffer drops the event.
type Collector struct {
	pub    publisher
	ch     chan routing.Event
	done   chan struct{}
	logger *zap.Logger

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewCollector creates a Collector. Call Start before Track.
func NewCollector(pub publisher, bufferSize int, logger *zap.Logger) *Collector {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Collector{
		pub:    pub,
		ch:     make(chan routing.Event, bufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start launches the publishing loop. It stops when ctx is done or Close is called.
func (c *Collector) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	go func() {
		defer close(c.done)
		for {
			select {
			case ev, ok := <-c.ch:
				if !ok {
					return
				}
				c.publish(ctx, ev)
			case <-ctx.Done():
				c.drain()
				return
			}
		}
	}()
	c.logger.Info("Route event collector started", zap.Int("buffer_size", cap(c.ch)))
}

// Track enqueues ev without blocking.
func (c *Collector) Track(ev routing.Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- ev:
	default:
		metrics.EventsDroppedTotal.Inc()
		c.logger.Warn("Route event dropped (buffer full)", zap.String("route", ev.Route))
	}
}

// Close stops accepting events, publishes what is buffered and waits for the loop.
func (c *Collector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.done
		return
	}
	c.closed = true
	close(c.ch)
	started := c.started
	c.mu.Unlock()

	if !started {
		close(c.done)
		return
	}
	<-c.done
}

func (c *Collector) publish(ctx context.Context, ev routing.Event) {
	if err := c.pub.Publish(ctx, ev); err != nil {
		c.logger.Error("Failed to publish route event", zap.String("route", ev.Route), zap.Error(err))
	}
}

// drain publishes whatever is still buffered after ctx is done.
func (c *Collector) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case ev, ok := <-c.ch:
			if !ok {
				return
			}
			c.publish(ctx, ev)
		default:
			return
		}
	}
}
