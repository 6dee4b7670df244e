// Package publisher fans custody audit events out to an audit.Store.
//
// In sync mode Emit blocks until the store accepts the event. In async mode
// events are queued on a bounded buffer and a single goroutine drains it;
// a full buffer drops the event and Emit reports ErrBufferFull.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	id "foodsupply/pkg/domain"
	audit "foodsupply/pkg/platform/audit"

	"github.com/google/uuid"
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit publisher closed")
)

// Publisher stamps events and hands them to the store.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	// mu guards sends on buffer against Close.
	mu        sync.RWMutex
	closed    bool
	buffer    chan audit.Event
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a queue of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = make(chan audit.Event, n)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. ID, Timestamp and Category are filled in when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit event dropped after close", "action", event.Action, "listing_id", event.ListingID)
		}
		return ErrClosed
	}
	select {
	case p.buffer <- event:
		return nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.logger != nil {
		p.logger.WarnContext(ctx, "audit event dropped", "action", event.Action, "listing_id", event.ListingID)
	}
	return ErrBufferFull
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		// Detached from the caller: the request may be long gone.
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("audit event persistence failed",
				"action", event.Action,
				"listing_id", event.ListingID,
				"error", err,
			)
		}
	}
}

// List returns a listing's audit trail when the store supports reads.
func (p *Publisher) List(ctx context.Context, listingID id.ListingID) ([]audit.Event, error) {
	lister, ok := p.store.(audit.Lister)
	if !ok {
		return nil, fmt.Errorf("audit store does not support listing")
	}
	return lister.ListByListing(ctx, listingID)
}

// Close stops accepting events and waits for the async queue to drain.
// Later async Emits return ErrClosed.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.buffer == nil {
			return
		}
		p.mu.Lock()
		p.closed = true
		close(p.buffer)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
