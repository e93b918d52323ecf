// Package stream fans committed ledger events out to live subscribers.
package stream

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultBufferSize is the number of events a subscriber may fall behind before it is dropped.
const DefaultBufferSize = 256

// ErrSubscriberTooSlow ends a subscription whose buffer overflowed.
var ErrSubscriberTooSlow = status.Error(codes.ResourceExhausted, "subscriber fell too far behind")

type subscriber struct {
	filter   chain.LogFilter
	events   chan *chain.Log
	overflow chan struct{}
	once     sync.Once
}

func (s *subscriber) drop() {
	s.once.Do(func() {
		close(s.overflow)
	})
}

// EventRouter receives the logs of every committed ledger transaction and hands them to the
// subscribers whose filter matches.
type EventRouter struct {
	subscribers sync.Map
	count       atomic.Int64
	bufferSize  int
}

// NewEventRouter creates a router whose subscriptions buffer bufferSize logs each.
func NewEventRouter(bufferSize int) *EventRouter {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &EventRouter{bufferSize: bufferSize}
}

// Attach feeds the router from engine.
func (r *EventRouter) Attach(engine *chain.Engine) {
	engine.AddLogSink(r.Publish)
}

// Publish delivers logs without blocking. A subscriber whose buffer is full is dropped.
func (r *EventRouter) Publish(logs []*chain.Log) {
	r.subscribers.Range(func(key, value any) bool {
		sub := value.(*subscriber)
		for _, l := range logs {
			if !sub.filter.Match(l) {
				continue
			}
			select {
			case sub.events <- l:
			default:
				slog.Default().Warn("Dropping slow event subscriber", "subscriber", key.(uuid.UUID).String())
				sub.drop()
				r.remove(key.(uuid.UUID))
				return true
			}
		}
		return true
	})
}

// Subscription is one registered subscriber.
type Subscription struct {
	id     uuid.UUID
	router *EventRouter
	sub    *subscriber
}

// Subscribe registers a subscriber for logs matching filter. FromBlock and Limit are ignored.
func (r *EventRouter) Subscribe(filter chain.LogFilter) *Subscription {
	filter.FromBlock, filter.Limit = 0, 0
	id := uuid.New()
	sub := &subscriber{
		filter:   filter,
		events:   make(chan *chain.Log, r.bufferSize),
		overflow: make(chan struct{}),
	}
	r.subscribers.Store(id, sub)
	r.count.Add(1)
	return &Subscription{id: id, router: r, sub: sub}
}

func (r *EventRouter) remove(id uuid.UUID) {
	if _, loaded := r.subscribers.LoadAndDelete(id); loaded {
		r.count.Add(-1)
	}
}

// Subscribers returns the number of live subscriptions.
func (r *EventRouter) Subscribers() int {
	return int(r.count.Load())
}

// ID identifies the subscription within its router.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Events delivers matching logs in commit order.
func (s *Subscription) Events() <-chan *chain.Log {
	return s.sub.events
}

// Dropped is closed when the subscription overflowed.
func (s *Subscription) Dropped() <-chan struct{} {
	return s.sub.overflow
}

// Close unregisters the subscription.
func (s *Subscription) Close() {
	s.router.remove(s.id)
}

// SubscribeToEvents streams matching logs to send until ctx ends, send fails or the
// subscriber falls behind.
func (r *EventRouter) SubscribeToEvents(ctx context.Context, filter chain.LogFilter, send func(*chain.Log) error) error {
	sub := r.Subscribe(filter)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Dropped():
			return ErrSubscriberTooSlow
		case l := <-sub.Events():
			if err := send(l); err != nil {
				if isStreamClosedError(err) {
					return nil
				}
				slog.Default().Error("Unexpected error sending event to stream", "error", err, "subscriber", sub.ID().String())
				return err
			}
		}
	}
}

func isStreamClosedError(err error) bool {
	if err == nil {
		return false
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Canceled, codes.Unavailable, codes.DeadlineExceeded:
			return true
		default:
			return false
		}
	}

	return false
}
