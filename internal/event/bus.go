// Package event is the notification surface external collaborators (UI,
// renderer, persistence) subscribe to for re-rendering after commits,
// undos and redos.
//
// Delivery is synchronous by default and fire-and-forget: publishing is not
// part of the transactional contract, handlers run after the snapshot swap,
// and a panicking handler is contained and counted, never propagated into
// the editing session. A subscription registered with WithAsync is served
// by its own goroutine behind a bounded queue, so a slow consumer drops
// events instead of stalling the editor.
package event

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Event is one published notification. Events are immutable once created.
type Event struct {
	// Topic is the hierarchical event name.
	Topic Topic

	// Payload carries topic-specific data.
	Payload any

	// Metadata describes the event instance.
	Metadata Metadata
}

// Metadata is standard information attached to every event.
type Metadata struct {
	// ID uniquely identifies this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the publisher.
	Source string
}

// NewEvent creates an event with fresh metadata.
func NewEvent(topic Topic, payload any, source string) Event {
	return Event{
		Topic:   topic,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// Handler consumes one event. Handlers must not mutate the payload.
type Handler func(Event)

// Subscription identifies one registered handler for Unsubscribe.
type Subscription struct {
	id uint64
}

// Stats are cumulative bus counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	Dropped       uint64
	HandlerPanics uint64
}

// Bus fans events out to pattern-matched subscribers. Safe for concurrent
// use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64
	closed bool
	wg     sync.WaitGroup

	published     atomic.Uint64
	delivered     atomic.Uint64
	dropped       atomic.Uint64
	handlerPanics atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers a handler for every topic matching the pattern.
// Subscribing to a closed bus returns a dead subscription.
func (b *Bus) Subscribe(pattern Topic, fn Handler, opts ...SubscriptionOption) Subscription {
	sub := &subscriber{pattern: pattern, fn: fn, buffer: DefaultAsyncBuffer}
	for _, opt := range opts {
		opt(sub)
	}
	if sub.async {
		sub.queue = make(chan Event, sub.buffer)
		sub.done = make(chan struct{})
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Subscription{}
	}
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	if sub.async {
		b.wg.Add(1)
		go b.serve(sub)
	}
	b.mu.Unlock()

	return Subscription{id: sub.id}
}

// Unsubscribe removes a handler. An async subscription's worker drains its
// queue and exits. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	s, ok := b.subs[sub.id]
	delete(b.subs, sub.id)
	b.mu.Unlock()

	if ok {
		s.shutdown()
	}
}

// Publish delivers the event to every matching subscriber, in registration
// order. Sync subscribers run inline; async subscribers are enqueued, and a
// full queue drops the event. A panicking handler is recovered and counted;
// remaining handlers still run.
func (b *Bus) Publish(e Event) {
	b.published.Add(1)

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	matched := make([]*subscriber, 0, len(b.subs))
	for id := uint64(1); id <= b.nextID; id++ {
		sub, ok := b.subs[id]
		if ok && sub.wants(e) {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range matched {
		if sub.async {
			select {
			case sub.queue <- e:
			default:
				b.dropped.Add(1)
			}
		} else {
			b.deliver(sub.fn, e)
		}
		if sub.once {
			b.Unsubscribe(Subscription{id: sub.id})
		}
	}
}

// serve is an async subscription's worker. On shutdown it drains whatever
// was queued first, so Close never discards accepted events.
func (b *Bus) serve(sub *subscriber) {
	defer b.wg.Done()
	for {
		select {
		case e := <-sub.queue:
			b.deliver(sub.fn, e)
		case <-sub.done:
			for {
				select {
				case e := <-sub.queue:
					b.deliver(sub.fn, e)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) deliver(fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
		}
	}()
	fn(e)
	b.delivered.Add(1)
}

// Close removes every subscription and waits for async workers to finish
// their queues. Publishing and subscribing after Close are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	dying := make([]*subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		dying = append(dying, s)
	}
	b.subs = make(map[uint64]*subscriber)
	b.mu.Unlock()

	for _, s := range dying {
		s.shutdown()
	}
	b.wg.Wait()
}

// Stats returns cumulative counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published:     b.published.Load(),
		Delivered:     b.delivered.Load(),
		Dropped:       b.dropped.Load(),
		HandlerPanics: b.handlerPanics.Load(),
	}
}

// SubscriberCount returns the number of registered handlers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
