package event

import (
	"sync"
	"sync/atomic"
)

// DefaultAsyncBuffer is the queue capacity of an async subscription that
// did not set one with WithBuffer.
const DefaultAsyncBuffer = 64

// SubscriptionOption configures one subscription at registration time.
type SubscriptionOption func(*subscriber)

// WithFilter delivers only events the predicate accepts. The predicate runs
// on the publishing goroutine and must be fast and side-effect free.
func WithFilter(fn func(Event) bool) SubscriptionOption {
	return func(s *subscriber) { s.filter = fn }
}

// WithOnce cancels the subscription after its first delivery.
func WithOnce() SubscriptionOption {
	return func(s *subscriber) { s.once = true }
}

// WithAsync moves delivery onto the subscription's own goroutine. Publish
// enqueues and returns immediately; when the queue is full the event is
// dropped and counted, never blocking the editing session.
func WithAsync() SubscriptionOption {
	return func(s *subscriber) { s.async = true }
}

// WithBuffer sets the queue capacity of an async subscription.
func WithBuffer(n int) SubscriptionOption {
	return func(s *subscriber) {
		if n > 0 {
			s.buffer = n
		}
	}
}

type subscriber struct {
	id      uint64
	pattern Topic
	fn      Handler
	filter  func(Event) bool
	once    bool
	async   bool
	buffer  int

	// fired flips when a once subscription claims its event.
	fired atomic.Bool

	// queue and done drive the async worker; nil for sync subscriptions.
	queue chan Event
	done  chan struct{}
	stop  sync.Once
}

// wants reports whether the event should reach this subscriber. A once
// subscriber claims its single event here, so concurrent publishers cannot
// both deliver.
func (s *subscriber) wants(e Event) bool {
	if !e.Topic.Match(s.pattern) {
		return false
	}
	if s.filter != nil && !s.filter(e) {
		return false
	}
	if s.once && !s.fired.CompareAndSwap(false, true) {
		return false
	}
	return true
}

// shutdown signals the async worker to drain and exit. Safe to call more
// than once, and a no-op for sync subscriptions.
func (s *subscriber) shutdown() {
	if !s.async {
		return
	}
	s.stop.Do(func() { close(s.done) })
}
