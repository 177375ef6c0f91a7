package event

import (
	"sync"
	"testing"
	"time"
)

func TestBusPublishDeliversInRegistrationOrder(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	var order []string
	b.Subscribe("editor.commit", func(Event) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	b.Subscribe("editor.*", func(Event) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	})
	b.Subscribe("project.*", func(Event) {
		t.Error("non-matching subscriber invoked")
	})

	b.Publish(NewEvent(TopicCommit, nil, "test"))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("delivery order = %v, want [first second]", order)
	}
}

func TestBusUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()

	var calls int
	sub := b.Subscribe("editor.commit", func(Event) { calls++ })

	b.Publish(NewEvent(TopicCommit, nil, "test"))
	b.Unsubscribe(sub)
	b.Publish(NewEvent(TopicCommit, nil, "test"))

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if b.SubscriberCount() != 0 {
		t.Errorf("subscriber count = %d, want 0", b.SubscriberCount())
	}
}

func TestBusFilterSkipsRejectedEvents(t *testing.T) {
	b := NewBus()

	var got []string
	b.Subscribe("editor.commit", func(e Event) {
		got = append(got, e.Payload.(string))
	}, WithFilter(func(e Event) bool {
		return e.Payload == "keep"
	}))

	b.Publish(NewEvent(TopicCommit, "drop", "test"))
	b.Publish(NewEvent(TopicCommit, "keep", "test"))

	if len(got) != 1 || got[0] != "keep" {
		t.Errorf("delivered payloads = %v, want [keep]", got)
	}
}

func TestBusOnceDeliversExactlyOnce(t *testing.T) {
	b := NewBus()

	var calls int
	b.Subscribe("editor.*", func(Event) { calls++ }, WithOnce())

	b.Publish(NewEvent(TopicCommit, nil, "test"))
	b.Publish(NewEvent(TopicUndo, nil, "test"))

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if b.SubscriberCount() != 0 {
		t.Error("once subscription should be removed after delivery")
	}
}

func TestBusOnceSkipsFilteredEvents(t *testing.T) {
	b := NewBus()

	var got string
	b.Subscribe("editor.*", func(e Event) {
		got = e.Payload.(string)
	}, WithOnce(), WithFilter(func(e Event) bool {
		return e.Payload == "wanted"
	}))

	// A filtered-out event must not consume the single delivery.
	b.Publish(NewEvent(TopicCommit, "other", "test"))
	b.Publish(NewEvent(TopicCommit, "wanted", "test"))

	if got != "wanted" {
		t.Errorf("delivered payload = %q, want wanted", got)
	}
}

func TestBusAsyncDeliversOffPublisher(t *testing.T) {
	b := NewBus()
	defer b.Close()

	received := make(chan Event, 1)
	b.Subscribe("editor.commit", func(e Event) {
		received <- e
	}, WithAsync())

	b.Publish(NewEvent(TopicCommit, "payload", "test"))

	select {
	case e := <-received:
		if e.Payload != "payload" {
			t.Errorf("payload = %v, want payload", e.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("async delivery never arrived")
	}
}

func TestBusAsyncFullQueueDrops(t *testing.T) {
	b := NewBus()

	gate := make(chan struct{})
	started := make(chan struct{}, 1)
	var delivered int
	b.Subscribe("editor.commit", func(Event) {
		started <- struct{}{}
		<-gate
		delivered++
	}, WithAsync(), WithBuffer(1))

	// First event occupies the worker; wait until the handler is inside.
	b.Publish(NewEvent(TopicCommit, 1, "test"))
	<-started

	// Second fills the one-slot queue, third has nowhere to go.
	b.Publish(NewEvent(TopicCommit, 2, "test"))
	b.Publish(NewEvent(TopicCommit, 3, "test"))

	if got := b.Stats().Dropped; got != 1 {
		t.Errorf("dropped = %d, want 1", got)
	}

	// Close drains the queued event once the handler unblocks.
	close(gate)
	b.Close()

	if delivered != 2 {
		t.Errorf("delivered = %d, want 2 (first plus drained)", delivered)
	}
}

func TestBusPanicContained(t *testing.T) {
	b := NewBus()

	var second bool
	b.Subscribe("editor.commit", func(Event) { panic("handler exploded") })
	b.Subscribe("editor.commit", func(Event) { second = true })

	b.Publish(NewEvent(TopicCommit, nil, "test"))

	if !second {
		t.Error("later handler must still run after a panic")
	}
	if got := b.Stats().HandlerPanics; got != 1 {
		t.Errorf("handler panics = %d, want 1", got)
	}
}

func TestBusCloseStopsTraffic(t *testing.T) {
	b := NewBus()

	var calls int
	b.Subscribe("editor.commit", func(Event) { calls++ })
	b.Close()

	b.Publish(NewEvent(TopicCommit, nil, "test"))
	if calls != 0 {
		t.Error("publish after close must not deliver")
	}

	dead := b.Subscribe("editor.commit", func(Event) { calls++ })
	b.Publish(NewEvent(TopicCommit, nil, "test"))
	if calls != 0 {
		t.Error("subscribe after close must be inert")
	}
	b.Unsubscribe(dead) // must not panic
}

func TestBusCloseDrainsAsyncQueue(t *testing.T) {
	b := NewBus()

	var mu sync.Mutex
	var got []int
	b.Subscribe("editor.commit", func(e Event) {
		mu.Lock()
		got = append(got, e.Payload.(int))
		mu.Unlock()
	}, WithAsync())

	for i := 0; i < 10; i++ {
		b.Publish(NewEvent(TopicCommit, i, "test"))
	}
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 10 {
		t.Fatalf("delivered %d events, want all 10 drained", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("event %d = %d, want in-order drain", i, v)
		}
	}
}

func TestBusStatsCount(t *testing.T) {
	b := NewBus()

	b.Subscribe("editor.*", func(Event) {})
	b.Publish(NewEvent(TopicCommit, nil, "test"))
	b.Publish(NewEvent(TopicProjectSaved, nil, "test")) // no subscriber

	s := b.Stats()
	if s.Published != 2 {
		t.Errorf("published = %d, want 2", s.Published)
	}
	if s.Delivered != 1 {
		t.Errorf("delivered = %d, want 1", s.Delivered)
	}
}

func TestNewEventMetadata(t *testing.T) {
	e := NewEvent(TopicCommit, nil, "session")
	if e.Metadata.ID == "" {
		t.Error("event ID should be set")
	}
	if e.Metadata.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	if e.Metadata.Source != "session" {
		t.Errorf("source = %q, want session", e.Metadata.Source)
	}
}
