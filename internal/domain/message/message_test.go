package message

import (
	"sync"
	"testing"
)

func TestBus_PublishToAllSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	a := bus.Subscribe(1)
	b := bus.Subscribe(1)
	defer a.Close()
	defer b.Close()

	n := bus.Publish(Message{Origin: "http://127.0.0.1:8765", Type: TypeAuthSuccess})
	if n != 2 {
		t.Fatalf("Publish() delivered to %d, want 2", n)
	}

	for _, sub := range []*Subscription{a, b} {
		msg := <-sub.C
		if msg.Type != TypeAuthSuccess {
			t.Errorf("Type = %q, want %q", msg.Type, TypeAuthSuccess)
		}
		if msg.ReceivedAt.IsZero() {
			t.Error("ReceivedAt should be stamped on publish")
		}
	}
}

func TestBus_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	sub := bus.Subscribe(1)
	defer sub.Close()

	if n := bus.Publish(Message{Type: TypeAuthSuccess}); n != 1 {
		t.Fatalf("first Publish() = %d, want 1", n)
	}
	if n := bus.Publish(Message{Type: TypeAuthError}); n != 0 {
		t.Errorf("second Publish() = %d, want 0 (buffer full)", n)
	}
}

func TestSubscription_CloseDetaches(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	sub := bus.Subscribe(4)
	if bus.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", bus.Subscribers())
	}

	sub.Close()
	sub.Close()

	if bus.Subscribers() != 0 {
		t.Errorf("Subscribers() after Close = %d, want 0", bus.Subscribers())
	}
	if n := bus.Publish(Message{Type: TypeAuthSuccess}); n != 0 {
		t.Errorf("Publish() after Close delivered to %d, want 0", n)
	}
	if _, ok := <-sub.C; ok {
		t.Error("C should be closed after Close")
	}
}

func TestBus_ConcurrentPublishAndClose(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		sub := bus.Subscribe(2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Publish(Message{Type: TypeAuthSuccess})
		}()
		go func() {
			defer wg.Done()
			sub.Close()
		}()
	}
	wg.Wait()

	if bus.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", bus.Subscribers())
	}
}
