package events

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestEmitDeliversToAllSubscribers(t *testing.T) {
	bus := NewEventBus()
	var mu sync.Mutex
	var got []string

	bus.Subscribe(EventRoomCreated, "a", func(ctx context.Context, e Event) error {
		mu.Lock()
		got = append(got, "a")
		mu.Unlock()
		return nil
	})
	bus.Subscribe(EventRoomCreated, "b", func(ctx context.Context, e Event) error {
		mu.Lock()
		got = append(got, "b")
		mu.Unlock()
		return nil
	})

	bus.Emit(context.Background(), Event{Type: EventRoomCreated})
	bus.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("got %d deliveries, want 2: %v", len(got), got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus()
	called := false
	bus.Subscribe(EventShutdown, "x", func(ctx context.Context, e Event) error {
		called = true
		return nil
	})
	bus.Unsubscribe(EventShutdown, "x")
	bus.Emit(context.Background(), Event{Type: EventShutdown})
	bus.Stop()
	if called {
		t.Error("handler was called after unsubscribe")
	}
}

func TestStopWaitsForInFlightHandlers(t *testing.T) {
	bus := NewEventBus()
	done := make(chan struct{})
	bus.Subscribe(EventUserKicked, "slow", func(ctx context.Context, e Event) error {
		time.Sleep(20 * time.Millisecond)
		close(done)
		return nil
	})
	bus.Emit(context.Background(), Event{Type: EventUserKicked})
	bus.Stop()
	select {
	case <-done:
	default:
		t.Error("Stop returned before handler finished")
	}
}
