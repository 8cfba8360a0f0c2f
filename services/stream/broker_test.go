package stream

import (
	"testing"
	"time"
)

func event(level int) PredictionEvent {
	return PredictionEvent{
		Username:       "alice",
		PredictedLevel: level,
		Label:          "High",
		Timestamp:      time.Now(),
	}
}

func TestSubscribeAndPublish(t *testing.T) {
	b := NewBroker(4)

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	if got := b.SubscriberCount(); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}

	b.Publish(event(2))

	select {
	case got := <-ch:
		if got.PredictedLevel != 2 {
			t.Errorf("unexpected event: %+v", got)
		}
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestPublishDropsOldestWhenFull(t *testing.T) {
	b := NewBroker(2)

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill the buffer, then overflow it
	b.Publish(event(0))
	b.Publish(event(1))
	b.Publish(event(2))

	// The oldest event (level 0) was dropped to admit the newest
	first := <-ch
	if first.PredictedLevel != 1 {
		t.Errorf("expected level 1 first, got %d", first.PredictedLevel)
	}
	second := <-ch
	if second.PredictedLevel != 2 {
		t.Errorf("expected level 2 second, got %d", second.PredictedLevel)
	}

	if got := b.DroppedCount(); got != 1 {
		t.Errorf("expected 1 dropped event, got %d", got)
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	b := NewBroker(1)

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		// Nobody reads ch; every publish past the first must drop
		for i := 0; i < 100; i++ {
			b.Publish(event(i % 3))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker(4)

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("expected 0 subscribers, got %d", got)
	}

	// Double unsubscribe is a no-op, not a panic
	b.Unsubscribe(ch)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := NewBroker(4)
	b.Publish(event(1)) // must not panic or block
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("expected 0 subscribers, got %d", got)
	}
}

func TestMultipleSubscribersEachReceive(t *testing.T) {
	b := NewBroker(4)

	first := b.Subscribe()
	second := b.Subscribe()
	defer b.Unsubscribe(first)
	defer b.Unsubscribe(second)

	b.Publish(event(2))

	for _, ch := range []chan PredictionEvent{first, second} {
		select {
		case got := <-ch:
			if got.PredictedLevel != 2 {
				t.Errorf("unexpected event: %+v", got)
			}
		default:
			t.Error("subscriber did not receive the event")
		}
	}
}
