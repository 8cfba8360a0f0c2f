package stream

import (
	"sync"
	"time"
)

// DefaultBufferSize is the per-subscriber channel capacity
const DefaultBufferSize = 16

// PredictionEvent is the payload fanned out to live listeners after every
// successful prediction.
type PredictionEvent struct {
	Username       string             `json:"username"`
	StudentID      string             `json:"student_id,omitempty"`
	PredictedLevel int                `json:"predicted_engagement_level"`
	Label          string             `json:"engagement_label"`
	Features       map[string]float64 `json:"features"`
	Feedback       string             `json:"feedback,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
}

// Broker fans prediction events out to any number of subscribers. Each
// subscriber owns a bounded channel; when a slow subscriber falls behind,
// the oldest buffered event is dropped to admit the newest one, so the
// broker never blocks the request path and never grows without bound.
type Broker struct {
	mu          sync.Mutex
	subscribers map[chan PredictionEvent]struct{}
	bufferSize  int
	dropped     uint64
}

// NewBroker creates a broker with the given per-subscriber buffer size
func NewBroker(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Broker{
		subscribers: make(map[chan PredictionEvent]struct{}),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a new listener and returns its event channel
func (b *Broker) Subscribe() chan PredictionEvent {
	ch := make(chan PredictionEvent, b.bufferSize)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	return ch
}

// Unsubscribe removes a listener and closes its channel
func (b *Broker) Unsubscribe(ch chan PredictionEvent) {
	b.mu.Lock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers an event to every subscriber. Full buffers drop their
// oldest event first; delivery never blocks the caller.
func (b *Broker) Publish(event PredictionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Buffer full: drop the oldest event and retry once
			select {
			case <-ch:
				b.dropped++
			default:
			}
			select {
			case ch <- event:
			default:
				b.dropped++
			}
		}
	}
}

// SubscriberCount returns the number of active listeners
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// DroppedCount returns how many events were discarded due to slow listeners
func (b *Broker) DroppedCount() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
