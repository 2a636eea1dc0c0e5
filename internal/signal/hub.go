package signal

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Event types published by the engine.
const (
	TypeIndicatorsUpdated = "indicators_updated"
	TypeSyncFinished      = "sync_finished"
	TypeAlert             = "alert"
)

// Event is one engine notification.
type Event struct {
	Type      string         `json:"type"`
	Slug      string         `json:"slug,omitempty"`
	RunID     string         `json:"run_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Hub fans engine events out to subscribers by type. Publishing never
// blocks; slow subscribers drop events.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string][]chan Event
	logger  *zap.Logger
	dropped uint64
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   map[string][]chan Event{},
		logger: logger,
	}
}

// Subscribe returns a channel receiving events of the given type.
func (h *Hub) Subscribe(eventType string, buf int) <-chan Event {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan Event, buf)
	h.mu.Lock()
	h.subs[eventType] = append(h.subs[eventType], ch)
	h.mu.Unlock()
	return ch
}

func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[ev.Type] {
		select {
		case ch <- ev:
		default:
			// Drop when subscriber is slow; the hub must not block syncs.
			if n := atomic.AddUint64(&h.dropped, 1); n%100 == 1 && h.logger != nil {
				h.logger.Warn("hub dropping events for slow subscriber",
					zap.String("type", ev.Type),
					zap.Uint64("dropped_total", n))
			}
		}
	}
}

// Dropped reports how many events were discarded for slow subscribers.
func (h *Hub) Dropped() uint64 {
	return atomic.LoadUint64(&h.dropped)
}
