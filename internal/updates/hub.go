// Package updates fans partial preference updates out to subscribers
package updates

import (
	"sync"

	"github.com/tabgroups/tabgroups/internal/domain"
)

// DefaultBuffer is the per-subscriber queue length
const DefaultBuffer = 16

// Hub implements domain.UpdateChannel and domain.UpdatePublisher
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	nextID int
	buffer int
	closed bool
	logger domain.Logger
}

type subscription struct {
	ch   chan domain.Update
	done chan struct{}
	once sync.Once
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

// NewHub creates a hub with the default per-subscriber buffer
func NewHub(logger domain.Logger) *Hub {
	return NewHubWithBuffer(DefaultBuffer, logger)
}

// NewHubWithBuffer creates a hub whose subscribers queue up to buffer updates
func NewHubWithBuffer(buffer int, logger domain.Logger) *Hub {
	if buffer < 0 {
		buffer = 0
	}
	return &Hub{
		subs:   make(map[int]*subscription),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a listener. The returned cancel func stops delivery and
// must be called when the listener goes away; it is safe to call twice.
// After Close the returned channel is already closed.
func (h *Hub) Subscribe() (<-chan domain.Update, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscription{
		ch:   make(chan domain.Update, h.buffer),
		done: make(chan struct{}),
	}
	if h.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = sub

	cancel := func() {
		sub.stop()
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
	return sub.ch, cancel
}

// Publish delivers update to every subscriber. It blocks while a
// subscriber's queue is full, until that subscriber reads or cancels.
func (h *Hub) Publish(update domain.Update) {
	if update.Empty() {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	for _, sub := range h.subs {
		select {
		case sub.ch <- update:
		case <-sub.done:
		}
	}
	if h.logger != nil {
		h.logger.Debug("published preference update", "keys", update.Keys(), "subscribers", len(h.subs))
	}
}

// Close ends every subscription; later publishes are dropped
func (h *Hub) Close() {
	// Release publishers blocked on a full queue before waiting for the lock.
	h.mu.RLock()
	for _, sub := range h.subs {
		sub.stop()
	}
	h.mu.RUnlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		sub.stop()
		close(sub.ch)
		delete(h.subs, id)
	}
}

var (
	_ domain.UpdateChannel   = (*Hub)(nil)
	_ domain.UpdatePublisher = (*Hub)(nil)
)
