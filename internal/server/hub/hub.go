// Package hub fans out the change events of the collections to their live subscribers.
package hub

import (
	"sync"

	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/sirupsen/logrus"
)

// DefaultBuffer is the number of pending events a subscriber can hold.
const DefaultBuffer = 64

type (
	// A Hub holds the subscribers of each collection.
	Hub struct {
		mu          sync.Mutex
		buffer      int
		log         logrus.FieldLogger
		subscribers map[string]map[*Subscriber]struct{}
	}

	// A Subscriber receives the events of one collection.
	Subscriber struct {
		collectionID string
		events       chan gmset.Event
		closed       bool
	}
)

// New returns a new Hub.
func New(buffer int, log logrus.FieldLogger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	return &Hub{
		buffer:      buffer,
		log:         log,
		subscribers: map[string]map[*Subscriber]struct{}{},
	}
}

// Subscribe registers a new subscriber for the given collection.
func (h *Hub) Subscribe(collectionID string) *Subscriber {
	s := &Subscriber{
		collectionID: collectionID,
		events:       make(chan gmset.Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[collectionID] == nil {
		h.subscribers[collectionID] = map[*Subscriber]struct{}{}
	}
	h.subscribers[collectionID][s] = struct{}{}
	return s
}

// Unsubscribe removes the subscriber. It is safe to call it several times.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.remove(s)
}

// Publish sends the event to all the subscribers of its collection.
// A subscriber whose buffer is full is dropped and its channel closed.
func (h *Hub) Publish(event gmset.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subscribers[event.CollectionID] {
		select {
		case s.events <- event:
		default:
			h.log.WithField("collection_id", event.CollectionID).Warn("Dropping slow change feed subscriber")
			h.remove(s)
		}
	}
}

// Len returns the number of subscribers of the given collection.
func (h *Hub) Len(collectionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subscribers[collectionID])
}

func (h *Hub) remove(s *Subscriber) {
	if s.closed {
		return
	}

	s.closed = true
	close(s.events)

	subscribers := h.subscribers[s.collectionID]
	delete(subscribers, s)
	if len(subscribers) == 0 {
		delete(h.subscribers, s.collectionID)
	}
}

// Events returns the events channel. It is closed when the subscriber is removed.
func (s *Subscriber) Events() <-chan gmset.Event {
	return s.events
}

// CollectionID returns the subscribed collection.
func (s *Subscriber) CollectionID() string {
	return s.collectionID
}
