// Package mirror keeps a local copy of the items of the active collection,
// consistent with an unordered at-least-once change feed.
package mirror

import (
	"sync"

	"github.com/mdouchement/grandmaster/pkg/gmset"
)

// A Mirror is the local replica of one collection. Items are keyed by id and
// kept in display order.
type Mirror struct {
	mu           sync.RWMutex
	collectionID string
	revision     uint64
	order        []string
	items        map[string]gmset.Item
}

// New returns an empty mirror with no active collection.
func New() *Mirror {
	return &Mirror{
		items: map[string]gmset.Item{},
	}
}

// Switch clears the mirror and makes collectionID the active collection.
func (m *Mirror) Switch(collectionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.collectionID = collectionID
	m.reset()
}

// LoadInitial replaces the whole content of the mirror with the given items, in the given order.
// It does nothing and returns false when collectionID is not the active collection.
func (m *Mirror) LoadInitial(collectionID string, items []gmset.Item) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if collectionID != m.collectionID {
		return false
	}

	m.reset()
	for _, item := range items {
		if item.CollectionID != m.collectionID {
			continue
		}
		m.upsert(item)
	}
	return true
}

// Apply merges a change event into the mirror. It returns true when the mirror changed.
// Events of another collection are discarded.
func (m *Mirror) Apply(event gmset.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.CollectionID != m.collectionID {
		return false
	}

	switch event.Kind {
	case gmset.EventInserted, gmset.EventUpdated:
		if event.Item == nil || event.Item.CollectionID != m.collectionID {
			return false
		}
		m.upsert(*event.Item)
		return true
	case gmset.EventDeleted:
		return m.delete(event.Key())
	}
	return false
}

// CollectionID returns the active collection.
func (m *Mirror) CollectionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.collectionID
}

// Revision is incremented on every change of the mirror.
func (m *Mirror) Revision() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.revision
}

// Len returns the number of items.
func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.order)
}

// Get returns the item for the given id.
func (m *Mirror) Get(id string) (gmset.Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	return item, ok
}

// Items returns a copy of the items in display order.
func (m *Mirror) Items() []gmset.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]gmset.Item, 0, len(m.order))
	for _, id := range m.order {
		items = append(items, m.items[id])
	}
	return items
}

// Snapshot returns the revision and the items read under the same lock.
func (m *Mirror) Snapshot() (uint64, []gmset.Item) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]gmset.Item, 0, len(m.order))
	for _, id := range m.order {
		items = append(items, m.items[id])
	}
	return m.revision, items
}

func (m *Mirror) reset() {
	m.order = m.order[:0]
	m.items = map[string]gmset.Item{}
	m.revision++
}

// upsert overwrites an existing item in place or appends a new one.
func (m *Mirror) upsert(item gmset.Item) {
	if _, ok := m.items[item.ID]; !ok {
		m.order = append(m.order, item.ID)
	}
	m.items[item.ID] = item
	m.revision++
}

func (m *Mirror) delete(id string) bool {
	if _, ok := m.items[id]; !ok {
		return false
	}

	delete(m.items, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.revision++
	return true
}
