package gmset

import "github.com/oklog/ulid/v2"

const (
	// EventInserted is emitted when an item is created.
	EventInserted EventKind = "inserted"
	// EventUpdated is emitted when an item is modified. The payload is the full row.
	EventUpdated EventKind = "updated"
	// EventDeleted is emitted when an item is removed.
	EventDeleted EventKind = "deleted"
)

type (
	// An EventKind is the kind of mutation carried by an Event.
	EventKind string

	// An Event is a change notification of the collection feed.
	// Delivery is at-least-once and unordered across items.
	Event struct {
		ID           string    `json:"id"` // ULID
		Kind         EventKind `json:"kind"`
		CollectionID string    `json:"collection_id"`
		ItemID       string    `json:"item_id"`
		Item         *Item     `json:"item,omitempty"`
	}
)

// Inserted returns a new insertion event for the given item.
func Inserted(item Item) Event {
	return Event{
		ID:           ulid.Make().String(),
		Kind:         EventInserted,
		CollectionID: item.CollectionID,
		ItemID:       item.ID,
		Item:         &item,
	}
}

// Updated returns a new update event for the given item.
func Updated(item Item) Event {
	return Event{
		ID:           ulid.Make().String(),
		Kind:         EventUpdated,
		CollectionID: item.CollectionID,
		ItemID:       item.ID,
		Item:         &item,
	}
}

// Deleted returns a new deletion event.
func Deleted(collectionID, itemID string) Event {
	return Event{
		ID:           ulid.Make().String(),
		Kind:         EventDeleted,
		CollectionID: collectionID,
		ItemID:       itemID,
	}
}

// Key returns the identity of the item targeted by the event.
func (e Event) Key() string {
	if e.ItemID == "" && e.Item != nil {
		return e.Item.ID
	}
	return e.ItemID
}
