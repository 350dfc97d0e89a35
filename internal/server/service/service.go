// Package service performs the collection writes and publishes their change events.
package service

import (
	"net/http"
	"strings"
	"sync"

	"github.com/mdouchement/grandmaster/internal/database"
	"github.com/mdouchement/grandmaster/internal/gmerror"
	"github.com/mdouchement/grandmaster/internal/model"
	"github.com/mdouchement/grandmaster/internal/server/serializer"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
)

type (
	// A Publisher broadcasts change events.
	Publisher interface {
		Publish(event gmset.Event)
	}

	// A CollectionService is a service used for writing collections and their items.
	// Events are published in the order their writes are committed.
	CollectionService struct {
		mu        sync.Mutex
		db        database.Client
		publisher Publisher
	}
)

// New instantiates a new CollectionService.
func New(db database.Client, publisher Publisher) *CollectionService {
	return &CollectionService{
		db:        db,
		publisher: publisher,
	}
}

// SaveCollection creates or renames a collection.
func (s *CollectionService) SaveCollection(collection gmset.Collection) (*gmset.Collection, error) {
	if strings.TrimSpace(collection.ID) == "" {
		return nil, gmerror.NewWithTagCode(http.StatusBadRequest, gmerror.TagInvalidParams, "collection id is required")
	}
	if strings.TrimSpace(collection.Name) == "" {
		collection.Name = gmset.DefaultCollectionName
	}

	m := &model.Collection{Name: collection.Name}
	m.ID = collection.ID
	if err := s.db.SaveCollection(m); err != nil {
		return nil, errors.Wrap(err, "could not save collection")
	}

	saved := serializer.Collection(m)
	return &saved, nil
}

// Insert creates all the given items or none of them.
func (s *CollectionService) Insert(items ...gmset.Item) ([]gmset.Item, error) {
	if len(items) == 0 {
		return []gmset.Item{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := map[string]bool{}
	records := make([]*model.Item, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, gmerror.NewWithTagCode(http.StatusBadRequest, gmerror.TagInvalidItem, err.Error())
		}
		if ids[item.ID] {
			return nil, gmerror.NewWithTagCode(http.StatusConflict, gmerror.TagAlreadyExists, "duplicate item "+item.ID)
		}
		ids[item.ID] = true

		records = append(records, serializer.ItemRecord(item))
	}

	err := s.db.InsertItems(records...)
	if s.db.IsAlreadyExists(err) {
		return nil, gmerror.NewWithTagCode(http.StatusConflict, gmerror.TagAlreadyExists, err.Error())
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not insert items")
	}

	inserted := serializer.Items(records)
	for _, item := range inserted {
		s.publisher.Publish(gmset.Inserted(item))
	}
	return inserted, nil
}

// Update applies a partial update on an item.
// The read and the write happen in the same database transaction.
func (s *CollectionService) Update(id string, patch gmset.Patch) (*gmset.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var invalid error
	record, err := s.db.UpdateItem(id, func(record *model.Item) error {
		invalid = serializer.Patch(record, patch)
		return invalid
	})
	if invalid != nil {
		return nil, gmerror.NewWithTagCode(http.StatusBadRequest, gmerror.TagInvalidItem, errors.Cause(invalid).Error())
	}
	if s.db.IsNotFound(err) {
		return nil, gmerror.NotFound("item not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not update item")
	}

	item := serializer.Item(record)
	s.publisher.Publish(gmset.Updated(item))
	return &item, nil
}

// Delete removes an item.
func (s *CollectionService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.db.FindItem(id)
	if s.db.IsNotFound(err) {
		return gmerror.NotFound("item not found")
	}
	if err != nil {
		return errors.Wrap(err, "could not find item")
	}

	err = s.db.DeleteItem(record)
	if s.db.IsNotFound(err) {
		return gmerror.NotFound("item not found")
	}
	if err != nil {
		return errors.Wrap(err, "could not delete item")
	}

	s.publisher.Publish(gmset.Deleted(record.CollectionID, record.ID))
	return nil
}
