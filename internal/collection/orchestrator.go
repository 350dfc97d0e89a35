package collection

import (
	"context"
	"fmt"
	"strings"

	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// A Confirm asks the user to accept a destructive action.
type Confirm func(prompt string) bool

// CreateCollection creates a new collection and opens it.
func (s *Session) CreateCollection(ctx context.Context, name string) (string, error) {
	client, err := s.store()
	if err != nil {
		return "", err
	}

	id, err := s.ids.CollectionID()
	if err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = gmset.DefaultCollectionName
	}

	err = client.UpsertCollection(ctx, gmset.Collection{ID: id, Name: name})
	if err != nil {
		return "", err
	}

	s.log.WithField("collection_id", id).Info("Collection created")
	return id, s.Open(ctx, id)
}

// AddItem inserts a blank item in the active collection.
// The mirror is populated by the change feed.
func (s *Session) AddItem(ctx context.Context, d gmset.Defaults) (string, error) {
	client, collectionID, err := s.active()
	if err != nil {
		return "", err
	}

	if d.Category == "" {
		d.Category = gmset.DefaultCategory
	}

	item := gmset.NewItem(s.ids.ItemID(), collectionID, d)
	if err = client.InsertItem(ctx, item); err != nil {
		return "", err
	}
	return item.ID, nil
}

// PatchItem submits a partial update of an item. An empty patch is not submitted.
func (s *Session) PatchItem(ctx context.Context, id string, patch gmset.Patch) error {
	client, _, err := s.active()
	if err != nil {
		return err
	}

	if patch.Empty() {
		return nil
	}
	if err = patch.Validate(); err != nil {
		return err
	}

	return client.UpdateItem(ctx, id, patch)
}

// DeleteItem deletes an item once confirmed.
// A declined (or missing) confirmation returns false without contacting the server.
func (s *Session) DeleteItem(ctx context.Context, id string, confirm Confirm) (bool, error) {
	client, _, err := s.active()
	if err != nil {
		return false, err
	}

	label := id
	if item, ok := s.mirror.Get(id); ok && item.Name != "" {
		label = item.Name
	}

	if confirm == nil || !confirm(fmt.Sprintf("Delete %s?", label)) {
		return false, nil
	}

	if err = client.DeleteItem(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// BulkImport parses the given lines and inserts all the records in one batch.
// It returns the number of inserted items.
func (s *Session) BulkImport(ctx context.Context, lines []string, d gmset.Defaults) (int, error) {
	client, collectionID, err := s.active()
	if err != nil {
		return 0, err
	}

	if d.Variant == "" {
		d.Variant = gmset.VariantRayquaza
	}
	if d.Category == "" {
		d.Category = gmset.DefaultCategory
	}

	records := gmset.ParseImport(lines, d)
	if len(records) == 0 {
		return 0, nil
	}

	items := make([]gmset.Item, 0, len(records))
	for _, record := range records {
		items = append(items, record.Item(s.ids.ItemID(), collectionID))
	}

	if err = client.InsertItems(ctx, items); err != nil {
		return 0, errors.Wrap(err, "could not import items")
	}

	s.log.WithFields(logrus.Fields{
		"collection_id": collectionID,
		"items":         len(items),
	}).Info("Items imported")
	return len(items), nil
}
