package database

import (
	"sort"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"
	"github.com/mdouchement/grandmaster/internal/model"
	"github.com/mdouchement/grandmaster/pkg/stormbinc"
	"github.com/mdouchement/grandmaster/pkg/stormcbor"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
}

// StormCodecByName returns the format used to store data in the database.
// An empty name means msgpack.
func StormCodecByName(name string) (func(*storm.Options) error, error) {
	switch name {
	case "", "msgpack":
		return storm.Codec(msgpack.Codec), nil
	case "cbor":
		return storm.Codec(stormcbor.Codec), nil
	case "binc":
		return storm.Codec(stormbinc.Codec), nil
	default:
		return nil, errors.Errorf("unsupported storm codec %q", name)
	}
}

func stormOpen(database, codec string) (*storm.DB, error) {
	c, err := StormCodecByName(codec)
	if err != nil {
		return nil, err
	}

	db, err := storm.Open(database, c)
	return db, errors.Wrap(err, "could not get database connection")
}

// StormInit initializes Storm database.
func StormInit(database, codec string) error {
	db, err := stormOpen(database, codec)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Init(&model.Collection{}); err != nil {
		return errors.Wrap(err, "could not init collection index")
	}

	err = db.Init(&model.Item{})
	return errors.Wrap(err, "could not init item index")
}

// StormReIndex reindex Storm database.
func StormReIndex(database, codec string) error {
	db, err := stormOpen(database, codec)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ReIndex(&model.Collection{}); err != nil {
		return errors.Wrap(err, "could not ReIndex collections")
	}

	err = db.ReIndex(&model.Item{})
	return errors.Wrap(err, "could not ReIndex items")
}

// StormOpen returns a new Storm database connection.
func StormOpen(database, codec string) (Client, error) {
	db, err := stormOpen(database, codec)
	if err != nil {
		return nil, err
	}

	return &strm{
		db: db,
	}, nil
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *strm) IsNotFound(err error) bool {
	cause := errors.Cause(err)
	return cause == storm.ErrNotFound || cause == ErrNotFound
}

// IsAlreadyExists returns true if err is an already exists error.
func (c *strm) IsAlreadyExists(err error) bool {
	cause := errors.Cause(err)
	return cause == storm.ErrAlreadyExists || cause == ErrAlreadyExists
}

// FindCollection returns the collection for the given code.
func (c *strm) FindCollection(id string) (*model.Collection, error) {
	var collection model.Collection
	if err := c.db.One("ID", id, &collection); err != nil {
		return nil, errors.Wrap(err, "could not find collection")
	}
	return &collection, nil
}

// SaveCollection inserts or updates the given collection.
func (c *strm) SaveCollection(collection *model.Collection) error {
	var existing model.Collection
	err := c.db.One("ID", collection.ID, &existing)
	switch {
	case err == nil:
		collection.CreatedAt = existing.CreatedAt
	case !c.IsNotFound(err):
		return errors.Wrap(err, "could not find collection")
	}

	model.Touch(collection, time.Now().UTC())
	return errors.Wrap(c.db.Save(collection), "could not save the collection")
}

// FindItem returns the item for the given id (UUID).
func (c *strm) FindItem(id string) (*model.Item, error) {
	var item model.Item
	if err := c.db.One("ID", id, &item); err != nil {
		return nil, errors.Wrap(err, "could not find item")
	}
	return &item, nil
}

// FindItemsByCollectionID returns all the items of a collection, ascending by creation date.
func (c *strm) FindItemsByCollectionID(collectionID string) ([]*model.Item, error) {
	items := make([]*model.Item, 0)
	err := c.db.Select(q.Eq("CollectionID", collectionID)).Find(&items)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find items")
	}

	sortByCreation(items)
	return items, nil
}

// InsertItems inserts all the given items or none of them.
func (c *strm) InsertItems(items ...*model.Item) error {
	tx, err := c.db.Begin(true)
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback() // nolint: errcheck

	now := time.Now().UTC()
	for i, item := range items {
		var existing model.Item
		err = tx.One("ID", item.ID, &existing)
		if err == nil {
			return errors.Wrapf(ErrAlreadyExists, "item %s", item.ID)
		}
		if !c.IsNotFound(err) {
			return errors.Wrap(err, "could not check item")
		}

		t := now.Add(time.Duration(i) * time.Microsecond)
		item.CreatedAt = nil
		model.Touch(item, t)

		if err = tx.Save(item); err != nil {
			return errors.Wrap(err, "could not save the item")
		}
	}

	return errors.Wrap(tx.Commit(), "could not commit items")
}

// UpdateItem reads the item, applies fn and writes it back in one transaction.
func (c *strm) UpdateItem(id string, fn func(item *model.Item) error) (*model.Item, error) {
	tx, err := c.db.Begin(true)
	if err != nil {
		return nil, errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback() // nolint: errcheck

	var item model.Item
	if err = tx.One("ID", id, &item); err != nil {
		return nil, errors.Wrap(err, "could not find item")
	}

	if err = fn(&item); err != nil {
		return nil, err
	}
	item.ID = id
	model.Touch(&item, time.Now().UTC())

	if err = tx.Save(&item); err != nil {
		return nil, errors.Wrap(err, "could not save the item")
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "could not commit item")
	}
	return &item, nil
}

// DeleteItem deletes the given item.
func (c *strm) DeleteItem(item *model.Item) error {
	return errors.Wrap(c.db.DeleteStruct(item), "could not delete item")
}

func sortByCreation(items []*model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].CreatedAt, items[j].CreatedAt
		if a == nil || b == nil {
			return b != nil
		}
		return a.Before(*b)
	})
}
