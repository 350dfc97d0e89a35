package database

import (
	"github.com/mdouchement/grandmaster/internal/model"
	"github.com/pkg/errors"
)

const (
	// DriverStorm selects the storm (bbolt) backend.
	DriverStorm = "storm"
	// DriverSQLite selects the SQLite backend.
	DriverSQLite = "sqlite"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a record with the same id already exists.
	ErrAlreadyExists = errors.New("already exists")
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsAlreadyExists returns true if err is an already exists error.
		IsAlreadyExists(err error) bool

		CollectionInteraction
		ItemInteraction
	}

	// A CollectionInteraction defines all the methods used to interact with a collection record.
	CollectionInteraction interface {
		// FindCollection returns the collection for the given code.
		FindCollection(id string) (*model.Collection, error)
		// SaveCollection inserts or updates the given collection.
		SaveCollection(collection *model.Collection) error
	}

	// An ItemInteraction defines all the methods used to interact with item record(s).
	ItemInteraction interface {
		// FindItem returns the item for the given id (UUID).
		FindItem(id string) (*model.Item, error)
		// FindItemsByCollectionID returns all the items of a collection, ascending by creation date.
		FindItemsByCollectionID(collectionID string) ([]*model.Item, error)
		// InsertItems inserts all the given items or none of them.
		// Creation dates follow the order of the given items.
		InsertItems(items ...*model.Item) error
		// UpdateItem reads the item, applies fn and writes it back in one transaction.
		// Nothing is written when fn fails.
		UpdateItem(id string, fn func(item *model.Item) error) (*model.Item, error)
		// DeleteItem deletes the given item.
		DeleteItem(item *model.Item) error
	}
)

// Open returns a new Client for the given driver.
// The codec is only used by the storm driver.
func Open(driver, path, codec string) (Client, error) {
	switch driver {
	case "", DriverStorm:
		return StormOpen(path, codec)
	case DriverSQLite:
		return SQLiteOpen(path)
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}
}

// Init initializes the database for the given driver.
func Init(driver, path, codec string) error {
	switch driver {
	case "", DriverStorm:
		return StormInit(path, codec)
	case DriverSQLite:
		db, err := SQLiteOpen(path)
		if err != nil {
			return err
		}
		return db.Close()
	default:
		return errors.Errorf("unsupported database driver %q", driver)
	}
}
