package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/mdouchement/grandmaster/internal/model"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS collections (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id             TEXT PRIMARY KEY,
    collection_id  TEXT NOT NULL,
    pokemon        TEXT NOT NULL,
    category       TEXT NOT NULL DEFAULT '',
    name           TEXT NOT NULL DEFAULT '',
    code           TEXT NOT NULL DEFAULT '',
    owned          INTEGER NOT NULL DEFAULT 0,
    qty            INTEGER NOT NULL DEFAULT 1 CHECK (qty > 0),
    purchase_price TEXT,
    market_price   TEXT,
    notes          TEXT NOT NULL DEFAULT '',
    created_at     INTEGER NOT NULL,
    updated_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_collection_id
    ON items(collection_id, created_at);
`

const itemColumns = `id, collection_id, pokemon, category, name, code, owned, qty, purchase_price, market_price, notes, created_at, updated_at`

var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

type sqlite struct {
	db *sql.DB
}

// SQLiteOpen opens a SQLite database, configures pragmas and creates the schema.
func SQLiteOpen(path string) (Client, error) {
	dsn := url.Values{}
	for _, p := range pragmas {
		dsn.Add("_pragma", p)
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?%s", path, dsn.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}
	// One connection, so transactions never interleave.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "could not create schema")
	}

	return &sqlite{db: db}, nil
}

// Close the database.
func (c *sqlite) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *sqlite) IsNotFound(err error) bool {
	cause := errors.Cause(err)
	return cause == sql.ErrNoRows || cause == ErrNotFound
}

// IsAlreadyExists returns true if err is an already exists error.
func (c *sqlite) IsAlreadyExists(err error) bool {
	return errors.Cause(err) == ErrAlreadyExists
}

// FindCollection returns the collection for the given code.
func (c *sqlite) FindCollection(id string) (*model.Collection, error) {
	var collection model.Collection
	var created, updated int64

	err := c.db.QueryRow(`SELECT id, name, created_at, updated_at FROM collections WHERE id = ?`, id).
		Scan(&collection.ID, &collection.Name, &created, &updated)
	if err != nil {
		return nil, errors.Wrap(err, "could not find collection")
	}

	collection.SetCreatedAt(fromUnix(created))
	collection.SetUpdatedAt(fromUnix(updated))
	return &collection, nil
}

// SaveCollection inserts or updates the given collection.
func (c *sqlite) SaveCollection(collection *model.Collection) error {
	now := time.Now().UTC()
	collection.CreatedAt = nil
	model.Touch(collection, now)

	_, err := c.db.Exec(`
		INSERT INTO collections (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`,
		collection.ID, collection.Name, now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return errors.Wrap(err, "could not save the collection")
	}

	// Reload the preserved creation date.
	saved, err := c.FindCollection(collection.ID)
	if err != nil {
		return err
	}
	collection.CreatedAt = saved.CreatedAt
	return nil
}

// FindItem returns the item for the given id (UUID).
func (c *sqlite) FindItem(id string) (*model.Item, error) {
	row := c.db.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	return item, errors.Wrap(err, "could not find item")
}

// FindItemsByCollectionID returns all the items of a collection, ascending by creation date.
func (c *sqlite) FindItemsByCollectionID(collectionID string) ([]*model.Item, error) {
	rows, err := c.db.Query(`SELECT `+itemColumns+` FROM items WHERE collection_id = ? ORDER BY created_at ASC, rowid ASC`, collectionID)
	if err != nil {
		return nil, errors.Wrap(err, "could not find items")
	}
	defer rows.Close()

	items := make([]*model.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, errors.Wrap(err, "could not read item")
		}
		items = append(items, item)
	}
	return items, errors.Wrap(rows.Err(), "could not find items")
}

// InsertItems inserts all the given items or none of them.
func (c *sqlite) InsertItems(items ...*model.Item) error {
	tx, err := c.db.Begin()
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback() // nolint: errcheck

	now := time.Now().UTC()
	for i, item := range items {
		var exists int
		err = tx.QueryRow(`SELECT COUNT(*) FROM items WHERE id = ?`, item.ID).Scan(&exists)
		if err != nil {
			return errors.Wrap(err, "could not check item")
		}
		if exists > 0 {
			return errors.Wrapf(ErrAlreadyExists, "item %s", item.ID)
		}

		t := now.Add(time.Duration(i) * time.Microsecond)
		item.CreatedAt = nil
		model.Touch(item, t)

		_, err = tx.Exec(`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.CollectionID, item.Variant, item.Category, item.Name, item.Code, item.Owned, item.Quantity,
			item.PurchasePrice, item.MarketPrice, item.Notes, t.UnixNano(), t.UnixNano(),
		)
		if err != nil {
			return errors.Wrap(err, "could not save the item")
		}
	}

	return errors.Wrap(tx.Commit(), "could not commit items")
}

// UpdateItem reads the item, applies fn and writes it back in one transaction.
func (c *sqlite) UpdateItem(id string, fn func(item *model.Item) error) (*model.Item, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback() // nolint: errcheck

	row := tx.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err != nil {
		return nil, errors.Wrap(err, "could not find item")
	}

	if err = fn(item); err != nil {
		return nil, err
	}
	item.ID = id
	model.Touch(item, time.Now().UTC())

	res, err := tx.Exec(`
		UPDATE items SET pokemon = ?, category = ?, name = ?, code = ?, owned = ?, qty = ?,
		purchase_price = ?, market_price = ?, notes = ?, updated_at = ? WHERE id = ?`,
		item.Variant, item.Category, item.Name, item.Code, item.Owned, item.Quantity,
		item.PurchasePrice, item.MarketPrice, item.Notes, item.UpdatedAt.UnixNano(), item.ID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "could not save the item")
	}
	if err = affected(res); err != nil {
		return nil, errors.Wrap(err, "could not save the item")
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "could not commit item")
	}
	return item, nil
}

// DeleteItem deletes the given item.
func (c *sqlite) DeleteItem(item *model.Item) error {
	res, err := c.db.Exec(`DELETE FROM items WHERE id = ?`, item.ID)
	if err != nil {
		return errors.Wrap(err, "could not delete item")
	}
	return errors.Wrap(affected(res), "could not delete item")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	var item model.Item
	var purchase, market sql.NullString
	var created, updated int64

	err := s.Scan(&item.ID, &item.CollectionID, &item.Variant, &item.Category, &item.Name, &item.Code,
		&item.Owned, &item.Quantity, &purchase, &market, &item.Notes, &created, &updated)
	if err != nil {
		return nil, err
	}

	if purchase.Valid {
		item.PurchasePrice = &purchase.String
	}
	if market.Valid {
		item.MarketPrice = &market.String
	}
	item.SetCreatedAt(fromUnix(created))
	item.SetUpdatedAt(fromUnix(updated))
	return &item, nil
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func fromUnix(nsec int64) time.Time {
	return time.Unix(0, nsec).UTC()
}
