package service_test

import (
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mdouchement/grandmaster/internal/database"
	"github.com/mdouchement/grandmaster/internal/gmerror"
	"github.com/mdouchement/grandmaster/internal/model"
	"github.com/mdouchement/grandmaster/internal/server/service"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []gmset.Event
}

func (r *recorder) Publish(event gmset.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) kinds() []gmset.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]gmset.EventKind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// interleaved runs before once the item has been read by the next UpdateItem.
type interleaved struct {
	database.Client
	before func()
}

func (c *interleaved) UpdateItem(id string, fn func(item *model.Item) error) (*model.Item, error) {
	return c.Client.UpdateItem(id, func(item *model.Item) error {
		before := c.before
		c.before = nil
		if before != nil {
			before()
		}
		return fn(item)
	})
}

func each(t *testing.T, fn func(t *testing.T, db *interleaved)) {
	for _, driver := range []string{database.DriverStorm, database.DriverSQLite} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "grandmaster.db")
			require.NoError(t, database.Init(driver, path, ""))

			db, err := database.Open(driver, path, "")
			require.NoError(t, err)
			defer db.Close()

			fn(t, &interleaved{Client: db})
		})
	}
}

func seed(t *testing.T, svc *service.CollectionService) {
	item := gmset.NewItem("i1", "aaaaaa", gmset.Defaults{Variant: gmset.VariantMew, Category: "Singles"})
	item.Name = "Mew"
	_, err := svc.Insert(item)
	require.NoError(t, err)
}

func TestUpdate_ConcurrentPatches(t *testing.T) {
	each(t, func(t *testing.T, db *interleaved) {
		events := &recorder{}
		svc := service.New(db, events)
		seed(t, svc)

		owned := true
		var wg sync.WaitGroup
		db.before = func() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Update("i1", gmset.Patch{Owned: &owned})
				assert.NoError(t, err)
			}()
		}

		name := "Mew ex"
		_, err := svc.Update("i1", gmset.Patch{Name: &name})
		require.NoError(t, err)
		wg.Wait()

		stored, err := db.FindItem("i1")
		require.NoError(t, err)
		assert.Equal(t, "Mew ex", stored.Name)
		assert.True(t, stored.Owned)
		assert.Equal(t, []gmset.EventKind{gmset.EventInserted, gmset.EventUpdated, gmset.EventUpdated}, events.kinds())
	})
}

func TestUpdate_ConcurrentDelete(t *testing.T) {
	each(t, func(t *testing.T, db *interleaved) {
		events := &recorder{}
		svc := service.New(db, events)
		seed(t, svc)

		var wg sync.WaitGroup
		db.before = func() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, svc.Delete("i1"))
			}()
		}

		name := "Mew ex"
		_, err := svc.Update("i1", gmset.Patch{Name: &name})
		require.NoError(t, err)
		wg.Wait()

		_, err = db.FindItem("i1")
		assert.True(t, db.IsNotFound(err))
		assert.Equal(t, []gmset.EventKind{gmset.EventInserted, gmset.EventUpdated, gmset.EventDeleted}, events.kinds())
	})
}

func TestUpdate_Deleted(t *testing.T) {
	each(t, func(t *testing.T, db *interleaved) {
		events := &recorder{}
		svc := service.New(db, events)
		seed(t, svc)
		require.NoError(t, svc.Delete("i1"))

		name := "Mew ex"
		_, err := svc.Update("i1", gmset.Patch{Name: &name})
		assert.Equal(t, http.StatusNotFound, gmerror.StatusCode(err))

		err = svc.Delete("i1")
		assert.Equal(t, http.StatusNotFound, gmerror.StatusCode(err))

		_, err = db.FindItem("i1")
		assert.True(t, db.IsNotFound(err))
		assert.Equal(t, []gmset.EventKind{gmset.EventInserted, gmset.EventDeleted}, events.kinds())
	})
}

func TestUpdate_Invalid(t *testing.T) {
	each(t, func(t *testing.T, db *interleaved) {
		svc := service.New(db, &recorder{})
		seed(t, svc)

		qty := 0
		_, err := svc.Update("i1", gmset.Patch{Quantity: &qty})
		assert.Equal(t, http.StatusBadRequest, gmerror.StatusCode(err))

		stored, err := db.FindItem("i1")
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Quantity)
	})
}
