package collection_test

import (
	"context"
	"testing"

	"github.com/mdouchement/grandmaster/internal/collection"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opened(t *testing.T) (*collection.Session, *fakeClient) {
	session, client, _, err := newSession(collection.Preferences{Credentials: credentials})
	require.NoError(t, err)

	client.items["k3x9qa"] = []gmset.Item{item("item-0", "k3x9qa", "Mew ex")}
	require.NoError(t, session.Open(context.Background(), "k3x9qa"))

	client.calls = nil
	return session, client
}

func TestCreateCollection(t *testing.T) {
	session, client, prefs, err := newSession(collection.Preferences{Credentials: credentials})
	require.NoError(t, err)

	id, err := session.CreateCollection(context.Background(), "  ")
	assert.NoError(t, err)
	assert.Equal(t, "k3x9qa", id)
	assert.Equal(t, gmset.DefaultCollectionName, client.collections["k3x9qa"].Name)
	assert.Equal(t, "UpsertCollection k3x9qa", client.Calls()[0])
	assert.Equal(t, "k3x9qa", session.CollectionID())
	assert.Equal(t, gmset.DefaultCollectionName, session.CollectionName())

	p, _ := prefs.Load()
	assert.Equal(t, "k3x9qa", p.LastCollection)
}

func TestAddItem(t *testing.T) {
	session, client := opened(t)

	id, err := session.AddItem(context.Background(), gmset.Defaults{Variant: gmset.VariantMew})
	assert.NoError(t, err)
	assert.Equal(t, "item-1", id)
	assert.Equal(t, []string{"InsertItem item-1"}, client.Calls())

	inserted := client.inserted[0]
	assert.Equal(t, "k3x9qa", inserted.CollectionID)
	assert.Equal(t, gmset.VariantMew, inserted.Variant)
	assert.Equal(t, gmset.DefaultCategory, inserted.Category)
	assert.False(t, inserted.Owned)
	assert.Equal(t, 1, inserted.Quantity)

	// No local pre-population.
	_, ok := session.Item(id)
	assert.False(t, ok)
}

func TestPatchItem(t *testing.T) {
	session, client := opened(t)
	ctx := context.Background()

	assert.NoError(t, session.PatchItem(ctx, "item-0", gmset.Patch{}))
	assert.Empty(t, client.Calls())

	qty := 0
	assert.Error(t, session.PatchItem(ctx, "item-0", gmset.Patch{Quantity: &qty}))
	assert.Empty(t, client.Calls())

	owned := true
	assert.NoError(t, session.PatchItem(ctx, "item-0", gmset.Patch{Owned: &owned}))
	assert.Equal(t, []string{"UpdateItem item-0"}, client.Calls())
	assert.True(t, *client.patches["item-0"].Owned)

	// The mirror waits for the change feed.
	i, _ := session.Item("item-0")
	assert.False(t, i.Owned)

	failure := errors.New("permission denied")
	client.err = failure
	assert.Equal(t, failure, session.PatchItem(ctx, "item-0", gmset.Patch{Owned: &owned}))
}

func TestDeleteItem(t *testing.T) {
	session, client := opened(t)
	ctx := context.Background()

	deleted, err := session.DeleteItem(ctx, "item-0", nil)
	assert.NoError(t, err)
	assert.False(t, deleted)

	var prompt string
	deleted, err = session.DeleteItem(ctx, "item-0", func(p string) bool {
		prompt = p
		return false
	})
	assert.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, "Delete Mew ex?", prompt)
	assert.Empty(t, client.Calls())

	deleted, err = session.DeleteItem(ctx, "item-0", func(string) bool { return true })
	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"DeleteItem item-0"}, client.Calls())
}

func TestBulkImport(t *testing.T) {
	session, client := opened(t)
	ctx := context.Background()

	n, err := session.BulkImport(ctx, []string{"", "   "}, gmset.DefaultDefaults())
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, client.Calls())

	lines := gmset.SplitLines("Mew ex (SAR) | SV2a-205/165 | 695.54 | Singles\n\nBooster box | | | Sealed\n")
	n, err = session.BulkImport(ctx, lines, gmset.Defaults{Variant: gmset.VariantRayquaza, Category: "Singles"})
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"InsertItems 2"}, client.Calls())

	assert.Equal(t, gmset.VariantMew, client.inserted[0].Variant)
	assert.Equal(t, "695.54", client.inserted[0].MarketPrice.Decimal.String())
	assert.Equal(t, gmset.VariantRayquaza, client.inserted[1].Variant)
	assert.Equal(t, "Sealed", client.inserted[1].Category)
	assert.Equal(t, "k3x9qa", client.inserted[1].CollectionID)
}
