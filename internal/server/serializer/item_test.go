package serializer

import (
	"testing"
	"time"

	"github.com/mdouchement/grandmaster/internal/model"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestItemRecord(t *testing.T) {
	item := gmset.NewItem("a", "aaaaaa", gmset.DefaultDefaults())
	item.Name = "Rayquaza VMAX"
	item.MarketPrice = decimal.NewNullDecimal(decimal.RequireFromString("12.50"))

	m := ItemRecord(item)
	assert.Equal(t, "a", m.ID)
	assert.Equal(t, "aaaaaa", m.CollectionID)
	assert.Nil(t, m.PurchasePrice)
	if assert.NotNil(t, m.MarketPrice) {
		assert.Equal(t, "12.5", *m.MarketPrice)
	}

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	model.Touch(m, now)

	v := Item(m)
	assert.Equal(t, "Rayquaza VMAX", v.Name)
	assert.False(t, v.PurchasePrice.Valid)
	assert.True(t, v.MarketPrice.Valid)
	assert.Equal(t, "12.5", v.MarketPrice.Decimal.String())
	if assert.NotNil(t, v.CreatedAt) {
		assert.Equal(t, time.UTC, v.CreatedAt.Location())
		assert.True(t, now.Equal(*v.CreatedAt))
	}
}

func TestPatch(t *testing.T) {
	price := "3"
	m := &model.Item{CollectionID: "aaaaaa", Variant: "Mew", Quantity: 1, PurchasePrice: &price}
	m.ID = "a"
	model.Touch(m, time.Now())
	created := m.CreatedAt

	owned := true
	unknown := decimal.NullDecimal{}
	err := Patch(m, gmset.Patch{Owned: &owned, PurchasePrice: &unknown})
	assert.NoError(t, err)
	assert.True(t, m.Owned)
	assert.Nil(t, m.PurchasePrice)
	assert.Equal(t, "a", m.ID)
	assert.Equal(t, created, m.CreatedAt)

	qty := 0
	err = Patch(m, gmset.Patch{Quantity: &qty})
	assert.EqualError(t, err, "invalid patch: qty must be a positive integer")
	assert.Equal(t, 1, m.Quantity)
}

func TestCollection(t *testing.T) {
	m := &model.Collection{Name: "Binder"}
	m.ID = "k3x9qz"

	c := Collection(m)
	assert.Equal(t, "k3x9qz", c.ID)
	assert.Equal(t, "Binder", c.Name)
	assert.Nil(t, c.CreatedAt)
}
