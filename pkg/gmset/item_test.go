package gmset_test

import (
	"testing"

	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func price(s string) decimal.NullDecimal {
	p, err := gmset.Price(s)
	if err != nil {
		panic(err)
	}
	return p
}

func TestParseVariant(t *testing.T) {
	v, err := gmset.ParseVariant("mew")
	assert.NoError(t, err)
	assert.Equal(t, gmset.VariantMew, v)

	v, err = gmset.ParseVariant(" RAYQUAZA ")
	assert.NoError(t, err)
	assert.Equal(t, gmset.VariantRayquaza, v)

	v, err = gmset.ParseVariant("Deoxys")
	assert.NoError(t, err)
	assert.Equal(t, gmset.Variant("Deoxys"), v)

	_, err = gmset.ParseVariant("  ")
	assert.Error(t, err)
}

func TestNewItem(t *testing.T) {
	item := gmset.NewItem("id", "k3x9qa", gmset.DefaultDefaults())
	assert.Equal(t, gmset.VariantRayquaza, item.Variant)
	assert.Equal(t, gmset.DefaultCategory, item.Category)
	assert.Equal(t, 1, item.Quantity)
	assert.False(t, item.Owned)
	assert.False(t, item.PurchasePrice.Valid)
	assert.False(t, item.MarketPrice.Valid)
	assert.NoError(t, item.Validate())
}

func TestItem_Amounts(t *testing.T) {
	item := gmset.NewItem("id", "k3x9qa", gmset.DefaultDefaults())
	item.Quantity = 3
	item.PurchasePrice = price("10.10")
	item.MarketPrice = price("12.5")

	assert.Equal(t, "30.3", item.Invested().String())
	assert.Equal(t, "37.5", item.Value().String())
	assert.Equal(t, "7.2", item.Delta().String())

	item.MarketPrice = decimal.NullDecimal{}
	assert.True(t, item.Value().IsZero())
	assert.Equal(t, "-30.3", item.Delta().String())

	item.Quantity = 0
	assert.Equal(t, 1, item.Qty())
	assert.Equal(t, "10.1", item.Invested().String())
}

func TestItem_Validate(t *testing.T) {
	item := gmset.NewItem("id", "k3x9qa", gmset.DefaultDefaults())
	item.Quantity = 0
	assert.EqualError(t, item.Validate(), "qty must be a positive integer")

	item.Quantity = 1
	item.MarketPrice = price("-1")
	assert.EqualError(t, item.Validate(), "market_price must not be negative")

	item.MarketPrice = price("0")
	assert.NoError(t, item.Validate())

	item.CollectionID = ""
	assert.EqualError(t, item.Validate(), "collection_id is required")
}
