package gmset_test

import (
	"encoding/json"
	"testing"

	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/stretchr/testify/assert"
)

func TestPatch_Set(t *testing.T) {
	var patch gmset.Patch
	assert.True(t, patch.Empty())

	assert.NoError(t, patch.Set("owned", "true"))
	assert.NoError(t, patch.Set("qty", "2"))
	assert.NoError(t, patch.Set("pokemon", "mew"))
	assert.NoError(t, patch.Set("market_price", "3.40"))
	assert.NoError(t, patch.Set("purchase_price", ""))
	assert.False(t, patch.Empty())

	assert.Error(t, patch.Set("owned", "maybe"))
	assert.Error(t, patch.Set("qty", "two"))
	assert.Error(t, patch.Set("market_price", "cheap"))
	assert.Error(t, patch.Set("id", "other"))

	item := gmset.NewItem("id", "k3x9qa", gmset.DefaultDefaults())
	item.PurchasePrice = price("1")
	patch.Apply(&item)

	assert.True(t, item.Owned)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, gmset.VariantMew, item.Variant)
	assert.Equal(t, "3.4", item.MarketPrice.Decimal.String())
	assert.False(t, item.PurchasePrice.Valid)
	assert.Equal(t, gmset.DefaultCategory, item.Category)
}

func TestPatch_Validate(t *testing.T) {
	qty := 0
	assert.Error(t, gmset.Patch{Quantity: &qty}.Validate())

	negative := price("-2")
	assert.Error(t, gmset.Patch{PurchasePrice: &negative}.Validate())

	var patch gmset.Patch
	assert.NoError(t, patch.Set("market_price", ""))
	assert.NoError(t, patch.Validate())
}

func TestPatch_JSON(t *testing.T) {
	var patch gmset.Patch
	assert.NoError(t, patch.Set("owned", "false"))
	assert.NoError(t, patch.Set("market_price", ""))

	payload, err := json.Marshal(patch)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"owned":false,"market_price":null}`, string(payload))

	var decoded gmset.Patch
	assert.NoError(t, json.Unmarshal([]byte(`{"owned":true,"purchase_price":12.5,"market_price":null}`), &decoded))
	assert.NotNil(t, decoded.Owned)
	assert.True(t, *decoded.Owned)
	assert.NotNil(t, decoded.PurchasePrice)
	assert.Equal(t, "12.5", decoded.PurchasePrice.Decimal.String())
	assert.NotNil(t, decoded.MarketPrice)
	assert.False(t, decoded.MarketPrice.Valid)
	assert.Nil(t, decoded.Name)

	assert.Error(t, json.Unmarshal([]byte(`{"collection_id":"other"}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"color":"red"}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"qty":"two"}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`[]`), &decoded))
}
