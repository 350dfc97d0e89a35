package view_test

import (
	"testing"

	"github.com/mdouchement/grandmaster/internal/view"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(id, name string, variant gmset.Variant, owned bool, qty int, market string) gmset.Item {
	i := gmset.NewItem(id, "k3x9qa", gmset.Defaults{Variant: variant, Category: gmset.DefaultCategory})
	i.Name = name
	i.Owned = owned
	i.Quantity = qty
	if market != "" {
		i.MarketPrice = decimal.NewNullDecimal(decimal.RequireFromString(market))
	}
	return i
}

func TestDerive(t *testing.T) {
	items := []gmset.Item{
		item("1", "Mew ex", gmset.VariantMew, true, 1, "10"),
		item("2", "Rayquaza VMAX", gmset.VariantRayquaza, false, 2, "5"),
	}

	f := view.DefaultFilters()
	f.Search = "mew"

	v := view.Derive(items, f)
	assert.Len(t, v.Items, 1)
	assert.Equal(t, "1", v.Items[0].ID)
	assert.Equal(t, "10", v.Totals.Market.String())
	assert.Equal(t, "0", v.Totals.Invested.String())
	assert.Equal(t, "10", v.Totals.ProfitLoss.String())
	assert.Equal(t, 1, v.Totals.Owned)
	assert.Equal(t, 1, v.Totals.Count)
}

func TestDerive_Filters(t *testing.T) {
	items := []gmset.Item{
		item("1", "Mew ex", gmset.VariantMew, true, 1, "10"),
		item("2", "Rayquaza VMAX", gmset.VariantRayquaza, false, 2, "5"),
		item("3", "Deoxys", gmset.Variant("Deoxys"), false, 1, ""),
	}
	items[1].Code = "SWSH-218"

	ids := func(v view.View) []string {
		var s []string
		for _, i := range v.Items {
			s = append(s, i.ID)
		}
		return s
	}

	f := view.DefaultFilters()
	assert.Equal(t, []string{"1", "2"}, ids(view.Derive(items, f)))

	f.Search = "swsh"
	assert.Equal(t, []string{"2"}, ids(view.Derive(items, f)))

	f.Search = "singles"
	assert.Equal(t, []string{"1", "2"}, ids(view.Derive(items, f)))

	f.Search = ""
	f.Owned = view.OwnedNo
	assert.Equal(t, []string{"2"}, ids(view.Derive(items, f)))

	f.Owned = view.OwnedYes
	assert.Equal(t, []string{"1"}, ids(view.Derive(items, f)))

	f = view.DefaultFilters().WithVariant(gmset.VariantMew, false)
	assert.Equal(t, []string{"2"}, ids(view.Derive(items, f)))
	assert.True(t, view.DefaultFilters().Variants[gmset.VariantMew])

	v := view.Derive(items, f)
	assert.Equal(t, "10", v.Totals.Market.String())
	assert.Equal(t, 0, v.Totals.Owned)
	assert.Equal(t, 2, v.Totals.Count)
}

func TestSum_MissingPrices(t *testing.T) {
	i := item("1", "Mystery box", gmset.VariantMew, true, 3, "")

	totals := view.Sum([]gmset.Item{i})
	assert.True(t, totals.Invested.IsZero())
	assert.True(t, totals.Market.IsZero())
	assert.True(t, totals.ProfitLoss.IsZero())
	assert.Equal(t, 3, totals.Owned)
	assert.Equal(t, 3, totals.Count)
}

func TestSum_Empty(t *testing.T) {
	totals := view.Sum(nil)
	assert.True(t, totals.Invested.IsZero())
	assert.True(t, totals.Market.IsZero())
	assert.Equal(t, 0, totals.Count)
}

func TestOwnership(t *testing.T) {
	o, err := view.ParseOwnership(" YES ")
	assert.NoError(t, err)
	assert.Equal(t, view.OwnedYes, o)

	o, err = view.ParseOwnership("")
	assert.NoError(t, err)
	assert.Equal(t, view.OwnedAll, o)

	_, err = view.ParseOwnership("maybe")
	assert.Error(t, err)

	assert.Equal(t, view.OwnedYes, view.OwnedAll.Next())
	assert.Equal(t, view.OwnedNo, view.OwnedYes.Next())
	assert.Equal(t, view.OwnedAll, view.OwnedNo.Next())
}

func TestCache(t *testing.T) {
	items := []gmset.Item{item("1", "Mew ex", gmset.VariantMew, true, 1, "10")}

	var calls int
	revision := uint64(1)
	source := func() (uint64, []gmset.Item) {
		calls++
		return revision, items
	}

	var c view.Cache
	f := view.DefaultFilters()

	c.Get(1, f, source)
	c.Get(1, view.DefaultFilters(), source)
	assert.Equal(t, 1, calls)

	revision = 2
	c.Get(2, f, source)
	assert.Equal(t, 2, calls)

	f.Search = "ray"
	v := c.Get(2, f, source)
	assert.Equal(t, 3, calls)
	assert.Empty(t, v.Items)

	// The mirror moved on between the revision read and the snapshot.
	revision = 4
	c.Get(3, f, source)
	assert.Equal(t, 4, calls)
	c.Get(4, f, source)
	assert.Equal(t, 4, calls)
}
