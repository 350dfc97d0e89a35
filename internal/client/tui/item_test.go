package tui

import (
	"testing"

	"github.com/mdouchement/grandmaster/internal/view"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	item := gmset.NewItem("item-1", "k3x9qa", gmset.DefaultDefaults())
	assert.Equal(t, "[ ] Rayquaza (unnamed)", label(item))

	item.Owned = true
	item.Variant = gmset.VariantMew
	item.Name = "Mew ex"
	assert.Equal(t, "[x] Mew      Mew ex", label(item))
}

func TestDetails(t *testing.T) {
	item := gmset.NewItem("item-1", "k3x9qa", gmset.DefaultDefaults())
	item.Name = "Rayquaza VMAX"
	item.Quantity = 2
	item.PurchasePrice, _ = gmset.Price("10")
	item.MarketPrice, _ = gmset.Price("12.5")
	item.Notes = "PSA 10"

	s := details(item)
	assert.Contains(t, s, "Qty:       2\n")
	assert.Contains(t, s, "Purchase:  10.00\n")
	assert.Contains(t, s, "Market:    12.50\n")
	assert.Contains(t, s, "P/L:       5.00\n")
	assert.Contains(t, s, "\nPSA 10\n")

	item.MarketPrice = decimal.NullDecimal{}
	assert.Contains(t, details(item), "Market:    -\n")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Owned: all", describe(view.DefaultFilters()))

	f := view.DefaultFilters().WithVariant(gmset.VariantMew, false)
	f.Owned = view.OwnedNo
	f.Search = "sar"
	assert.Equal(t, `Owned: no | Search: "sar" | Hidden: Mew`, describe(f))
}

func TestSummary(t *testing.T) {
	totals := view.Totals{
		Invested:   decimal.RequireFromString("10"),
		Market:     decimal.RequireFromString("25.5"),
		ProfitLoss: decimal.RequireFromString("15.5"),
		Owned:      1,
		Count:      3,
	}
	assert.Equal(t, "1/3 owned | Invested 10.00 | Market 25.50 | P/L 15.50", summary(totals))
}
