package client

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mdouchement/grandmaster/internal/view"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	mew := gmset.NewItem("item-1", "k3x9qa", gmset.Defaults{Variant: gmset.VariantMew, Category: "Singles"})
	mew.Name = "Mew ex"
	mew.Code = "SV2a-205"
	mew.Owned = true
	mew.Quantity = 2
	mew.PurchasePrice, _ = gmset.Price("10")
	mew.MarketPrice, _ = gmset.Price("12.5")

	ray := gmset.NewItem("item-2", "k3x9qa", gmset.DefaultDefaults())
	ray.Name = "Rayquaza VMAX"
	ray.Code = "SWSH-218"

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, view.Derive([]gmset.Item{mew, ray}, view.DefaultFilters())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"ID", "POKEMON", "CATEGORY", "NAME", "CODE", "OWNED", "QTY", "PURCHASE", "MARKET"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"item-1", "Mew", "Singles", "Mew", "ex", "SV2a-205", "yes", "2", "10.00", "12.50"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"item-2", "Rayquaza", "Singles", "Rayquaza", "VMAX", "SWSH-218", "no", "1", "-", "-"}, strings.Fields(lines[2]))
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "2/3 owned | invested 20.00 | market 25.00 | P/L 5.00", lines[4])
}
