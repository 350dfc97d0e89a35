package tui

import (
	"fmt"
	"strings"

	"github.com/gcla/gowid"
	"github.com/gcla/gowid/widgets/selectable"
	"github.com/gcla/gowid/widgets/styled"
	"github.com/gcla/gowid/widgets/text"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/shopspring/decimal"
)

// An Item is the graphical representation of a gmset.Item.
type Item struct {
	ID           string
	presentation gowid.IWidget
	abstraction  gmset.Item
}

// NewItem returns a new Item.
func NewItem(item gmset.Item) *Item {
	return &Item{
		ID: item.ID,
		presentation: selectable.New(
			styled.NewExt(
				text.New(label(item)),
				gowid.MakePaletteRef("normal"), gowid.MakePaletteRef("focused"),
			),
		),
		abstraction: item,
	}
}

// Title returns the name displayed above the details.
func (w *Item) Title() string {
	if w.abstraction.Name == "" {
		return "(unnamed)"
	}
	return w.abstraction.Name
}

// Details returns the widget displaying all the fields of the item.
func (w *Item) Details() gowid.IWidget {
	return text.New(details(w.abstraction))
}

////////////////////
//                //
// Delegates      //
//                //
////////////////////

// Render implements gowid.IWidget
func (w *Item) Render(size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) gowid.ICanvas {
	return w.presentation.Render(size, focus, app)
}

// RenderSize implements gowid.IWidget
func (w *Item) RenderSize(size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) gowid.IRenderBox {
	return w.presentation.RenderSize(size, focus, app)
}

// UserInput implements gowid.IWidget
func (w *Item) UserInput(ev any, size gowid.IRenderSize, focus gowid.Selector, app gowid.IApp) bool {
	return w.presentation.UserInput(ev, size, focus, app)
}

// Selectable implements gowid.IWidget
func (w *Item) Selectable() bool {
	return w.presentation.Selectable()
}

////////////////////
//                //
// Formatting     //
//                //
////////////////////

func label(item gmset.Item) string {
	owned := "[ ]"
	if item.Owned {
		owned = "[x]"
	}

	name := item.Name
	if name == "" {
		name = "(unnamed)"
	}

	return fmt.Sprintf("%s %-8s %s", owned, item.Variant, name)
}

func details(item gmset.Item) string {
	var b strings.Builder
	line := func(k, v string) {
		fmt.Fprintf(&b, "%-10s %s\n", k+":", v)
	}

	owned := "no"
	if item.Owned {
		owned = "yes"
	}

	line("ID", item.ID)
	line("Pokémon", string(item.Variant))
	line("Category", item.Category)
	line("Name", item.Name)
	line("Code", item.Code)
	line("Owned", owned)
	line("Qty", fmt.Sprint(item.Qty()))
	line("Purchase", price(item.PurchasePrice))
	line("Market", price(item.MarketPrice))
	line("P/L", item.Delta().StringFixed(2))
	if item.Notes != "" {
		b.WriteString("\n")
		b.WriteString(item.Notes)
		b.WriteString("\n")
	}
	return b.String()
}

func price(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(2)
}
