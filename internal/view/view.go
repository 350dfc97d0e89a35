// Package view derives the filtered item list and its totals from the mirror content.
package view

import (
	"sync"

	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/shopspring/decimal"
)

type (
	// Totals are the aggregates of the filtered items.
	// Missing prices contribute zero.
	Totals struct {
		Invested   decimal.Decimal
		Market     decimal.Decimal
		ProfitLoss decimal.Decimal
		Owned      int
		Count      int
	}

	// A View is the derived content displayed to the user.
	View struct {
		Items  []gmset.Item
		Totals Totals
	}
)

// Derive filters the items, preserving their order, and computes the totals of the filtered set.
func Derive(items []gmset.Item, f Filters) View {
	filtered := make([]gmset.Item, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			filtered = append(filtered, item)
		}
	}

	return View{
		Items:  filtered,
		Totals: Sum(filtered),
	}
}

// Sum computes the totals of the given items.
func Sum(items []gmset.Item) Totals {
	t := Totals{
		Invested: decimal.Zero,
		Market:   decimal.Zero,
	}

	for _, item := range items {
		t.Invested = t.Invested.Add(item.Invested())
		t.Market = t.Market.Add(item.Value())
		t.Count += item.Qty()
		if item.Owned {
			t.Owned += item.Qty()
		}
	}

	t.ProfitLoss = t.Market.Sub(t.Invested)
	return t
}

// A Cache remembers the last derived view for a mirror revision and filters.
type Cache struct {
	mu       sync.Mutex
	valid    bool
	revision uint64
	filters  Filters
	view     View
}

// Get returns the view for the given revision and filters, deriving it when needed.
// snapshot is only called on a cache miss. The view is cached under the revision
// returned by snapshot, which may be newer than the requested one.
func (c *Cache) Get(revision uint64, f Filters, snapshot func() (uint64, []gmset.Item)) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.revision == revision && c.filters.Equal(f) {
		return c.view
	}

	revision, items := snapshot()
	c.view = Derive(items, f)
	c.revision = revision
	c.filters = f
	c.valid = true
	return c.view
}
