package view

import (
	"strings"

	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
)

const (
	// OwnedAll shows every item.
	OwnedAll Ownership = "all"
	// OwnedYes shows owned items only.
	OwnedYes Ownership = "yes"
	// OwnedNo shows missing items only.
	OwnedNo Ownership = "no"
)

type (
	// An Ownership is the owned/missing filter.
	Ownership string

	// Filters are the visibility criteria of the view.
	Filters struct {
		Search   string
		Owned    Ownership
		Variants map[gmset.Variant]bool
	}
)

// Ownerships lists the ownership filters in cycling order.
var Ownerships = []Ownership{OwnedAll, OwnedYes, OwnedNo}

// ParseOwnership parses an ownership filter.
func ParseOwnership(s string) (Ownership, error) {
	switch o := Ownership(strings.ToLower(strings.TrimSpace(s))); o {
	case OwnedAll, OwnedYes, OwnedNo:
		return o, nil
	case "":
		return OwnedAll, nil
	default:
		return "", errors.Errorf("invalid ownership filter %q (all, yes or no)", s)
	}
}

// Next returns the following ownership filter.
func (o Ownership) Next() Ownership {
	for i, v := range Ownerships {
		if v == o {
			return Ownerships[(i+1)%len(Ownerships)]
		}
	}
	return OwnedAll
}

// DefaultFilters shows all items of both known variants.
func DefaultFilters() Filters {
	f := Filters{
		Owned:    OwnedAll,
		Variants: map[gmset.Variant]bool{},
	}
	for _, v := range gmset.Variants {
		f.Variants[v] = true
	}
	return f
}

// Clone returns a deep copy of the filters.
func (f Filters) Clone() Filters {
	variants := make(map[gmset.Variant]bool, len(f.Variants)+1)
	for k, b := range f.Variants {
		variants[k] = b
	}

	f.Variants = variants
	return f
}

// WithVariant returns a copy of the filters with the visibility of v set.
func (f Filters) WithVariant(v gmset.Variant, visible bool) Filters {
	f = f.Clone()
	f.Variants[v] = visible
	return f
}

// Match returns true when the item is visible.
func (f Filters) Match(item gmset.Item) bool {
	return f.matchText(item) && f.Variants[item.Variant] && f.matchOwnership(item)
}

// Equal returns true when both filters select the same items.
func (f Filters) Equal(o Filters) bool {
	if f.Search != o.Search || f.ownership() != o.ownership() {
		return false
	}

	for k, v := range f.Variants {
		if o.Variants[k] != v {
			return false
		}
	}
	for k, v := range o.Variants {
		if f.Variants[k] != v {
			return false
		}
	}
	return true
}

func (f Filters) matchText(item gmset.Item) bool {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}

	return strings.Contains(strings.ToLower(item.Name), q) ||
		strings.Contains(strings.ToLower(item.Code), q) ||
		strings.Contains(strings.ToLower(item.Category), q)
}

func (f Filters) matchOwnership(item gmset.Item) bool {
	switch f.ownership() {
	case OwnedYes:
		return item.Owned
	case OwnedNo:
		return !item.Owned
	default:
		return true
	}
}

func (f Filters) ownership() Ownership {
	if f.Owned == "" {
		return OwnedAll
	}
	return f.Owned
}
