package serializer

import (
	"github.com/mdouchement/grandmaster/internal/model"
	"github.com/mdouchement/grandmaster/pkg/gmset"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Item serializes the render of an item.
func Item(m *model.Item) gmset.Item {
	return gmset.Item{
		ID:            m.ID,
		CollectionID:  m.CollectionID,
		Variant:       gmset.Variant(m.Variant),
		Category:      m.Category,
		Name:          m.Name,
		Code:          m.Code,
		Owned:         m.Owned,
		Quantity:      m.Quantity,
		PurchasePrice: price(m.PurchasePrice),
		MarketPrice:   price(m.MarketPrice),
		Notes:         m.Notes,
		CreatedAt:     utc(m.CreatedAt),
		UpdatedAt:     utc(m.UpdatedAt),
	}
}

// Items serializes the render of a list of items.
func Items(ms []*model.Item) []gmset.Item {
	items := make([]gmset.Item, 0, len(ms))
	for _, m := range ms {
		items = append(items, Item(m))
	}
	return items
}

// ItemRecord returns the database record of the given item.
func ItemRecord(i gmset.Item) *model.Item {
	m := &model.Item{
		CollectionID: i.CollectionID,
		Variant:      string(i.Variant),
		Category:     i.Category,
		Name:         i.Name,
		Code:         i.Code,
		Owned:        i.Owned,
		Quantity:     i.Quantity,
		Notes:        i.Notes,
	}
	m.ID = i.ID
	m.PurchasePrice = record(i.PurchasePrice)
	m.MarketPrice = record(i.MarketPrice)
	return m
}

// Patch applies the given patch on the record.
func Patch(m *model.Item, patch gmset.Patch) error {
	item := Item(m)
	patch.Apply(&item)
	if err := item.Validate(); err != nil {
		return errors.Wrap(err, "invalid patch")
	}

	updated := ItemRecord(item)
	updated.Base = m.Base
	*m = *updated
	return nil
}

// Collection serializes the render of a collection.
func Collection(m *model.Collection) gmset.Collection {
	return gmset.Collection{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: utc(m.CreatedAt),
		UpdatedAt: utc(m.UpdatedAt),
	}
}

func price(s *string) decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func record(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}

	s := d.Decimal.String()
	return &s
}
