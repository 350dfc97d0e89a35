package gmset

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// VariantMew tags items belonging to the Mew side of the set.
	VariantMew Variant = "Mew"
	// VariantRayquaza tags items belonging to the Rayquaza side of the set.
	VariantRayquaza Variant = "Rayquaza"

	// DefaultCollectionName is the name given to a collection created without one.
	DefaultCollectionName = "Mew & Rayquaza — Grand Master Set"
	// DefaultCategory is the category used when none is supplied.
	DefaultCategory = "Singles"
)

func init() {
	// Prices are JSON numbers on the wire and in exports.
	decimal.MarshalJSONWithoutQuotes = true
}

type (
	// A Variant is the Pokémon an item belongs to. It drives the visibility filters.
	Variant string

	// An Item is one collectible entry of a collection.
	Item struct {
		ID            string              `json:"id"`
		CollectionID  string              `json:"collection_id"`
		Variant       Variant             `json:"pokemon"`
		Category      string              `json:"category"`
		Name          string              `json:"name"`
		Code          string              `json:"code"`
		Owned         bool                `json:"owned"`
		PurchasePrice decimal.NullDecimal `json:"purchase_price"`
		MarketPrice   decimal.NullDecimal `json:"market_price"`
		Quantity      int                 `json:"qty"`
		Notes         string              `json:"notes"`
		CreatedAt     *time.Time          `json:"created_at,omitempty"`
		UpdatedAt     *time.Time          `json:"updated_at,omitempty"`
	}

	// A Collection is a named namespace of items, identified by a short shareable code.
	Collection struct {
		ID        string     `json:"id"`
		Name      string     `json:"name"`
		CreatedAt *time.Time `json:"created_at,omitempty"`
		UpdatedAt *time.Time `json:"updated_at,omitempty"`
	}

	// Defaults are the values applied to newly created items.
	Defaults struct {
		Variant  Variant
		Category string
	}
)

// Variants lists the known variants in display order.
var Variants = []Variant{VariantRayquaza, VariantMew}

// ParseVariant returns the canonical variant for s.
// Known variants are matched case-insensitively, unknown ones are kept as-is.
func ParseVariant(s string) (Variant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty variant")
	}

	for _, v := range Variants {
		if strings.EqualFold(string(v), s) {
			return v, nil
		}
	}
	return Variant(s), nil
}

// DefaultDefaults returns the defaults used by the "Add Item" action.
func DefaultDefaults() Defaults {
	return Defaults{
		Variant:  VariantRayquaza,
		Category: DefaultCategory,
	}
}

// NewItem returns a new item with default field values.
func NewItem(id, collectionID string, d Defaults) Item {
	if d.Variant == "" {
		d.Variant = VariantRayquaza
	}

	return Item{
		ID:           id,
		CollectionID: collectionID,
		Variant:      d.Variant,
		Category:     d.Category,
		Owned:        false,
		Quantity:     1,
	}
}

// Qty returns the quantity used for totals; a missing or invalid quantity counts as 1.
func (i Item) Qty() int {
	if i.Quantity < 1 {
		return 1
	}
	return i.Quantity
}

// Invested returns purchase price × quantity, zero when the price is unknown.
func (i Item) Invested() decimal.Decimal {
	return amount(i.PurchasePrice).Mul(decimal.NewFromInt(int64(i.Qty())))
}

// Value returns market price × quantity, zero when the price is unknown.
func (i Item) Value() decimal.Decimal {
	return amount(i.MarketPrice).Mul(decimal.NewFromInt(int64(i.Qty())))
}

// Delta returns the profit or loss of the row: (market − purchase) × quantity.
func (i Item) Delta() decimal.Decimal {
	return i.Value().Sub(i.Invested())
}

// Validate checks the invariants a stored item must hold.
func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(i.CollectionID) == "" {
		return errors.New("collection_id is required")
	}
	if strings.TrimSpace(string(i.Variant)) == "" {
		return errors.New("pokemon is required")
	}
	if i.Quantity < 1 {
		return errors.New("qty must be a positive integer")
	}
	if err := validatePrice("purchase_price", i.PurchasePrice); err != nil {
		return err
	}
	return validatePrice("market_price", i.MarketPrice)
}

func amount(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

func validatePrice(field string, d decimal.NullDecimal) error {
	if d.Valid && d.Decimal.IsNegative() {
		return errors.Errorf("%s must not be negative", field)
	}
	return nil
}

// Price returns a known price.
func Price(s string) (decimal.NullDecimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}, errors.Wrapf(err, "invalid price %q", s)
	}
	return decimal.NewNullDecimal(d), nil
}
