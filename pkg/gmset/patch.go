package gmset

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/valyala/fastjson"
)

// A Patch is a partial item update. A nil field is left untouched.
// A non-nil price holding an invalid NullDecimal resets the price to unknown.
type Patch struct {
	Variant       *Variant
	Category      *string
	Name          *string
	Code          *string
	Notes         *string
	Owned         *bool
	Quantity      *int
	PurchasePrice *decimal.NullDecimal
	MarketPrice   *decimal.NullDecimal
}

var immutableFields = map[string]bool{
	"id":            true,
	"collection_id": true,
	"created_at":    true,
	"updated_at":    true,
}

// Empty returns true if the patch does not change anything.
func (p Patch) Empty() bool {
	return p.Variant == nil && p.Category == nil && p.Name == nil && p.Code == nil && p.Notes == nil &&
		p.Owned == nil && p.Quantity == nil && p.PurchasePrice == nil && p.MarketPrice == nil
}

// Validate checks the patched values.
func (p Patch) Validate() error {
	if p.Variant != nil && strings.TrimSpace(string(*p.Variant)) == "" {
		return errors.New("pokemon is required")
	}
	if p.Quantity != nil && *p.Quantity < 1 {
		return errors.New("qty must be a positive integer")
	}
	if p.PurchasePrice != nil {
		if err := validatePrice("purchase_price", *p.PurchasePrice); err != nil {
			return err
		}
	}
	if p.MarketPrice != nil {
		return validatePrice("market_price", *p.MarketPrice)
	}
	return nil
}

// Apply writes the patched fields on the given item.
func (p Patch) Apply(item *Item) {
	if p.Variant != nil {
		item.Variant = *p.Variant
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Code != nil {
		item.Code = *p.Code
	}
	if p.Notes != nil {
		item.Notes = *p.Notes
	}
	if p.Owned != nil {
		item.Owned = *p.Owned
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.PurchasePrice != nil {
		item.PurchasePrice = *p.PurchasePrice
	}
	if p.MarketPrice != nil {
		item.MarketPrice = *p.MarketPrice
	}
}

// Set parses a textual value for the given field (the JSON name of the field).
// An empty price value resets the price to unknown.
func (p *Patch) Set(field, value string) error {
	switch field {
	case "pokemon", "variant":
		v, err := ParseVariant(value)
		if err != nil {
			return err
		}
		p.Variant = &v
	case "category":
		p.Category = &value
	case "name":
		p.Name = &value
	case "code":
		p.Code = &value
	case "notes":
		p.Notes = &value
	case "owned":
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return errors.Wrapf(err, "invalid owned value %q", value)
		}
		p.Owned = &b
	case "qty", "quantity":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return errors.Wrapf(err, "invalid qty %q", value)
		}
		p.Quantity = &n
	case "purchase_price", "market_price":
		price := decimal.NullDecimal{}
		if strings.TrimSpace(value) != "" {
			var err error
			if price, err = Price(value); err != nil {
				return err
			}
		}
		if field == "purchase_price" {
			p.PurchasePrice = &price
		} else {
			p.MarketPrice = &price
		}
	default:
		return errors.Errorf("unknown field %q", field)
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Absent fields are omitted and unknown prices are null.
func (p Patch) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	if p.Variant != nil {
		m["pokemon"] = *p.Variant
	}
	if p.Category != nil {
		m["category"] = *p.Category
	}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Code != nil {
		m["code"] = *p.Code
	}
	if p.Notes != nil {
		m["notes"] = *p.Notes
	}
	if p.Owned != nil {
		m["owned"] = *p.Owned
	}
	if p.Quantity != nil {
		m["qty"] = *p.Quantity
	}
	if p.PurchasePrice != nil {
		m["purchase_price"] = *p.PurchasePrice
	}
	if p.MarketPrice != nil {
		m["market_price"] = *p.MarketPrice
	}
	return json.Marshal(m)
}

// UnmarshalJSON implements json.Unmarshaler.
// It keeps the difference between an absent price and a null one.
func (p *Patch) UnmarshalJSON(data []byte) error {
	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return errors.Wrap(err, "could not parse patch")
	}
	o, err := v.Object()
	if err != nil {
		return errors.Wrap(err, "patch must be an object")
	}

	*p = Patch{}
	o.Visit(func(key []byte, value *fastjson.Value) {
		if err != nil {
			return
		}
		err = p.decodeField(string(key), value)
	})
	return err
}

func (p *Patch) decodeField(key string, value *fastjson.Value) error {
	if immutableFields[key] {
		return errors.Errorf("%s can not be updated", key)
	}

	raw := value.MarshalTo(nil)
	decode := func(target any) error {
		return errors.Wrapf(json.Unmarshal(raw, target), "invalid %s", key)
	}

	switch key {
	case "pokemon":
		p.Variant = new(Variant)
		return decode(p.Variant)
	case "category":
		p.Category = new(string)
		return decode(p.Category)
	case "name":
		p.Name = new(string)
		return decode(p.Name)
	case "code":
		p.Code = new(string)
		return decode(p.Code)
	case "notes":
		p.Notes = new(string)
		return decode(p.Notes)
	case "owned":
		p.Owned = new(bool)
		return decode(p.Owned)
	case "qty":
		p.Quantity = new(int)
		return decode(p.Quantity)
	case "purchase_price":
		p.PurchasePrice = new(decimal.NullDecimal)
		return decode(p.PurchasePrice)
	case "market_price":
		p.MarketPrice = new(decimal.NullDecimal)
		return decode(p.MarketPrice)
	default:
		return errors.Errorf("unknown field %s", key)
	}
}
