package model

// An Item represents a database record.
// Prices are stored as their canonical decimal text, nil when unknown.
type Item struct {
	Base `msgpack:",inline" storm:"inline"`

	CollectionID  string  `msgpack:"collection_id"  storm:"index"`
	Variant       string  `msgpack:"pokemon"`
	Category      string  `msgpack:"category"`
	Name          string  `msgpack:"name"`
	Code          string  `msgpack:"code"`
	Owned         bool    `msgpack:"owned"`
	Quantity      int     `msgpack:"qty"`
	PurchasePrice *string `msgpack:"purchase_price"`
	MarketPrice   *string `msgpack:"market_price"`
	Notes         string  `msgpack:"notes"`
}
