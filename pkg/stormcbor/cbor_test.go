package stormcbor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type record struct {
	ID        string     `msgpack:"id"`
	Quantity  int        `msgpack:"qty"`
	Price     *string    `msgpack:"market_price"`
	CreatedAt *time.Time `msgpack:"created_at"`
}

func TestCodec(t *testing.T) {
	assert.Equal(t, "cbor", Codec.Name())

	price := "4.20"
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	payload, err := Codec.Marshal(&record{ID: "a", Quantity: 2, Price: &price, CreatedAt: &now})
	assert.NoError(t, err)

	var v record
	err = Codec.Unmarshal(payload, &v)
	assert.NoError(t, err)
	assert.Equal(t, "a", v.ID)
	assert.Equal(t, 2, v.Quantity)
	if assert.NotNil(t, v.Price) {
		assert.Equal(t, "4.20", *v.Price)
	}
	if assert.NotNil(t, v.CreatedAt) {
		assert.True(t, now.Equal(*v.CreatedAt))
	}
}
