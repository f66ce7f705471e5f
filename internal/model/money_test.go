package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMoney_StoredAsDecimal128(t *testing.T) {
	price, err := MoneyFromString("12.50")
	require.NoError(t, err)

	raw, err := bson.Marshal(MenuItem{Name: "soup", Price: price})
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	_, ok := doc["price"].(primitive.Decimal128)
	assert.True(t, ok, "price should be encoded as decimal128, got %T", doc["price"])

	var item MenuItem
	require.NoError(t, bson.Unmarshal(raw, &item))
	assert.True(t, price.Equal(item.Price.Decimal))
}

func TestMoney_ReadsLegacyNumbers(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"double", 14.5, "14.5"},
		{"int32", int32(10), "10"},
		{"int64", int64(7), "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"name": "salad", "price": tt.value})
			require.NoError(t, err)

			var item MenuItem
			require.NoError(t, bson.Unmarshal(raw, &item))
			assert.Equal(t, tt.want, item.Price.String())
		})
	}
}

func TestMoney_JSONNumber(t *testing.T) {
	var line CartLine
	require.NoError(t, json.Unmarshal([]byte(`{"email":"u@x.com","price":"9.99"}`), &line))
	assert.Equal(t, "9.99", line.Price.String())

	out, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{line.Price})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":9.99}`, string(out))
}
