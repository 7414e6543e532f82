package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMoney_JSONIsANumber(t *testing.T) {
	room := Room{RoomNo: 1, RoomName: "Sampaguita", RatePerMonth: NewMoney(1500)}

	data, err := json.Marshal(room)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ratePerMonth":1500`)
}

func TestMoney_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"number", `1000`, "1000"},
		{"decimal number", `1250.50`, "1250.5"},
		{"numeric string from form input", `"1000"`, "1000"},
		{"null", `null`, "0"},
		{"empty string", `""`, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			require.NoError(t, json.Unmarshal([]byte(tt.input), &m))
			assert.Equal(t, tt.want, m.String())
		})
	}

	var m Money
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
}

func TestMoney_StoredAsDecimal128(t *testing.T) {
	doc := struct {
		Amount Money `bson:"amount"`
	}{Amount: NewMoney(2000)}

	data, err := bson.Marshal(doc)
	require.NoError(t, err)

	raw := bson.Raw(data).Lookup("amount")
	d128, ok := raw.Decimal128OK()
	require.True(t, ok, "amount should be stored as Decimal128, got %s", raw.Type)
	assert.Equal(t, "2000", d128.String())

	var decoded struct {
		Amount Money `bson:"amount"`
	}
	require.NoError(t, bson.Unmarshal(data, &decoded))
	assert.True(t, decoded.Amount.Equal(NewMoney(2000)))
}

func TestMoney_ReadsLegacyNumericTypes(t *testing.T) {
	d128, err := primitive.ParseDecimal128("99.95")
	require.NoError(t, err)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"double", 1500.5, "1500.5"},
		{"int32", int32(800), "800"},
		{"int64", int64(1200), "1200"},
		{"decimal128", d128, "99.95"},
		{"numeric string", " 1750 ", "1750"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := bson.Marshal(bson.M{"amount": tt.value})
			require.NoError(t, err)

			var decoded struct {
				Amount Money `bson:"amount"`
			}
			require.NoError(t, bson.Unmarshal(data, &decoded))
			assert.Equal(t, tt.want, decoded.Amount.String())
		})
	}
}

func TestMoney_Times(t *testing.T) {
	assert.Equal(t, "2000", NewMoney(1000).Times(2).String())
	assert.True(t, NewMoney(1000).Times(0).IsZero())

	rate, err := ParseMoney("333.33")
	require.NoError(t, err)
	assert.Equal(t, "999.99", rate.Times(3).String())

	_, err = ParseMoney("lots")
	assert.Error(t, err)
}
