package model

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is an exact decimal amount. It is stored as BSON Decimal128 and
// rendered as a JSON number.
type Money struct {
	decimal.Decimal
}

func NewMoney(amount int64) Money {
	return Money{decimal.NewFromInt(amount)}
}

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{d}, nil
}

func (m Money) Times(n int64) Money {
	return Money{m.Mul(decimal.NewFromInt(n))}
}

func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both numbers and numeric strings, as sent by form inputs.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		m.Decimal = decimal.Zero
		return nil
	}
	return m.Decimal.UnmarshalJSON(data)
}

func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.String())
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode amount %s: %w", m.String(), err)
	}
	return bson.MarshalValue(d128)
}

// UnmarshalBSONValue also reads plain numeric types written by older clients.
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.Decimal128:
		parsed, err := ParseMoney(raw.Decimal128().String())
		if err != nil {
			return fmt.Errorf("failed to decode amount: %w", err)
		}
		*m = parsed
	case bsontype.String:
		parsed, err := ParseMoney(strings.TrimSpace(raw.StringValue()))
		if err != nil {
			return fmt.Errorf("failed to decode amount: %w", err)
		}
		*m = parsed
	case bsontype.Double:
		m.Decimal = decimal.NewFromFloat(raw.Double())
	case bsontype.Int32:
		m.Decimal = decimal.NewFromInt32(raw.Int32())
	case bsontype.Int64:
		m.Decimal = decimal.NewFromInt(raw.Int64())
	case bsontype.Null, bsontype.Undefined:
		m.Decimal = decimal.Zero
	default:
		return fmt.Errorf("cannot decode %s into Money", t)
	}
	return nil
}

// MoneyValue exposes a Money field to validator tags such as gt=0.
func MoneyValue(field reflect.Value) any {
	if m, ok := field.Interface().(Money); ok {
		return m.InexactFloat64()
	}
	return nil
}
