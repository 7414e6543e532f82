package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

const DateLayout = "2006-01-02"

// Date is a calendar instant in UTC. JSON input may be a plain date
// (as produced by HTML date inputs) or a full RFC 3339 timestamp.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{t.UTC().Truncate(time.Millisecond)}
}

func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return NewDate(t), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(d.UTC())
}

func (d *Date) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.DateTime:
		d.Time = raw.Time().UTC()
	case bsontype.Null, bsontype.Undefined:
		d.Time = time.Time{}
	default:
		return fmt.Errorf("cannot decode %s into Date", t)
	}
	return nil
}

// DateValue exposes a Date field to validator tags such as required and gtfield.
func DateValue(field reflect.Value) any {
	if d, ok := field.Interface().(Date); ok {
		return d.Time
	}
	return nil
}
