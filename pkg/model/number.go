package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// FlexInt is a whole number that also accepts numeric strings from JSON, as
// sent by text inputs in the admin UI. Validator tags apply to it as to int.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s := string(bytes.TrimSpace(data))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
	}

	v, err := parseWhole(s)
	if err != nil {
		return err
	}
	*n = FlexInt(v)
	return nil
}

func (n FlexInt) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return bson.MarshalValue(int32(n))
	}
	return bson.MarshalValue(int64(n))
}

// UnmarshalBSONValue also reads doubles and strings left by earlier writers.
func (n *FlexInt) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.Int32:
		*n = FlexInt(raw.Int32())
	case bsontype.Int64:
		*n = FlexInt(raw.Int64())
	case bsontype.Double:
		f := raw.Double()
		if f != math.Trunc(f) {
			return fmt.Errorf("cannot decode %v into a whole number", f)
		}
		*n = FlexInt(f)
	case bsontype.String:
		v, err := parseWhole(strings.TrimSpace(raw.StringValue()))
		if err != nil {
			return err
		}
		*n = FlexInt(v)
	case bsontype.Null, bsontype.Undefined:
		*n = 0
	default:
		return fmt.Errorf("cannot decode %s into FlexInt", t)
	}
	return nil
}

func parseWhole(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

// Phone is a contact number. JSON input may be a string or a bare number,
// since stored tenants and older clients carry it as a number.
type Phone string

func (p *Phone) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case string(trimmed) == "null":
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*p = Phone(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return fmt.Errorf("contact number must be a string or a number: %w", err)
	}
	digits, err := phoneDigits(num.String())
	if err != nil {
		return err
	}
	*p = Phone(digits)
	return nil
}

func (p *Phone) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.String:
		*p = Phone(raw.StringValue())
	case bsontype.Int32:
		*p = Phone(strconv.FormatInt(int64(raw.Int32()), 10))
	case bsontype.Int64:
		*p = Phone(strconv.FormatInt(raw.Int64(), 10))
	case bsontype.Double:
		*p = Phone(strconv.FormatFloat(raw.Double(), 'f', -1, 64))
	case bsontype.Null, bsontype.Undefined:
		*p = ""
	default:
		return fmt.Errorf("cannot decode %s into Phone", t)
	}
	return nil
}

// phoneDigits renders a JSON number such as 9171234567 or 9.171234567e9
// as plain digits.
func phoneDigits(s string) (string, error) {
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return s, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f != math.Trunc(f) {
		return "", fmt.Errorf("%q is not a valid contact number", s)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}
