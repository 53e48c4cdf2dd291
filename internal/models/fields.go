package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FieldValue is a closed variant for custom form answers: a value is a
// string, a number, or a bool. Anything else is rejected at the JSON
// boundary so arbitrary structures never reach storage.
type FieldValue struct {
	kind byte // 's', 'n' or 'b'
	str  string
	num  float64
	b    bool
}

func StringValue(s string) FieldValue  { return FieldValue{kind: 's', str: s} }
func NumberValue(n float64) FieldValue { return FieldValue{kind: 'n', num: n} }
func BoolValue(v bool) FieldValue      { return FieldValue{kind: 'b', b: v} }

// String returns the value rendered as a string, for template data and logs.
func (v FieldValue) String() string {
	switch v.kind {
	case 'n':
		return trimFloat(v.num)
	case 'b':
		if v.b {
			return "true"
		}
		return "false"
	default:
		return v.str
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%v", f)
	return s
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case 'n':
		return json.Marshal(v.num)
	case 'b':
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.str)
	}
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = StringValue(x)
	case float64:
		*v = NumberValue(x)
	case bool:
		*v = BoolValue(x)
	default:
		return fmt.Errorf("unsupported field value type %T", raw)
	}
	return nil
}

// FieldValues maps a form field id to its answer. It is stored as a
// single JSON column on the booking row.
type FieldValues map[string]FieldValue

func (f FieldValues) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

func (f *FieldValues) Scan(src any) error {
	if src == nil {
		*f = nil
		return nil
	}
	var data []byte
	switch x := src.(type) {
	case []byte:
		data = x
	case string:
		data = []byte(x)
	default:
		return fmt.Errorf("cannot scan %T into FieldValues", src)
	}
	if len(data) == 0 {
		*f = nil
		return nil
	}
	return json.Unmarshal(data, f)
}
