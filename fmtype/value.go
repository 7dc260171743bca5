package fmtype

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Numerish is the value of a FileMaker number field: a number, or the text
// stored when the field holds something non-numeric. It encodes back to the
// JSON form it was decoded from.
type Numerish struct {
	num    float64
	text   string
	number bool
}

// NumberOf returns a numeric value.
func NumberOf(f float64) Numerish { return Numerish{num: f, number: true} }

// TextOf returns a text value.
func TextOf(s string) Numerish { return Numerish{text: s} }

// IsNumber reports whether the value is numeric.
func (n Numerish) IsNumber() bool { return n.number }

// Float64 returns the numeric value. Text that parses as a number is
// converted; other text reports false.
func (n Numerish) Float64() (float64, bool) {
	if n.number {
		return n.num, true
	}
	f, err := strconv.ParseFloat(n.text, 64)
	return f, err == nil
}

// String returns the value as text.
func (n Numerish) String() string {
	if n.number {
		return strconv.FormatFloat(n.num, 'f', -1, 64)
	}
	return n.text
}

// MarshalJSON implements json.Marshaler.
func (n Numerish) MarshalJSON() ([]byte, error) {
	if n.number {
		return json.Marshal(n.num)
	}
	return json.Marshal(n.text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Numerish) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = Numerish{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = TextOf(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("fmtype: numerish: %w", err)
	}
	*n = NumberOf(f)
	return nil
}

// NullNumber is a number that may be null. Non-numeric input decodes as null.
type NullNumber struct {
	Float64 float64
	Valid   bool
}

// NumberValue returns a valid NullNumber.
func NumberValue(f float64) NullNumber { return NullNumber{Float64: f, Valid: true} }

// MarshalJSON implements json.Marshaler.
func (n NullNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullNumber) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	checked, _ := StrictNumber().Check(v)
	if f, ok := checked.(float64); ok {
		*n = NumberValue(f)
		return nil
	}
	*n = NullNumber{}
	return nil
}
