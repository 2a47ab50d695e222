// Package normalize coerces loosely typed booking payload values into canonical ones.
//
// Every parser in this package is fail-soft on purpose: a malformed pricing,
// count or date field degrades to zero (or "no value") instead of aborting the
// booking. Callers that need strict validation must do it before normalizing.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount converts a number, numeric string or nil into a decimal amount.
// Thousands separators are stripped before parsing. Nil, empty and
// unparsable input yield zero.
func Amount(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case json.Number:
		return parseAmount(v.String())
	case string:
		return parseAmount(v)
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case bool:
		return decimal.Zero
	default:
		return parseAmount(fmt.Sprint(v))
	}
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Count converts a number, numeric string or nil into an int.
// Fractional values, nil, unparsable input and values outside the 32-bit
// column range yield zero.
func Count(raw any) int {
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		return clampCount(int64(v))
	case int64:
		return clampCount(v)
	case float64:
		if v < math.MinInt32 || v > math.MaxInt32 || v != math.Trunc(v) {
			return 0
		}
		return int(v)
	case json.Number:
		return parseCount(v.String())
	case string:
		return parseCount(v)
	default:
		return parseCount(fmt.Sprint(v))
	}
}

func parseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return clampCount(n)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0
	}
	if d.LessThan(decimal.NewFromInt(math.MinInt32)) || d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) {
		return 0
	}
	return int(d.IntPart())
}

func clampCount(n int64) int {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}

// decodeScalar decodes a single JSON value keeping numbers as json.Number.
func decodeScalar(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// FlexAmount is a JSON field that accepts a number, a numeric string or null.
// Present reports whether the key appeared in the payload at all.
type FlexAmount struct {
	Value   decimal.Decimal
	Present bool
}

// UnmarshalJSON never fails; malformed values become zero.
func (a *FlexAmount) UnmarshalJSON(data []byte) error {
	a.Present = true
	raw, err := decodeScalar(data)
	if err != nil {
		a.Value = decimal.Zero
		return nil
	}
	a.Value = Amount(raw)
	return nil
}

// MarshalJSON renders the amount as a JSON number.
func (a FlexAmount) MarshalJSON() ([]byte, error) {
	return []byte(a.Value.String()), nil
}

// NewFlexAmount parses v the same way a JSON string payload would be.
func NewFlexAmount(v string) FlexAmount {
	return FlexAmount{Value: parseAmount(v), Present: true}
}

// FlexInt is the integer counterpart of FlexAmount.
type FlexInt struct {
	Value   int
	Present bool
}

// UnmarshalJSON never fails; malformed values become zero.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	n.Present = true
	raw, err := decodeScalar(data)
	if err != nil {
		n.Value = 0
		return nil
	}
	n.Value = Count(raw)
	return nil
}

// MarshalJSON renders the count as a JSON number.
func (n FlexInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(n.Value)), nil
}

// NewFlexInt returns a present count.
func NewFlexInt(v int) FlexInt {
	return FlexInt{Value: v, Present: true}
}
