package storefront

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// The storefront is loose about numbers: the same field may arrive as 412.5, "412.50", "" or null.
// The Flex types decode any of those; Valid is false when no usable value was present.

type FlexDecimal struct {
	Decimal decimal.Decimal
	Valid   bool
}

func (f *FlexDecimal) UnmarshalJSON(data []byte) error {
	f.Decimal, f.Valid = decimal.Zero, false
	s := unquote(data)
	if s == "" || s == "null" {
		return nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		// a non-numeric value is treated as absent rather than failing the whole payload
		return nil
	}
	f.Decimal, f.Valid = d, true
	return nil
}

// Or returns the value when valid and def otherwise
func (f FlexDecimal) Or(def decimal.Decimal) decimal.Decimal {
	if f.Valid {
		return f.Decimal
	}
	return def
}

type FlexInt struct {
	Int   int
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var d FlexDecimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	f.Int, f.Valid = int(d.Decimal.IntPart()), d.Valid
	return nil
}

// FlexString accepts a JSON string or number. A {"min-days","max-days"} range is rendered as "3-5";
// any other object or array is treated as absent.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	*f = ""
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch val := v.(type) {
	case map[string]interface{}:
		*f = FlexString(dayRange(val))
		return nil
	case []interface{}:
		return nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil
	}
	*f = FlexString(strings.TrimSpace(s))
	return nil
}

func dayRange(m map[string]interface{}) string {
	lo := strings.TrimSpace(cast.ToString(m["min-days"]))
	hi := strings.TrimSpace(cast.ToString(m["max-days"]))
	switch {
	case lo == "" || lo == hi:
		return hi
	case hi == "":
		return lo
	}
	return lo + "-" + hi
}

func unquote(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return strings.TrimSpace(u)
		}
	}
	return s
}
