package echoapi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var errNotANumber = errors.New("must be a number")

// flexNumber accepts a JSON number or a string holding one. null is treated as absent.
type flexNumber struct {
	Value float64
	Set   bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = flexNumber{}
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" { // "" behaves like a missing value
			*n = flexNumber{}
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Wrapf(errNotANumber, "%s", raw)
	}
	*n = flexNumber{Value: v, Set: true}
	return nil
}

// Int returns the value when it is integral.
func (n flexNumber) Int() (int, bool) {
	if !n.Set || n.Value != math.Trunc(n.Value) || math.Abs(n.Value) > math.MaxInt32 {
		return 0, false
	}
	return int(n.Value), true
}

// flexString accepts a JSON string or number, keeping numbers in their canonical form (1234.0 -> "1234").
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return err
		}
		*s = flexString(canonicalNumber(num))
		return nil
	}
}

func canonicalNumber(num json.Number) string {
	if i, err := num.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if fl, err := num.Float64(); err == nil {
		return strconv.FormatFloat(fl, 'f', -1, 64)
	}
	return num.String()
}
