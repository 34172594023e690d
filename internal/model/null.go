// Package model defines the records, aggregates and cluster assignments that
// flow through the analysis pipeline.
package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// NullFloat is a ratio that may be undefined (zero denominator). Undefined
// values are exported as empty cells and JSON null, never as zero.
type NullFloat struct {
	Value float64
	Valid bool
}

// Float returns a defined value.
func Float(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

// Ratio divides num by den, undefined when den is zero.
func Ratio(num, den float64) NullFloat {
	if den == 0 {
		return NullFloat{}
	}
	return Float(num / den)
}

// Or returns the value, or def when undefined.
func (n NullFloat) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Percent returns the value times 100, keeping undefined values undefined.
func (n NullFloat) Percent() NullFloat {
	if !n.Valid {
		return n
	}
	return Float(n.Value * 100)
}

// String formats the value with full precision, "" when undefined.
func (n NullFloat) String() string {
	if !n.Valid || math.IsNaN(n.Value) {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (n NullFloat) MarshalCSV() (string, error) {
	return n.String(), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (n *NullFloat) UnmarshalCSV(s string) error {
	if s == "" {
		*n = NullFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// MarshalJSON writes null for undefined values.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts a number or null.
func (n *NullFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// Mean averages the defined values, undefined when there are none.
func Mean(values []NullFloat) NullFloat {
	var sum float64
	var n int
	for _, v := range values {
		if v.Valid {
			sum += v.Value
			n++
		}
	}
	if n == 0 {
		return NullFloat{}
	}
	return Float(sum / float64(n))
}
