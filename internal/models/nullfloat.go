package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

var nan = math.NaN()

// NullFloat is a NaN-backed nullable float64. Unknown values are NaN
// in memory and null on the wire, which keeps arithmetic code free of
// pointer checks: any computation touching an unknown value yields NaN
// and downstream NaN policy applies.
type NullFloat float64

// Null returns the invalid NullFloat.
func Null() NullFloat { return NullFloat(nan) }

// Valid reports whether the value is known (not NaN).
func (f NullFloat) Valid() bool { return !math.IsNaN(float64(f)) }

// Float returns the underlying float64 (NaN when invalid).
func (f NullFloat) Float() float64 { return float64(f) }

// MarshalJSON emits null for unknown values.
func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

// UnmarshalJSON accepts null, a native number, or a quoted numeric
// string. Upstream feeds serialize some numeric columns as strings;
// this coerces them the same way the ingest path does.
func (f *NullFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = Null()
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("nullfloat unmarshal: %w", err)
		}
		if s == "" {
			*f = Null()
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("nullfloat coerce %q: %w", s, err)
		}
		*f = NullFloat(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("nullfloat unmarshal: %w", err)
	}
	*f = NullFloat(n)
	return nil
}

// FromPtr converts a nullable database value to a NullFloat.
func FromPtr(p *float64) NullFloat {
	if p == nil {
		return Null()
	}
	return NullFloat(*p)
}

// Ptr converts back to a nullable database value.
func (f NullFloat) Ptr() *float64 {
	if !f.Valid() {
		return nil
	}
	v := float64(f)
	return &v
}
