package contracts

import (
	"bytes"
	"encoding/json"
	"math"
)

// Float is a float64 that serializes NaN and ±Inf as JSON null.
// Every number leaving the engine boundary uses it.
type Float float64

var nullLiteral = []byte("null")

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid() {
		return nullLiteral, nil
	}
	return json.Marshal(float64(f))
}

// UnmarshalJSON reads null back as NaN
func (f *Float) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), nullLiteral) {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Valid reports whether the value is finite
func (f Float) Valid() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Ptr returns a pointer to f, for optional fields
func (f Float) Ptr() *Float {
	return &f
}

// Floats converts a float64 slice
func Floats(vs []float64) []Float {
	out := make([]Float, len(vs))
	for i, v := range vs {
		out[i] = Float(v)
	}
	return out
}
