package resource

import (
	"encoding/json"
	"math"
	"regexp"

	"github.com/spf13/cast"
)

// Kind tags the dynamic type held by a Scalar.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	}
	return "string"
}

// Scalar is a bool, number or string value guessed from request text.
type Scalar struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

func String(s string) Scalar  { return Scalar{kind: KindString, s: s} }
func Number(n float64) Scalar { return Scalar{kind: KindNumber, n: n} }
func Bool(b bool) Scalar      { return Scalar{kind: KindBool, b: b} }

func (s Scalar) Kind() Kind { return s.kind }

// Value returns the scalar as a plain Go value (bool, float64 or string).
func (s Scalar) Value() any {
	switch s.kind {
	case KindBool:
		return s.b
	case KindNumber:
		return s.n
	}
	return s.s
}

func (s Scalar) MarshalJSON() ([]byte, error) { return json.Marshal(s.Value()) }

// decimalLiteral is the only numeric form Coerce accepts. cast on its own
// also takes underscores and hex floats, which show up in ids and SKUs.
var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Coerce converts a request string to its best-guess scalar type: exactly
// "true" or "false" become booleans, text that parses fully as a finite number
// becomes a number, anything else stays a string. It never fails.
func Coerce(raw string) Scalar {
	switch raw {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if !decimalLiteral.MatchString(raw) {
		return String(raw)
	}
	n, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return String(raw)
	}
	return Number(n)
}

// Equal reports whether v, a value decoded from JSON or the store, matches the
// scalar. Numbers compare by value regardless of their Go numeric type.
func (s Scalar) Equal(v any) bool {
	switch s.kind {
	case KindBool:
		b, ok := v.(bool)
		return ok && b == s.b
	case KindNumber:
		switch n := v.(type) {
		case json.Number:
			f, err := n.Float64()
			return err == nil && f == s.n
		case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			f, err := cast.ToFloat64E(n)
			return err == nil && f == s.n
		}
		return false
	}
	str, ok := v.(string)
	return ok && str == s.s
}
