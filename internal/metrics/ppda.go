package metrics

import (
	"encoding/json"
	"math"
)

// PPDA (passes per defensive action) is a sum type: either a finite ratio or
// infinite when the defending side recorded no defensive actions. Infinite
// serializes as the JSON string "inf".
type PPDA struct {
	finite bool
	value  float64
}

// FinitePPDA wraps a finite ratio.
func FinitePPDA(v float64) PPDA { return PPDA{finite: true, value: v} }

// InfinitePPDA is the zero-defensive-action case.
func InfinitePPDA() PPDA { return PPDA{} }

// IsFinite reports whether the value is a real ratio.
func (p PPDA) IsFinite() bool { return p.finite }

// Value returns the ratio, or +Inf for the infinite case.
func (p PPDA) Value() float64 {
	if !p.finite {
		return math.Inf(1)
	}
	return p.value
}

// MarshalJSON serializes finite values as numbers and the infinite case as
// the literal string "inf".
func (p PPDA) MarshalJSON() ([]byte, error) {
	if !p.finite {
		return json.Marshal("inf")
	}
	return json.Marshal(p.value)
}

// UnmarshalJSON accepts either a number or the string "inf".
func (p *PPDA) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "inf" {
			*p = InfinitePPDA()
			return nil
		}
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = FinitePPDA(v)
	return nil
}
