package aggregate

import "math"

// Unit is a display divisor shared by every value shown together.
type Unit struct {
	Divisor float64 `json:"divisor"`
	Label   string  `json:"label"`
}

// ScaleFor picks the Indian numbering unit for the largest value of a set.
func ScaleFor(peak float64) Unit {
	abs := math.Abs(peak)
	switch {
	case abs >= 1e7:
		return Unit{Divisor: 1e7, Label: "crores"}
	case abs >= 1e5:
		return Unit{Divisor: 1e5, Label: "lakhs"}
	case abs >= 1e3:
		return Unit{Divisor: 1e3, Label: "thousands"}
	default:
		return Unit{Divisor: 1}
	}
}

// Apply scales a value by the unit divisor.
func (u Unit) Apply(v float64) float64 {
	if u.Divisor == 0 {
		return v
	}
	return v / u.Divisor
}

// MaxOf returns the largest value in the slice, zero when empty.
func MaxOf(values ...float64) float64 {
	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	return peak
}
