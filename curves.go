package filmgrade

import "math"

// Curve names a tone-curve remap applied identically to all three channels.
type Curve string

const (
	CurveLinear     Curve = "Linear"
	CurveS          Curve = "S-Curve"
	CurveSoftHigh   Curve = "Soft-High"
	CurveLiftShadow Curve = "Lift-Shadow"
)

const (
	// Steepness of the sigmoid used by S-Curve. Chosen so mid-tones gain
	// visible contrast while the renormalisation below keeps the black and
	// white points fixed.
	sCurveSteepness = 8.0
	// Soft-High compresses the slope above mid-gray to this factor.
	softHighSlope = 0.8
	// Lift-Shadow raises values below the threshold by this fraction of
	// their distance to it.
	shadowLift      = 0.3
	shadowThreshold = 64
)

// Table returns the 256-entry remap for the curve, or ok=false when the curve
// is the identity (Linear, or any unrecognised name).
func (c Curve) Table() (t [256]uint8, ok bool) {
	switch c {
	case CurveS:
		sigmoid := func(x float64) float64 {
			return 1 / (1 + math.Exp(-sCurveSteepness*(x-0.5)))
		}
		// Renormalise so 0 maps to 0 and 255 maps to 255 exactly.
		lo, hi := sigmoid(0), sigmoid(1)
		for i := range t {
			s := (sigmoid(float64(i)/255) - lo) / (hi - lo)
			t[i] = clamp8(s * 255)
		}
		return t, true
	case CurveSoftHigh:
		for i := range t {
			if i < 128 {
				t[i] = uint8(i)
			} else {
				t[i] = clamp8(128 + float64(i-128)*softHighSlope)
			}
		}
		return t, true
	case CurveLiftShadow:
		for i := range t {
			if i >= shadowThreshold {
				t[i] = uint8(i)
			} else {
				t[i] = clamp8(float64(i) + shadowLift*float64(shadowThreshold-i))
			}
		}
		return t, true
	}
	return t, false
}

// ApplyCurve remaps all three channels through the curve's lookup table.
// Linear and unrecognised curve names are no-ops and return src unchanged.
func ApplyCurve(src *NRGB, c Curve) *NRGB {
	t, ok := c.Table()
	if !ok {
		return src
	}
	return adjust_rows(src, func(drow, srow []uint8) {
		for i, v := range srow {
			drow[i] = t[v]
		}
	})
}
