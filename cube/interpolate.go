package cube

func clamp01(v float64) float64 {
	return max(0, min(v, 1))
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Lookup evaluates the LUT at the normalized input color (r, g, b in [0, 1])
// by trilinear interpolation over the 8 surrounding grid nodes. Inputs are
// clamped to the LUT domain; outputs are clamped to [0, 1].
func (l *LUT) Lookup(r, g, b float64) (float64, float64, float64) {
	size := float64(l.Size - 1)

	// Map the normalized input into grid coordinates via the declared domain.
	ri := clamp01((r-l.DomainMin.R)/(l.DomainMax.R-l.DomainMin.R)) * size
	gi := clamp01((g-l.DomainMin.G)/(l.DomainMax.G-l.DomainMin.G)) * size
	bi := clamp01((b-l.DomainMin.B)/(l.DomainMax.B-l.DomainMin.B)) * size

	r0, g0, b0 := int(ri), int(gi), int(bi)
	// Clamp base indices so the upper corner stays on the grid; the border
	// node then carries full weight.
	rf, gf, bf := ri-float64(r0), gi-float64(g0), bi-float64(b0)
	if r0 >= l.Size-1 {
		r0, rf = l.Size-2, 1
	}
	if g0 >= l.Size-1 {
		g0, gf = l.Size-2, 1
	}
	if b0 >= l.Size-1 {
		b0, bf = l.Size-2, 1
	}

	c000r, c000g, c000b := l.sample(r0, g0, b0)
	c100r, c100g, c100b := l.sample(r0+1, g0, b0)
	c010r, c010g, c010b := l.sample(r0, g0+1, b0)
	c110r, c110g, c110b := l.sample(r0+1, g0+1, b0)
	c001r, c001g, c001b := l.sample(r0, g0, b0+1)
	c101r, c101g, c101b := l.sample(r0+1, g0, b0+1)
	c011r, c011g, c011b := l.sample(r0, g0+1, b0+1)
	c111r, c111g, c111b := l.sample(r0+1, g0+1, b0+1)

	// Collapse along R, then G, then B.
	c00r, c00g, c00b := lerp(c000r, c100r, rf), lerp(c000g, c100g, rf), lerp(c000b, c100b, rf)
	c10r, c10g, c10b := lerp(c010r, c110r, rf), lerp(c010g, c110g, rf), lerp(c010b, c110b, rf)
	c01r, c01g, c01b := lerp(c001r, c101r, rf), lerp(c001g, c101g, rf), lerp(c001b, c101b, rf)
	c11r, c11g, c11b := lerp(c011r, c111r, rf), lerp(c011g, c111g, rf), lerp(c011b, c111b, rf)

	c0r, c0g, c0b := lerp(c00r, c10r, gf), lerp(c00g, c10g, gf), lerp(c00b, c10b, gf)
	c1r, c1g, c1b := lerp(c01r, c11r, gf), lerp(c01g, c11g, gf), lerp(c01b, c11b, gf)

	return clamp01(lerp(c0r, c1r, bf)), clamp01(lerp(c0g, c1g, bf)), clamp01(lerp(c0b, c1b, bf))
}
