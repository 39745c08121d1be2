package cube

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
)

// Generate builds a LUT by evaluating f at every grid node, with R varying
// fastest and B slowest. f receives and returns normalized [0, 1] colors;
// outputs are clamped.
func Generate(title string, size int, f func(r, g, b float64) (float64, float64, float64)) *LUT {
	l := &LUT{
		Title:     title,
		Size:      size,
		DomainMax: RGB{1, 1, 1},
		samples:   make([]float64, 0, 3*size*size*size),
	}
	n := float64(size - 1)
	for b := range size {
		for g := range size {
			for r := range size {
				or, og, ob := f(float64(r)/n, float64(g)/n, float64(b)/n)
				l.samples = append(l.samples, clamp01(or), clamp01(og), clamp01(ob))
			}
		}
	}
	return l
}

// Identity returns a LUT that maps every color to itself.
func Identity(size int) *LUT {
	return Generate("Identity", size, func(r, g, b float64) (float64, float64, float64) {
		return r, g, b
	})
}

// Builtin looks shipped so a fresh install has working LUTs without
// downloading anything. Keys are look names without the .cube extension.
var Builtins = map[string]func() *LUT{
	"Vintage_Warm": vintageWarm,
	"Teal_Orange":  tealOrange,
	"BW_Contrast":  bwContrast,
	"Fade_Pastel":  fadePastel,
	"Cool_Morning": coolMorning,
}

const builtinSize = 16

// vintageWarm pushes hues toward amber, desaturates slightly and lifts the
// shadows for a faded film look.
func vintageWarm() *LUT {
	return Generate("Vintage Warm", builtinSize, func(r, g, b float64) (float64, float64, float64) {
		c := colorful.Color{R: r, G: g, B: b}
		h, s, v := c.Hsv()
		h = h + 8*math.Sin((h-40)/180*math.Pi) // drift toward ~40deg amber
		s *= 0.85
		v = 0.06 + v*0.94
		return rgb(colorful.Hsv(math.Mod(h+360, 360), s, v).Clamped())
	})
}

// tealOrange pushes shadows toward teal and highlights toward orange, the
// classic blockbuster split-tone.
func tealOrange() *LUT {
	return Generate("Teal Orange", builtinSize, func(r, g, b float64) (float64, float64, float64) {
		c := colorful.Color{R: r, G: g, B: b}
		h, s, l := c.Hsl()
		if l < 0.5 {
			h = blendHue(h, 190, (0.5-l)*0.5)
		} else {
			h = blendHue(h, 30, (l-0.5)*0.5)
		}
		return rgb(colorful.Hsl(h, min(1, s*1.1), l).Clamped())
	})
}

// bwContrast converts to luma and applies a gentle S-shaped contrast boost.
func bwContrast() *LUT {
	return Generate("BW Contrast", builtinSize, func(r, g, b float64) (float64, float64, float64) {
		y := 0.299*r + 0.587*g + 0.114*b
		y = clamp01(0.5 + (y-0.5)*1.25)
		return y, y, y
	})
}

// fadePastel lifts blacks and compresses highlights for a washed pastel look.
func fadePastel() *LUT {
	return Generate("Fade Pastel", builtinSize, func(r, g, b float64) (float64, float64, float64) {
		c := colorful.Color{R: r, G: g, B: b}
		h, s, l := c.Hsl()
		l = 0.08 + l*0.86
		s *= 0.75
		return rgb(colorful.Hsl(h, s, l).Clamped())
	})
}

// coolMorning shifts the whole image toward blue and slightly darkens
// mid-tones.
func coolMorning() *LUT {
	return Generate("Cool Morning", builtinSize, func(r, g, b float64) (float64, float64, float64) {
		c := colorful.Color{R: r * 0.96, G: g * 0.98, B: min(1, b*1.06+0.02)}
		h, s, v := c.Clamped().Hsv()
		return rgb(colorful.Hsv(h, s, clamp01(v*0.97)).Clamped())
	})
}

func rgb(c colorful.Color) (float64, float64, float64) {
	return c.R, c.G, c.B
}

// blendHue moves h toward target (both in degrees) by fraction t along the
// shorter arc.
func blendHue(h, target, t float64) float64 {
	d := math.Mod(target-h+540, 360) - 180
	return math.Mod(h+d*t+360, 360)
}

// WriteBuiltins writes every builtin look into dir as <name>.cube, creating
// dir if needed. Existing files are overwritten.
func WriteBuiltins(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for name, build := range Builtins {
		path := filepath.Join(dir, name+".cube")
		if err := build().WriteFile(path); err != nil {
			return written, fmt.Errorf("writing builtin LUT %s: %w", name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
