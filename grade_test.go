package filmgrade

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmgrade/filmgrade/cube"
	"github.com/filmgrade/filmgrade/lutlib"
)

var _ = fmt.Println

// identityParams has every adjustment at its identity value and the LUT
// disabled.
func identityParams() Params {
	p := DefaultParams()
	p.Intensity = 0
	return p
}

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	_, err := cube.WriteBuiltins(dir)
	require.NoError(t, err)
	require.NoError(t, cube.Identity(16).WriteFile(filepath.Join(dir, "Neutral_Identity.cube")))
	require.NoError(t, cube.Identity(16).WriteFile(filepath.Join(dir, "SLog3_to_Rec709.cube")))
	engine, err := NewEngineForDir(dir, nil)
	require.NoError(t, err)
	return engine, dir
}

func gradient(w, h int) *NRGB {
	img := NewNRGB(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8((x * 255) / max(1, w-1))
			img.Pix[i+1] = uint8((y * 255) / max(1, h-1))
			img.Pix[i+2] = uint8(((x + y) * 255) / max(1, w+h-2))
		}
	}
	return img
}

func TestGradeIdentityPassthrough(t *testing.T) {
	engine, _ := newTestEngine(t)
	img := gradient(20, 10)
	out, res := engine.Grade(img, "Neutral_Identity.cube", identityParams())
	assert.Equal(t, Success, res.Status)
	assert.Equal(t, 0.0, res.EffectiveIntensity)
	assert.NotSame(t, img, out) // never the caller's buffer
	if diff := cmp.Diff(img.Pix, out.Pix); diff != "" {
		t.Fatalf("identity grade changed pixels (-want +got):\n%s", diff)
	}
}

func TestGradeIntensityClamping(t *testing.T) {
	engine, _ := newTestEngine(t)
	img := gradient(16, 16)

	below := DefaultParams()
	below.Intensity = -0.5
	zero := DefaultParams()
	zero.Intensity = 0
	outBelow, _ := engine.Grade(img, "Neutral_Identity.cube", below)
	outZero, _ := engine.Grade(img, "Neutral_Identity.cube", zero)
	assert.Equal(t, outZero.Pix, outBelow.Pix)

	above := DefaultParams()
	above.Intensity = 1.7
	one := DefaultParams()
	one.Intensity = 1
	outAbove, resAbove := engine.Grade(img, "Neutral_Identity.cube", above)
	outOne, _ := engine.Grade(img, "Neutral_Identity.cube", one)
	assert.Equal(t, 1.0, resAbove.EffectiveIntensity)
	assert.Equal(t, outOne.Pix, outAbove.Pix)
}

func TestGradeIdentityLUTRoundTrip(t *testing.T) {
	engine, _ := newTestEngine(t)
	img := gradient(32, 24)
	p := DefaultParams() // intensity 1
	out, res := engine.Grade(img, "Neutral_Identity.cube", p)
	require.Equal(t, Success, res.Status)
	require.Equal(t, img.Rect, out.Rect)
	for i := range img.Pix {
		diff := int(img.Pix[i]) - int(out.Pix[i])
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqual(t, diff, 1, "pixel byte %d drifted more than one level", i)
	}
}

func TestGradeLUTNotFound(t *testing.T) {
	engine, _ := newTestEngine(t)
	img := gradient(8, 8)
	p := DefaultParams()
	p.Brightness = 1.5
	out, res := engine.Grade(img, "xyz_completely_unrelated.cube", p)
	assert.Equal(t, LUTNotFound, res.Status)
	assert.Equal(t, "LUT not found: applied only basic adjustments", res.Message)
	assert.Equal(t, 0.0, res.EffectiveIntensity)
	assert.Empty(t, res.LUTPath)
	// The tone adjustment still happened.
	want := AdjustBrightness(CloneNRGB(img), 1.5)
	assert.Equal(t, want.Pix, out.Pix)
}

func TestGradeFuzzyResolution(t *testing.T) {
	engine, _ := newTestEngine(t)
	img := gradient(8, 8)
	_, res := engine.Grade(img, "Neutral_Identit.cube", DefaultParams()) // one char short
	assert.Equal(t, Success, res.Status)
	assert.Contains(t, res.LUTPath, "Neutral_Identity.cube")
}

func TestGradeCorruptLUT(t *testing.T) {
	engine, dir := newTestEngine(t)
	bad := filepath.Join(dir, "Broken_Look.cube")
	require.NoError(t, os.WriteFile(bad, []byte("LUT_3D_SIZE 2\n0 0 0\n"), 0o644))
	require.NoError(t, engine.Library().Rescan())

	img := gradient(8, 8)
	out, res := engine.Grade(img, "Broken_Look.cube", DefaultParams())
	assert.Equal(t, LUTCorrupt, res.Status)
	assert.Contains(t, res.Message, "LUT file corrupt")
	assert.Equal(t, img.Pix, out.Pix) // adjustments were all identity
}

func TestZeroIntensitySkipsLUTLoad(t *testing.T) {
	// At zero intensity the LUT contributes nothing, so even a corrupt file
	// must not fail the request or be parsed at all.
	engine, dir := newTestEngine(t)
	bad := filepath.Join(dir, "Broken_Look.cube")
	require.NoError(t, os.WriteFile(bad, []byte("LUT_3D_SIZE 2\n0 0 0\n"), 0o644))
	require.NoError(t, engine.Library().Rescan())

	img := gradient(8, 8)
	p := DefaultParams()
	p.Intensity = 0
	out, res := engine.Grade(img, "Broken_Look.cube", p)
	assert.Equal(t, Success, res.Status)
	assert.Equal(t, "success", res.Message)
	assert.Equal(t, 0.0, res.EffectiveIntensity)
	assert.Contains(t, res.LUTPath, "Broken_Look.cube")
	assert.Equal(t, img.Pix, out.Pix)
}

func TestSafetyGovernor(t *testing.T) {
	engine, _ := newTestEngine(t)
	img := gradient(8, 8)

	t.Run("ClampsLogLUT", func(t *testing.T) {
		p := DefaultParams()
		p.Intensity = 0.9
		_, res := engine.Grade(img, "SLog3_to_Rec709.cube", p)
		assert.Equal(t, Success, res.Status)
		assert.True(t, res.GovernorClamped)
		assert.LessOrEqual(t, res.EffectiveIntensity, 0.35)
		assert.Contains(t, res.Message, "clamped")
	})
	t.Run("SimulateLogBypasses", func(t *testing.T) {
		p := DefaultParams()
		p.Intensity = 0.9
		p.SimulateLog = true
		_, res := engine.Grade(img, "SLog3_to_Rec709.cube", p)
		assert.False(t, res.GovernorClamped)
		assert.Equal(t, 0.9, res.EffectiveIntensity)
	})
	t.Run("LowIntensityUntouched", func(t *testing.T) {
		p := DefaultParams()
		p.Intensity = 0.2
		_, res := engine.Grade(img, "SLog3_to_Rec709.cube", p)
		assert.False(t, res.GovernorClamped)
		assert.Equal(t, 0.2, res.EffectiveIntensity)
	})
	t.Run("MarkerMatching", func(t *testing.T) {
		assert.True(t, isTechnicalLUT("SLog3_to_Rec709.cube"))
		assert.True(t, isTechnicalLUT("arri_logc3_to_rec709.cube"))
		assert.True(t, isTechnicalLUT("Sony_Venice_RAW.cube"))
		assert.False(t, isTechnicalLUT("Vintage_Warm.cube"))
		assert.False(t, isTechnicalLUT("Teal_Orange.cube"))
		// Only the filename matters; marker tokens in parent directories are
		// not about the LUT's input encoding.
		assert.False(t, isTechnicalLUT("/library/raw_scans/Sunset_Glow.cube"))
		assert.True(t, isTechnicalLUT("/library/creative/Sony_SLog3.cube"))
	})
	t.Run("MarkerDirectoryIgnored", func(t *testing.T) {
		engine, dir := newTestEngine(t)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "raw_scans"), 0o755))
		require.NoError(t, cube.Identity(16).WriteFile(filepath.Join(dir, "raw_scans", "Sunset_Glow.cube")))
		require.NoError(t, engine.Library().Rescan())

		p := DefaultParams()
		p.Intensity = 0.9
		_, res := engine.Grade(img, "Sunset_Glow.cube", p)
		assert.Equal(t, Success, res.Status)
		assert.False(t, res.GovernorClamped)
		assert.Equal(t, 0.9, res.EffectiveIntensity)
	})
}

func TestGradeEndToEndSolidGray(t *testing.T) {
	engine, _ := newTestEngine(t)
	img := solidNRGB(100, 100, NRGBColor{128, 128, 128})
	p := DefaultParams()
	p.Intensity = 1
	out, res := engine.Grade(img, "Vintage_Warm.cube", p)
	require.Equal(t, Success, res.Status)
	assert.Equal(t, "success", res.Message)
	assert.Equal(t, img.Rect.Dx(), out.Rect.Dx())
	assert.Equal(t, img.Rect.Dy(), out.Rect.Dy())
	assert.NotEqual(t, img.Pix, out.Pix, "non-identity LUT must change a solid gray image")
}

func TestGradeBlending(t *testing.T) {
	engine, dir := newTestEngine(t)
	// A LUT that maps everything to pure white makes blend math easy to check.
	white := cube.Generate("White", 2, func(r, g, b float64) (float64, float64, float64) {
		return 1, 1, 1
	})
	require.NoError(t, white.WriteFile(filepath.Join(dir, "All_White.cube")))
	require.NoError(t, engine.Library().Rescan())

	img := solidNRGB(4, 4, NRGBColor{0, 0, 0})
	p := DefaultParams()
	p.Intensity = 0.5
	out, res := engine.Grade(img, "All_White.cube", p)
	require.Equal(t, Success, res.Status)
	assert.Equal(t, 0.5, res.EffectiveIntensity)
	c := out.NRGBAt(0, 0)
	assert.InDelta(t, 128, int(c.R), 1)
	assert.InDelta(t, 128, int(c.G), 1)
	assert.InDelta(t, 128, int(c.B), 1)
}

func TestParamsFromStrings(t *testing.T) {
	t.Run("ParseOrDefault", func(t *testing.T) {
		p := ParamsFromStrings(map[string]string{
			"intensity":    "0.8",
			"brightness":   "not-a-number",
			"temperature":  "2.5", // out of domain, clamped
			"curve":        "S-Curve",
			"simulate_log": "true",
			"bogus_key":    "ignored",
		})
		assert.Equal(t, 0.8, p.Intensity)
		assert.Equal(t, 1.0, p.Brightness) // fell back to default
		assert.Equal(t, 1.0, p.Temperature)
		assert.Equal(t, CurveS, p.Curve)
		assert.True(t, p.SimulateLog)
	})
	t.Run("Empty", func(t *testing.T) {
		p := ParamsFromStrings(nil)
		assert.Equal(t, DefaultParams(), p)
	})
}

func TestResolverSharedTransform(t *testing.T) {
	// Resolving by name and by full path must hand back the identical cached
	// transform object.
	dir := t.TempDir()
	path := filepath.Join(dir, "fuji_velvia.cube")
	require.NoError(t, cube.Identity(4).WriteFile(path))
	lib, err := lutlib.NewLibrary(dir)
	require.NoError(t, err)
	cache := lutlib.NewCache(8)

	p1, ok := lib.Resolve("Fuji_Velvia.cube")
	require.True(t, ok)
	p2, ok := lib.Resolve(path)
	require.True(t, ok)
	require.Equal(t, p1, p2)

	l1, err := cache.Get(p1)
	require.NoError(t, err)
	l2, err := cache.Get(p2)
	require.NoError(t, err)
	assert.Same(t, l1, l2)
}
