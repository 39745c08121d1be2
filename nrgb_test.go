package filmgrade

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ = fmt.Println

// twoByThree is a 2x3 image with a distinct color per pixel, laid out
//
//	A B
//	C D
//	E F
func twoByThree() *NRGB {
	img := NewNRGB(image.Rect(0, 0, 2, 3))
	for i := range 6 {
		img.Pix[3*i] = uint8(10 * (i + 1))
		img.Pix[3*i+1] = uint8(10*(i+1) + 1)
		img.Pix[3*i+2] = uint8(10*(i+1) + 2)
	}
	return img
}

func pixels(img *NRGB) []NRGBColor {
	var out []NRGBColor
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			out = append(out, img.NRGBAt(x, y))
		}
	}
	return out
}

func TestCloneNRGB(t *testing.T) {
	t.Run("FromNRGBA", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
		src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		got := CloneNRGB(src)
		assert.Equal(t, NRGBColor{200, 100, 50}, got.NRGBAt(1, 0))
		assert.Equal(t, image.Rect(0, 0, 2, 2), got.Rect)
	})
	t.Run("FromGray", func(t *testing.T) {
		src := image.NewGray(image.Rect(0, 0, 1, 1))
		src.SetGray(0, 0, color.Gray{Y: 77})
		got := CloneNRGB(src)
		assert.Equal(t, NRGBColor{77, 77, 77}, got.NRGBAt(0, 0))
	})
	t.Run("NonZeroOrigin", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(5, 5, 7, 6))
		src.SetRGBA(6, 5, color.RGBA{R: 9, G: 8, B: 7, A: 255})
		got := CloneNRGB(src)
		assert.Equal(t, NRGBColor{9, 8, 7}, got.NRGBAt(6, 5))
	})
	t.Run("CopiesStorage", func(t *testing.T) {
		src := twoByThree()
		got := CloneNRGB(src)
		got.Pix[0] = 99
		assert.EqualValues(t, 10, src.Pix[0])
	})
}

func TestOrientationTransforms(t *testing.T) {
	src := twoByThree()
	want := pixels(src)
	a, b, c, d, e, f := want[0], want[1], want[2], want[3], want[4], want[5]

	cases := []struct {
		name string
		fn   func(*NRGB) *NRGB
		w, h int
		want []NRGBColor
	}{
		{"FlipH", FlipH, 2, 3, []NRGBColor{b, a, d, c, f, e}},
		{"FlipV", FlipV, 2, 3, []NRGBColor{e, f, c, d, a, b}},
		{"Rotate90", Rotate90, 3, 2, []NRGBColor{b, d, f, a, c, e}},
		{"Rotate180", Rotate180, 2, 3, []NRGBColor{f, e, d, c, b, a}},
		{"Rotate270", Rotate270, 3, 2, []NRGBColor{e, c, a, f, d, b}},
		{"Transpose", Transpose, 3, 2, []NRGBColor{a, c, e, b, d, f}},
		{"Transverse", Transverse, 3, 2, []NRGBColor{f, d, b, e, c, a}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.fn(src)
			require.Equal(t, tc.w, got.Rect.Dx())
			require.Equal(t, tc.h, got.Rect.Dy())
			assert.Equal(t, tc.want, pixels(got))
		})
	}
}

func TestFormatFromFilename(t *testing.T) {
	for name, want := range map[string]Format{
		"shot.jpg": JPEG, "shot.JPEG": JPEG, "x.png": PNG,
		"x.tif": TIFF, "x.tiff": TIFF, "x.bmp": BMP, "x.gif": GIF, "x.webp": WEBP,
	} {
		got, err := FormatFromFilename(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := FormatFromFilename("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
