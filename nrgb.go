package filmgrade

import (
	"fmt"
	"image"
	"image/color"

	"github.com/kovidgoyal/go-parallel"
)

var _ = fmt.Print

type NRGBColor struct {
	R, G, B uint8
}

func (c NRGBColor) String() string {
	return fmt.Sprintf("NRGBColor{%02X %02X %02X}", c.R, c.G, c.B)
}

func (c NRGBColor) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	a = 65535
	return
}

// NRGB is an in-memory image whose At method returns NRGBColor values.
// Every grading stage in this package consumes and produces NRGB.
type NRGB struct {
	// Pix holds the image's pixels, in R, G, B order. The pixel at
	// (x, y) starts at Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*3].
	Pix []uint8
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

func nrgbModel(c color.Color) color.Color {
	if _, ok := c.(NRGBColor); ok {
		return c
	}
	r, g, b, a := c.RGBA()
	switch a {
	case 0xffff:
		return NRGBColor{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
	case 0:
		return NRGBColor{0, 0, 0}
	default:
		// Color.RGBA returns alpha-premultiplied values so r <= a && g <= a && b <= a.
		r = (r * 0xffff) / a
		g = (g * 0xffff) / a
		b = (b * 0xffff) / a
		return NRGBColor{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
	}
}

var NRGBModel color.Model = color.ModelFunc(nrgbModel)

func (p *NRGB) ColorModel() color.Model { return NRGBModel }

func (p *NRGB) Bounds() image.Rectangle { return p.Rect }

func (p *NRGB) At(x, y int) color.Color {
	return p.NRGBAt(x, y)
}

func (p *NRGB) NRGBAt(x, y int) NRGBColor {
	if !(image.Point{x, y}.In(p.Rect)) {
		return NRGBColor{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3] // Small cap improves performance, see https://golang.org/issue/27857
	return NRGBColor{s[0], s[1], s[2]}
}

// PixOffset returns the index of the first element of Pix that corresponds to
// the pixel at (x, y).
func (p *NRGB) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

func (p *NRGB) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	c1 := NRGBModel.Convert(c).(NRGBColor)
	s := p.Pix[i : i+3 : i+3]
	s[0] = c1.R
	s[1] = c1.G
	s[2] = c1.B
}

// Opaque reports whether the image is fully opaque. NRGB images always are.
func (p *NRGB) Opaque() bool { return true }

func NewNRGB(r image.Rectangle) *NRGB {
	return &NRGB{
		Pix:    make([]uint8, 3*r.Dx()*r.Dy()),
		Stride: 3 * r.Dx(),
		Rect:   r,
	}
}

// Clone returns a deep copy of the image.
func (p *NRGB) Clone() *NRGB {
	q := NewNRGB(p.Rect)
	if q.Stride == p.Stride {
		copy(q.Pix, p.Pix)
		return q
	}
	width := p.Rect.Dx()
	for y := range p.Rect.Dy() {
		copy(q.Pix[y*q.Stride:y*q.Stride+3*width], p.Pix[y*p.Stride:y*p.Stride+3*width])
	}
	return q
}

// CloneNRGB converts an arbitrary image to a newly allocated NRGB, forcing
// 3-channel RGB. Alpha is dropped per color.Color premultiplied semantics.
// Fast paths exist for the pixel formats produced by the stdlib decoders.
func CloneNRGB(img image.Image) *NRGB {
	b := img.Bounds()
	dst := NewNRGB(b)
	width := b.Dx()
	var f func(start, limit int)
	switch src := img.(type) {
	case *NRGB:
		f = func(start, limit int) {
			for y := start; y < limit; y++ {
				copy(dst.Pix[y*dst.Stride:y*dst.Stride+3*width], src.Pix[y*src.Stride:y*src.Stride+3*width])
			}
		}
	case *image.NRGBA:
		f = func(start, limit int) {
			for y := start; y < limit; y++ {
				row := src.Pix[y*src.Stride:]
				drow := dst.Pix[y*dst.Stride:]
				_ = row[4*(width-1)]
				for range width {
					drow[0], drow[1], drow[2] = row[0], row[1], row[2]
					row = row[4:]
					drow = drow[3:]
				}
			}
		}
	case *image.RGBA:
		f = func(start, limit int) {
			for y := start; y < limit; y++ {
				row := src.Pix[y*src.Stride:]
				drow := dst.Pix[y*dst.Stride:]
				_ = row[4*(width-1)]
				for range width {
					if a := row[3]; a == 0xff || a == 0 {
						drow[0], drow[1], drow[2] = row[0], row[1], row[2]
					} else {
						drow[0] = uint8((uint16(row[0]) * 0xff) / uint16(a))
						drow[1] = uint8((uint16(row[1]) * 0xff) / uint16(a))
						drow[2] = uint8((uint16(row[2]) * 0xff) / uint16(a))
					}
					row = row[4:]
					drow = drow[3:]
				}
			}
		}
	case *image.Gray:
		f = func(start, limit int) {
			for y := start; y < limit; y++ {
				row := src.Pix[y*src.Stride:]
				drow := dst.Pix[y*dst.Stride:]
				_ = row[width-1]
				for _, gray := range row[:width] {
					drow[0], drow[1], drow[2] = gray, gray, gray
					drow = drow[3:]
				}
			}
		}
	case *image.YCbCr:
		f = func(start, limit int) {
			for y := start; y < limit; y++ {
				drow := dst.Pix[y*dst.Stride:]
				for x := range width {
					yi := src.YOffset(b.Min.X+x, b.Min.Y+y)
					ci := src.COffset(b.Min.X+x, b.Min.Y+y)
					drow[0], drow[1], drow[2] = color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
					drow = drow[3:]
				}
			}
		}
	default:
		f = func(start, limit int) {
			for y := start; y < limit; y++ {
				drow := dst.Pix[y*dst.Stride:]
				for x := range width {
					c := nrgbModel(img.At(b.Min.X+x, b.Min.Y+y)).(NRGBColor)
					drow[0], drow[1], drow[2] = c.R, c.G, c.B
					drow = drow[3:]
				}
			}
		}
	}
	_ = parallel.Run_in_parallel_over_range(0, f, 0, b.Dy())
	return dst
}
