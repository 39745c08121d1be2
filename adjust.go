package filmgrade

import (
	"fmt"

	"github.com/kovidgoyal/go-parallel"
)

var _ = fmt.Print

// whiteBalanceSensitivity scales how strongly temperature/tint move the
// channels. At the +-1.0 extremes the affected channel shifts by 22%, which
// stays clear of gross clipping on typical imagery. Policy constant, not a
// colorimetric one.
const whiteBalanceSensitivity = 0.22

func clamp8(v float64) uint8 {
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v + 0.5)
}

// adjust_rows allocates a destination image of the same geometry as src and
// fills it by applying f to each row in parallel. f must write exactly the
// pixels of its row; rows never overlap so the passes stay deterministic.
func adjust_rows(src *NRGB, f func(drow, srow []uint8)) *NRGB {
	dst := NewNRGB(src.Rect)
	width := src.Rect.Dx()
	rows := func(start, limit int) {
		for y := start; y < limit; y++ {
			f(dst.Pix[y*dst.Stride:y*dst.Stride+3*width], src.Pix[y*src.Stride:y*src.Stride+3*width])
		}
	}
	_ = parallel.Run_in_parallel_over_range(0, rows, 0, src.Rect.Dy())
	return dst
}

// channel_table builds the 256-entry remap for a multiplicative channel scale.
func channel_table(factor float64) (t [256]uint8) {
	for i := range t {
		t[i] = clamp8(float64(i) * factor)
	}
	return
}

// AdjustWhiteBalance shifts the image's white balance. temperature in [-1, 1]
// warms (positive, red up / blue down) or cools the image; tint in [-1, 1]
// corrects green (positive) versus magenta (negative) skew. Zero for both is
// a no-op and returns src unchanged.
func AdjustWhiteBalance(src *NRGB, temperature, tint float64) *NRGB {
	if temperature == 0 && tint == 0 {
		return src
	}
	rt := channel_table(1 + temperature*whiteBalanceSensitivity)
	gt := channel_table(1 - tint*whiteBalanceSensitivity)
	bt := channel_table(1 - temperature*whiteBalanceSensitivity)
	return adjust_rows(src, func(drow, srow []uint8) {
		for i := 0; i < len(srow); i += 3 {
			drow[i] = rt[srow[i]]
			drow[i+1] = gt[srow[i+1]]
			drow[i+2] = bt[srow[i+2]]
		}
	})
}

// AdjustBrightness scales all channels by factor. 1.0 is a no-op and returns
// src unchanged.
func AdjustBrightness(src *NRGB, factor float64) *NRGB {
	if factor == 1 {
		return src
	}
	t := channel_table(factor)
	return adjust_rows(src, func(drow, srow []uint8) {
		for i, v := range srow {
			drow[i] = t[v]
		}
	})
}

// AdjustContrast scales each channel's deviation from mid-gray (128) by
// factor. 1.0 is a no-op and returns src unchanged.
func AdjustContrast(src *NRGB, factor float64) *NRGB {
	if factor == 1 {
		return src
	}
	var t [256]uint8
	for i := range t {
		t[i] = clamp8(128 + (float64(i)-128)*factor)
	}
	return adjust_rows(src, func(drow, srow []uint8) {
		for i, v := range srow {
			drow[i] = t[v]
		}
	})
}

// AdjustSaturation scales each pixel's deviation from its own gray value
// (Rec.601 luma) by factor. 0 produces grayscale, 1.0 is a no-op and returns
// src unchanged.
func AdjustSaturation(src *NRGB, factor float64) *NRGB {
	if factor == 1 {
		return src
	}
	return adjust_rows(src, func(drow, srow []uint8) {
		for i := 0; i < len(srow); i += 3 {
			r, g, b := float64(srow[i]), float64(srow[i+1]), float64(srow[i+2])
			gray := 0.299*r + 0.587*g + 0.114*b
			drow[i] = clamp8(gray + (r-gray)*factor)
			drow[i+1] = clamp8(gray + (g-gray)*factor)
			drow[i+2] = clamp8(gray + (b-gray)*factor)
		}
	})
}

// Blend linearly interpolates between a and b: t=0 yields a, t=1 yields b.
// The images must have identical dimensions.
func Blend(a, b *NRGB, t float64) *NRGB {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	width := a.Rect.Dx()
	dst := NewNRGB(a.Rect)
	rows := func(start, limit int) {
		for y := start; y < limit; y++ {
			arow := a.Pix[y*a.Stride : y*a.Stride+3*width]
			brow := b.Pix[y*b.Stride : y*b.Stride+3*width]
			drow := dst.Pix[y*dst.Stride : y*dst.Stride+3*width]
			for i, av := range arow {
				drow[i] = clamp8(float64(av) + t*(float64(brow[i])-float64(av)))
			}
		}
	}
	_ = parallel.Run_in_parallel_over_range(0, rows, 0, a.Rect.Dy())
	return dst
}
