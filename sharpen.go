package filmgrade

import "github.com/kovidgoyal/go-parallel"

// Sharpen adjusts edge acutance via an unsharp mask against a 3x3 box blur:
// out = src + (amount-1)*(src - blur). amount 1.0 is a no-op and returns src
// unchanged; below 1.0 softens the image, above 1.0 sharpens it.
func Sharpen(src *NRGB, amount float64) *NRGB {
	if amount == 1 {
		return src
	}
	blurred := boxBlur3(src)
	k := amount - 1
	width := src.Rect.Dx()
	dst := NewNRGB(src.Rect)
	rows := func(start, limit int) {
		for y := start; y < limit; y++ {
			srow := src.Pix[y*src.Stride : y*src.Stride+3*width]
			brow := blurred.Pix[y*blurred.Stride : y*blurred.Stride+3*width]
			drow := dst.Pix[y*dst.Stride : y*dst.Stride+3*width]
			for i, sv := range srow {
				drow[i] = clamp8(float64(sv) + k*(float64(sv)-float64(brow[i])))
			}
		}
	}
	_ = parallel.Run_in_parallel_over_range(0, rows, 0, src.Rect.Dy())
	return dst
}

// boxBlur3 is a 3x3 box blur with edge clamping.
func boxBlur3(src *NRGB) *NRGB {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	dst := NewNRGB(src.Rect)
	clampY := func(y int) int { return max(0, min(height-1, y)) }
	clampX := func(x int) int { return max(0, min(width-1, x)) }
	rows := func(start, limit int) {
		for y := start; y < limit; y++ {
			drow := dst.Pix[y*dst.Stride:]
			for x := range width {
				var sum [3]int
				for dy := -1; dy <= 1; dy++ {
					row := src.Pix[clampY(y+dy)*src.Stride:]
					for dx := -1; dx <= 1; dx++ {
						o := 3 * clampX(x+dx)
						sum[0] += int(row[o])
						sum[1] += int(row[o+1])
						sum[2] += int(row[o+2])
					}
				}
				o := 3 * x
				drow[o] = uint8((sum[0] + 4) / 9)
				drow[o+1] = uint8((sum[1] + 4) / 9)
				drow[o+2] = uint8((sum[2] + 4) / 9)
			}
		}
	}
	_ = parallel.Run_in_parallel_over_range(0, rows, 0, height)
	return dst
}
