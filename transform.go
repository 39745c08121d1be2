package filmgrade

import "image"

// FlipH returns the image flipped horizontally (left to right).
func FlipH(src *NRGB) *NRGB {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	dst := NewNRGB(image.Rect(0, 0, width, height))
	for y := range height {
		row := src.Pix[y*src.Stride : y*src.Stride+3*width]
		drow := dst.Pix[y*dst.Stride:]
		for x := range width {
			d := drow[3*(width-1-x):]
			d[0], d[1], d[2] = row[3*x], row[3*x+1], row[3*x+2]
		}
	}
	return dst
}

// FlipV returns the image flipped vertically (top to bottom).
func FlipV(src *NRGB) *NRGB {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	dst := NewNRGB(image.Rect(0, 0, width, height))
	for y := range height {
		copy(dst.Pix[(height-1-y)*dst.Stride:(height-1-y)*dst.Stride+3*width], src.Pix[y*src.Stride:y*src.Stride+3*width])
	}
	return dst
}

// Rotate90 rotates the image 90 degrees counter-clockwise.
func Rotate90(src *NRGB) *NRGB {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	dst := NewNRGB(image.Rect(0, 0, height, width))
	for y := range height {
		row := src.Pix[y*src.Stride:]
		for x := range width {
			i := dst.PixOffset(y, width-1-x) // dst has zero Min
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = row[3*x], row[3*x+1], row[3*x+2]
		}
	}
	return dst
}

// Rotate180 rotates the image 180 degrees.
func Rotate180(src *NRGB) *NRGB {
	return FlipV(FlipH(src))
}

// Rotate270 rotates the image 270 degrees counter-clockwise.
func Rotate270(src *NRGB) *NRGB {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	dst := NewNRGB(image.Rect(0, 0, height, width))
	for y := range height {
		row := src.Pix[y*src.Stride:]
		for x := range width {
			i := dst.PixOffset(height-1-y, x)
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = row[3*x], row[3*x+1], row[3*x+2]
		}
	}
	return dst
}

// Transpose flips the image horizontally and rotates it 90 degrees
// counter-clockwise.
func Transpose(src *NRGB) *NRGB {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	dst := NewNRGB(image.Rect(0, 0, height, width))
	for y := range height {
		row := src.Pix[y*src.Stride:]
		for x := range width {
			i := dst.PixOffset(y, x)
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = row[3*x], row[3*x+1], row[3*x+2]
		}
	}
	return dst
}

// Transverse flips the image vertically and rotates it 90 degrees
// counter-clockwise.
func Transverse(src *NRGB) *NRGB {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	dst := NewNRGB(image.Rect(0, 0, height, width))
	for y := range height {
		row := src.Pix[y*src.Stride:]
		for x := range width {
			i := dst.PixOffset(height-1-y, width-1-x)
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = row[3*x], row[3*x+1], row[3*x+2]
		}
	}
	return dst
}
