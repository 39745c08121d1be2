/*
Package filmgrade implements a photo color-grading pipeline: tone and
white-balance adjustments, named tone curves, 3D LUT application with intensity
blending, and an optional sharpening pass.

All stages consume and produce *NRGB images (packed 3-channel 8-bit RGB). Any
image opened through this package is forced to 3-channel RGB; grading never
changes dimensions or channel count. Stages never mutate their input, and a
stage whose parameters are at identity values returns its input unchanged.

LUT discovery, fuzzy name resolution and transform caching live in the lutlib
subpackage; .cube file parsing and trilinear evaluation live in cube.
*/
package filmgrade

import "fmt"

type GradeVersion struct {
	Major, Minor, Patch uint
}

func (v GradeVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v GradeVersion) Equal(o GradeVersion) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Patch == o.Patch
}

func (v GradeVersion) After(o GradeVersion) bool {
	switch {
	case v.Major == o.Major:
		switch {
		case v.Minor == o.Minor:
			return v.Patch > o.Patch
		case v.Minor > o.Minor:
			return true
		}
	case v.Major > o.Major:
		return true
	}
	return false
}

func (v GradeVersion) Before(o GradeVersion) bool {
	return !v.Equal(o) && !v.After(o)
}

var Version = GradeVersion{1, 0, 0}
