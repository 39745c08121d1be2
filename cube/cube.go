// Package cube parses and evaluates .cube 3D lookup-table files.
//
// A LUT maps normalized (R,G,B) input triples to output triples over a cubic
// grid of size N; colors between grid nodes are trilinearly interpolated.
// Data lines are ordered with R varying fastest and B slowest, matching the
// Adobe/IRIDAS cube convention.
package cube

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformed marks a LUT file that exists but cannot be parsed: bad grid
// size, wrong number of data lines or non-numeric samples. Callers distinguish
// it from plain file-not-found with errors.Is.
var ErrMalformed = errors.New("cube: malformed LUT file")

// RGB is a single LUT sample or domain bound.
type RGB struct {
	R, G, B float64
}

// LUT is an immutable, trilinearly interpolated 3D lookup table. Values are
// stored flat in R-fastest order, three floats per grid node.
type LUT struct {
	Title                string
	Size                 int
	DomainMin, DomainMax RGB

	samples []float64
}

func (l *LUT) String() string {
	return fmt.Sprintf("LUT{%q size:%d}", l.Title, l.Size)
}

// sample returns the grid node at integer coordinates (r, g, b).
func (l *LUT) sample(r, g, b int) (float64, float64, float64) {
	i := 3 * (r + l.Size*(g+l.Size*b))
	s := l.samples[i : i+3 : i+3]
	return s[0], s[1], s[2]
}

// Load parses a .cube stream. Recognised directives are TITLE, LUT_3D_SIZE,
// DOMAIN_MIN and DOMAIN_MAX; lines starting with # are comments. Exactly
// size^3 data lines of three floats must follow.
func Load(r io.Reader) (*LUT, error) {
	l := &LUT{DomainMax: RGB{1, 1, 1}}
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "TITLE":
			if start := strings.Index(line, `"`); start != -1 {
				if end := strings.LastIndex(line, `"`); end > start {
					l.Title = line[start+1 : end]
				}
			}
		case "LUT_3D_SIZE":
			if len(fields) != 2 {
				return nil, fmt.Errorf("%w: line %d: bad LUT_3D_SIZE directive", ErrMalformed, lineno)
			}
			size, err := strconv.Atoi(fields[1])
			if err != nil || size < 2 {
				return nil, fmt.Errorf("%w: line %d: invalid grid size %q", ErrMalformed, lineno, fields[1])
			}
			l.Size = size
			l.samples = make([]float64, 0, 3*size*size*size)
		case "DOMAIN_MIN":
			if err := parseTriple(fields, lineno, &l.DomainMin); err != nil {
				return nil, err
			}
		case "DOMAIN_MAX":
			if err := parseTriple(fields, lineno, &l.DomainMax); err != nil {
				return nil, err
			}
		case "LUT_1D_SIZE":
			return nil, fmt.Errorf("%w: line %d: 1D LUTs are not supported", ErrMalformed, lineno)
		default:
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: line %d: expected three samples, got %d fields", ErrMalformed, lineno, len(fields))
			}
			if l.Size == 0 {
				return nil, fmt.Errorf("%w: line %d: data before LUT_3D_SIZE", ErrMalformed, lineno)
			}
			var s [3]float64
			for i, f := range fields {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: non-numeric sample %q", ErrMalformed, lineno, f)
				}
				s[i] = v
			}
			if len(l.samples) == cap(l.samples) {
				return nil, fmt.Errorf("%w: more than %d data lines for grid size %d", ErrMalformed, l.Size*l.Size*l.Size, l.Size)
			}
			l.samples = append(l.samples, s[0], s[1], s[2])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if l.Size == 0 {
		return nil, fmt.Errorf("%w: missing LUT_3D_SIZE", ErrMalformed)
	}
	if want := 3 * l.Size * l.Size * l.Size; len(l.samples) != want {
		return nil, fmt.Errorf("%w: got %d data lines, grid size %d needs %d", ErrMalformed, len(l.samples)/3, l.Size, want/3)
	}
	if l.DomainMax.R <= l.DomainMin.R || l.DomainMax.G <= l.DomainMin.G || l.DomainMax.B <= l.DomainMin.B {
		return nil, fmt.Errorf("%w: empty domain", ErrMalformed)
	}
	return l, nil
}

func parseTriple(fields []string, lineno int, dest *RGB) error {
	if len(fields) != 4 {
		return fmt.Errorf("%w: line %d: %s needs three values", ErrMalformed, lineno, fields[0])
	}
	vals := [3]float64{}
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("%w: line %d: non-numeric value %q", ErrMalformed, lineno, f)
		}
		vals[i] = v
	}
	dest.R, dest.G, dest.B = vals[0], vals[1], vals[2]
	return nil
}

// LoadFile parses the .cube file at path.
func LoadFile(path string) (*LUT, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// WriteTo emits the LUT in standard .cube text form, round-trippable through
// Load: TITLE, LUT_3D_SIZE, DOMAIN_MIN/MAX, then size^3 data lines with R
// varying fastest.
func (l *LUT) WriteTo(w io.Writer) (n int64, err error) {
	bw := bufio.NewWriter(w)
	count := func(c int, e error) error {
		n += int64(c)
		return e
	}
	if l.Title != "" {
		if err = count(fmt.Fprintf(bw, "TITLE %q\n", l.Title)); err != nil {
			return
		}
	}
	if err = count(fmt.Fprintf(bw, "LUT_3D_SIZE %d\n", l.Size)); err != nil {
		return
	}
	if err = count(fmt.Fprintf(bw, "DOMAIN_MIN %g %g %g\n", l.DomainMin.R, l.DomainMin.G, l.DomainMin.B)); err != nil {
		return
	}
	if err = count(fmt.Fprintf(bw, "DOMAIN_MAX %g %g %g\n", l.DomainMax.R, l.DomainMax.G, l.DomainMax.B)); err != nil {
		return
	}
	for i := 0; i < len(l.samples); i += 3 {
		if err = count(fmt.Fprintf(bw, "%.6f %.6f %.6f\n", l.samples[i], l.samples[i+1], l.samples[i+2])); err != nil {
			return
		}
	}
	err = bw.Flush()
	return
}

// WriteFile writes the LUT to the .cube file at path.
func (l *LUT) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = l.WriteTo(f)
	errc := f.Close()
	if err == nil {
		err = errc
	}
	return err
}
