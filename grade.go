package filmgrade

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kovidgoyal/go-parallel"
	"github.com/sirupsen/logrus"

	"github.com/filmgrade/filmgrade/cube"
	"github.com/filmgrade/filmgrade/lutlib"
)

// Status classifies the outcome of a grading request.
type Status int

const (
	// Success: the full pipeline ran, including LUT application (or no LUT
	// was requested).
	Success Status = iota
	// LUTNotFound: the LUT identifier resolved to nothing; only tone, curve
	// and sharpness adjustments were applied.
	LUTNotFound
	// LUTCorrupt: the LUT file exists but failed to parse; only tone, curve
	// and sharpness adjustments were applied.
	LUTCorrupt
)

var statusNames = map[Status]string{
	Success:     "success",
	LUTNotFound: "LUT not found",
	LUTCorrupt:  "LUT corrupt",
}

func (s Status) String() string { return statusNames[s] }

// Params is the flat record of scalar grading adjustments. The zero value is
// NOT usable; start from DefaultParams.
type Params struct {
	Intensity   float64 // LUT blend weight in [0, 1]; 0 skips the LUT
	Brightness  float64 // multiplier, 1.0 = identity
	Contrast    float64 // multiplier, 1.0 = identity
	Saturation  float64 // multiplier, 1.0 = identity
	Temperature float64 // [-1, 1], 0 = identity; positive warms
	Tint        float64 // [-1, 1], 0 = identity; positive shifts green
	Sharpness   float64 // multiplier, 1.0 = identity
	Curve       Curve   // tone curve name; Linear = identity
	SimulateLog bool    // caller declares log-simulation pre-processing intent
}

// DefaultParams returns identity values for everything except Intensity,
// which defaults to full LUT strength.
func DefaultParams() Params {
	return Params{
		Intensity:  1,
		Brightness: 1,
		Contrast:   1,
		Saturation: 1,
		Sharpness:  1,
		Curve:      CurveLinear,
	}
}

// normalized clamps out-of-domain values instead of rejecting them. The
// engine tolerates imperfect upstream (planner-generated) input by policy.
func (p Params) normalized() Params {
	p.Intensity = max(0, min(1, p.Intensity))
	p.Temperature = max(-1, min(1, p.Temperature))
	p.Tint = max(-1, min(1, p.Tint))
	p.Brightness = max(0, p.Brightness)
	p.Contrast = max(0, p.Contrast)
	p.Saturation = max(0, p.Saturation)
	p.Sharpness = max(0, p.Sharpness)
	return p
}

// ParamsFromStrings builds Params from loosely typed key/value pairs, as
// handed over by an external planner. Unknown keys are ignored; non-numeric
// values fall back to the default for their field (parse-or-default policy).
func ParamsFromStrings(kv map[string]string) Params {
	p := DefaultParams()
	num := func(key string, dest *float64) {
		if s, ok := kv[key]; ok {
			if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				*dest = v
			}
		}
	}
	num("intensity", &p.Intensity)
	num("brightness", &p.Brightness)
	num("contrast", &p.Contrast)
	num("saturation", &p.Saturation)
	num("temperature", &p.Temperature)
	num("tint", &p.Tint)
	num("sharpness", &p.Sharpness)
	if s, ok := kv["curve"]; ok {
		p.Curve = Curve(strings.TrimSpace(s))
	}
	if s, ok := kv["simulate_log"]; ok {
		if v, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			p.SimulateLog = v
		}
	}
	return p.normalized()
}

// Result reports what the pipeline actually did.
type Result struct {
	Status  Status
	Message string // human readable, e.g. "success" or "LUT not found: applied only basic adjustments"
	LUTPath string // resolved path, empty when resolution missed

	// EffectiveIntensity is the blend weight actually used, after clamping
	// and after the safety governor.
	EffectiveIntensity float64
	// GovernorClamped is set when the safety governor reduced the intensity
	// because a log/raw-encoded LUT was applied to standard-contrast input.
	GovernorClamped bool
}

// logMarkers are filename tokens that indicate a LUT expects logarithmic/raw
// camera input. Substring match, case-insensitive. Heuristic only.
var logMarkers = []string{
	"slog", "s-log", "log2", "log3", "logc", "vlog", "v-log",
	"clog", "c-log", "zlog", "z-log", "flat", "raw",
}

// logSafeIntensity is the ceiling the safety governor forces when a
// log-encoded LUT is applied without log-simulation pre-processing. Policy
// value, empirically tuned.
const logSafeIntensity = 0.35

// isTechnicalLUT reports whether the LUT filename carries a log/raw encoding
// marker. Only the base filename is inspected; parent directory names carry no
// signal about the LUT's expected input encoding.
func isTechnicalLUT(name string) bool {
	name = strings.ToLower(filepath.Base(name))
	for _, m := range logMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// Engine runs the grading pipeline. The LUT library and transform cache are
// injected at construction and shared across concurrent Grade calls.
type Engine struct {
	lib   *lutlib.Library
	cache *lutlib.Cache
	log   *logrus.Logger
}

// NewEngine wires an engine from its collaborators. A nil logger discards
// engine logging.
func NewEngine(lib *lutlib.Library, cache *lutlib.Cache, log *logrus.Logger) *Engine {
	if cache == nil {
		cache = lutlib.NewCache(lutlib.DefaultCacheSize)
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(nullWriter{})
	}
	return &Engine{lib: lib, cache: cache, log: log}
}

// NewEngineForDir scans lutDir and wires an engine with a default-sized
// transform cache.
func NewEngineForDir(lutDir string, log *logrus.Logger) (*Engine, error) {
	lib, err := lutlib.NewLibrary(lutDir)
	if err != nil {
		return nil, err
	}
	return NewEngine(lib, lutlib.NewCache(lutlib.DefaultCacheSize), log), nil
}

// Library returns the engine's LUT library.
func (e *Engine) Library() *lutlib.Library { return e.lib }

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

// Grade runs the full pipeline on img: white balance, brightness, contrast,
// saturation, tone curve, LUT application with intensity blending, sharpness.
// The input is never mutated; the returned image always has the input's
// dimensions. A LUT that cannot be resolved or parsed does not fail the
// request: the tone/curve-adjusted image is returned with an explanatory
// Result. An empty lutID skips LUT application and is still a Success.
func (e *Engine) Grade(img image.Image, lutID string, p Params) (*NRGB, Result) {
	p = p.normalized()
	work := CloneNRGB(img)

	// Tone stages in fixed order to minimize interaction artifacts.
	work = AdjustWhiteBalance(work, p.Temperature, p.Tint)
	work = AdjustBrightness(work, p.Brightness)
	work = AdjustContrast(work, p.Contrast)
	work = AdjustSaturation(work, p.Saturation)
	work = ApplyCurve(work, p.Curve)

	res := Result{Status: Success, Message: "success", EffectiveIntensity: p.Intensity}
	if lutID != "" {
		work, res = e.applyLUTStage(work, lutID, p, res)
	} else {
		res.EffectiveIntensity = 0
	}

	work = Sharpen(work, p.Sharpness)
	e.log.WithFields(logrus.Fields{
		"lut":       res.LUTPath,
		"status":    res.Status.String(),
		"intensity": res.EffectiveIntensity,
	}).Debug("graded image")
	return work, res
}

// applyLUTStage resolves, loads and applies the LUT, blending by intensity.
// pre is the tone/curve-adjusted image and is returned untouched on any miss.
func (e *Engine) applyLUTStage(pre *NRGB, lutID string, p Params, res Result) (*NRGB, Result) {
	path, ok := e.lib.Resolve(lutID)
	if !ok {
		e.log.WithField("lut", lutID).Warn("LUT did not resolve")
		res.Status = LUTNotFound
		res.Message = "LUT not found: applied only basic adjustments"
		res.EffectiveIntensity = 0
		return pre, res
	}
	res.LUTPath = path

	// Zero intensity means the LUT contributes nothing; skip the file read
	// and parse entirely. A corrupt file is only a problem when its transform
	// would actually be applied.
	if p.Intensity == 0 {
		res.EffectiveIntensity = 0
		return pre, res
	}

	lut, err := e.cache.Get(path)
	if err != nil {
		if errors.Is(err, cube.ErrMalformed) {
			e.log.WithError(err).WithField("lut", path).Error("corrupt LUT file")
			res.Status = LUTCorrupt
			res.Message = fmt.Sprintf("LUT file corrupt: %v", err)
		} else {
			e.log.WithError(err).WithField("lut", path).Error("unreadable LUT file")
			res.Status = LUTNotFound
			res.Message = "LUT not found: applied only basic adjustments"
		}
		res.EffectiveIntensity = 0
		return pre, res
	}

	intensity := p.Intensity
	if isTechnicalLUT(path) && !p.SimulateLog && intensity > logSafeIntensity {
		intensity = logSafeIntensity
		res.GovernorClamped = true
		res.Message = fmt.Sprintf("log-encoded LUT detected: intensity clamped to %.2f", logSafeIntensity)
		e.log.WithFields(logrus.Fields{"lut": path, "intensity": intensity}).
			Warn("log-encoded LUT on standard-contrast input, clamping intensity")
	}
	res.EffectiveIntensity = intensity

	filtered := ApplyLUT(pre, lut)
	if intensity == 1 {
		return filtered, res
	}
	return Blend(pre, filtered, intensity), res
}

// ApplyLUT maps every pixel through the 3D LUT at full strength.
func ApplyLUT(src *NRGB, lut *cube.LUT) *NRGB {
	width := src.Rect.Dx()
	dst := NewNRGB(src.Rect)
	rows := func(start, limit int) {
		for y := start; y < limit; y++ {
			srow := src.Pix[y*src.Stride : y*src.Stride+3*width]
			drow := dst.Pix[y*dst.Stride : y*dst.Stride+3*width]
			for i := 0; i < len(srow); i += 3 {
				r, g, b := lut.Lookup(float64(srow[i])/255, float64(srow[i+1])/255, float64(srow[i+2])/255)
				drow[i] = clamp8(r * 255)
				drow[i+1] = clamp8(g * 255)
				drow[i+2] = clamp8(b * 255)
			}
		}
	}
	_ = parallel.Run_in_parallel_over_range(0, rows, 0, src.Rect.Dy())
	return dst
}

// GradeFile opens inPath, grades it and saves the result to outPath. Unlike
// LUT failures, image I/O failures are fatal: there is no partial image to
// fall back to.
func (e *Engine) GradeFile(inPath, outPath, lutID string, p Params) (Result, error) {
	img, err := Open(inPath)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", inPath, err)
	}
	out, res := e.Grade(img, lutID, p)
	if err := Save(out, outPath); err != nil {
		return res, fmt.Errorf("saving %s: %w", outPath, err)
	}
	return res, nil
}
