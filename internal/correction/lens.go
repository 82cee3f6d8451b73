package correction

import "math"

// Galileo SSI calibration.
const (
	GalileoOpticalAxisLine   = 400.0
	GalileoOpticalAxisSample = 400.0
	GalileoDistortion        = 6.52e-9
)

// summationThreshold scales the optical axis sample offset when deciding
// whether an image was read out in summation mode. Full frame images have
// twice the offset in samples, summed ones about the offset, so 1.1 keeps
// the comparison clear of near-equal values.
const summationThreshold = 1.1

// LensParams are the calibration constants of a radial lens distortion.
type LensParams struct {
	OpticalAxisLine   float64 `yaml:"optical_axis_line" json:"optical_axis_line"`
	OpticalAxisSample float64 `yaml:"optical_axis_sample" json:"optical_axis_sample"`
	K                 float64 `yaml:"k" json:"k"`
}

// LensDistortion models radially symmetric distortion about the optical
// axis: image radius = object radius * (1 + K * object radius^2).
type LensDistortion struct {
	params    LensParams
	summation bool
}

// NewLensDistortion returns the correction for an image with the given
// number of samples. Images narrower than 1.1 times the optical axis sample
// offset are treated as summation mode (2x2 binned) readouts.
func NewLensDistortion(params LensParams, samples int) *LensDistortion {
	return &LensDistortion{
		params:    params,
		summation: float64(samples) < summationThreshold*params.OpticalAxisSample,
	}
}

// NewGalileoSSI returns the Galileo SSI lens distortion.
func NewGalileoSSI(samples int) *LensDistortion {
	return NewLensDistortion(LensParams{
		OpticalAxisLine:   GalileoOpticalAxisLine,
		OpticalAxisSample: GalileoOpticalAxisSample,
		K:                 GalileoDistortion,
	}, samples)
}

// Summation reports whether the image was read out in summation mode.
func (d *LensDistortion) Summation() bool { return d.summation }

// Params returns the calibration constants.
func (d *LensDistortion) Params() LensParams { return d.params }

// axis returns the optical axis on the image grid. Summed images have half
// the linear resolution.
func (d *LensDistortion) axis() (line, sample float64) {
	if d.summation {
		return d.params.OpticalAxisLine / 2, d.params.OpticalAxisSample / 2
	}
	return d.params.OpticalAxisLine, d.params.OpticalAxisSample
}

// ImageToObject inverts the distortion cubic analytically (Cardano).
func (d *LensDistortion) ImageToObject(line, sample float64) (float64, float64) {
	oaLine, oaSample := d.axis()
	z := line - oaLine
	x := sample - oaSample

	rs := math.Hypot(z, x)
	if d.summation {
		rs *= 2
	}

	// The optical axis is a fixed point.
	if rs == 0 {
		return line, sample
	}

	k := d.params.K
	t1 := rs / (2 * k)
	t2 := math.Sqrt(t1*t1 + math.Pow(1/(3*k), 3))
	ro := cubeRoot(t1+t2) + cubeRoot(t1-t2)

	s := ro / rs

	return z*s + oaLine, x*s + oaSample
}

// ObjectToImage applies the distortion.
func (d *LensDistortion) ObjectToImage(line, sample float64) (float64, float64) {
	oaLine, oaSample := d.axis()
	z := line - oaLine
	x := sample - oaSample

	distance := z*z + x*x
	if d.summation {
		distance *= 4
	}

	s := 1 + d.params.K*distance

	return z*s + oaLine, x*s + oaSample
}

// Clone returns a copy with the same constants and readout mode.
func (d *LensDistortion) Clone() Corrector {
	c := *d
	return &c
}

// cubeRoot is the real cube root, negative for negative x.
func cubeRoot(x float64) float64 {
	if x < 0 {
		return -math.Exp(math.Log(-x) / 3)
	}
	if x == 0 {
		return 0
	}
	return math.Exp(math.Log(x) / 3)
}
