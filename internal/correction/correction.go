// Package correction converts between raw image-space coordinates and
// distortion-corrected object-space coordinates.
package correction

import "fmt"

// Kind is the configuration name of a correction model.
type Kind string

const (
	// KindNone applies no correction.
	KindNone = Kind("none")
	// KindGalileoSSI is the lens distortion of the Galileo solid state imager.
	KindGalileoSSI = Kind("galileo_ssi")
	// KindLens is a radially symmetric lens distortion with explicit constants.
	KindLens = Kind("lens")
)

// Corrector maps coordinates between image space and object space.
// Implementations hold only fixed calibration constants and are safe to
// share between goroutines.
type Corrector interface {
	// ImageToObject converts raw detector coordinates to object space.
	ImageToObject(line, sample float64) (float64, float64)
	// ObjectToImage converts object space coordinates to raw detector space.
	ObjectToImage(line, sample float64) (float64, float64)
	// Clone returns an independent copy of the concrete corrector.
	Clone() Corrector
}

// New returns a Corrector for the given kind. params is only consulted for
// KindLens; samples is the width of the image the corrector will serve.
func New(kind Kind, params LensParams, samples int) (Corrector, error) {
	switch kind {
	case KindNone, Kind(""):
		return Null{}, nil
	case KindGalileoSSI:
		return NewGalileoSSI(samples), nil
	case KindLens:
		if params.K <= 0 {
			return nil, fmt.Errorf("lens distortion coefficient must be positive, got %g", params.K)
		}
		return NewLensDistortion(params, samples), nil
	default:
		return nil, fmt.Errorf("unknown correction %q", kind)
	}
}

// Null is the identity correction.
type Null struct{}

// ImageToObject returns the coordinates unchanged.
func (Null) ImageToObject(line, sample float64) (float64, float64) { return line, sample }

// ObjectToImage returns the coordinates unchanged.
func (Null) ObjectToImage(line, sample float64) (float64, float64) { return line, sample }

// Clone returns another Null.
func (Null) Clone() Corrector { return Null{} }
