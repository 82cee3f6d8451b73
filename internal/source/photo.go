package source

import (
	"fmt"
	"math"

	"github.com/woozymasta/remap/internal/correction"
	"github.com/woozymasta/remap/internal/geo"
)

// Camera describes where a framing camera was and how it was pointed.
// The boresight points at the body centre.
type Camera struct {
	SubObserverLat float64 // planetocentric, radians
	SubObserverLon float64 // east, radians
	Range          float64 // observer to body centre, km
	FocalLength    float64 // mm
	PixelScale     float64 // pixels per mm in the focal plane

	// Object space position of the boresight in the image.
	OpticalAxisLine   float64
	OpticalAxisSample float64

	// PositionAngle rotates body north clockwise from image up, radians.
	PositionAngle float64
}

// Photo is a framing camera image of a body. Geographic coordinates are
// projected into object space, then distorted into raw detector space by
// the image's Corrector before sampling.
type Photo struct {
	body        geo.Body
	camera      Camera
	grid        *Grid
	corrector   correction.Corrector
	interpolate bool

	observer geo.Vector
	forward  geo.Vector
	up       geo.Vector
	right    geo.Vector
}

// NewPhoto validates the geometry and precomputes the camera frame.
func NewPhoto(body geo.Body, camera Camera, grid *Grid, corrector correction.Corrector, interpolate bool) (*Photo, error) {
	if err := body.Validate(); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if camera.Range <= body.EquatorialRadius {
		return nil, fmt.Errorf("observer range %g km is inside the body", camera.Range)
	}
	if camera.FocalLength <= 0 || camera.PixelScale <= 0 {
		return nil, fmt.Errorf("focal length and pixel scale must be positive")
	}
	if corrector == nil {
		corrector = correction.Null{}
	}

	p := &Photo{
		body:        body,
		camera:      camera,
		grid:        grid,
		corrector:   corrector,
		interpolate: interpolate,
	}
	p.frame()

	return p, nil
}

func (p *Photo) frame() {
	c := p.camera
	p.observer = geo.Direction(c.SubObserverLat, c.SubObserverLon).Scale(c.Range)
	p.forward = p.observer.Scale(-1).Unit()

	north := geo.Vector{Z: 1}
	up := north.Sub(p.forward.Scale(north.Dot(p.forward)))
	if up.Norm() < 1e-12 {
		// Looking straight down a pole; take up as pointing away from the
		// sub-observer meridian.
		up = geo.Vector{X: -math.Cos(c.SubObserverLon), Y: -math.Sin(c.SubObserverLon)}
	}
	p.up = up.Unit()
	p.right = p.forward.Cross(p.up)
}

// Clone returns a photo sharing the raster but holding its own copy of the
// corrector.
func (p *Photo) Clone() *Photo {
	c := *p
	c.corrector = p.corrector.Clone()
	return &c
}

// Footprint is global; visibility is decided per point.
func (p *Photo) Footprint() Footprint { return Global }

// ObjectPosition returns the object space line and sample at which a
// surface point appears, and false when it faces away from the camera.
func (p *Photo) ObjectPosition(lat, lon float64) (line, sample float64, ok bool) {
	point := p.body.Surface(lat, lon)
	toObserver := p.observer.Sub(point)

	if p.body.Normal(point).Dot(toObserver) <= 0 {
		return 0, 0, false
	}

	d := point.Sub(p.observer)
	depth := d.Dot(p.forward)
	if depth <= 0 {
		return 0, 0, false
	}

	x := p.camera.FocalLength * d.Dot(p.right) / depth
	y := p.camera.FocalLength * d.Dot(p.up) / depth

	sin, cos := math.Sincos(p.camera.PositionAngle)
	xr := x*cos - y*sin
	yr := x*sin + y*cos

	sample = p.camera.OpticalAxisSample + xr*p.camera.PixelScale
	line = p.camera.OpticalAxisLine - yr*p.camera.PixelScale

	return line, sample, true
}

// ReadData samples the raw image at the distorted position of a surface
// point.
func (p *Photo) ReadData(lat, lon float64) (float64, bool) {
	line, sample, ok := p.ObjectPosition(lat, lon)
	if !ok {
		return 0, false
	}

	line, sample = p.corrector.ObjectToImage(line, sample)

	if p.interpolate {
		return p.grid.Bilinear(line, sample)
	}
	return p.grid.Nearest(line, sample)
}
