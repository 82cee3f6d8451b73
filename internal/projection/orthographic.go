package projection

import (
	"fmt"
	"math"

	"github.com/woozymasta/remap/internal/geo"
	"github.com/woozymasta/remap/internal/mapfactory"
	"github.com/woozymasta/remap/internal/solver"
)

// Orthographic shows the body as seen from infinitely far away above the
// sub-observer point. Cells off the disc are left blank.
type Orthographic struct {
	Body           geo.Body
	SubObserverLat float64 // planetocentric
	SubObserverLon float64

	// PositionAngle rotates body north clockwise from map up.
	PositionAngle float64

	// KmPerPixel is the map scale; zero fits the body into the map.
	KmPerPixel float64

	// CenterLine and CenterSample place the body centre; nil centres it.
	CenterLine   *float64
	CenterSample *float64
}

var _ mapfactory.Projection = (*Orthographic)(nil)

// Name implements mapfactory.Projection.
func (p *Orthographic) Name() string { return "orthographic" }

// Plot implements mapfactory.Projection.
func (p *Orthographic) Plot(samples, lines int) (mapfactory.CoordinateFunc, error) {
	if err := p.Body.Validate(); err != nil {
		return nil, err
	}
	if math.Abs(p.SubObserverLat) > math.Pi/2 {
		return nil, fmt.Errorf("sub-observer latitude %g out of range", geo.Degrees(p.SubObserverLat))
	}

	scale := p.KmPerPixel
	if scale < 0 {
		return nil, fmt.Errorf("negative map scale %g", scale)
	}
	if scale == 0 {
		scale = 2.2 * p.Body.EquatorialRadius / float64(min(samples, lines))
	}

	centreLine, centreSample := float64(lines)/2, float64(samples)/2
	if p.CenterLine != nil {
		centreLine = *p.CenterLine
	}
	if p.CenterSample != nil {
		centreSample = *p.CenterSample
	}

	view := geo.Direction(p.SubObserverLat, p.SubObserverLon)
	forward := view.Scale(-1)

	north := geo.Vector{Z: 1}
	up := north.Sub(forward.Scale(north.Dot(forward)))
	if up.Norm() < 1e-12 {
		up = geo.Vector{X: -math.Cos(p.SubObserverLon), Y: -math.Sin(p.SubObserverLon)}
	}
	up = up.Unit()
	right := forward.Cross(up)

	a2 := p.Body.EquatorialRadius * p.Body.EquatorialRadius
	c2 := p.Body.PolarRadius * p.Body.PolarRadius
	qa := (view.X*view.X+view.Y*view.Y)/a2 + view.Z*view.Z/c2

	sin, cos := math.Sincos(p.PositionAngle)

	return func(line, sample int) (float64, float64, bool) {
		xr := (float64(sample) + 0.5 - centreSample) * scale
		yr := (centreLine - float64(line) - 0.5) * scale

		x := xr*cos + yr*sin
		y := -xr*sin + yr*cos

		// Ray s + t*view through the cell, parallel to the line of sight.
		s := right.Scale(x).Add(up.Scale(y))
		qb := 2 * ((s.X*view.X+s.Y*view.Y)/a2 + s.Z*view.Z/c2)
		qc := (s.X*s.X+s.Y*s.Y)/a2 + s.Z*s.Z/c2 - 1

		t1, t2, ok := solver.QuadraticRoots(qa, qb, qc)
		if !ok {
			return 0, 0, false
		}

		// The larger root is the intersection facing the observer.
		t := t1
		if t2 > t {
			t = t2
		}
		if math.IsNaN(t) {
			return 0, 0, false
		}

		lat, lon := geo.LatLon(s.Add(view.Scale(t)))
		return lat, lon, true
	}, nil
}
