// Package projection implements the per-cell inverse formulas of concrete
// map projections for the map factory.
package projection

import (
	"fmt"
	"math"

	"github.com/woozymasta/remap/internal/geo"
	"github.com/woozymasta/remap/internal/mapfactory"
)

// SimpleCylindrical maps latitude and longitude linearly onto lines and
// samples. Line 0 is the northern edge, sample 0 the western edge.
type SimpleCylindrical struct {
	Body   geo.Body
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64

	// Graphic marks the latitude axis as planetographic.
	Graphic bool
}

var _ mapfactory.Projection = (*SimpleCylindrical)(nil)

// Name implements mapfactory.Projection.
func (p *SimpleCylindrical) Name() string { return "simple_cylindrical" }

// Plot implements mapfactory.Projection.
func (p *SimpleCylindrical) Plot(samples, lines int) (mapfactory.CoordinateFunc, error) {
	if p.LatMin < -math.Pi/2 || p.LatMax > math.Pi/2 || p.LatMin >= p.LatMax {
		return nil, fmt.Errorf("invalid latitude range [%g, %g]", geo.Degrees(p.LatMin), geo.Degrees(p.LatMax))
	}
	if width := p.LonMax - p.LonMin; width <= 0 || width > 2*math.Pi+1e-12 {
		return nil, fmt.Errorf("invalid longitude range [%g, %g]", geo.Degrees(p.LonMin), geo.Degrees(p.LonMax))
	}
	if p.Graphic {
		if err := p.Body.Validate(); err != nil {
			return nil, err
		}
	}

	dLat := (p.LatMax - p.LatMin) / float64(lines)
	dLon := (p.LonMax - p.LonMin) / float64(samples)

	return func(line, sample int) (float64, float64, bool) {
		lat := p.LatMax - (float64(line)+0.5)*dLat
		lon := p.LonMin + (float64(sample)+0.5)*dLon

		if p.Graphic {
			lat = p.Body.CentricLatitude(lat)
		}

		return lat, geo.NormalizeLongitude(lon), true
	}, nil
}
