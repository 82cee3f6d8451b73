package projection

import (
	"fmt"
	"math"

	"github.com/woozymasta/remap/internal/geo"
	"github.com/woozymasta/remap/internal/mapfactory"
	"github.com/woozymasta/remap/internal/solver"

	"github.com/rs/zerolog/log"
)

// DefaultMercatorMaxLatitude bounds Mercator maps when none is configured.
const DefaultMercatorMaxLatitude = 85.05112878 * math.Pi / 180

// Mercator is the conformal cylindrical projection of an oblate body. The
// equator runs through the middle line and both axes share the same
// radians per pixel scale.
type Mercator struct {
	Body   geo.Body
	LonMin float64
	LonMax float64

	// MaxLatitude is the planetographic latitude beyond which cells are
	// left blank.
	MaxLatitude float64
}

var _ mapfactory.Projection = (*Mercator)(nil)

// Name implements mapfactory.Projection.
func (p *Mercator) Name() string { return "mercator" }

// Isometric returns the isometric latitude of a planetographic latitude.
func (p *Mercator) Isometric(lat float64) float64 {
	e := p.Body.Eccentricity()
	sin := math.Sin(lat)
	return math.Atanh(sin) - e*math.Atanh(e*sin)
}

// Latitude inverts Isometric. The spherical solution seeds a secant
// search; a bracketed search over the valid latitude range is the
// fallback.
func (p *Mercator) Latitude(y float64) (float64, error) {
	guess := geo.InverseMercator(y)
	if p.Body.Eccentricity() == 0 {
		return guess, nil
	}

	lat, err := solver.Secant(p.Isometric, y, guess)
	if err == nil && math.Abs(lat) < math.Pi/2 {
		return lat, nil
	}

	log.Trace().Err(err).Float64("y", y).Msg("Secant search failed, bracketing")

	limit := math.Nextafter(math.Pi/2, 0)
	return solver.Bracketed(p.Isometric, y, -limit, limit)
}

// Plot implements mapfactory.Projection.
func (p *Mercator) Plot(samples, lines int) (mapfactory.CoordinateFunc, error) {
	if err := p.Body.Validate(); err != nil {
		return nil, err
	}

	lonMin, lonMax := p.LonMin, p.LonMax
	if lonMin == 0 && lonMax == 0 {
		lonMax = 2 * math.Pi
	}
	if width := lonMax - lonMin; width <= 0 || width > 2*math.Pi+1e-12 {
		return nil, fmt.Errorf("invalid longitude range [%g, %g]", geo.Degrees(lonMin), geo.Degrees(lonMax))
	}

	maxLat := p.MaxLatitude
	if maxLat <= 0 {
		maxLat = DefaultMercatorMaxLatitude
	}
	if maxLat >= math.Pi/2 {
		return nil, fmt.Errorf("mercator latitude limit %g must be below 90 degrees", geo.Degrees(maxLat))
	}

	resolution := (lonMax - lonMin) / float64(samples)
	maxY := p.Isometric(maxLat)
	centre := float64(lines) / 2

	return func(line, sample int) (float64, float64, bool) {
		y := (centre - float64(line) - 0.5) * resolution
		if math.Abs(y) > maxY {
			return 0, 0, false
		}

		lat, err := p.Latitude(y)
		if err != nil {
			return 0, 0, false
		}

		lon := lonMin + (float64(sample)+0.5)*resolution

		return p.Body.CentricLatitude(lat), geo.NormalizeLongitude(lon), true
	}, nil
}
