package source

import (
	"fmt"

	"github.com/woozymasta/remap/internal/geo"
)

// Raster is a grid laid out in simple cylindrical form: lines run from
// LatMax down to LatMin, samples from LonMin east to LonMax.
type Raster struct {
	grid        *Grid
	footprint   Footprint
	interpolate bool
}

// NewRaster wraps a grid covering the given footprint.
func NewRaster(grid *Grid, footprint Footprint, interpolate bool) (*Raster, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if footprint.LatMin >= footprint.LatMax || footprint.LonMin >= footprint.LonMax {
		return nil, fmt.Errorf("empty raster footprint %+v", footprint)
	}

	return &Raster{grid: grid, footprint: footprint, interpolate: interpolate}, nil
}

// Footprint returns the covered box.
func (r *Raster) Footprint() Footprint { return r.footprint }

// position converts a geographic coordinate to fractional grid coordinates.
func (r *Raster) position(lat, lon float64) (line, sample float64, ok bool) {
	f := r.footprint
	if lat < f.LatMin || lat > f.LatMax {
		return 0, 0, false
	}

	lon = geo.LongitudeIn(lon, f.LonMin)
	if lon > f.LonMax {
		return 0, 0, false
	}

	line = (f.LatMax-lat)/(f.LatMax-f.LatMin)*float64(r.grid.Lines) - 0.5
	sample = (lon-f.LonMin)/(f.LonMax-f.LonMin)*float64(r.grid.Samples) - 0.5

	// The far edges belong to the last cell.
	line = clamp(line, -0.5, float64(r.grid.Lines)-0.5-1e-9)
	sample = clamp(sample, -0.5, float64(r.grid.Samples)-0.5-1e-9)

	return line, sample, true
}

// ReadData point samples the grid.
func (r *Raster) ReadData(lat, lon float64) (float64, bool) {
	line, sample, ok := r.position(lat, lon)
	if !ok {
		return 0, false
	}

	if r.interpolate {
		return r.grid.Bilinear(line, sample)
	}
	return r.grid.Nearest(line, sample)
}

// ReadWeighted point samples with unit weight, or when scan is set
// averages the 3x3 neighbourhood and weights by the cells averaged.
func (r *Raster) ReadWeighted(lat, lon float64, scan bool) (float64, float64, bool) {
	if !scan {
		v, ok := r.ReadData(lat, lon)
		return v, 1, ok
	}

	line, sample, ok := r.position(lat, lon)
	if !ok {
		return 0, 0, false
	}

	mean, count := r.grid.Mean(line, sample, 1)
	if count == 0 {
		return 0, 0, false
	}

	return mean, float64(count), true
}
