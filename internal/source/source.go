// Package source provides the images a map is resampled from. Every source
// answers in double precision at a planetocentric latitude and east
// longitude in radians; narrowing to the map's element type is left to the
// caller.
package source

import "math"

// Source yields the datum at a geographic coordinate. found is false when
// the coordinate falls outside the image footprint or the datum is invalid.
type Source interface {
	ReadData(lat, lon float64) (data float64, found bool)
}

// WeightedSource is a Source that can also report a confidence or area
// weight and integrate over its footprint instead of point sampling.
type WeightedSource interface {
	Source
	ReadWeighted(lat, lon float64, scan bool) (data, weight float64, found bool)
}

// ReadWeighted reads through the extended form when src implements it.
// Other sources are point sampled and report a zero weight.
func ReadWeighted(src Source, lat, lon float64, scan bool) (data, weight float64, found bool) {
	if ws, ok := src.(WeightedSource); ok {
		return ws.ReadWeighted(lat, lon, scan)
	}

	data, found = src.ReadData(lat, lon)
	return data, 0, found
}

// Func adapts a function to the Source interface.
type Func func(lat, lon float64) (float64, bool)

// ReadData calls f.
func (f Func) ReadData(lat, lon float64) (float64, bool) { return f(lat, lon) }

// Footprint is the geographic box a source covers, in radians. LonMax may
// exceed 2π when the box straddles the prime meridian.
type Footprint struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// Global covers the whole body.
var Global = Footprint{LatMin: -math.Pi / 2, LatMax: math.Pi / 2, LonMin: 0, LonMax: 2 * math.Pi}

// Bounded is implemented by sources that know their footprint.
type Bounded interface {
	Footprint() Footprint
}

// Scaled converts the values of an underlying source into physical units:
// value*Scale + Offset.
type Scaled struct {
	Source Source
	Scale  float64
	Offset float64
}

// ReadData reads and converts.
func (s Scaled) ReadData(lat, lon float64) (float64, bool) {
	v, ok := s.Source.ReadData(lat, lon)
	if !ok {
		return 0, false
	}
	return v*s.Scale + s.Offset, true
}

// ReadWeighted reads through the extended form of the underlying source.
func (s Scaled) ReadWeighted(lat, lon float64, scan bool) (float64, float64, bool) {
	v, w, ok := ReadWeighted(s.Source, lat, lon, scan)
	if !ok {
		return 0, 0, false
	}
	return v*s.Scale + s.Offset, w, true
}

// Footprint forwards the underlying footprint.
func (s Scaled) Footprint() Footprint {
	if b, ok := s.Source.(Bounded); ok {
		return b.Footprint()
	}
	return Global
}
