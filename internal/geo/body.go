package geo

import (
	"fmt"
	"math"
)

// Body is an oblate spheroid: rotationally symmetric about its polar axis.
// Radii are in kilometres.
type Body struct {
	Name             string  `yaml:"name" json:"name"`
	EquatorialRadius float64 `yaml:"equatorial_radius" json:"equatorial_radius"`
	PolarRadius      float64 `yaml:"polar_radius" json:"polar_radius"`
}

// Validate checks the radii.
func (b Body) Validate() error {
	if b.EquatorialRadius <= 0 || b.PolarRadius <= 0 {
		return fmt.Errorf("body %q: radii must be positive", b.Name)
	}
	if b.PolarRadius > b.EquatorialRadius {
		return fmt.Errorf("body %q: polar radius exceeds equatorial radius", b.Name)
	}
	return nil
}

// Eccentricity returns the first eccentricity of the meridian ellipse.
func (b Body) Eccentricity() float64 {
	a, c := b.EquatorialRadius, b.PolarRadius
	return math.Sqrt(1 - (c*c)/(a*a))
}

// CentricLatitude converts planetographic (surface normal) latitude to
// planetocentric latitude.
func (b Body) CentricLatitude(graphic float64) float64 {
	if math.Abs(graphic) == math.Pi/2 {
		return graphic
	}
	ratio := b.PolarRadius / b.EquatorialRadius
	return math.Atan(ratio * ratio * math.Tan(graphic))
}

// GraphicLatitude converts planetocentric latitude to planetographic
// latitude.
func (b Body) GraphicLatitude(centric float64) float64 {
	if math.Abs(centric) == math.Pi/2 {
		return centric
	}
	ratio := b.EquatorialRadius / b.PolarRadius
	return math.Atan(ratio * ratio * math.Tan(centric))
}

// Radius returns the distance from the body centre to the surface at the
// given planetocentric latitude.
func (b Body) Radius(centric float64) float64 {
	a, c := b.EquatorialRadius, b.PolarRadius
	cosLat, sinLat := math.Cos(centric), math.Sin(centric)
	return a * c / math.Sqrt(c*c*cosLat*cosLat+a*a*sinLat*sinLat)
}

// Vector is a body-fixed cartesian position in kilometres. X points at
// longitude 0 on the equator, Z along the rotation axis.
type Vector struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the scalar product.
func (v Vector) Dot(o Vector) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the vector product v × o.
func (v Vector) Cross(o Vector) Vector {
	return Vector{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Norm returns the length of v.
func (v Vector) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Unit returns v scaled to unit length.
func (v Vector) Unit() Vector { return v.Scale(1 / v.Norm()) }

// Direction returns the unit vector at planetocentric latitude and east
// longitude.
func Direction(lat, lon float64) Vector {
	cosLat := math.Cos(lat)
	return Vector{cosLat * math.Cos(lon), cosLat * math.Sin(lon), math.Sin(lat)}
}

// Surface returns the surface point at planetocentric latitude and east
// longitude.
func (b Body) Surface(lat, lon float64) Vector {
	return Direction(lat, lon).Scale(b.Radius(lat))
}

// Normal returns the outward unit surface normal at p.
func (b Body) Normal(p Vector) Vector {
	a2 := b.EquatorialRadius * b.EquatorialRadius
	c2 := b.PolarRadius * b.PolarRadius
	return Vector{p.X / a2, p.Y / a2, p.Z / c2}.Unit()
}

// LatLon returns the planetocentric latitude and east longitude in [0, 2π)
// of p.
func LatLon(p Vector) (lat, lon float64) {
	lat = math.Atan2(p.Z, math.Hypot(p.X, p.Y))
	lon = NormalizeLongitude(math.Atan2(p.Y, p.X))
	return lat, lon
}
