// Package geo handles body shapes and geographic coordinate conversions.
package geo

import "math"

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * (180.0 / math.Pi) }

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * (math.Pi / 180.0) }

// NormalizeLongitude maps lon into [0, 2π).
func NormalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon, 2*math.Pi)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	// -tiny + 2π rounds to 2π.
	if lon >= 2*math.Pi {
		lon = 0
	}
	return lon
}

// LongitudeIn maps lon into [start, start+2π).
func LongitudeIn(lon, start float64) float64 {
	return start + NormalizeLongitude(lon-start)
}

// InverseMercator converts a spherical Mercator ordinate (radians of
// isometric latitude) to latitude.
func InverseMercator(y float64) float64 {
	return 2.0*math.Atan(math.Exp(y)) - math.Pi*0.5
}

// Mercator converts latitude to the spherical Mercator ordinate.
func Mercator(lat float64) float64 {
	return math.Log(math.Tan(math.Pi/4 + lat/2))
}
