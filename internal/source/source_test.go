package source

import (
	"math"
	"testing"
)

type weighted struct{}

func (weighted) ReadData(lat, lon float64) (float64, bool) { return 1, true }

func (weighted) ReadWeighted(lat, lon float64, scan bool) (float64, float64, bool) {
	if scan {
		return 2, 9, true
	}
	return 1, 1, true
}

func TestReadWeighted_DefaultIgnoresWeight(t *testing.T) {
	src := Func(func(lat, lon float64) (float64, bool) { return lat + lon, lat >= 0 })

	v, w, ok := ReadWeighted(src, 1, 2, true)
	if !ok || v != 3 || w != 0 {
		t.Errorf("got %v, %v, %v; want 3, 0, true", v, w, ok)
	}

	if _, _, ok := ReadWeighted(src, -1, 2, false); ok {
		t.Errorf("expected not found for negative latitude")
	}
}

func TestReadWeighted_Extended(t *testing.T) {
	v, w, ok := ReadWeighted(weighted{}, 0, 0, true)
	if !ok || v != 2 || w != 9 {
		t.Errorf("got %v, %v, %v; want 2, 9, true", v, w, ok)
	}
}

func TestScaled(t *testing.T) {
	s := Scaled{Source: weighted{}, Scale: 10, Offset: -3}

	if v, ok := s.ReadData(0, 0); !ok || v != 7 {
		t.Errorf("ReadData = %v, %v", v, ok)
	}
	if v, w, ok := s.ReadWeighted(0, 0, true); !ok || v != 17 || w != 9 {
		t.Errorf("ReadWeighted = %v, %v, %v", v, w, ok)
	}
	if s.Footprint() != Global {
		t.Errorf("unbounded source should report a global footprint")
	}

	miss := Scaled{Source: Func(func(lat, lon float64) (float64, bool) { return 0, false }), Scale: 1}
	if _, ok := miss.ReadData(0, 0); ok {
		t.Errorf("miss should stay a miss")
	}
}

func TestGrid(t *testing.T) {
	g := NewGrid(2, 2)
	g.Set(0, 0, 0)
	g.Set(0, 1, 10)
	g.Set(1, 0, 20)
	g.Set(1, 1, 30)

	if v, ok := g.Bilinear(0.5, 0.5); !ok || v != 15 {
		t.Errorf("Bilinear centre = %v, %v", v, ok)
	}
	if v, ok := g.Nearest(0.6, 0.4); !ok || v != 20 {
		t.Errorf("Nearest = %v, %v", v, ok)
	}
	if _, ok := g.Nearest(-0.6, 0); ok {
		t.Errorf("position off the grid was found")
	}

	nodata := 30.0
	g.NoData = &nodata
	if v, ok := g.Bilinear(1, 1); ok {
		t.Errorf("nodata cell interpolated to %v", v)
	}
	if v, ok := g.Bilinear(0.5, 0.5); !ok || v != 10 {
		t.Errorf("Bilinear without nodata neighbour = %v, want 10", v)
	}
	if mean, count := g.Mean(0, 0, 1); count != 3 || mean != 10 {
		t.Errorf("Mean = %v over %d cells", mean, count)
	}
}

func TestGrid_Validate(t *testing.T) {
	if err := (&Grid{Samples: 2, Lines: 2, Data: make([]float64, 3)}).Validate(); err == nil {
		t.Errorf("short grid accepted")
	}
	if err := NewGrid(0, 3).Validate(); err == nil {
		t.Errorf("empty grid accepted")
	}
}

func TestRaster(t *testing.T) {
	// 4 samples x 2 lines over the whole globe: each cell is 90 x 90 degrees.
	g := NewGrid(4, 2)
	for l := 0; l < 2; l++ {
		for s := 0; s < 4; s++ {
			g.Set(l, s, float64(l*10+s))
		}
	}

	r, err := NewRaster(g, Global, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		lat, lon float64
		want     float64
	}{
		{math.Pi / 4, math.Pi / 4, 0},
		{math.Pi / 4, 3 * math.Pi / 4, 1},
		{-math.Pi / 4, 7 * math.Pi / 4, 13},
		{-math.Pi / 4, -math.Pi / 4, 13},
		{math.Pi / 2, 0, 0},
		{-math.Pi / 2, 2*math.Pi - 1e-12, 13},
	}

	for _, tt := range tests {
		v, ok := r.ReadData(tt.lat, tt.lon)
		if !ok || v != tt.want {
			t.Errorf("ReadData(%v, %v) = %v, %v; want %v", tt.lat, tt.lon, v, ok, tt.want)
		}
	}

	if v, w, ok := r.ReadWeighted(math.Pi/4, math.Pi/4, true); !ok || w != 4 || v != 5.5 {
		t.Errorf("scan = %v weight %v", v, w)
	}
}

func TestRaster_Footprint(t *testing.T) {
	g := NewGrid(2, 2)
	footprint := Footprint{LatMin: 0, LatMax: math.Pi / 4, LonMin: -math.Pi / 4, LonMax: math.Pi / 4}

	r, err := NewRaster(g, footprint, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := r.ReadData(-0.1, 0); ok {
		t.Errorf("point south of the footprint was found")
	}
	if _, ok := r.ReadData(0.1, math.Pi); ok {
		t.Errorf("point outside the longitude range was found")
	}
	if _, ok := r.ReadData(0.1, 2*math.Pi-0.1); !ok {
		t.Errorf("point just west of the prime meridian was missed")
	}

	if _, err := NewRaster(g, Footprint{LatMin: 1, LatMax: 1, LonMax: 1}, false); err == nil {
		t.Errorf("empty footprint accepted")
	}
}
