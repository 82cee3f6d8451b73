package source

import (
	"math"
	"testing"
)

func constantRaster(t *testing.T, v float64, f Footprint) *Raster {
	t.Helper()

	g := NewGrid(4, 4)
	for i := range g.Data {
		g.Data[i] = v
	}

	r, err := NewRaster(g, f, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return r
}

func TestMosaic(t *testing.T) {
	west := constantRaster(t, 10, Footprint{LatMin: -1, LatMax: 1, LonMin: -math.Pi / 2, LonMax: 0.2})
	east := constantRaster(t, 20, Footprint{LatMin: -1, LatMax: 1, LonMin: 0, LonMax: math.Pi / 2})

	m := NewMosaic(west, east)
	if m.Len() != 2 {
		t.Fatalf("Len = %d", m.Len())
	}

	tests := []struct {
		name     string
		lat, lon float64
		want     float64
		found    bool
	}{
		{"west only (negative longitude)", 0, -0.5, 10, true},
		{"west only (wrapped longitude)", 0, 2*math.Pi - 0.5, 10, true},
		{"overlap", 0, 0.1, 15, true},
		{"east only", 0.5, 1.0, 20, true},
		{"outside", 0, math.Pi, 0, false},
		{"too far north", 1.2, 0.1, 0, false},
	}

	for _, tt := range tests {
		v, ok := m.ReadData(tt.lat, tt.lon)
		if ok != tt.found || (ok && math.Abs(v-tt.want) > 1e-12) {
			t.Errorf("%s: got %v, %v; want %v, %v", tt.name, v, ok, tt.want, tt.found)
		}
	}

	f := m.Footprint()
	if f.LonMin != -math.Pi/2 || f.LonMax != math.Pi/2 || f.LatMax != 1 {
		t.Errorf("Footprint = %+v", f)
	}
}

func TestMosaic_WeightsUnweightedSourcesOnce(t *testing.T) {
	m := NewMosaic(
		Func(func(lat, lon float64) (float64, bool) { return 4, true }),
		weighted{},
	)

	// Func counts once, weighted{} reports weight 9 with value 2 when scanning.
	v, w, ok := m.ReadWeighted(0, 0, true)
	if !ok || w != 10 || math.Abs(v-(4+18)/10.0) > 1e-12 {
		t.Errorf("got %v, %v, %v", v, w, ok)
	}
}
