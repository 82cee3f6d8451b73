package mapfactory

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/woozymasta/remap/internal/extrema"
	"github.com/woozymasta/remap/internal/source"
)

// testProjection hands out the cell indices as coordinates so sources can
// recognise cells.
type testProjection struct {
	offBody func(line, sample int) bool
	err     error
}

func (testProjection) Name() string { return "test" }

func (p testProjection) Plot(samples, lines int) (CoordinateFunc, error) {
	if p.err != nil {
		return nil, p.err
	}
	return func(line, sample int) (float64, float64, bool) {
		if p.offBody != nil && p.offBody(line, sample) {
			return 0, 0, false
		}
		return float64(line), float64(sample), true
	}, nil
}

type countingNotifier struct {
	plotted  int
	last     uint64
	total    uint64
	done     int
	doneSize uint64
	ordered  bool
}

func newCountingNotifier() *countingNotifier { return &countingNotifier{ordered: true} }

func (n *countingNotifier) Plotted(total, done uint64) {
	n.plotted++
	if done != n.last+1 {
		n.ordered = false
	}
	n.last = done
	n.total = total
}

func (n *countingNotifier) Done(total uint64) {
	n.done++
	n.doneSize = total
}

var nothing = source.Func(func(lat, lon float64) (float64, bool) { return 0, false })

func TestMake_NothingFound(t *testing.T) {
	blank := 7.0
	n := newCountingNotifier()

	info := NewPlotInfo[int16](5, 2)
	info.Blank = &blank
	info.Notifier = n

	data, err := Make(testProjection{}, nothing, extrema.Full[int16](), info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(data) != 10 {
		t.Fatalf("len = %d, want 10", len(data))
	}
	for i, v := range data {
		if v != 7 {
			t.Errorf("cell %d = %v, want blank", i, v)
		}
	}

	if n.plotted != 10 || !n.ordered || n.total != 10 {
		t.Errorf("plotted %d times (ordered %v, total %d)", n.plotted, n.ordered, n.total)
	}
	if n.done != 1 || n.doneSize != 10 {
		t.Errorf("done called %d times with %d", n.done, n.doneSize)
	}

	if _, ok := info.Observed(); ok {
		t.Errorf("observed extrema reported for an empty map")
	}
}

func TestMake_BlankOutOfRange(t *testing.T) {
	blank := 200.0
	n := newCountingNotifier()
	called := false
	src := source.Func(func(lat, lon float64) (float64, bool) {
		called = true
		return 1, true
	})

	info := NewPlotInfo[int8](5, 2)
	info.Blank = &blank
	info.Notifier = n

	data, err := Make(testProjection{}, src, extrema.Full[int8](), info)
	if !errors.Is(err, ErrBlankOutOfRange) {
		t.Fatalf("err = %v, want ErrBlankOutOfRange", err)
	}
	if data != nil || called || n.plotted != 0 || n.done != 0 {
		t.Errorf("work was done before the configuration error")
	}
}

func TestMake_DefaultBlank(t *testing.T) {
	onlyFirst := testProjection{offBody: func(line, sample int) bool { return line+sample > 0 }}
	one := source.Func(func(lat, lon float64) (float64, bool) { return 1, true })

	ints, err := Make(onlyFirst, one, extrema.Full[uint8](), NewPlotInfo[uint8](2, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fmt.Sprint(ints) != "[1 0 0 0]" {
		t.Errorf("uint8 map = %v", ints)
	}

	floats, err := Make(onlyFirst, one, extrema.Full[float32](), NewPlotInfo[float32](2, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if floats[0] != 1 || !math.IsNaN(float64(floats[3])) {
		t.Errorf("float32 map = %v", floats)
	}
}

func TestMake_ValidationAndNarrowing(t *testing.T) {
	// Value is 100*line + sample - 50.
	src := source.Func(func(lat, lon float64) (float64, bool) {
		return 100*lat + lon - 50.4, true
	})

	lo, hi := 0.0, 120.0
	info := NewPlotInfo[uint8](4, 3)
	info.Minimum = &lo
	info.Maximum = &hi

	data, err := Plot(testProjection{}, src, info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Line 0 is negative, line 1 spans 49.6..52.6, line 2 exceeds 120.
	want := "[0 0 0 0 50 51 52 53 0 0 0 0]"
	if got := fmt.Sprint(data); got != want {
		t.Errorf("map = %v, want %v", got, want)
	}

	observed, ok := info.Observed()
	if !ok || observed.Minimum != 50 || observed.Maximum != 53 {
		t.Errorf("observed = %+v, %v", observed, ok)
	}
}

func TestMake_ObservedMatchesStoredCells(t *testing.T) {
	src := source.Func(func(lat, lon float64) (float64, bool) {
		v := math.Sin(lat*7+lon*3) * 1000
		return v, int(lat+lon)%3 != 0
	})
	blank := -32768.0

	for _, workers := range []int{1, 3, 8} {
		info := NewPlotInfo[int16](37, 23)
		info.Blank = &blank
		info.Workers = workers

		data, err := Make(testProjection{}, src, extrema.Full[int16](), info)
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}

		var want extrema.Local[int16]
		for _, v := range data {
			if v != -32768 {
				want.Update(v)
			}
		}

		got, ok := info.Observed()
		if !ok || got != want.Extrema {
			t.Errorf("workers=%d: observed %+v, stored cells span %+v", workers, got, want.Extrema)
		}
	}
}

func TestMake_ParallelMatchesSequential(t *testing.T) {
	src := source.Func(func(lat, lon float64) (float64, bool) {
		return lat*lon - 40, lon != 3
	})

	sequential := NewPlotInfo[float64](17, 31)
	a, err := Make(testProjection{}, src, extrema.Full[float64](), sequential)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n := newCountingNotifier()
	parallel := NewPlotInfo[float64](17, 31)
	parallel.Workers = 6
	parallel.Notifier = n
	b, err := Make(testProjection{}, src, extrema.Full[float64](), parallel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range a {
		if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
			t.Fatalf("cell %d differs: %v vs %v", i, a[i], b[i])
		}
	}

	if n.plotted != 17*31 || !n.ordered || n.done != 1 || n.doneSize != 17*31 {
		t.Errorf("parallel notifications: plotted %d ordered %v done %d size %d",
			n.plotted, n.ordered, n.done, n.doneSize)
	}

	ea, _ := sequential.Observed()
	eb, _ := parallel.Observed()
	if ea != eb {
		t.Errorf("observed extrema differ: %+v vs %+v", ea, eb)
	}
}

func TestMake_Scan(t *testing.T) {
	g := source.NewGrid(2, 1)
	g.Data = []float64{10, 30}
	r, err := source.NewRaster(g, source.Footprint{LatMin: -1, LatMax: 2, LonMin: 0, LonMax: 2}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info := NewPlotInfo[float64](1, 1)
	info.Scan = true

	data, err := Make(testProjection{}, r, extrema.Full[float64](), info)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data[0] != 20 {
		t.Errorf("scanned value = %v, want 20", data[0])
	}
}

func TestMake_Errors(t *testing.T) {
	if _, err := Make(testProjection{}, nothing, extrema.Full[int32](), NewPlotInfo[int32](0, 4)); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("err = %v, want ErrInvalidDimensions", err)
	}

	failing := testProjection{err: errors.New("bad geometry")}
	if _, err := Make(failing, nothing, extrema.Full[int32](), NewPlotInfo[int32](2, 2)); err == nil {
		t.Errorf("projection error swallowed")
	}

	lo, hi := 5.0, 1.0
	info := NewPlotInfo[int32](2, 2)
	info.Minimum, info.Maximum = &lo, &hi
	if _, err := Plot(testProjection{}, nothing, info); err == nil {
		t.Errorf("inverted data range accepted")
	}
}

func TestNotifiers(t *testing.T) {
	var plotted, done int
	a := newCountingNotifier()
	n := Notifiers{a, NotifierFuncs{
		OnPlotted: func(total, d uint64) { plotted++ },
		OnDone:    func(total uint64) { done++ },
	}, NotifierFuncs{}}

	n.Plotted(2, 1)
	n.Plotted(2, 2)
	n.Done(2)

	if a.plotted != 2 || a.done != 1 || plotted != 2 || done != 1 {
		t.Errorf("fan out failed: %d %d %d %d", a.plotted, a.done, plotted, done)
	}
}
