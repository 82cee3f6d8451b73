package source

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// footprintPad widens indexed boxes so that points on an edge still
// intersect; the source itself makes the final decision.
const footprintPad = 1e-9

type mosaicEntry struct {
	id        int
	src       Source
	footprint Footprint
}

// Bounds implements rtreego.Spatial.
func (e *mosaicEntry) Bounds() rtreego.Rect {
	point := rtreego.Point{e.footprint.LonMin - footprintPad, e.footprint.LatMin - footprintPad}
	lengths := []float64{
		e.footprint.LonMax - e.footprint.LonMin + 2*footprintPad,
		e.footprint.LatMax - e.footprint.LatMin + 2*footprintPad,
	}

	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// Mosaic combines overlapping sources. Footprints are kept in an R-tree so
// a read only consults the sources that can cover the point; all hits are
// averaged by weight.
type Mosaic struct {
	rtree   *rtreego.Rtree
	entries []*mosaicEntry
}

// NewMosaic indexes the given sources. Sources that do not implement
// Bounded are treated as global.
func NewMosaic(sources ...Source) *Mosaic {
	rtree := rtreego.NewTree(2, 25, 50)
	entries := make([]*mosaicEntry, 0, len(sources))

	for i, src := range sources {
		footprint := Global
		if b, ok := src.(Bounded); ok {
			footprint = b.Footprint()
		}

		entry := &mosaicEntry{id: i, src: src, footprint: footprint}
		rtree.Insert(entry)
		entries = append(entries, entry)
	}

	return &Mosaic{rtree: rtree, entries: entries}
}

// Len returns the number of sources.
func (m *Mosaic) Len() int { return len(m.entries) }

// candidates returns the sources whose footprint may contain the point.
// Footprints can start west of the prime meridian or run past 2π, so the
// longitude is also tried one turn either side.
func (m *Mosaic) candidates(lat, lon float64) []*mosaicEntry {
	seen := make(map[int]bool)
	var out []*mosaicEntry

	for _, l := range [3]float64{lon, lon - 2*math.Pi, lon + 2*math.Pi} {
		query, _ := rtreego.NewRect(rtreego.Point{l, lat}, []float64{footprintPad, footprintPad})

		for _, spatial := range m.rtree.SearchIntersect(query) {
			entry := spatial.(*mosaicEntry)
			if seen[entry.id] {
				continue
			}
			seen[entry.id] = true
			out = append(out, entry)
		}
	}

	return out
}

// ReadData returns the weighted mean of every source covering the point.
func (m *Mosaic) ReadData(lat, lon float64) (float64, bool) {
	v, _, ok := m.ReadWeighted(lat, lon, false)
	return v, ok
}

// ReadWeighted averages all covering sources, weighting each by the weight
// it reports. Sources without a weight count once. The returned weight is
// the sum of contributing weights.
func (m *Mosaic) ReadWeighted(lat, lon float64, scan bool) (float64, float64, bool) {
	var sum, total float64

	for _, entry := range m.candidates(lat, lon) {
		v, w, ok := ReadWeighted(entry.src, lat, lon, scan)
		if !ok {
			continue
		}
		if w <= 0 {
			w = 1
		}
		sum += v * w
		total += w
	}

	if total == 0 {
		return 0, 0, false
	}

	return sum / total, total, true
}

// Footprint returns the union of the indexed footprints.
func (m *Mosaic) Footprint() Footprint {
	if len(m.entries) == 0 {
		return Footprint{}
	}

	f := m.entries[0].footprint
	for _, entry := range m.entries[1:] {
		e := entry.footprint
		f.LatMin = math.Min(f.LatMin, e.LatMin)
		f.LatMax = math.Max(f.LatMax, e.LatMax)
		f.LonMin = math.Min(f.LonMin, e.LonMin)
		f.LonMax = math.Max(f.LonMax, e.LonMax)
	}

	return f
}
