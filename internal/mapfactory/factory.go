// Package mapfactory resamples a source image into a map projection. The
// pipeline is projection agnostic: a Projection supplies the geographic
// coordinate of every output cell and the factory reads, validates and
// stores the datum found there.
package mapfactory

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/woozymasta/remap/internal/extrema"
	"github.com/woozymasta/remap/internal/source"

	"github.com/rs/zerolog/log"
)

var (
	// ErrBlankOutOfRange is returned when the blank value cannot be
	// represented in the map's element type.
	ErrBlankOutOfRange = errors.New("blank value out of range for map data type")
	// ErrInvalidDimensions is returned for maps without cells.
	ErrInvalidDimensions = errors.New("invalid map dimensions")
)

// CoordinateFunc returns the planetocentric latitude and east longitude,
// in radians, of the centre of an output cell. ok is false for cells
// outside the projection's valid area; those are left blank.
type CoordinateFunc func(line, sample int) (lat, lon float64, ok bool)

// Projection is the per-projection part of the pipeline.
type Projection interface {
	Name() string
	// Plot prepares the projection for a samples x lines map.
	Plot(samples, lines int) (CoordinateFunc, error)
}

// Plot is Make with the accepted range taken from info.Minimum and
// info.Maximum.
func Plot[T extrema.Number](proj Projection, src source.Source, info *PlotInfo[T]) ([]T, error) {
	ext, err := extrema.New[T](info.Minimum, info.Maximum)
	if err != nil {
		return nil, fmt.Errorf("data range: %w", err)
	}

	return Make(proj, src, ext, info)
}

// Make resamples src into a samples x lines map of T in row-major order.
//
// Cells are filled with the blank value first. Every cell the projection
// places on the body is read from src; the datum is stored only if it was
// found and lies inside ext. The notifier sees every cell exactly once and
// a final Done. The range of stored values is available afterwards from
// info.Observed.
func Make[T extrema.Number](proj Projection, src source.Source, ext extrema.Extrema[T], info *PlotInfo[T]) ([]T, error) {
	blank, err := info.BlankValue()
	if err != nil {
		return nil, err
	}

	if info.Samples <= 0 || info.Lines <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, info.Samples, info.Lines)
	}

	coordinate, err := proj.Plot(info.Samples, info.Lines)
	if err != nil {
		return nil, fmt.Errorf("%s projection: %w", proj.Name(), err)
	}

	total := uint64(info.Samples) * uint64(info.Lines)
	data := make([]T, total)
	for i := range data {
		data[i] = blank
	}

	info.observed.Reset()

	p := &plotter[T]{
		src:        src,
		ext:        ext,
		scan:       info.Scan,
		coordinate: coordinate,
		data:       data,
		samples:    info.Samples,
		total:      total,
		notifier:   info.notifier(),
		observed:   &info.observed,
	}

	start := time.Now()
	log.Debug().
		Str("projection", proj.Name()).
		Int("samples", info.Samples).
		Int("lines", info.Lines).
		Int("workers", info.Workers).
		Msg("Plotting map")

	if info.Workers > 1 {
		p.parallel(info.Lines, info.Workers)
	} else {
		p.sequential(info.Lines)
	}

	p.notifier.Done(total)

	observed, ok := info.observed.Extrema()
	log.Debug().
		Str("projection", proj.Name()).
		Bool("has_data", ok).
		Float64("observed_min", float64(observed.Minimum)).
		Float64("observed_max", float64(observed.Maximum)).
		Dur("duration", time.Since(start)).
		Msg("Map plotted")

	return data, nil
}

type plotter[T extrema.Number] struct {
	src        source.Source
	ext        extrema.Extrema[T]
	scan       bool
	coordinate CoordinateFunc
	data       []T
	samples    int
	total      uint64
	notifier   Notifier
	observed   *extrema.Tracker[T]

	mu   sync.Mutex
	done uint64
}

func (p *plotter[T]) read(lat, lon float64) (float64, bool) {
	if p.scan {
		v, _, ok := source.ReadWeighted(p.src, lat, lon, true)
		return v, ok
	}
	return p.src.ReadData(lat, lon)
}

// plotRow resamples one output line. Rows never share cells, so concurrent
// calls for different lines do not race on data.
func (p *plotter[T]) plotRow(line int) extrema.Local[T] {
	var local extrema.Local[T]
	offset := line * p.samples

	for sample := 0; sample < p.samples; sample++ {
		lat, lon, ok := p.coordinate(line, sample)
		if !ok {
			continue
		}

		v, found := p.read(lat, lon)
		if !found || !p.ext.Contains(v) {
			continue
		}

		t := extrema.Narrow[T](v)
		p.data[offset+sample] = t
		local.Update(t)
	}

	return local
}

func (p *plotter[T]) sequential(lines int) {
	for line := 0; line < lines; line++ {
		local := p.plotRow(line)
		if local.Valid {
			p.observed.Merge(local.Extrema)
		}
		p.progress(p.samples)
	}
}

// parallel hands rows to a fixed pool of workers.
func (p *plotter[T]) parallel(lines, workers int) {
	rows := make(chan int, lines)
	for line := 0; line < lines; line++ {
		rows <- line
	}
	close(rows)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for line := range rows {
				local := p.plotRow(line)
				if local.Valid {
					p.observed.Merge(local.Extrema)
				}
				p.progress(p.samples)
			}
		}()
	}
	wg.Wait()
}

// progress reports cells one at a time under a single lock so the count
// seen by the notifier strictly increases and covers every cell once.
func (p *plotter[T]) progress(cells int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < cells; i++ {
		p.done++
		p.notifier.Plotted(p.total, p.done)
	}
}
