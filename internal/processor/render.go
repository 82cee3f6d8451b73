// Package processor turns configured maps into rendered map files.
package processor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/woozymasta/remap/internal/config"
	"github.com/woozymasta/remap/internal/extrema"
	"github.com/woozymasta/remap/internal/imageio"
	"github.com/woozymasta/remap/internal/mapfactory"
	"github.com/woozymasta/remap/internal/source"

	"github.com/rs/zerolog/log"
)

// Metadata describes a rendered map. Blank and the observed range are nil
// when NaN or when nothing was plotted.
type Metadata struct {
	Name       string    `json:"name"`
	Body       string    `json:"body,omitempty"`
	Type       string    `json:"type"`
	Projection string    `json:"projection"`
	Samples    int       `json:"samples"`
	Lines      int       `json:"lines"`
	Blank      *float64  `json:"blank"`
	Minimum    *float64  `json:"minimum"`
	Maximum    *float64  `json:"maximum"`
	Rendered   time.Time `json:"rendered"`
}

// Rendered holds the encoded outputs of a map.
type Rendered struct {
	Metadata Metadata
	Raw      []byte
	Preview  []byte
}

// Options tune a render.
type Options struct {
	Workers  int
	Notifier mapfactory.Notifier
}

// Render loads the sources of m, resamples them and encodes the result.
func Render(client *http.Client, cfg *config.Config, m config.Map, opts Options) (*Rendered, error) {
	proj, err := BuildProjection(cfg.Body, m.Projection)
	if err != nil {
		return nil, err
	}

	src, err := BuildSource(client, cfg.Body, m)
	if err != nil {
		return nil, err
	}

	if opts.Workers <= 0 {
		opts.Workers = cfg.Workers
	}

	r, err := RenderSource(m, proj, src, opts)
	if err != nil {
		return nil, err
	}
	r.Metadata.Body = cfg.Body.Name

	return r, nil
}

// RenderSource resamples an already built source with the element type
// named by m.Type.
func RenderSource(m config.Map, proj mapfactory.Projection, src source.Source, opts Options) (*Rendered, error) {
	switch m.Type {
	case "int8":
		return render[int8](m, proj, src, opts)
	case "uint8":
		return render[uint8](m, proj, src, opts)
	case "int16":
		return render[int16](m, proj, src, opts)
	case "uint16":
		return render[uint16](m, proj, src, opts)
	case "int32":
		return render[int32](m, proj, src, opts)
	case "uint32":
		return render[uint32](m, proj, src, opts)
	case "int64":
		return render[int64](m, proj, src, opts)
	case "uint64":
		return render[uint64](m, proj, src, opts)
	case "float32":
		return render[float32](m, proj, src, opts)
	case "float64":
		return render[float64](m, proj, src, opts)
	default:
		return nil, fmt.Errorf("unknown map type %q", m.Type)
	}
}

func render[T extrema.Number](m config.Map, proj mapfactory.Projection, src source.Source, opts Options) (*Rendered, error) {
	info := mapfactory.NewPlotInfo[T](m.Samples, m.Lines)
	info.Blank = m.Blank
	info.Minimum = m.Minimum
	info.Maximum = m.Maximum
	info.Scan = m.Scan
	info.Workers = opts.Workers
	info.Notifier = opts.Notifier

	start := time.Now()
	data, err := mapfactory.Plot(proj, src, info)
	if err != nil {
		return nil, err
	}

	blank, _ := info.BlankValue()
	observed, found := info.Observed()

	meta := Metadata{
		Name:       m.Name,
		Type:       m.Type,
		Projection: proj.Name(),
		Samples:    m.Samples,
		Lines:      m.Lines,
		Blank:      finite(float64(blank)),
		Rendered:   time.Now().UTC(),
	}
	if found {
		meta.Minimum = finite(float64(observed.Minimum))
		meta.Maximum = finite(float64(observed.Maximum))
	} else {
		log.Warn().Str("map", m.Name).Msg("No source data fell on the map")
	}

	var raw bytes.Buffer
	raw.Grow(binary.Size(data))
	if err := imageio.WriteRaw(&raw, data); err != nil {
		return nil, fmt.Errorf("encode raw: %w", err)
	}

	r := &Rendered{Metadata: meta, Raw: raw.Bytes()}

	if m.PreviewSize > 0 {
		if !found {
			observed = extrema.Full[T]()
		}

		var preview bytes.Buffer
		if err := imageio.WritePreview(&preview, data, m.Samples, m.Lines, observed, blank, m.PreviewSize); err != nil {
			return nil, fmt.Errorf("encode preview: %w", err)
		}
		r.Preview = preview.Bytes()
	}

	log.Info().
		Str("map", m.Name).
		Str("type", m.Type).
		Str("projection", proj.Name()).
		Int("samples", m.Samples).
		Int("lines", m.Lines).
		Dur("took", time.Since(start)).
		Msg("Map rendered")

	return r, nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
