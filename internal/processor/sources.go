package processor

import (
	"fmt"
	"net/http"

	"github.com/woozymasta/remap/internal/config"
	"github.com/woozymasta/remap/internal/correction"
	"github.com/woozymasta/remap/internal/geo"
	"github.com/woozymasta/remap/internal/imageio"
	"github.com/woozymasta/remap/internal/mapfactory"
	"github.com/woozymasta/remap/internal/projection"
	"github.com/woozymasta/remap/internal/source"

	"github.com/rs/zerolog/log"
)

// BuildSource loads every source image of a map. Several sources are
// combined into a mosaic.
func BuildSource(client *http.Client, body geo.Body, m config.Map) (source.Source, error) {
	sources := make([]source.Source, 0, len(m.Sources))

	for i, cs := range m.Sources {
		src, err := buildOne(client, body, cs)
		if err != nil {
			return nil, fmt.Errorf("source %d (%s): %w", i, cs.Path, err)
		}
		sources = append(sources, src)
	}

	if len(sources) == 1 {
		return sources[0], nil
	}

	log.Debug().Str("map", m.Name).Int("sources", len(sources)).Msg("Building source mosaic")
	return source.NewMosaic(sources...), nil
}

func buildOne(client *http.Client, body geo.Body, cs config.Source) (source.Source, error) {
	grid, err := imageio.Load(client, cs.Path)
	if err != nil {
		return nil, err
	}
	grid.NoData = cs.NoData

	var src source.Source
	switch cs.Kind {
	case config.SourceRaster, "":
		footprint := source.Footprint{
			LatMin: geo.Radians(cs.LatMin),
			LatMax: geo.Radians(cs.LatMax),
			LonMin: geo.Radians(cs.LonMin),
			LonMax: geo.Radians(cs.LonMax),
		}
		src, err = source.NewRaster(grid, footprint, cs.Interpolate)

	case config.SourcePhoto:
		var corrector correction.Corrector
		corrector, err = buildCorrector(cs.Correction, grid.Samples)
		if err != nil {
			return nil, err
		}

		p := cs.Photo
		camera := source.Camera{
			SubObserverLat:    geo.Radians(p.SubObserverLat),
			SubObserverLon:    geo.Radians(p.SubObserverLon),
			Range:             p.Range,
			FocalLength:       p.FocalLength,
			PixelScale:        p.PixelScale,
			OpticalAxisLine:   p.OpticalAxisLine,
			OpticalAxisSample: p.OpticalAxisSample,
			PositionAngle:     geo.Radians(p.PositionAngle),
		}
		src, err = source.NewPhoto(body, camera, grid, corrector, cs.Interpolate)

	default:
		return nil, fmt.Errorf("unknown source kind %q", cs.Kind)
	}
	if err != nil {
		return nil, err
	}

	if cs.Scale != nil || cs.Offset != 0 {
		scale := 1.0
		if cs.Scale != nil {
			scale = *cs.Scale
		}
		src = source.Scaled{Source: src, Scale: scale, Offset: cs.Offset}
	}

	return src, nil
}

func buildCorrector(c *config.Correction, samples int) (correction.Corrector, error) {
	if c == nil {
		return correction.Null{}, nil
	}
	return correction.New(c.Kind, c.LensParams, samples)
}

// BuildProjection converts a configured projection to radians.
func BuildProjection(body geo.Body, p config.Projection) (mapfactory.Projection, error) {
	switch p.Kind {
	case config.ProjectionSimpleCylindrical:
		return &projection.SimpleCylindrical{
			Body:    body,
			LatMin:  geo.Radians(p.LatMin),
			LatMax:  geo.Radians(p.LatMax),
			LonMin:  geo.Radians(p.LonMin),
			LonMax:  geo.Radians(p.LonMax),
			Graphic: p.Graphic,
		}, nil

	case config.ProjectionMercator:
		return &projection.Mercator{
			Body:        body,
			LonMin:      geo.Radians(p.LonMin),
			LonMax:      geo.Radians(p.LonMax),
			MaxLatitude: geo.Radians(p.MaxLatitude),
		}, nil

	case config.ProjectionOrthographic:
		return &projection.Orthographic{
			Body:           body,
			SubObserverLat: geo.Radians(p.SubObserverLat),
			SubObserverLon: geo.Radians(p.SubObserverLon),
			PositionAngle:  geo.Radians(p.PositionAngle),
			KmPerPixel:     p.KmPerPixel,
			CenterLine:     p.CenterLine,
			CenterSample:   p.CenterSample,
		}, nil

	default:
		return nil, fmt.Errorf("unknown projection %q", p.Kind)
	}
}
