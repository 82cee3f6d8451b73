package processor

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/woozymasta/remap/internal/config"
	"github.com/woozymasta/remap/internal/mapfactory"

	"github.com/rs/zerolog/log"
)

// Output file extensions.
const (
	ExtRaw      = ".raw"
	ExtMetadata = ".json"
	ExtPreview  = ".webp"
)

// Run renders maps into dir one after another. A failed map is logged and
// the batch continues; the number of failures is returned.
func Run(client *http.Client, cfg *config.Config, maps []config.Map, dir string, workers int, force bool) int {
	failed := 0

	for _, m := range maps {
		if !force && Exists(dir, m.Name) {
			log.Info().Str("map", m.Name).Msg("Map already rendered, skipping")
			continue
		}

		opts := Options{Workers: workers, Notifier: ProgressNotifier(m.Name)}
		r, err := Render(client, cfg, m, opts)
		if err != nil {
			log.Error().Err(err).Str("map", m.Name).Msg("Failed to render map")
			failed++
			continue
		}

		if err := Write(dir, r); err != nil {
			log.Error().Err(err).Str("map", m.Name).Msg("Failed to write map")
			failed++
		}
	}

	return failed
}

// Exists reports whether a non-empty raw map is already present in dir.
func Exists(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name+ExtRaw))
	return err == nil && info.Size() > 0
}

// Write stores the outputs of a rendered map in dir.
func Write(dir string, r *Rendered) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	base := filepath.Join(dir, r.Metadata.Name)

	if err := os.WriteFile(base+ExtRaw, r.Raw, 0644); err != nil {
		return err
	}

	meta, err := json.MarshalIndent(r.Metadata, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(base+ExtMetadata, meta, 0644); err != nil {
		return err
	}

	if r.Preview != nil {
		if err := os.WriteFile(base+ExtPreview, r.Preview, 0644); err != nil {
			return err
		}
	}

	log.Debug().Str("map", r.Metadata.Name).Str("dir", dir).Msg("Map files written")
	return nil
}

// ProgressNotifier logs progress of a map in ten percent steps.
func ProgressNotifier(name string) mapfactory.Notifier {
	step := uint64(0)

	return mapfactory.NotifierFuncs{
		OnPlotted: func(total, done uint64) {
			if total == 0 {
				return
			}
			if s := done * 10 / total; s > step {
				step = s
				log.Debug().
					Str("map", name).
					Uint64("done", done).
					Uint64("total", total).
					Msgf("Plotted %d%%", s*10)
			}
		},
		OnDone: func(total uint64) {
			log.Trace().Str("map", name).Uint64("cells", total).Msg("Plot finished")
		},
	}
}
