package main

import (
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/remap/internal/config"
	"github.com/woozymasta/remap/internal/logger"
	"github.com/woozymasta/remap/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string   `short:"c" long:"config"  env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Output     string   `short:"o" long:"output"  env:"OUTPUT_DIR"  description:"Output directory"           default:"maps"`
	Limit      []string `short:"l" long:"limit"   env:"LIMIT_NAMES" description:"Limit processing to specific map names"`
	Workers    int      `short:"p" long:"workers" env:"WORKERS"     description:"Resampling workers per map, 0 uses the config value"`
	Force      bool     `short:"f" long:"force"                     description:"Force overwrite of existing files"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	client := &http.Client{Timeout: 5 * time.Minute}

	// Filter maps if limit is set
	mapsToProcess := cfg.Maps
	if len(opts.Limit) > 0 {
		mapsToProcess = make([]config.Map, 0, len(opts.Limit))
		seen := make(map[string]bool)

		for _, limitName := range opts.Limit {
			if seen[limitName] {
				continue
			}
			seen[limitName] = true

			if m, ok := cfg.Find(limitName); ok {
				mapsToProcess = append(mapsToProcess, *m)
			} else {
				log.Error().
					Str("name", limitName).
					Msg("Map specified in --limit not found in configuration")
			}
		}
	}

	log.Info().
		Str("body", cfg.Body.Name).
		Int("maps_total", len(cfg.Maps)).
		Int("maps_queued", len(mapsToProcess)).
		Str("output", opts.Output).
		Msg("Starting remap")

	if failed := processor.Run(client, cfg, mapsToProcess, opts.Output, opts.Workers, opts.Force); failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Some maps failed to render")
	}

	log.Info().Msg("Remap finished successfully")
}
