package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/remap/internal/config"
	"github.com/woozymasta/remap/internal/logger"
	"github.com/woozymasta/remap/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"  env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string `short:"a" long:"addr"    env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"    env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	Workers    int    `short:"w" long:"workers" env:"WORKERS"        description:"Resampling workers per map, 0 uses the config value"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	metrics, err := server.NewMetrics(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	srvCtx := server.NewServerContext(cfg, client, opts.Workers, metrics)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Str("body", cfg.Body.Name).
		Int("maps_loaded", len(cfg.Maps)).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, srvCtx.Routes()); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
