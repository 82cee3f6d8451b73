package server

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/woozymasta/remap/internal/config"
	"github.com/woozymasta/remap/internal/processor"

	"github.com/rs/zerolog/log"
)

// RenderFunc renders one configured map.
type RenderFunc func(m config.Map) (*processor.Rendered, error)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config  *config.Config
	Metrics *Metrics

	render RenderFunc

	mu    sync.Mutex
	cache map[string]*renderEntry
}

// renderEntry is a finished or in-flight render. done is closed once
// rendered or err is set.
type renderEntry struct {
	done     chan struct{}
	rendered *processor.Rendered
	err      error
}

// NewServerContext sorts the configured maps and prepares the render cache.
// Maps are rendered with processor.Render on first request.
func NewServerContext(cfg *config.Config, client *http.Client, workers int, metrics *Metrics) *ServerContext {
	log.Info().Int("config_maps_count", len(cfg.Maps)).Msg("Initializing server context")

	sort.Slice(cfg.Maps, func(i, j int) bool {
		return cfg.Maps[i].Name < cfg.Maps[j].Name
	})

	render := func(m config.Map) (*processor.Rendered, error) {
		opts := processor.Options{Workers: workers, Notifier: processor.ProgressNotifier(m.Name)}
		return processor.Render(client, cfg, m, opts)
	}

	return newServerContext(cfg, render, metrics)
}

func newServerContext(cfg *config.Config, render RenderFunc, metrics *Metrics) *ServerContext {
	return &ServerContext{
		Config:  cfg,
		Metrics: metrics,
		render:  render,
		cache:   make(map[string]*renderEntry),
	}
}

// Rendered returns the memoised render of a map, rendering it if needed.
// Concurrent requests for the same map share one render. Failed renders
// are not kept and are retried on the next request.
func (s *ServerContext) Rendered(m config.Map) (*processor.Rendered, error) {
	s.mu.Lock()
	entry, ok := s.cache[m.Name]
	if !ok {
		entry = &renderEntry{done: make(chan struct{})}
		s.cache[m.Name] = entry
	}
	s.mu.Unlock()

	if ok {
		<-entry.done
		return entry.rendered, entry.err
	}

	start := time.Now()
	entry.rendered, entry.err = s.render(m)
	close(entry.done)

	result := "ok"
	s.mu.Lock()
	if entry.err != nil {
		result = "error"
		delete(s.cache, m.Name)
		log.Error().Err(entry.err).Str("map", m.Name).Msg("Failed to render map")
	}
	cached := len(s.cache)
	s.mu.Unlock()

	if s.Metrics != nil {
		s.Metrics.Renders.WithLabelValues(m.Name, result).Inc()
		s.Metrics.RenderDuration.WithLabelValues(m.Name).Observe(time.Since(start).Seconds())
		s.Metrics.CachedMaps.Set(float64(cached))
	}

	return entry.rendered, entry.err
}

// Cached reports whether a map has a finished render in memory.
func (s *ServerContext) Cached(name string) bool {
	s.mu.Lock()
	entry, ok := s.cache[name]
	s.mu.Unlock()

	if !ok {
		return false
	}

	select {
	case <-entry.done:
		return entry.err == nil
	default:
		return false
	}
}
