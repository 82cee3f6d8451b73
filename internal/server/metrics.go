package server

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the prometheus collectors of the render server.
type Metrics struct {
	gatherer prometheus.Gatherer

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Renders         *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec
	CachedMaps      prometheus.Gauge
}

// NewMetrics registers the server metrics against reg, defaulting to the
// global registry when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	m := &Metrics{
		gatherer: gatherer,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remap_http_requests_total",
			Help: "Number of HTTP requests, labeled by route and status code.",
		}, []string{"route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "remap_http_request_duration_seconds",
			Help: "Duration of HTTP requests.",
		}, []string{"route"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remap_renders_total",
			Help: "Number of map renders, labeled by map and result.",
		}, []string{"map", "result"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "remap_render_duration_seconds",
			Help:    "Time spent loading sources and resampling a map.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"map"}),
		CachedMaps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "remap_cached_maps",
			Help: "Number of rendered maps held in memory.",
		}),
	}

	var err error
	if m.Requests, err = register(reg, m.Requests); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = register(reg, m.RequestDuration); err != nil {
		return nil, err
	}
	if m.Renders, err = register(reg, m.Renders); err != nil {
		return nil, err
	}
	if m.RenderDuration, err = register(reg, m.RenderDuration); err != nil {
		return nil, err
	}
	if m.CachedMaps, err = register(reg, m.CachedMaps); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler exposes the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// register adds c to reg, reusing an identical collector that is already
// registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
