// Package server handles HTTP requests and middleware.
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/woozymasta/remap/internal/config"
	"github.com/woozymasta/remap/internal/processor"
)

const etagCap = 64

type mapSummary struct {
	config.Map
	Cached bool `json:"cached"`
}

// HandleMapsList serves the JSON list of configured maps.
func (s *ServerContext) HandleMapsList(w http.ResponseWriter, r *http.Request) {
	list := make([]mapSummary, 0, len(s.Config.Maps))
	for _, m := range s.Config.Maps {
		m.Sources = nil
		list = append(list, mapSummary{Map: m, Cached: s.Cached(m.Name)})
	}

	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(list)
}

// HandleHealth answers liveness probes.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// HandleMap serves a rendered map file: /maps/{name}.webp, .json or .raw.
// The map is rendered on first request.
func (s *ServerContext) HandleMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	file := strings.TrimPrefix(r.URL.Path, "/maps/")
	if file == "" || strings.Contains(file, "/") {
		http.NotFound(w, r)
		return
	}

	ext := path.Ext(file)
	m, ok := s.Config.Find(strings.TrimSuffix(file, ext))
	if !ok {
		http.NotFound(w, r)
		return
	}

	var contentType string
	switch ext {
	case processor.ExtPreview:
		contentType = "image/webp"
	case processor.ExtMetadata:
		contentType = "application/json"
	case processor.ExtRaw:
		contentType = "application/octet-stream"
	default:
		http.NotFound(w, r)
		return
	}

	rendered, err := s.Rendered(*m)
	if err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	var body []byte
	switch ext {
	case processor.ExtPreview:
		body = rendered.Preview
	case processor.ExtMetadata:
		body, err = json.Marshal(rendered.Metadata)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	case processor.ExtRaw:
		body = rendered.Raw
	}

	if body == nil {
		// preview disabled for this map
		http.NotFound(w, r)
		return
	}

	s.serveBytes(w, r, file, contentType, body, rendered.Metadata)
}

// serveBytes serves an in-memory file with an ETag derived from its size
// and render time.
func (s *ServerContext) serveBytes(w http.ResponseWriter, r *http.Request, name, contentType string, body []byte, meta processor.Metadata) {
	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, int64(len(body)), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, meta.Rendered.UnixNano(), 16)
	buf = append(buf, '"')

	w.Header().Set("ETag", string(buf))
	w.Header().Set("Cache-Control", "public, no-cache")
	w.Header().Set("Content-Type", contentType)

	http.ServeContent(w, r, name, meta.Rendered, bytes.NewReader(body))
}

// Routes returns the server mux wrapped in the request logger.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/maps", s.HandleMapsList)
	mux.HandleFunc("/healthz", s.HandleHealth)
	mux.HandleFunc("/maps/", s.HandleMap)
	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics.Handler())
	}

	return RequestLogger(s.Metrics)(mux)
}
