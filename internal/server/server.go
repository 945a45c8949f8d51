// Package server is the dispatch layer: it maps each request path to
// exactly one resolver and applies negotiation and cache policy uniformly.
package server

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tilegate/internal/config"
	"tilegate/internal/drilldown"
	"tilegate/internal/fonts"
	"tilegate/internal/metrics"
	"tilegate/internal/static"
	"tilegate/internal/tiles"
	"tilegate/internal/tileset"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	registry *tileset.Registry
	tiles    tiles.Service
	fonts    *fonts.Resolver
	static   *static.Resolver
	analyzer *drilldown.Analyzer
	metrics  *metrics.Metrics
	routes   []route
}

func New(
	cfg *config.Config,
	logger *zap.Logger,
	registry *tileset.Registry,
	tileService tiles.Service,
	fontResolver *fonts.Resolver,
	staticResolver *static.Resolver,
	analyzer *drilldown.Analyzer,
	m *metrics.Metrics,
) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		registry: registry,
		tiles:    tileService,
		fonts:    fontResolver,
		static:   staticResolver,
		analyzer: analyzer,
		metrics:  m,
	}

	metricsHandler := m.Handler()

	// Fixed, ordered template table; first match wins. The literal
	// *.json routes come before the {tileset}.json template so that
	// /index.json and /fontstacks.json never resolve as tilesets.
	s.routes = []route{
		newRoute("/index.json", s.handleIndexJSON),
		newRoute("/fontstacks.json", s.handleFontStacks),
		newRoute("/fonts/{stack}/{range}.pbf", s.handleFonts),
		newRoute("/drilldown", s.handleDrilldown),
		newRoute("/healthz", s.handleHealthz),
		newRoute("/metrics", func(w http.ResponseWriter, r *http.Request, _ params) {
			metricsHandler.ServeHTTP(w, r)
		}),
		newRoute("/{tileset}.style.json", s.handleStyleJSON),
		newRoute("/{tileset}/metadata.json", s.handleMetadataJSON),
		newRoute("/{tileset}.json", s.handleTileJSON),
		newRoute("/{tileset}/{z:int}/{x:int}/{y:int}.pbf", s.handleTile),
	}

	return s
}

// Handler wraps the dispatcher with the cross-cutting middleware chain.
func (s *Server) Handler() http.Handler {
	return s.CORSMiddleware(s.RequestLoggingMiddleware(s.GzipMiddleware(http.HandlerFunc(s.dispatch))))
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	for _, rt := range s.routes {
		if p, ok := rt.match(r.URL.Path); ok {
			rt.handler(wrapped, r, p)
			s.metrics.Observe(rt.template, wrapped.statusCode, time.Since(start))
			return
		}
	}

	if s.static.Serve(wrapped, r) {
		s.metrics.Observe("static", wrapped.statusCode, time.Since(start))
		return
	}

	http.NotFound(wrapped, r)
	s.metrics.Observe("unmatched", wrapped.statusCode, time.Since(start))
}

// baseURL derives the document base from the request, honoring a proxy's
// forwarded protocol.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}

type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}
