package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tilegate/internal/drilldown"
)

const (
	contentTypeJSON     = "application/json"
	contentTypeProtobuf = "application/x-protobuf"
)

// maxZoom is the deepest grid level addressable through the gateway.
const maxZoom = 30

func (s *Server) handleIndexJSON(w http.ResponseWriter, r *http.Request, _ params) {
	doc, err := s.tiles.GetIndexMetadata(r.Context())
	if err != nil {
		s.upstreamError(w, "index metadata", err)
		return
	}
	s.writeRawJSON(w, doc)
}

func (s *Server) handleFontStacks(w http.ResponseWriter, r *http.Request, _ params) {
	w.Header().Set("Content-Type", contentTypeJSON)
	json.NewEncoder(w).Encode(s.fonts.Families())
}

// handleFonts resolves a comma-separated font stack to the first matching
// glyph payload. Stored payloads are gzip; clients that do not accept gzip
// get a decompressed body instead of a double-encoded one.
func (s *Server) handleFonts(w http.ResponseWriter, r *http.Request, p params) {
	stack := strings.Split(p["stack"], ",")

	data, ok := s.fonts.Resolve(stack, p["range"])
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentTypeProtobuf)
	s.writeStoredGzip(w, r, data)
}

func (s *Server) handleStyleJSON(w http.ResponseWriter, r *http.Request, p params) {
	name := p["tileset"]
	if _, ok := s.registry.Get(name); !ok {
		http.NotFound(w, r)
		return
	}

	doc, err := s.tiles.GetStyleJSON(r.Context(), baseURL(r), name)
	if err != nil {
		s.upstreamError(w, "style json", err)
		return
	}
	s.writeRawJSON(w, doc)
}

func (s *Server) handleMetadataJSON(w http.ResponseWriter, r *http.Request, p params) {
	name := p["tileset"]
	if _, ok := s.registry.Get(name); !ok {
		http.NotFound(w, r)
		return
	}

	doc, err := s.tiles.GetMetadata(r.Context(), name)
	if err != nil {
		s.upstreamError(w, "metadata", err)
		return
	}
	s.writeRawJSON(w, doc)
}

func (s *Server) handleTileJSON(w http.ResponseWriter, r *http.Request, p params) {
	name := p["tileset"]
	if _, ok := s.registry.Get(name); !ok {
		http.NotFound(w, r)
		return
	}

	doc, err := s.tiles.GetTileJSON(r.Context(), baseURL(r), name)
	if err != nil {
		s.upstreamError(w, "tilejson", err)
		return
	}
	s.writeRawJSON(w, doc)
}

// handleTile resolves one z/x/y tile. An absent tile is a legitimate empty
// result (204), never an error. Successful responses carry the configured
// Cache-Control max-age.
func (s *Server) handleTile(w http.ResponseWriter, r *http.Request, p params) {
	name := p["tileset"]
	if _, ok := s.registry.Get(name); !ok {
		http.NotFound(w, r)
		return
	}

	z, err := strconv.ParseUint(p["z"], 10, 8)
	if err != nil || z > maxZoom {
		http.NotFound(w, r)
		return
	}
	x, err := strconv.ParseUint(p["x"], 10, 32)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	y, err := strconv.ParseUint(p["y"], 10, 32)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	preferGzip := acceptsGzip(r)
	tile, err := s.tiles.GetTile(r.Context(), name, uint8(z), uint32(x), uint32(y), preferGzip)
	if err != nil {
		s.upstreamError(w, "tile", err)
		return
	}
	if tile == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", contentTypeProtobuf)
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", s.config.CacheMaxAge))

	if tile.Gzipped {
		s.writeStoredGzip(w, r, tile.Data)
		return
	}
	w.Write(tile.Data)
}

func (s *Server) handleDrilldown(w http.ResponseWriter, r *http.Request, _ params) {
	query := r.URL.Query()

	// Parameter parsing fails fast, before any resolver runs; a
	// malformed point list never yields partial statistics.
	points, err := drilldown.ParsePoints(query.Get("points"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	minzoom, err := parseZoomParam(query.Get("minzoom"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	maxzoom, err := parseZoomParam(query.Get("maxzoom"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := s.analyzer.Analyze(r.Context(), query.Get("tileset"), minzoom, maxzoom, points)
	if err != nil {
		var unknown *drilldown.ErrUnknownTileset
		if errors.As(err, &unknown) {
			http.NotFound(w, r)
			return
		}
		s.upstreamError(w, "drilldown", err)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request, _ params) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// writeStoredGzip serves a payload that is gzip compressed as stored.
// Clients accepting gzip get the stored bytes verbatim with a single
// Content-Encoding: gzip; transport compression is disabled for the
// response, since double encoding corrupts payloads for single-decode
// clients. Other clients get an on-the-fly decompressed body.
func (s *Server) writeStoredGzip(w http.ResponseWriter, r *http.Request, data []byte) {
	if acceptsGzip(r) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(data)
		return
	}

	plain, err := gunzip(data)
	if err != nil {
		s.upstreamError(w, "stored payload", err)
		return
	}
	w.Write(plain)
}

func (s *Server) writeRawJSON(w http.ResponseWriter, doc json.RawMessage) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Write(doc)
}

func (s *Server) upstreamError(w http.ResponseWriter, what string, err error) {
	s.logger.Error("Upstream failure", zap.String("operation", what), zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func parseZoomParam(value string) (*uint8, error) {
	if value == "" {
		return nil, nil
	}
	z, err := strconv.ParseUint(value, 10, 8)
	if err != nil || z > maxZoom {
		return nil, fmt.Errorf("invalid zoom value %q", value)
	}
	zoom := uint8(z)
	return &zoom, nil
}
