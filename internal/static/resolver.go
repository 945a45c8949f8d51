// Package static serves the viewer fallback: user-configured directories
// first, embedded default assets last.
package static

import (
	"embed"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"tilegate/internal/config"
)

//go:embed viewer
var embeddedViewer embed.FS

type mount struct {
	urlPath string
	dir     string
}

// Resolver resolves unmatched request paths against configured static
// directories in declaration order, then embedded viewer assets. Built
// once at startup; read-only afterwards.
type Resolver struct {
	mounts   []mount
	embedded fs.FS
	viewer   bool
	logger   *zap.Logger
}

// NewResolver validates the configured mounts. A mount whose directory is
// missing on disk is skipped with a warning; the server still starts.
func NewResolver(mounts []config.StaticMount, viewerEnabled bool, logger *zap.Logger) (*Resolver, error) {
	r := &Resolver{
		viewer: viewerEnabled,
		logger: logger,
	}

	for _, m := range mounts {
		info, err := os.Stat(m.Dir)
		if err != nil || !info.IsDir() {
			logger.Warn("Static directory not found, skipping",
				zap.String("path", m.Path),
				zap.String("dir", m.Dir),
			)
			continue
		}
		urlPath := "/" + strings.Trim(m.Path, "/")
		r.mounts = append(r.mounts, mount{urlPath: urlPath, dir: m.Dir})
		logger.Info("Serving static files",
			zap.String("path", urlPath),
			zap.String("dir", m.Dir),
		)
	}

	sub, err := fs.Sub(embeddedViewer, "viewer")
	if err != nil {
		return nil, err
	}
	r.embedded = sub

	return r, nil
}

// Serve attempts to resolve the request path. It reports false when no
// configured directory and no embedded asset contains the path, leaving
// the final 404 to the caller.
func (r *Resolver) Serve(w http.ResponseWriter, req *http.Request) bool {
	for _, m := range r.mounts {
		if r.serveFromDir(w, req, m) {
			return true
		}
	}
	if r.viewer {
		return r.serveEmbedded(w, req)
	}
	return false
}

func (r *Resolver) serveFromDir(w http.ResponseWriter, req *http.Request, m mount) bool {
	rel, ok := strings.CutPrefix(req.URL.Path, m.urlPath)
	if !ok || (rel != "" && !strings.HasPrefix(rel, "/") && m.urlPath != "/") {
		return false
	}
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		rel = "index.html"
	}

	filePath := filepath.Join(m.dir, filepath.FromSlash(path.Clean("/"+rel)))
	if !strings.HasPrefix(filepath.Clean(filePath), filepath.Clean(m.dir)) {
		return false
	}

	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return false
	}

	// Directory-served files carry no CORS header.
	http.ServeFile(w, req, filePath)
	return true
}

func (r *Resolver) serveEmbedded(w http.ResponseWriter, req *http.Request) bool {
	key := strings.TrimPrefix(req.URL.Path, "/")
	if key == "" {
		key = "index.html"
	}

	data, err := fs.ReadFile(r.embedded, key)
	if err != nil {
		return false
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", contentType(key))
	w.Write(data)
	return true
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
