package tiles

import (
	"fmt"

	"go.uber.org/zap"

	"tilegate/internal/tileset"
)

// NewService creates a tile service adapter based on the backend type.
func NewService(backend, tileDir, upstreamURL string, registry *tileset.Registry, log *zap.Logger) (Service, error) {
	switch backend {
	case "file":
		log.Info("Using file tile store", zap.String("tile_dir", tileDir))
		return NewFileStore(tileDir, registry)
	case "upstream":
		log.Info("Using upstream tile service", zap.String("url", upstreamURL))
		return NewUpstreamService(upstreamURL, registry)
	default:
		return nil, fmt.Errorf("unknown tile backend: %s (supported: file, upstream)", backend)
	}
}
