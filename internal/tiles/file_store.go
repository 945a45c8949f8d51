package tiles

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tilegate/internal/tileset"
)

// FileStore serves tiles from an externally managed directory tree.
// Layout: {dir}/{tileset}/{z}/{x}/{y}.pbf, with an optional
// {dir}/{tileset}/metadata.json per tileset. The store is read-only from
// the gateway's point of view; population and eviction belong to the
// external cache layer.
type FileStore struct {
	dir      string
	registry *tileset.Registry
}

func NewFileStore(dir string, registry *tileset.Registry) (*FileStore, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("tile directory not accessible: %w", err)
	}

	return &FileStore{
		dir:      dir,
		registry: registry,
	}, nil
}

func (s *FileStore) tilePath(ts string, z uint8, x, y uint32) string {
	return filepath.Join(s.dir, ts, fmt.Sprintf("%d", z), fmt.Sprintf("%d", x), fmt.Sprintf("%d.pbf", y))
}

// GetTile reads the stored tile, if any. Stored payloads may or may not be
// gzip compressed; compression is detected from the gzip magic bytes.
// preferGzip is ignored: the store returns tiles exactly as laid down.
func (s *FileStore) GetTile(ctx context.Context, ts string, z uint8, x, y uint32, preferGzip bool) (*Tile, error) {
	data, err := os.ReadFile(s.tilePath(ts, z, x, y))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tile: %w", err)
	}

	return &Tile{Data: data, Gzipped: isGzip(data)}, nil
}

// TileSize reports the stored tile's size without reading it.
func (s *FileStore) TileSize(ctx context.Context, ts string, z uint8, x, y uint32) (int64, bool) {
	info, err := os.Stat(s.tilePath(ts, z, x, y))
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

// GetMetadata returns the tileset's stored metadata document. When the
// store has none, a minimal document is synthesized from the registry so
// well-formed names always resolve.
func (s *FileStore) GetMetadata(ctx context.Context, name string) (json.RawMessage, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name, "metadata.json"))
	if err == nil {
		if !json.Valid(data) {
			return nil, fmt.Errorf("stored metadata for %s is not valid JSON", name)
		}
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	ts, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tileset: %s", name)
	}
	return json.Marshal(ts)
}

func (s *FileStore) GetTileJSON(ctx context.Context, baseURL, name string) (json.RawMessage, error) {
	ts, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tileset: %s", name)
	}
	return BuildTileJSON(baseURL, ts)
}

func (s *FileStore) GetStyleJSON(ctx context.Context, baseURL, name string) (json.RawMessage, error) {
	ts, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tileset: %s", name)
	}
	return BuildStyleJSON(baseURL, ts)
}

func (s *FileStore) GetIndexMetadata(ctx context.Context) (json.RawMessage, error) {
	return BuildIndexMetadata(s.registry)
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}
