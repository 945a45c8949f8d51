// Package tiles defines the contract consumed from the external tile
// render/cache layer, plus the adapters that fulfil it. The gateway never
// renders geometry and never evicts cache entries; it only resolves
// requests against whatever the backing store produces.
package tiles

import (
	"context"
	"encoding/json"
)

// Tile is a resolved tile payload. Gzipped reports whether Data is already
// gzip compressed as stored; callers must not re-encode such payloads.
type Tile struct {
	Data    []byte
	Gzipped bool
}

// Service is the external tile source contract. GetTile returns (nil, nil)
// for a legitimately absent tile (outside data extent); absence is a valid
// outcome, not an error. The JSON document calls are expected to succeed
// for any configured tileset name, so an error from them is a request-fatal
// upstream failure.
type Service interface {
	GetTile(ctx context.Context, tileset string, z uint8, x, y uint32, preferGzip bool) (*Tile, error)
	GetMetadata(ctx context.Context, tileset string) (json.RawMessage, error)
	GetTileJSON(ctx context.Context, baseURL, tileset string) (json.RawMessage, error)
	GetStyleJSON(ctx context.Context, baseURL, tileset string) (json.RawMessage, error)
	GetIndexMetadata(ctx context.Context) (json.RawMessage, error)
}

// Sizer is optionally implemented by backends that can report a stored
// tile's byte size without reading it. Drilldown uses it for cost
// estimation; backends without cheap size lookups simply omit it.
type Sizer interface {
	TileSize(ctx context.Context, tileset string, z uint8, x, y uint32) (int64, bool)
}
