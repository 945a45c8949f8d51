// Package drilldown estimates tile coverage over a point set and zoom
// range, letting an operator size a cache pre-warming run without
// rendering a single tile.
package drilldown

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"tilegate/internal/tiles"
	"tilegate/internal/tileset"
)

// ErrUnknownTileset marks a drilldown filter naming no configured tileset.
type ErrUnknownTileset struct {
	Name string
}

func (e *ErrUnknownTileset) Error() string {
	return fmt.Sprintf("unknown tileset: %s", e.Name)
}

// ZoomStats aggregates coverage for one (tileset, zoom) pair.
type ZoomStats struct {
	Zoom           uint8 `json:"zoom"`
	Points         int   `json:"points"`
	Tiles          int   `json:"tiles"`
	EstimatedBytes int64 `json:"estimated_bytes,omitempty"`
}

// TilesetStats aggregates coverage for one tileset over the effective zoom
// range.
type TilesetStats struct {
	Tileset        string      `json:"tileset"`
	ZoomLevels     []ZoomStats `json:"zoom_levels"`
	TotalTiles     int         `json:"total_tiles"`
	EstimatedBytes int64       `json:"estimated_bytes,omitempty"`
}

// Stats is the full drilldown result. Computed fresh per request; never
// persisted.
type Stats struct {
	Tilesets []TilesetStats `json:"tilesets"`
}

// Analyzer computes coverage statistics against the configured tilesets.
// It consults the tile backend only through the optional Sizer interface;
// the analysis itself renders and caches nothing.
type Analyzer struct {
	registry *tileset.Registry
	sizer    tiles.Sizer
}

func New(registry *tileset.Registry, service tiles.Service) *Analyzer {
	sizer, _ := service.(tiles.Sizer)
	return &Analyzer{
		registry: registry,
		sizer:    sizer,
	}
}

// ParsePoints parses a flat comma-separated number sequence into (x, y)
// pairs. Any non-numeric token or an odd count fails the whole input; no
// partial result is returned.
func ParsePoints(raw string) ([]orb.Point, error) {
	if raw == "" {
		return nil, fmt.Errorf("no points given")
	}

	parts := strings.Split(raw, ",")
	if len(parts)%2 != 0 {
		return nil, fmt.Errorf("points must be an even number of values, got %d", len(parts))
	}

	points := make([]orb.Point, 0, len(parts)/2)
	for i := 0; i < len(parts); i += 2 {
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid point value %q", parts[i])
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid point value %q", parts[i+1])
		}
		points = append(points, orb.Point{x, y})
	}

	return points, nil
}

// Analyze computes per-tileset, per-zoom coverage for the given points.
// An empty filter means all configured tilesets. Request zoom bounds
// override the tileset's configured bounds; an inverted effective range
// yields empty statistics for that tileset.
func (a *Analyzer) Analyze(ctx context.Context, filter string, minzoom, maxzoom *uint8, points []orb.Point) (*Stats, error) {
	var scope []tileset.Tileset
	if filter != "" {
		ts, ok := a.registry.Get(filter)
		if !ok {
			return nil, &ErrUnknownTileset{Name: filter}
		}
		scope = []tileset.Tileset{ts}
	} else {
		scope = a.registry.List()
	}

	stats := &Stats{Tilesets: make([]TilesetStats, 0, len(scope))}
	for _, ts := range scope {
		stats.Tilesets = append(stats.Tilesets, a.analyzeTileset(ctx, ts, minzoom, maxzoom, points))
	}

	return stats, nil
}

func (a *Analyzer) analyzeTileset(ctx context.Context, ts tileset.Tileset, minzoom, maxzoom *uint8, points []orb.Point) TilesetStats {
	min, max := ts.MinZoom, ts.MaxZoom
	if minzoom != nil {
		min = *minzoom
	}
	if maxzoom != nil {
		max = *maxzoom
	}

	result := TilesetStats{
		Tileset:    ts.Name,
		ZoomLevels: []ZoomStats{},
	}

	for z := int(min); z <= int(max); z++ {
		zoom := uint8(z)
		covered := make(map[maptile.Tile]struct{}, len(points))
		for _, p := range points {
			covered[maptile.At(p, maptile.Zoom(zoom))] = struct{}{}
		}

		zs := ZoomStats{
			Zoom:   zoom,
			Points: len(points),
			Tiles:  len(covered),
		}
		if a.sizer != nil {
			for tile := range covered {
				if size, ok := a.sizer.TileSize(ctx, ts.Name, zoom, tile.X, tile.Y); ok {
					zs.EstimatedBytes += size
				}
			}
		}

		result.ZoomLevels = append(result.ZoomLevels, zs)
		result.TotalTiles += zs.Tiles
		result.EstimatedBytes += zs.EstimatedBytes
	}

	return result
}
