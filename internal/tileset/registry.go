package tileset

import (
	"fmt"

	"go.uber.org/zap"

	"tilegate/internal/config"
)

// Default zoom bounds applied when the catalog omits them.
const (
	DefaultMinZoom uint8 = 0
	DefaultMaxZoom uint8 = 22
)

// Tileset is one configured tile source. The set of tilesets is fixed at
// process start and never mutated, so a Registry is safe for concurrent
// reads without locking.
type Tileset struct {
	Name        string    `json:"name"`
	MinZoom     uint8     `json:"minzoom"`
	MaxZoom     uint8     `json:"maxzoom"`
	Attribution string    `json:"attribution,omitempty"`
	Description string    `json:"description,omitempty"`
	Center      []float64 `json:"center,omitempty"`
}

type Registry struct {
	ordered []Tileset
	byName  map[string]Tileset
}

// NewRegistry builds the tileset table from the catalog. Duplicate names
// are a configuration error.
func NewRegistry(catalog *config.Catalog, logger *zap.Logger) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Tileset, len(catalog.Tilesets)),
	}

	for _, tc := range catalog.Tilesets {
		if _, exists := r.byName[tc.Name]; exists {
			return nil, fmt.Errorf("duplicate tileset name: %s", tc.Name)
		}

		ts := Tileset{
			Name:        tc.Name,
			MinZoom:     DefaultMinZoom,
			MaxZoom:     DefaultMaxZoom,
			Attribution: tc.Attribution,
			Description: tc.Description,
			Center:      tc.Center,
		}
		if tc.MinZoom != nil {
			ts.MinZoom = *tc.MinZoom
		}
		if tc.MaxZoom != nil {
			ts.MaxZoom = *tc.MaxZoom
		}
		if ts.MinZoom > ts.MaxZoom {
			return nil, fmt.Errorf("tileset %s: minzoom %d exceeds maxzoom %d", ts.Name, ts.MinZoom, ts.MaxZoom)
		}

		r.byName[ts.Name] = ts
		r.ordered = append(r.ordered, ts)

		logger.Info("Registered tileset",
			zap.String("name", ts.Name),
			zap.Uint8("minzoom", ts.MinZoom),
			zap.Uint8("maxzoom", ts.MaxZoom),
		)
	}

	return r, nil
}

// Get returns the tileset with the given name.
func (r *Registry) Get(name string) (Tileset, bool) {
	ts, ok := r.byName[name]
	return ts, ok
}

// List returns all tilesets in catalog declaration order.
func (r *Registry) List() []Tileset {
	out := make([]Tileset, len(r.ordered))
	copy(out, r.ordered)
	return out
}
