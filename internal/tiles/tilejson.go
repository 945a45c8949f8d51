package tiles

import (
	"encoding/json"
	"fmt"

	"tilegate/internal/tileset"
)

// The document builders are pure functions of (tileset definition, derived
// base URL); they know nothing about the transport that produced the base
// URL.

type tileJSON struct {
	TileJSON    string    `json:"tilejson"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Attribution string    `json:"attribution,omitempty"`
	Scheme      string    `json:"scheme"`
	Format      string    `json:"format"`
	MinZoom     uint8     `json:"minzoom"`
	MaxZoom     uint8     `json:"maxzoom"`
	Center      []float64 `json:"center,omitempty"`
	Tiles       []string  `json:"tiles"`
}

// BuildTileJSON assembles the TileJSON document for one tileset with tile
// URLs rooted at baseURL.
func BuildTileJSON(baseURL string, ts tileset.Tileset) (json.RawMessage, error) {
	doc := tileJSON{
		TileJSON:    "2.2.0",
		Name:        ts.Name,
		Description: ts.Description,
		Attribution: ts.Attribution,
		Scheme:      "xyz",
		Format:      "pbf",
		MinZoom:     ts.MinZoom,
		MaxZoom:     ts.MaxZoom,
		Center:      ts.Center,
		Tiles:       []string{fmt.Sprintf("%s/%s/{z}/{x}/{y}.pbf", baseURL, ts.Name)},
	}
	return json.Marshal(doc)
}

// BuildStyleJSON assembles a minimal Mapbox GL style document referencing
// the tileset as a vector source, with glyph URLs served by this gateway.
func BuildStyleJSON(baseURL string, ts tileset.Tileset) (json.RawMessage, error) {
	doc := map[string]interface{}{
		"version": 8,
		"name":    ts.Name,
		"glyphs":  baseURL + "/fonts/{fontstack}/{range}.pbf",
		"sources": map[string]interface{}{
			ts.Name: map[string]interface{}{
				"type": "vector",
				"url":  fmt.Sprintf("%s/%s.json", baseURL, ts.Name),
			},
		},
		"layers": []interface{}{
			map[string]interface{}{
				"id":    "background",
				"type":  "background",
				"paint": map[string]interface{}{"background-color": "#ffffff"},
			},
		},
	}
	return json.Marshal(doc)
}

// BuildIndexMetadata assembles the catalog document listing every
// configured tileset.
func BuildIndexMetadata(registry *tileset.Registry) (json.RawMessage, error) {
	doc := map[string]interface{}{
		"tilesets": registry.List(),
	}
	return json.Marshal(doc)
}
