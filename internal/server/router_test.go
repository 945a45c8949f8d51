package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteLiteralMatch(t *testing.T) {
	rt := newRoute("/index.json", nil)

	_, ok := rt.match("/index.json")
	assert.True(t, ok)

	_, ok = rt.match("/other.json")
	assert.False(t, ok)
}

func TestRouteParamExtraction(t *testing.T) {
	rt := newRoute("/fonts/{stack}/{range}.pbf", nil)

	p, ok := rt.match("/fonts/Open%20Sans,Arial/0-255.pbf")
	require.True(t, ok)
	assert.Equal(t, "Open%20Sans,Arial", p["stack"])
	assert.Equal(t, "0-255", p["range"])

	_, ok = rt.match("/fonts/Open%20Sans/0-255.txt")
	assert.False(t, ok, "suffix must match literally")
}

func TestRouteSuffixInSegment(t *testing.T) {
	rt := newRoute("/{tileset}.style.json", nil)

	p, ok := rt.match("/roads.style.json")
	require.True(t, ok)
	assert.Equal(t, "roads", p["tileset"])

	_, ok = rt.match("/.style.json")
	assert.False(t, ok, "placeholder must be non-empty")
}

func TestRouteNumericSegments(t *testing.T) {
	rt := newRoute("/{tileset}/{z:int}/{x:int}/{y:int}.pbf", nil)

	p, ok := rt.match("/roads/3/1/2.pbf")
	require.True(t, ok)
	assert.Equal(t, "roads", p["tileset"])
	assert.Equal(t, "3", p["z"])
	assert.Equal(t, "1", p["x"])
	assert.Equal(t, "2", p["y"])

	// Typed extraction: non-numeric coordinates do not match, so the
	// request can fall through to later templates and the static
	// fallback.
	_, ok = rt.match("/roads/low/1/2.pbf")
	assert.False(t, ok)
	_, ok = rt.match("/roads/3/1/-2.pbf")
	assert.False(t, ok)
}

func TestRouteLengthMismatch(t *testing.T) {
	rt := newRoute("/{tileset}/metadata.json", nil)

	_, ok := rt.match("/roads/extra/metadata.json")
	assert.False(t, ok)
	_, ok = rt.match("/metadata.json")
	assert.False(t, ok)
}
