package tiles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamGetTile(t *testing.T) {
	stored := gzipBytes(t, []byte("tile-payload"))

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/roads/3/1/2.pbf":
			assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Set("Content-Type", "application/x-protobuf")
			w.Write(stored)
		case "/roads/3/9/9.pbf":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer upstream.Close()

	svc, err := NewUpstreamService(upstream.URL, testRegistry(t))
	require.NoError(t, err)

	tile, err := svc.GetTile(context.Background(), "roads", 3, 1, 2, true)
	require.NoError(t, err)
	require.NotNil(t, tile)
	assert.True(t, tile.Gzipped)
	assert.Equal(t, stored, tile.Data, "stored bytes must arrive without transparent decompression")

	// 204 from upstream is an absent tile, not an error.
	tile, err = svc.GetTile(context.Background(), "roads", 3, 9, 9, true)
	require.NoError(t, err)
	assert.Nil(t, tile)

	// Anything else is an upstream failure.
	_, err = svc.GetTile(context.Background(), "roads", 4, 0, 0, true)
	assert.Error(t, err)
}

func TestUpstreamGetMetadata(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/roads/metadata.json" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"name":"roads"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	svc, err := NewUpstreamService(upstream.URL, testRegistry(t))
	require.NoError(t, err)

	doc, err := svc.GetMetadata(context.Background(), "roads")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"roads"}`, string(doc))

	_, err = svc.GetMetadata(context.Background(), "missing")
	assert.Error(t, err)
}

func TestUpstreamTileJSONUsesGatewayBase(t *testing.T) {
	svc, err := NewUpstreamService("http://render.internal:6767", testRegistry(t))
	require.NoError(t, err)

	doc, err := svc.GetTileJSON(context.Background(), "https://gateway.example.com", "roads")
	require.NoError(t, err)
	assert.Contains(t, string(doc), "https://gateway.example.com/roads/{z}/{x}/{y}.pbf")
	assert.NotContains(t, string(doc), "render.internal")
}

func TestUpstreamRequiresURL(t *testing.T) {
	_, err := NewUpstreamService("", testRegistry(t))
	assert.Error(t, err)
}
