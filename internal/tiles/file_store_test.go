package tiles

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tilegate/internal/config"
	"tilegate/internal/tileset"
)

func zoom(z uint8) *uint8 { return &z }

func testRegistry(t *testing.T) *tileset.Registry {
	t.Helper()

	catalog := &config.Catalog{
		Tilesets: []config.TilesetConfig{
			{Name: "roads", MinZoom: zoom(0), MaxZoom: zoom(14), Attribution: "test data"},
		},
	}
	registry, err := tileset.NewRegistry(catalog, zap.NewNop())
	require.NoError(t, err)
	return registry
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func writeTile(t *testing.T, dir, ts string, z, x, y int, data []byte) {
	t.Helper()

	tileDir := filepath.Join(dir, ts, strconv.Itoa(z), strconv.Itoa(x))
	require.NoError(t, os.MkdirAll(tileDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tileDir, strconv.Itoa(y)+".pbf"), data, 0644))
}

func testStore(t *testing.T) (*FileStore, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := NewFileStore(dir, testRegistry(t))
	require.NoError(t, err)
	return store, dir
}

func TestFileStoreGzipDetection(t *testing.T) {
	store, dir := testStore(t)
	stored := gzipBytes(t, []byte("tile-payload"))
	writeTile(t, dir, "roads", 3, 1, 2, stored)

	tile, err := store.GetTile(context.Background(), "roads", 3, 1, 2, true)
	require.NoError(t, err)
	require.NotNil(t, tile)
	assert.True(t, tile.Gzipped)
	assert.Equal(t, stored, tile.Data)
}

func TestFileStorePlainTile(t *testing.T) {
	store, dir := testStore(t)
	writeTile(t, dir, "roads", 3, 1, 2, []byte("raw-tile"))

	tile, err := store.GetTile(context.Background(), "roads", 3, 1, 2, true)
	require.NoError(t, err)
	require.NotNil(t, tile)
	assert.False(t, tile.Gzipped)
}

func TestFileStoreAbsentTile(t *testing.T) {
	store, _ := testStore(t)

	// Absence is a valid outcome, not an error.
	tile, err := store.GetTile(context.Background(), "roads", 3, 1, 2, true)
	require.NoError(t, err)
	assert.Nil(t, tile)
}

func TestFileStoreTileSize(t *testing.T) {
	store, dir := testStore(t)
	writeTile(t, dir, "roads", 3, 1, 2, []byte("12345"))

	size, ok := store.TileSize(context.Background(), "roads", 3, 1, 2)
	require.True(t, ok)
	assert.Equal(t, int64(5), size)

	_, ok = store.TileSize(context.Background(), "roads", 3, 1, 3)
	assert.False(t, ok)
}

func TestFileStoreStoredMetadata(t *testing.T) {
	store, dir := testStore(t)
	doc := []byte(`{"name":"roads","format":"pbf"}`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "roads"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roads", "metadata.json"), doc, 0644))

	got, err := store.GetMetadata(context.Background(), "roads")
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(got))
}

func TestFileStoreSynthesizedMetadata(t *testing.T) {
	store, _ := testStore(t)

	got, err := store.GetMetadata(context.Background(), "roads")
	require.NoError(t, err)

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(got, &meta))
	assert.Equal(t, "roads", meta["name"])
}

func TestFileStoreMissingDirectory(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "nope"), testRegistry(t))
	assert.Error(t, err)
}
