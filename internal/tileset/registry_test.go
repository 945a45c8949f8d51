package tileset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tilegate/internal/config"
)

func zoom(z uint8) *uint8 { return &z }

func TestRegistryDefaults(t *testing.T) {
	catalog := &config.Catalog{
		Tilesets: []config.TilesetConfig{{Name: "roads"}},
	}

	r, err := NewRegistry(catalog, zap.NewNop())
	require.NoError(t, err)

	ts, ok := r.Get("roads")
	require.True(t, ok)
	assert.Equal(t, DefaultMinZoom, ts.MinZoom)
	assert.Equal(t, DefaultMaxZoom, ts.MaxZoom)
}

func TestRegistryOrderPreserved(t *testing.T) {
	catalog := &config.Catalog{
		Tilesets: []config.TilesetConfig{
			{Name: "zeta"},
			{Name: "alpha"},
		},
	}

	r, err := NewRegistry(catalog, zap.NewNop())
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "zeta", list[0].Name)
	assert.Equal(t, "alpha", list[1].Name)
}

func TestRegistryDuplicateName(t *testing.T) {
	catalog := &config.Catalog{
		Tilesets: []config.TilesetConfig{{Name: "roads"}, {Name: "roads"}},
	}

	_, err := NewRegistry(catalog, zap.NewNop())
	assert.Error(t, err)
}

func TestRegistryInvertedBounds(t *testing.T) {
	catalog := &config.Catalog{
		Tilesets: []config.TilesetConfig{{Name: "roads", MinZoom: zoom(10), MaxZoom: zoom(2)}},
	}

	_, err := NewRegistry(catalog, zap.NewNop())
	assert.Error(t, err)
}

func TestRegistryUnknownName(t *testing.T) {
	r, err := NewRegistry(&config.Catalog{}, zap.NewNop())
	require.NoError(t, err)

	_, ok := r.Get("nope")
	assert.False(t, ok)
}
