package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Bind          string
	Port          int
	CatalogPath   string
	TileBackend   string
	TileDir       string
	UpstreamURL   string
	CacheMaxAge   int
	Viewer        bool
	AllowedOrigin string
	LogLevel      string
}

// Catalog is the startup document describing the configured tilesets and
// static mounts. It is read once; the tables derived from it are immutable
// for the process lifetime.
type Catalog struct {
	Tilesets []TilesetConfig `yaml:"tilesets"`
	Static   []StaticMount   `yaml:"static"`
}

type TilesetConfig struct {
	Name        string    `yaml:"name"`
	MinZoom     *uint8    `yaml:"minzoom"`
	MaxZoom     *uint8    `yaml:"maxzoom"`
	Attribution string    `yaml:"attribution"`
	Description string    `yaml:"description"`
	Center      []float64 `yaml:"center"`
}

// StaticMount maps a URL path prefix to a filesystem directory.
type StaticMount struct {
	Path string `yaml:"path"`
	Dir  string `yaml:"dir"`
}

func Load() *Config {
	cfg := &Config{
		Bind:          getEnv("BIND", "127.0.0.1"),
		Port:          getEnvInt("PORT", 6767),
		CatalogPath:   getEnv("CATALOG", "catalog.yaml"),
		TileBackend:   getEnv("TILE_BACKEND", "file"),
		TileDir:       getEnv("TILE_DIR", "/data/tiles"),
		UpstreamURL:   getEnv("UPSTREAM_URL", ""),
		CacheMaxAge:   getEnvInt("CACHE_MAX_AGE", 300),
		Viewer:        getEnvBool("VIEWER", true),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// LoadCatalog parses the YAML tileset catalog at path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	for i, ts := range catalog.Tilesets {
		if ts.Name == "" {
			return nil, fmt.Errorf("catalog tileset %d has no name", i)
		}
	}

	return &catalog, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
