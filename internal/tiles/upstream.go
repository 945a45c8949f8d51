package tiles

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tilegate/internal/tileset"
)

// UpstreamService adapts a remote render/cache service speaking the same
// z/x/y HTTP scheme. No timeout is imposed beyond the request context; a
// stalled upstream stalls only the request that hit it.
type UpstreamService struct {
	baseURL  string
	client   *http.Client
	registry *tileset.Registry
}

func NewUpstreamService(baseURL string, registry *tileset.Registry) (*UpstreamService, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("upstream URL not configured")
	}

	return &UpstreamService{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{},
		registry: registry,
	}, nil
}

// GetTile fetches one tile. When preferGzip is set the upstream is asked
// for a gzip payload; setting Accept-Encoding explicitly also disables the
// transport's transparent decompression, so compressed bytes arrive as
// stored.
func (s *UpstreamService) GetTile(ctx context.Context, ts string, z uint8, x, y uint32, preferGzip bool) (*Tile, error) {
	url := fmt.Sprintf("%s/%s/%d/%d/%d.pbf", s.baseURL, ts, z, x, y)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tile request: %w", err)
	}
	if preferGzip {
		req.Header.Set("Accept-Encoding", "gzip")
	} else {
		req.Header.Set("Accept-Encoding", "identity")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tile request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusNotFound:
		return nil, nil
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read tile body: %w", err)
		}
		gzipped := strings.Contains(resp.Header.Get("Content-Encoding"), "gzip") || isGzip(data)
		return &Tile{Data: data, Gzipped: gzipped}, nil
	default:
		return nil, fmt.Errorf("upstream returned status %d for %s", resp.StatusCode, url)
	}
}

func (s *UpstreamService) GetMetadata(ctx context.Context, ts string) (json.RawMessage, error) {
	return s.fetchJSON(ctx, fmt.Sprintf("%s/%s/metadata.json", s.baseURL, ts))
}

// GetTileJSON and GetStyleJSON are assembled locally: the documents must
// carry this gateway's base URL, not the upstream's.
func (s *UpstreamService) GetTileJSON(ctx context.Context, baseURL, name string) (json.RawMessage, error) {
	ts, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tileset: %s", name)
	}
	return BuildTileJSON(baseURL, ts)
}

func (s *UpstreamService) GetStyleJSON(ctx context.Context, baseURL, name string) (json.RawMessage, error) {
	ts, ok := s.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tileset: %s", name)
	}
	return BuildStyleJSON(baseURL, ts)
}

func (s *UpstreamService) GetIndexMetadata(ctx context.Context) (json.RawMessage, error) {
	return BuildIndexMetadata(s.registry)
}

func (s *UpstreamService) fetchJSON(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("upstream returned invalid JSON for %s", url)
	}

	return data, nil
}
