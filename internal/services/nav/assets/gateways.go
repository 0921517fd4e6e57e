package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Lookup service status markers carried in the response envelope.
const (
	StatusExact = 200
	StatusFuzzy = 101
)

// LookupRecord is one record from the lookup service. Exact responses carry a
// single fully-populated record; fuzzy responses carry name-only candidates.
type LookupRecord struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
	Path string `json:"path"`
}

// LookupResponse is the lookup service's response envelope.
type LookupResponse struct {
	Status  int            `json:"status"`
	Records []LookupRecord `json:"data"`
}

// LookupGateway resolves an image name against the remote lookup service.
type LookupGateway interface {
	Lookup(ctx context.Context, name string) (LookupResponse, error)
}

// AssetFetcher retrieves raw binary payloads by CDN path.
type AssetFetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Doer is the injected HTTP client capability.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPLookupGateway queries the lookup endpoint over HTTP.
type HTTPLookupGateway struct {
	Endpoint string
	Client   Doer
}

var _ LookupGateway = (*HTTPLookupGateway)(nil)

func (g *HTTPLookupGateway) Lookup(ctx context.Context, name string) (LookupResponse, error) {
	u, err := url.Parse(g.Endpoint)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("parse lookup endpoint: %w", err)
	}
	query := u.Query()
	query.Set("name", name)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("build lookup request: %w", err)
	}

	res, err := g.Client.Do(req)
	if err != nil {
		return LookupResponse{}, fmt.Errorf("lookup request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return LookupResponse{}, fmt.Errorf("lookup request: unexpected http status %d", res.StatusCode)
	}

	var envelope LookupResponse
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return LookupResponse{}, fmt.Errorf("decode lookup response: %w", err)
	}
	return envelope, nil
}

// CDNFetcher retrieves binary payloads from the asset CDN. Requests carry
// no-cache headers and a timestamp query so intermediate caches never serve a
// stale payload for an updated hash.
type CDNFetcher struct {
	BaseURL string
	Client  Doer
}

var _ AssetFetcher = (*CDNFetcher)(nil)

func (f *CDNFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	u := f.BaseURL + path + "?_=" + strconv.FormatInt(time.Now().UnixMilli(), 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build asset request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	res, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("asset request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset request: unexpected http status %d", res.StatusCode)
	}

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read asset payload: %w", err)
	}
	return payload, nil
}
