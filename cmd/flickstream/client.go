package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/flickstream/internal/tmdb"
	"github.com/vmunix/flickstream/internal/watchlist"
)

// Client wraps HTTP calls to the flickstream server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new flickstream API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			// A cold view fans out to TMDB for every movie.
			Timeout: 60 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	var parsed struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		apiErr.Code = parsed.Code
		apiErr.Message = parsed.Error
	}
	return apiErr
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", reader)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// API response types not exported by the server packages.

type ProviderEntry struct {
	Results  tmdb.ProviderRegions `json:"results"`
	CachedAt time.Time            `json:"cached_at"`
	Stale    bool                 `json:"stale,omitempty"`
}

type ProvidersResponse struct {
	Providers   map[int64]ProviderEntry `json:"providers"`
	Unavailable []int64                 `json:"unavailable"`
}

type ClearResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Deleted map[string]int64 `json:"rows_deleted"`
}

type StatusResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Region   string `json:"region"`
	Uptime   string `json:"uptime"`
}

// ViewParams are the filter and sort options for View.
type ViewParams struct {
	Region     string
	Query      string
	Genre      string
	Providers  []string
	MaxRuntime int
	Sort       string
	Desc       bool
}

func (p ViewParams) encode() string {
	params := url.Values{}
	if p.Region != "" {
		params.Set("region", p.Region)
	}
	if p.Query != "" {
		params.Set("q", p.Query)
	}
	if p.Genre != "" {
		params.Set("genre", p.Genre)
	}
	if len(p.Providers) > 0 {
		params.Set("provider", strings.Join(p.Providers, ","))
	}
	if p.MaxRuntime > 0 {
		params.Set("max_runtime", strconv.Itoa(p.MaxRuntime))
	}
	if p.Sort != "" {
		params.Set("sort", p.Sort)
	}
	if p.Desc {
		params.Set("order", "desc")
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

// View fetches the enriched, filtered watchlist.
func (c *Client) View(p ViewParams) (*watchlist.View, error) {
	var resp watchlist.View
	if err := c.get("/api/v1/view"+p.encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Providers fetches watch providers for the given movies.
func (c *Client) Providers(ids []int64) (*ProvidersResponse, error) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	var resp ProvidersResponse
	if err := c.get("/api/v1/providers?ids="+strings.Join(parts, ","), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Services fetches the streaming services available for region.
func (c *Client) Services(region string) (*watchlist.Services, error) {
	path := "/api/v1/streaming-services"
	if region != "" {
		path += "?region=" + url.QueryEscape(region)
	}
	var resp watchlist.Services
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CacheStats fetches per-table cache statistics.
func (c *Client) CacheStats() (*watchlist.CacheStats, error) {
	var resp watchlist.CacheStats
	if err := c.get("/api/v1/cache/stats", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearCache empties every cache table.
func (c *Client) ClearCache() (*ClearResponse, error) {
	var resp ClearResponse
	if err := c.post("/api/v1/cache/clear", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status fetches server health.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
