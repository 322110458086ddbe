package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/vmunix/flickstream/internal/metrics"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org"
	defaultGenreTTL = 24 * time.Hour

	// TMDB refuses pages beyond 500.
	maxWatchlistPages = 500
)

// AuthMethod selects how the API key is sent.
type AuthMethod string

const (
	AuthAPIKey AuthMethod = "api_key" // ?api_key= query parameter
	AuthBearer AuthMethod = "bearer"  // Authorization: Bearer header (v4 read token)
)

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	auth       AuthMethod
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	breakerCfg BreakerSettings
	genres     *genreCache
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithAuthMethod selects query-parameter or bearer authentication.
func WithAuthMethod(m AuthMethod) Option {
	return func(c *Client) {
		c.auth = m
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithBreakerSettings overrides the circuit breaker tuning.
func WithBreakerSettings(s BreakerSettings) Option {
	return func(c *Client) {
		c.breakerCfg = s
	}
}

// WithGenreTTL sets how long the genre list is memoized.
func WithGenreTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.genres = newGenreCache(ttl)
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		auth:    AuthAPIKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter:    rate.NewLimiter(rate.Limit(20), 10),
		breakerCfg: DefaultBreakerSettings(),
		genres:     newGenreCache(defaultGenreTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker(c.breakerCfg, c.log)
	return c
}

// Watchlist fetches every page of an account's movie watchlist,
// newest additions first.
func (c *Client) Watchlist(ctx context.Context, accountID string) ([]WatchlistMovie, error) {
	var movies []WatchlistMovie
	for page := 1; page <= maxWatchlistPages; page++ {
		p, err := c.WatchlistPage(ctx, accountID, page)
		if err != nil {
			return nil, err
		}
		movies = append(movies, p.Results...)
		if page >= p.TotalPages {
			break
		}
	}
	if movies == nil {
		movies = []WatchlistMovie{}
	}
	return movies, nil
}

// WatchlistPage fetches a single watchlist page.
func (c *Client) WatchlistPage(ctx context.Context, accountID string, page int) (*WatchlistPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("sort_by", "created_at.desc")

	var p WatchlistPage
	path := "/3/account/" + url.PathEscape(accountID) + "/watchlist/movies"
	if err := c.getJSON(ctx, "watchlist", path, q, &p); err != nil {
		return nil, fmt.Errorf("watchlist page %d: %w", page, err)
	}
	return &p, nil
}

// WatchProviders fetches streaming availability for a movie, keyed by region.
func (c *Client) WatchProviders(ctx context.Context, movieID int64) (ProviderRegions, error) {
	var resp watchProvidersResponse
	path := fmt.Sprintf("/3/movie/%d/watch/providers", movieID)
	if err := c.getJSON(ctx, "watch_providers", path, nil, &resp); err != nil {
		return nil, fmt.Errorf("watch providers %d: %w", movieID, err)
	}
	if resp.Results == nil {
		resp.Results = ProviderRegions{}
	}
	return resp.Results, nil
}

// MovieDetails fetches movie metadata by TMDB ID.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	var movie MovieDetails
	path := fmt.Sprintf("/3/movie/%d", movieID)
	if err := c.getJSON(ctx, "movie", path, nil, &movie); err != nil {
		return nil, fmt.Errorf("movie %d: %w", movieID, err)
	}
	return &movie, nil
}

// Genres returns the movie genre names keyed by genre ID.
func (c *Client) Genres(ctx context.Context) (map[int]string, error) {
	if genres, ok := c.genres.get(); ok {
		return genres, nil
	}

	var resp genreListResponse
	if err := c.getJSON(ctx, "genres", "/3/genre/movie/list", nil, &resp); err != nil {
		return nil, fmt.Errorf("genres: %w", err)
	}
	return c.genres.set(resp.Genres), nil
}

// Ping checks connectivity and credentials with an uncached genre request.
func (c *Client) Ping(ctx context.Context) error {
	var resp genreListResponse
	return c.getJSON(ctx, "genres", "/3/genre/movie/list", nil, &resp)
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limit wait: %w", ErrUnavailable, err)
		}
	}

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, path, query)
	})
	switch {
	case isRejected(err):
		metrics.RecordUpstream(endpoint, "rejected", time.Since(start))
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case err != nil:
		metrics.RecordUpstream(endpoint, "failure", time.Since(start))
		return err
	}
	metrics.RecordUpstream(endpoint, "success", time.Since(start))

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.auth == AuthBearer {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	} else {
		query.Set("api_key", c.apiKey)
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportErr(ctx, fmt.Errorf("%w: execute request: %w", ErrUnavailable, err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(ctx, fmt.Errorf("%w: read response: %w", ErrUnavailable, err))
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var status statusResponse
	if json.Unmarshal(body, &status) == nil {
		apiErr.Message = status.StatusMessage
	}
	err = fmt.Errorf("%w: %w", ErrUnavailable, apiErr)
	if isOutageStatus(resp.StatusCode) {
		return nil, &outageError{err: err}
	}
	return nil, err
}

// transportErr marks err as an outage unless the caller's context ended
// first. The client's own timeout still counts.
func transportErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}
	return &outageError{err: err}
}

// IsUnavailable reports whether err means TMDB could not serve the request,
// as opposed to a definitive answer like not found.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
