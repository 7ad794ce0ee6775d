// Package radiodir provides a client for the radio-browser.info station
// directory, with a read-through cache so browsing does not hammer the
// community servers.
package radiodir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is one of the community radio-browser mirrors.
	DefaultBaseURL = "https://de1.api.radio-browser.info"

	// DefaultUserAgent identifies the app per radio-browser guidelines.
	DefaultUserAgent = "chorus-mpd-backend/0.3 (https://github.com/chorus-player/chorus-mpd-backend)"

	// DefaultRateLimit is 1 request per second.
	DefaultRateLimit = 1

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 15 * time.Second
)

// Station is one directory entry.
type Station struct {
	UUID        string `json:"stationuuid"`
	Name        string `json:"name"`
	URL         string `json:"url_resolved"`
	Homepage    string `json:"homepage"`
	Favicon     string `json:"favicon"`
	Country     string `json:"country"`
	CountryCode string `json:"countrycode"`
	Tags        string `json:"tags"`
	Codec       string `json:"codec"`
	Bitrate     int    `json:"bitrate"`
}

// Country is one directory country with its station count.
type Country struct {
	Name         string `json:"name"`
	Code         string `json:"iso_3166_1"`
	StationCount int    `json:"stationcount"`
}

// Cache is the persistence surface for directory responses.
type Cache interface {
	GetCached(key string, maxAge time.Duration) (payload string, ok bool, err error)
	PutCached(key, payload string) error
}

// Client is a radio-browser API client.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rateLimiter
	cache      Cache
	cacheTTL   time.Duration
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithCache enables the read-through cache with the given TTL.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithRateLimit sets the rate limit in requests per second.
func WithRateLimit(rps int) Option {
	return func(c *Client) { c.limiter = newRateLimiter(rps) }
}

// NewClient creates a radio-browser client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limiter == nil {
		c.limiter = newRateLimiter(DefaultRateLimit)
	}
	return c
}

// SearchStations queries the directory by name and optional country code.
func (c *Client) SearchStations(ctx context.Context, name, countryCode string, limit int) ([]Station, error) {
	if limit <= 0 {
		limit = 50
	}
	params := url.Values{}
	params.Set("name", name)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("hidebroken", "true")
	params.Set("order", "clickcount")
	params.Set("reverse", "true")
	if countryCode != "" {
		params.Set("countrycode", countryCode)
	}

	key := "stations:" + params.Encode()
	var stations []Station
	if err := c.fetch(ctx, "/json/stations/search?"+params.Encode(), key, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

// TopStations returns the most clicked stations.
func (c *Client) TopStations(ctx context.Context, limit int) ([]Station, error) {
	if limit <= 0 {
		limit = 50
	}
	var stations []Station
	path := fmt.Sprintf("/json/stations/topclick/%d", limit)
	if err := c.fetch(ctx, path, "top:"+strconv.Itoa(limit), &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

// Countries lists the directory's countries.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var countries []Country
	if err := c.fetch(ctx, "/json/countries", "countries", &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// fetch performs one GET, consulting the cache first and writing it back on
// success. Cache failures degrade to a live request.
func (c *Client) fetch(ctx context.Context, path, cacheKey string, out any) error {
	if c.cache != nil {
		payload, ok, err := c.cache.GetCached(cacheKey, c.cacheTTL)
		if err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Radio cache read failed")
		} else if ok {
			return json.Unmarshal([]byte(payload), out)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.PutCached(cacheKey, string(raw)); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Radio cache write failed")
		}
	}
	return nil
}

// rateLimiter spaces requests out to at most one per interval.
type rateLimiter struct {
	mu          sync.Mutex
	interval    time.Duration
	lastRequest time.Time
}

func newRateLimiter(requestsPerSecond int) *rateLimiter {
	return &rateLimiter{
		interval: time.Second / time.Duration(requestsPerSecond),
	}
}

// Wait blocks until a request can be made.
func (r *rateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	nextAllowed := r.lastRequest.Add(r.interval)

	if now.Before(nextAllowed) {
		select {
		case <-time.After(nextAllowed.Sub(now)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.lastRequest = time.Now()
	return nil
}
