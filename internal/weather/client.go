// Package weather proxies the OpenWeatherMap current-conditions API and
// reshapes the upstream payload into the flat structure the frontend expects.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hingan-ai/agri-api/internal/logutil"
	"github.com/hingan-ai/agri-api/internal/metrics"
)

// ErrNotFound marks any non-200 upstream response. The handler maps it to a
// 404 regardless of what the upstream actually returned.
var ErrNotFound = errors.New("location not found")

// Report is the reshaped weather payload.
type Report struct {
	Location      string  `json:"location"`
	Country       string  `json:"country"`
	Temperature   float64 `json:"temperature"`
	FeelsLike     float64 `json:"feels_like"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	Description   string  `json:"description"`
	Icon          string  `json:"icon"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection float64 `json:"wind_direction"`
	VisibilityKm  float64 `json:"visibility"`
	Timestamp     string  `json:"timestamp"`
}

// upstreamResponse covers the subset of the OpenWeatherMap payload we use.
type upstreamResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Visibility float64 `json:"visibility"`
}

// Client fetches current conditions, optionally through a Redis read-through
// cache keyed by lowercase location.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	cache redis.UniversalClient
	ttl   time.Duration
}

// Options configures the client.
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// Cache is optional; nil disables caching.
	Cache    redis.UniversalClient
	CacheTTL time.Duration
}

// New builds a weather client. An empty API key is allowed; Current reports
// it at call time so the rest of the service still starts.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		cache:      opts.Cache,
		ttl:        opts.CacheTTL,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Current returns the reshaped conditions for a location.
func (c *Client) Current(ctx context.Context, location string) (*Report, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("weather API key not configured")
	}

	cacheKey := "weather:" + strings.ToLower(strings.TrimSpace(location))
	if cached := c.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/weather?q=%s&appid=%s&units=metric",
		c.baseURL, url.QueryEscape(location), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrNotFound
	}

	var upstream upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&upstream); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	report := &Report{
		Location:      upstream.Name,
		Country:       upstream.Sys.Country,
		Temperature:   upstream.Main.Temp,
		FeelsLike:     upstream.Main.FeelsLike,
		Humidity:      upstream.Main.Humidity,
		Pressure:      upstream.Main.Pressure,
		WindSpeed:     upstream.Wind.Speed,
		WindDirection: upstream.Wind.Deg,
		VisibilityKm:  upstream.Visibility / 1000,
		Timestamp:     time.Now().Format(time.RFC3339),
	}
	if len(upstream.Weather) > 0 {
		report.Description = titleCase(upstream.Weather[0].Description)
		report.Icon = upstream.Weather[0].Icon
	}

	c.toCache(ctx, cacheKey, report)
	return report, nil
}

func (c *Client) fromCache(ctx context.Context, key string) *Report {
	if c.cache == nil {
		return nil
	}
	raw, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		metrics.ObserveWeatherCache(false)
		return nil
	}
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		metrics.ObserveWeatherCache(false)
		return nil
	}
	metrics.ObserveWeatherCache(true)
	return &report
}

func (c *Client) toCache(ctx context.Context, key string, report *Report) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logutil.Warn("weather cache write failed", err, map[string]interface{}{"key": key})
	}
}

// titleCase capitalizes each word, matching how the upstream description is
// presented to users.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
