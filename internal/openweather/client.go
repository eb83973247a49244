// Package openweather is a minimal client for the OpenWeather current weather API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production OpenWeather API endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

const maxResponseSize = 256 * 1024

// Client fetches current conditions. It is safe for concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	units   string
	http    *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithUnits selects "metric", "imperial", or "standard". Default is metric.
func WithUnits(units string) Option {
	return func(c *Client) {
		c.units = units
	}
}

// New creates an OpenWeather client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		units:   "metric",
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Condition is one entry of the "weather" array.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// Current is the subset of the current weather response the assistant reports.
type Current struct {
	Name    string      `json:"name"`
	Weather []Condition `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// Description returns the first condition description, or "" if none.
func (c *Current) Description() string {
	if len(c.Weather) == 0 {
		return ""
	}
	return c.Weather[0].Description
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openweather: %s", e.Status)
	}
	return fmt.Sprintf("openweather: %s: %s", e.Status, e.Message)
}

// NotFound reports whether the API did not recognize the location.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// CurrentWeather returns the current conditions for a city name.
func (c *Client) CurrentWeather(ctx context.Context, city string) (*Current, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Message: body.Message}
	}

	var out Current
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("openweather: decode response: %w", err)
	}
	return &out, nil
}
