// Package aqicn provides a client for the World Air Quality Index (AQICN) feed API.
package aqicn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the AQICN API.
	DefaultBaseURL = "https://api.waqi.info"

	// ProviderName identifies this provider.
	ProviderName = "aqicn"
)

// ErrMissingToken is returned when the client has no API token.
var ErrMissingToken = errors.New("aqicn: token not configured")

// ClientConfig holds configuration for the AQICN client.
type ClientConfig struct {
	// Token is the AQICN API token (required).
	Token string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient executes requests. If nil, a resilient client is created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an AQICN API client.
type Client struct {
	token      string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new AQICN client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		token:      cfg.Token,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the provider's source tag.
func (c *Client) Name() airquality.Source {
	return airquality.SourceAQICN
}

// API response types.

type feedResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type feedData struct {
	AQI  json.RawMessage `json:"aqi"`
	City struct {
		Name string    `json:"name"`
		Geo  []float64 `json:"geo"`
	} `json:"city"`
	IAQI map[string]struct {
		V json.RawMessage `json:"v"`
	} `json:"iaqi"`
	Time struct {
		ISO string `json:"iso"`
		V   int64  `json:"v"`
	} `json:"time"`
}

// FetchCurrent retrieves the current feed for a city.
func (c *Client) FetchCurrent(ctx context.Context, city string) (*airquality.Fetch, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	endpoint := fmt.Sprintf("%s/feed/%s/?token=%s", c.baseURL, url.PathEscape(city), url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AQICN HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed response: %w", err)
	}

	var result feedResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	if result.Status != "ok" {
		var msg string
		_ = json.Unmarshal(result.Data, &msg)
		if strings.Contains(strings.ToLower(msg), "unknown station") {
			return nil, fmt.Errorf("%w: %s", airquality.ErrCityNotFound, city)
		}
		return nil, fmt.Errorf("AQICN status %q: %s", result.Status, msg)
	}

	var data feedData
	if err := json.Unmarshal(result.Data, &data); err != nil {
		return nil, fmt.Errorf("decode feed data: %w", err)
	}

	return &airquality.Fetch{
		Reading: toReading(city, &data),
		Raw:     map[string][]byte{"feed": raw},
	}, nil
}

// toReading converts API feed data to a domain Reading.
func toReading(city string, d *feedData) *airquality.Reading {
	reading := &airquality.Reading{
		RecordedAt:  time.Now(),
		City:        city,
		Zone:        airquality.ZoneAll,
		PM25:        d.value("pm25"),
		PM10:        d.value("pm10"),
		NO2:         d.value("no2"),
		O3:          d.value("o3"),
		SO2:         d.value("so2"),
		CO:          d.value("co"),
		Temperature: d.value("t"),
		Humidity:    d.value("h"),
		WindSpeed:   d.value("w"),
		Source:      airquality.SourceAQICN,
	}

	if v := number(d.AQI); v != nil {
		aqi := int(*v)
		reading.AQI = &aqi
	}

	if d.Time.ISO != "" {
		if t, err := time.Parse(time.RFC3339, d.Time.ISO); err == nil {
			reading.RecordedAt = t
		}
	} else if d.Time.V > 0 {
		reading.RecordedAt = time.Unix(d.Time.V, 0)
	}

	return reading
}

func (d *feedData) value(key string) *float64 {
	entry, ok := d.IAQI[key]
	if !ok {
		return nil
	}
	return number(entry.V)
}

// number decodes a JSON number, also accepting numeric strings. The feed
// reports "-" when a station has no value.
func number(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

// Ensure Client implements airquality.Provider.
var _ airquality.Provider = (*Client)(nil)
