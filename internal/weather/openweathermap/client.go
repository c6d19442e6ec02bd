// Package openweathermap provides a client for the OpenWeather geocoding,
// air pollution and current weather APIs.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/provider/resilience"
	"github.com/smartcity/smartcity/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeather data API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// DefaultGeoURL is the OpenWeather geocoding API base URL.
	DefaultGeoURL = "https://api.openweathermap.org/geo/1.0"
)

// ClientConfig holds configuration for the OpenWeather client.
type ClientConfig struct {
	// APIKey is the OpenWeather API key (required).
	APIKey string

	// BaseURL is the data API URL (optional, defaults to DefaultBaseURL).
	BaseURL string

	// GeoURL is the geocoding API URL (optional, defaults to DefaultGeoURL).
	GeoURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeather API client.
type Client struct {
	apiKey     string
	baseURL    string
	geoURL     string
	httpClient *resilience.Client
	logger     zerolog.Logger

	mu        sync.RWMutex
	locations map[string]weather.Location
}

// NewClient creates a new OpenWeather client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	geoURL := cfg.GeoURL
	if geoURL == "" {
		geoURL = DefaultGeoURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		geoURL:     strings.TrimSuffix(geoURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
		locations:  make(map[string]weather.Location),
	}
}

// Name returns the provider's source tag.
func (c *Client) Name() airquality.Source {
	return airquality.SourceOpenWeather
}

// Geocode resolves a city name to coordinates. Results are cached for the
// lifetime of the client.
func (c *Client) Geocode(ctx context.Context, city string) (*weather.Location, []byte, error) {
	key := strings.ToLower(strings.TrimSpace(city))

	c.mu.RLock()
	loc, ok := c.locations[key]
	c.mu.RUnlock()
	if ok {
		return &loc, nil, nil
	}

	endpoint := fmt.Sprintf("%s/direct?q=%s&limit=1&appid=%s",
		c.geoURL, url.QueryEscape(city), url.QueryEscape(c.apiKey))

	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("geocoding %q: %w", city, err)
	}

	var results []geocodeResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, nil, fmt.Errorf("decoding geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, raw, fmt.Errorf("%w: %s", weather.ErrLocationNotFound, city)
	}

	loc = weather.Location{
		Name:    results[0].Name,
		Country: results[0].Country,
		Lat:     results[0].Lat,
		Lon:     results[0].Lon,
	}

	c.mu.Lock()
	c.locations[key] = loc
	c.mu.Unlock()

	return &loc, raw, nil
}

// GetAirPollution fetches the current air pollution sample for a location.
func (c *Client) GetAirPollution(ctx context.Context, lat, lon float64) (*weather.AirPollution, []byte, error) {
	endpoint := fmt.Sprintf("%s/air_pollution?lat=%.6f&lon=%.6f&appid=%s",
		c.baseURL, lat, lon, url.QueryEscape(c.apiKey))

	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("air pollution: %w", err)
	}

	var resp airPollutionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, fmt.Errorf("decoding air pollution response: %w", err)
	}
	if len(resp.List) == 0 {
		return nil, raw, weather.ErrNoPollutionData
	}

	entry := resp.List[0]
	return &weather.AirPollution{
		Index:      entry.Main.AQI,
		PM25:       entry.Components.PM25,
		PM10:       entry.Components.PM10,
		NO2:        entry.Components.NO2,
		O3:         entry.Components.O3,
		SO2:        entry.Components.SO2,
		CO:         entry.Components.CO,
		MeasuredAt: time.Unix(entry.Dt, 0),
	}, raw, nil
}

// GetCurrentWeather fetches current weather for a location.
func (c *Client) GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, []byte, error) {
	endpoint := fmt.Sprintf("%s/weather?lat=%.6f&lon=%.6f&appid=%s&units=metric",
		c.baseURL, lat, lon, url.QueryEscape(c.apiKey))

	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, nil, fmt.Errorf("current weather: %w", err)
	}

	var resp currentWeatherResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, nil, fmt.Errorf("decoding weather response: %w", err)
	}

	return toObservation(&resp), raw, nil
}

// FetchCurrent runs geocode, air pollution and weather for a city and merges
// them into one reading. A weather failure is logged and leaves the weather
// fields empty; the pollution sample is what makes the reading.
func (c *Client) FetchCurrent(ctx context.Context, city string) (*airquality.Fetch, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", weather.ErrProviderUnavailable)
	}

	loc, geoRaw, err := c.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	pollution, pollutionRaw, err := c.GetAirPollution(ctx, loc.Lat, loc.Lon)
	if err != nil {
		return nil, err
	}

	aqi := pollution.ScaledAQI()
	reading := &airquality.Reading{
		RecordedAt: time.Now(),
		City:       city,
		Zone:       airquality.ZoneAll,
		AQI:        &aqi,
		PM25:       airquality.Float(pollution.PM25),
		PM10:       airquality.Float(pollution.PM10),
		NO2:        airquality.Float(pollution.NO2),
		O3:         airquality.Float(pollution.O3),
		SO2:        airquality.Float(pollution.SO2),
		CO:         airquality.Float(pollution.CO),
		Source:     airquality.SourceOpenWeather,
	}

	raw := map[string][]byte{"air_pollution": pollutionRaw}
	if geoRaw != nil {
		raw["geocode"] = geoRaw
	}

	obs, weatherRaw, err := c.GetCurrentWeather(ctx, loc.Lat, loc.Lon)
	if err != nil {
		c.logger.Warn().Err(err).Str("city", city).Msg("weather lookup failed, storing pollution only")
	} else {
		reading.Temperature = airquality.Float(obs.Temperature)
		reading.Humidity = airquality.Float(obs.Humidity)
		reading.WindSpeed = airquality.Float(obs.WindSpeed)
		raw["weather"] = weatherRaw
	}

	return &airquality.Fetch{Reading: reading, Raw: raw}, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenWeather HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

func toObservation(resp *currentWeatherResponse) *weather.Observation {
	obs := &weather.Observation{
		Lat:           resp.Coord.Lat,
		Lon:           resp.Coord.Lon,
		Temperature:   resp.Main.Temp,
		Humidity:      resp.Main.Humidity,
		WindSpeed:     resp.Wind.Speed,
		WindDirection: resp.Wind.Deg,
		Pressure:      resp.Main.Pressure,
		ObservedAt:    time.Unix(resp.Dt, 0),
		FetchedAt:     time.Now(),
		Condition:     weather.ConditionUnknown,
	}

	if len(resp.Weather) > 0 {
		obs.Condition = mapCondition(resp.Weather[0].Main)
		obs.Description = resp.Weather[0].Description
	}

	return obs
}

func mapCondition(owmCondition string) weather.Condition {
	switch owmCondition {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionClouds
	case "Rain":
		return weather.ConditionRain
	case "Drizzle":
		return weather.ConditionDrizzle
	case "Thunderstorm":
		return weather.ConditionThunderstorm
	case "Snow":
		return weather.ConditionSnow
	case "Mist":
		return weather.ConditionMist
	case "Fog":
		return weather.ConditionFog
	case "Haze", "Dust", "Sand", "Ash", "Squall", "Tornado":
		return weather.ConditionHaze
	default:
		return weather.ConditionUnknown
	}
}

// OpenWeather API response structures.

type geocodeResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type airPollutionResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components struct {
			CO   float64 `json:"co"`
			NO2  float64 `json:"no2"`
			O3   float64 `json:"o3"`
			SO2  float64 `json:"so2"`
			PM25 float64 `json:"pm2_5"`
			PM10 float64 `json:"pm10"`
		} `json:"components"`
	} `json:"list"`
}

type currentWeatherResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Pressure float64 `json:"pressure"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Dt int64 `json:"dt"`
}

// Ensure Client implements airquality.Provider.
var _ airquality.Provider = (*Client)(nil)
