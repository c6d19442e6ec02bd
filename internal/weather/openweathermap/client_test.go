package openweathermap_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/smartcity/internal/airquality"
	"github.com/smartcity/smartcity/internal/provider/resilience"
	"github.com/smartcity/smartcity/internal/weather"
	"github.com/smartcity/smartcity/internal/weather/openweathermap"
)

type fakeOpenWeather struct {
	geocodeCalls atomic.Int32
	weatherFails bool
	noLocation   bool
}

func (f *fakeOpenWeather) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/geo/direct", func(w http.ResponseWriter, r *http.Request) {
		f.geocodeCalls.Add(1)
		assert.Equal(t, "Marseille", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))

		w.Header().Set("Content-Type", "application/json")
		if f.noLocation {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"name": "Marseille", "country": "FR", "lat": 43.2965, "lon": 5.3698},
		})
	})

	mux.HandleFunc("/data/air_pollution", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("lat"), "43.296")
		assert.Contains(t, r.URL.Query().Get("lon"), "5.369")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"list": []map[string]interface{}{
				{
					"dt":   1704105000,
					"main": map[string]int{"aqi": 2},
					"components": map[string]float64{
						"co": 230.3, "no2": 18.5, "o3": 61.2, "so2": 3.1, "pm2_5": 12.4, "pm10": 20.9,
					},
				},
			},
		})
	})

	mux.HandleFunc("/data/weather", func(w http.ResponseWriter, r *http.Request) {
		if f.weatherFails {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "metric", r.URL.Query().Get("units"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"coord":   map[string]float64{"lat": 43.2965, "lon": 5.3698},
			"weather": []map[string]interface{}{{"main": "Clear", "description": "ciel dégagé"}},
			"main":    map[string]float64{"temp": 18.4, "pressure": 1016, "humidity": 61},
			"wind":    map[string]float64{"speed": 5.2, "deg": 320},
			"dt":      time.Now().Unix(),
		})
	})

	return mux
}

func newTestClient(serverURL string) *openweathermap.Client {
	return openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    serverURL + "/data",
		GeoURL:     serverURL + "/geo",
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
	})
}

func TestClient_FetchCurrent(t *testing.T) {
	fake := &fakeOpenWeather{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := newTestClient(server.URL)

	fetch, err := client.FetchCurrent(context.Background(), "Marseille")
	require.NoError(t, err)
	require.NotNil(t, fetch.Reading)

	r := fetch.Reading
	assert.Equal(t, airquality.SourceOpenWeather, r.Source)
	assert.Equal(t, "Marseille", r.City)
	require.NotNil(t, r.AQI)
	assert.Equal(t, 100, *r.AQI, "index 2 scales to 100")
	assert.Equal(t, 12.4, *r.PM25)
	assert.Equal(t, 20.9, *r.PM10)
	assert.Equal(t, 18.5, *r.NO2)
	assert.Equal(t, 61.2, *r.O3)
	assert.Equal(t, 3.1, *r.SO2)
	assert.Equal(t, 230.3, *r.CO)
	require.NotNil(t, r.Temperature)
	assert.Equal(t, 18.4, *r.Temperature)
	assert.Equal(t, 61.0, *r.Humidity)
	assert.Equal(t, 5.2, *r.WindSpeed)

	assert.Contains(t, fetch.Raw, "geocode")
	assert.Contains(t, fetch.Raw, "air_pollution")
	assert.Contains(t, fetch.Raw, "weather")
}

func TestClient_FetchCurrent_CachesGeocoding(t *testing.T) {
	fake := &fakeOpenWeather{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := newTestClient(server.URL)

	first, err := client.FetchCurrent(context.Background(), "Marseille")
	require.NoError(t, err)
	second, err := client.FetchCurrent(context.Background(), "Marseille")
	require.NoError(t, err)

	assert.Equal(t, int32(1), fake.geocodeCalls.Load())
	assert.Contains(t, first.Raw, "geocode")
	assert.NotContains(t, second.Raw, "geocode")
}

func TestClient_FetchCurrent_WeatherFailureKeepsPollution(t *testing.T) {
	fake := &fakeOpenWeather{weatherFails: true}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := newTestClient(server.URL)

	fetch, err := client.FetchCurrent(context.Background(), "Marseille")
	require.NoError(t, err)

	assert.NotNil(t, fetch.Reading.PM25)
	assert.Nil(t, fetch.Reading.Temperature)
	assert.Nil(t, fetch.Reading.WindSpeed)
	assert.NotContains(t, fetch.Raw, "weather")
}

func TestClient_FetchCurrent_UnknownCity(t *testing.T) {
	fake := &fakeOpenWeather{noLocation: true}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchCurrent(context.Background(), "Marseille")
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrLocationNotFound)
}

func TestClient_FetchCurrent_MissingKey(t *testing.T) {
	client := openweathermap.NewClient(openweathermap.ClientConfig{})

	_, err := client.FetchCurrent(context.Background(), "Marseille")
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrProviderUnavailable)
}

func TestClient_GetCurrentWeather(t *testing.T) {
	fake := &fakeOpenWeather{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := newTestClient(server.URL)

	obs, raw, err := client.GetCurrentWeather(context.Background(), 43.2965, 5.3698)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, weather.ConditionClear, obs.Condition)
	assert.Equal(t, "ciel dégagé", obs.Description)
	assert.Equal(t, 1016.0, obs.Pressure)
	assert.Equal(t, 19, obs.WindKmh())
}

func TestClient_GetCurrentWeather_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := resilience.DefaultClientConfig("test")
	cfg.MaxRetries = 1
	cfg.InitialInterval = time.Millisecond

	client := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(cfg),
	})

	_, _, err := client.GetCurrentWeather(context.Background(), 43.2965, 5.3698)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_GetCurrentWeather_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := client.GetCurrentWeather(ctx, 43.2965, 5.3698)
	require.Error(t, err)
}

func TestClient_Name(t *testing.T) {
	client := openweathermap.NewClient(openweathermap.ClientConfig{APIKey: "test-key"})
	assert.Equal(t, airquality.SourceOpenWeather, client.Name())
}
