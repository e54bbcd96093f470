package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-lookup/internal/apperr"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/internal/forecast"
	"github.com/vzahanych/weather-lookup/internal/geocoding"
	"github.com/vzahanych/weather-lookup/internal/lookup"
	"github.com/vzahanych/weather-lookup/internal/server/handlers"
	"github.com/vzahanych/weather-lookup/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

type stubGeocoder struct {
	loc *geocoding.Location
	err error
}

func (s *stubGeocoder) Resolve(_ context.Context, _ string) (*geocoding.Location, error) {
	return s.loc, s.err
}

type stubForecaster struct {
	fc  *forecast.Forecast
	err error
}

func (s *stubForecaster) Fetch(_ context.Context, _, _ float64) (*forecast.Forecast, error) {
	return s.fc, s.err
}

var paris = &geocoding.Location{Latitude: 48.85, Longitude: 2.35, Name: "Paris", Country: "FR", DisplayName: "Paris, FR"}

func parisForecast() *forecast.Forecast {
	return &forecast.Forecast{
		Current: forecast.CurrentConditions{TemperatureCelsius: 21.4, WeatherCode: 2},
		Daily: []forecast.DailyForecastEntry{
			{Date: "2024-07-01", MaxTempCelsius: 25, MinTempCelsius: 15, WeatherCode: 0},
			{Date: "2024-07-02", MaxTempCelsius: 23.5, MinTempCelsius: 14, WeatherCode: 95},
		},
		Timezone: "Europe/Paris",
	}
}

func newTestServer(t *testing.T, geo lookup.Geocoder, fc lookup.Forecaster, apiKey string) *Server {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.Geocoding.APIKey = apiKey
	logger := zaptest.NewLogger(t)

	pipeline := lookup.NewPipeline(geo, fc, nil, logger, telemetry.Disabled())
	return NewServer(cfg, pipeline, logger, telemetry.Disabled())
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetWeatherJSON(t *testing.T) {
	s := newTestServer(t, &stubGeocoder{loc: paris}, &stubForecaster{fc: parisForecast()}, "key")

	rec := get(t, s, "/weather?city=Paris")
	require.Equal(t, http.StatusOK, rec.Code)

	var report lookup.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Paris, FR", report.Location.DisplayName)
	assert.Equal(t, "⛅ Partly cloudy", report.Current.Description)
	require.Len(t, report.Daily, 2)
	assert.Equal(t, "2024-07-01", report.Daily[0].Date)
	assert.Equal(t, "⚡ Thunderstorm", report.Daily[1].Description)
	assert.Equal(t, "en", report.Language)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGetWeatherTextChinese(t *testing.T) {
	s := newTestServer(t, &stubGeocoder{loc: paris}, &stubForecaster{fc: parisForecast()}, "key")

	rec := get(t, s, "/weather?city=Paris&lang=zh&format=text")
	require.Equal(t, http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Paris, FR当前天气：21.4°C，"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2024-07-01: 最高 25.0°C，最低 15.0°C，"), lines[1])
}

func TestGetWeatherErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		geo    *stubGeocoder
		fc     *stubForecaster
		status int
		code   string
	}{
		{
			name:   "missing city",
			target: "/weather",
			geo:    &stubGeocoder{loc: paris},
			status: http.StatusBadRequest,
			code:   "INVALID_CITY",
		},
		{
			name:   "blank city",
			target: "/weather?city=%20%20",
			geo:    &stubGeocoder{loc: paris},
			status: http.StatusBadRequest,
			code:   "INVALID_CITY",
		},
		{
			name:   "not found",
			target: "/weather?city=Atlantis",
			geo:    &stubGeocoder{err: apperr.NewNotFound("Atlantis")},
			status: http.StatusNotFound,
			code:   "CITY_NOT_FOUND",
		},
		{
			name:   "geocoding down",
			target: "/weather?city=Paris",
			geo:    &stubGeocoder{err: &apperr.NetworkError{Service: "geocoding", StatusCode: 401, Message: "Invalid API key"}},
			status: http.StatusBadGateway,
			code:   "UPSTREAM_UNAVAILABLE",
		},
		{
			name:   "forecast unparseable",
			target: "/weather?city=Paris",
			geo:    &stubGeocoder{loc: paris},
			fc:     &stubForecaster{err: &apperr.ParseError{Service: "forecast", Field: "daily"}},
			status: http.StatusBadGateway,
			code:   "UPSTREAM_INVALID_RESPONSE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := tt.fc
			if fc == nil {
				fc = &stubForecaster{fc: parisForecast()}
			}
			s := newTestServer(t, tt.geo, fc, "key")

			rec := get(t, s, tt.target)
			assert.Equal(t, tt.status, rec.Code)

			var resp handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestGetCodes(t *testing.T) {
	s := newTestServer(t, &stubGeocoder{}, &stubForecaster{}, "key")

	t.Run("english", func(t *testing.T) {
		rec := get(t, s, "/weather/codes")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp handlers.CodesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "en", resp.Language)
		require.Len(t, resp.Codes, 100)
		assert.Equal(t, handlers.CodeEntry{Code: 0, Label: "☀️ Clear"}, resp.Codes[0])
	})

	t.Run("chinese", func(t *testing.T) {
		rec := get(t, s, "/weather/codes?lang=zh")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp handlers.CodesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "zh", resp.Language)
		assert.Equal(t, "❓ 未知天气代码", resp.Fallback)
	})

	t.Run("unsupported language", func(t *testing.T) {
		rec := get(t, s, "/weather/codes?lang=fr")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("ready with api key", func(t *testing.T) {
		s := newTestServer(t, &stubGeocoder{}, &stubForecaster{}, "key")
		assert.Equal(t, http.StatusOK, get(t, s, "/health/ready").Code)
		assert.Equal(t, http.StatusOK, get(t, s, "/health/live").Code)
		assert.Equal(t, http.StatusOK, get(t, s, "/health").Code)
	})

	t.Run("not ready without api key", func(t *testing.T) {
		s := newTestServer(t, &stubGeocoder{}, &stubForecaster{}, "")

		rec := get(t, s, "/health/ready")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp handlers.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unavailable", resp.Status)
		assert.Contains(t, resp.Checks, "geocoding_api_key")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &stubGeocoder{err: apperr.NewNotFound("Atlantis")}, &stubForecaster{}, "key")

	get(t, s, "/weather?city=Atlantis")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `lookup_stage_calls_total{stage="geocoding"} 1`)
	assert.Contains(t, body, `lookup_stage_errors_total{stage="geocoding",kind="not_found"} 1`)
	assert.Contains(t, body, `http_requests_total{route_status="GET /weather_404"} 1`)
}
