package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vzahanych/weather-lookup/internal/apperr"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	serviceName  = "forecast"
	forecastPath = "/v1/forecast"

	currentVars = "temperature_2m,weather_code"
	dailyVars   = "temperature_2m_max,temperature_2m_min,weather_code"
)

// requiredParams cannot be overridden by configured extra params.
var requiredParams = map[string]bool{
	"latitude":  true,
	"longitude": true,
	"current":   true,
	"daily":     true,
	"timezone":  true,
}

type CurrentConditions struct {
	TemperatureCelsius float64 `json:"temperature_celsius"`
	WeatherCode        int     `json:"weather_code"`
}

type DailyForecastEntry struct {
	Date           string  `json:"date"`
	MaxTempCelsius float64 `json:"max_temp_celsius"`
	MinTempCelsius float64 `json:"min_temp_celsius"`
	WeatherCode    int     `json:"weather_code"`
}

type Forecast struct {
	Current  CurrentConditions    `json:"current"`
	Daily    []DailyForecastEntry `json:"daily"`
	Timezone string               `json:"timezone,omitempty"`
}

type openMeteoResponse struct {
	Timezone string `json:"timezone"`
	Current  *struct {
		Temperature *float64 `json:"temperature_2m"`
		WeatherCode *int     `json:"weather_code"`
	} `json:"current"`
	Daily *struct {
		Time           []string  `json:"time"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
		WeatherCode    []int     `json:"weather_code"`
	} `json:"daily"`
}

type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Client fetches current conditions and the daily forecast from Open-Meteo.
type Client struct {
	baseURL string
	client  *http.Client
	params  map[string]string
	logger  *zap.Logger
	tele    *telemetry.Telemetry
}

func NewClient(cfg config.ForecastConfig, timeout time.Duration, logger *zap.Logger, tele *telemetry.Telemetry) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		params: cfg.Params,
		logger: logger.With(zap.String("service", serviceName)),
		tele:   tele,
	}
}

func (c *Client) Name() string {
	return serviceName
}

func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*Forecast, error) {
	ctx, span := c.tele.StartSpan(ctx, "forecast.Fetch",
		attribute.Float64("lat", lat),
		attribute.Float64("lon", lon),
	)
	defer span.End()

	fc, err := c.fetch(ctx, lat, lon)
	if err != nil {
		c.tele.RecordError(span, err, attribute.String("error.kind", string(apperr.KindOf(err))))
		return nil, err
	}

	span.SetAttributes(attribute.Int("days", len(fc.Daily)))
	return fc, nil
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (*Forecast, error) {
	u, err := url.Parse(c.baseURL + forecastPath)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	for key, value := range c.params {
		if !requiredParams[key] {
			q.Set(key, value)
		}
	}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", currentVars)
	q.Set("daily", dailyVars)
	q.Set("timezone", "auto")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.logger.Debug("Fetching forecast", zap.Float64("lat", lat), zap.Float64("lon", lon))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &apperr.NetworkError{Service: serviceName, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.NetworkError{Service: serviceName, Message: "read response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			msg = apiErr.Reason
		}
		return nil, &apperr.NetworkError{Service: serviceName, StatusCode: resp.StatusCode, Message: msg}
	}

	var result openMeteoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &apperr.ParseError{Service: serviceName, Field: "body", Err: err}
	}

	return decode(&result)
}

func decode(r *openMeteoResponse) (*Forecast, error) {
	missing := func(field string) error {
		return &apperr.ParseError{Service: serviceName, Field: field}
	}

	switch {
	case r.Current == nil:
		return nil, missing("current")
	case r.Current.Temperature == nil:
		return nil, missing("current.temperature_2m")
	case r.Current.WeatherCode == nil:
		return nil, missing("current.weather_code")
	case r.Daily == nil:
		return nil, missing("daily")
	case r.Daily.Time == nil:
		return nil, missing("daily.time")
	case r.Daily.TemperatureMax == nil:
		return nil, missing("daily.temperature_2m_max")
	case r.Daily.TemperatureMin == nil:
		return nil, missing("daily.temperature_2m_min")
	case r.Daily.WeatherCode == nil:
		return nil, missing("daily.weather_code")
	}

	d := r.Daily
	n := min(len(d.Time), len(d.TemperatureMax), len(d.TemperatureMin), len(d.WeatherCode))

	days := make([]DailyForecastEntry, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, DailyForecastEntry{
			Date:           d.Time[i],
			MaxTempCelsius: d.TemperatureMax[i],
			MinTempCelsius: d.TemperatureMin[i],
			WeatherCode:    d.WeatherCode[i],
		})
	}

	return &Forecast{
		Current: CurrentConditions{
			TemperatureCelsius: *r.Current.Temperature,
			WeatherCode:        *r.Current.WeatherCode,
		},
		Daily:    days,
		Timezone: r.Timezone,
	}, nil
}
