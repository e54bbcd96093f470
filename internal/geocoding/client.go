package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vzahanych/weather-lookup/internal/apperr"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	serviceName = "geocoding"
	directPath  = "/geo/1.0/direct"
)

// Location is the first match returned for a city query.
type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	DisplayName string  `json:"display_name"`
}

type directResult struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Name    string   `json:"name"`
	Country string   `json:"country"`
	State   string   `json:"state,omitempty"`
}

type apiError struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}

// Client resolves city names through the OpenWeatherMap direct geocoding API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	tele       *telemetry.Telemetry
}

func NewClient(cfg config.GeocodingConfig, timeout time.Duration, logger *zap.Logger, tele *telemetry.Telemetry) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With(zap.String("service", serviceName)),
		tele:   tele,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return c
}

func (c *Client) Name() string {
	return serviceName
}

// Resolve looks up city and returns its first match. Empty input is rejected
// without contacting the service.
func (c *Client) Resolve(ctx context.Context, city string) (*Location, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, apperr.NewValidation("city", "must not be empty")
	}

	ctx, span := c.tele.StartSpan(ctx, "geocoding.Resolve", attribute.String("city", city))
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			err = &apperr.NetworkError{Service: serviceName, Message: "rate limit wait canceled", Err: err}
			c.tele.RecordError(span, err)
			return nil, err
		}
	}

	loc, err := c.resolve(ctx, city)
	if err != nil {
		c.tele.RecordError(span, err, attribute.String("error.kind", string(apperr.KindOf(err))))
		return nil, err
	}

	span.SetAttributes(
		attribute.Float64("lat", loc.Latitude),
		attribute.Float64("lon", loc.Longitude),
	)

	return loc, nil
}

func (c *Client) resolve(ctx context.Context, city string) (*Location, error) {
	u, err := url.Parse(c.baseURL + directPath)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	q.Set("q", city)
	q.Set("limit", "1")
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.logger.Debug("Resolving city", zap.String("city", city))

	resp, err := c.httpClient.Do(req)
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
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return nil, &apperr.NetworkError{Service: serviceName, StatusCode: resp.StatusCode, Message: msg}
	}

	var results []directResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, &apperr.ParseError{Service: serviceName, Field: "body", Err: err}
	}

	if len(results) == 0 {
		c.logger.Info("City not found", zap.String("city", city))
		return nil, apperr.NewNotFound(city)
	}

	first := results[0]
	switch {
	case first.Lat == nil:
		return nil, &apperr.ParseError{Service: serviceName, Field: "lat"}
	case first.Lon == nil:
		return nil, &apperr.ParseError{Service: serviceName, Field: "lon"}
	}

	loc := &Location{
		Latitude:    *first.Lat,
		Longitude:   *first.Lon,
		Name:        first.Name,
		Country:     first.Country,
		DisplayName: first.Name + ", " + first.Country,
	}

	c.logger.Debug("City resolved",
		zap.String("city", city),
		zap.String("display_name", loc.DisplayName),
		zap.Float64("lat", loc.Latitude),
		zap.Float64("lon", loc.Longitude))

	return loc, nil
}
