package lookup

import (
	"context"
	"strings"
	"time"

	"github.com/vzahanych/weather-lookup/internal/apperr"
	"github.com/vzahanych/weather-lookup/internal/forecast"
	"github.com/vzahanych/weather-lookup/internal/geocoding"
	"github.com/vzahanych/weather-lookup/internal/wmo"
	"github.com/vzahanych/weather-lookup/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type Stage string

const (
	StageGeocoding Stage = "geocoding"
	StageForecast  Stage = "forecast"
)

type Geocoder interface {
	Resolve(ctx context.Context, city string) (*geocoding.Location, error)
}

type Forecaster interface {
	Fetch(ctx context.Context, lat, lon float64) (*forecast.Forecast, error)
}

// MetricsRecorder receives one call per stage attempt.
type MetricsRecorder interface {
	RecordStageCall(ctx context.Context, stage string, errKind string)
}

// ProgressFunc is told when a stage is about to start. loc is nil for
// StageGeocoding.
type ProgressFunc func(stage Stage, loc *geocoding.Location)

type Conditions struct {
	TemperatureCelsius float64 `json:"temperature_celsius"`
	WeatherCode        int     `json:"weather_code"`
	Description        string  `json:"description"`
}

type Day struct {
	Date           string  `json:"date"`
	MaxTempCelsius float64 `json:"max_temp_celsius"`
	MinTempCelsius float64 `json:"min_temp_celsius"`
	WeatherCode    int     `json:"weather_code"`
	Description    string  `json:"description"`
}

type Report struct {
	Location  geocoding.Location `json:"location"`
	Current   Conditions         `json:"current"`
	Daily     []Day              `json:"daily"`
	Timezone  string             `json:"timezone,omitempty"`
	Language  string             `json:"language"`
	FetchedAt string             `json:"fetched_at"`
}

// Pipeline runs the geocoding stage and, only when it succeeds, the
// forecast stage.
type Pipeline struct {
	geocoder   Geocoder
	forecaster Forecaster
	codes      *wmo.Table
	logger     *zap.Logger
	tele       *telemetry.Telemetry
	metrics    MetricsRecorder
	now        func() time.Time
}

func NewPipeline(geocoder Geocoder, forecaster Forecaster, codes *wmo.Table, logger *zap.Logger, tele *telemetry.Telemetry) *Pipeline {
	if codes == nil {
		codes = wmo.For(wmo.LangEnglish)
	}
	return &Pipeline{
		geocoder:   geocoder,
		forecaster: forecaster,
		codes:      codes,
		logger:     logger,
		tele:       tele,
		now:        time.Now,
	}
}

// SetMetricsRecorder sets the metrics recorder for the pipeline
func (p *Pipeline) SetMetricsRecorder(metrics MetricsRecorder) {
	p.metrics = metrics
}

func (p *Pipeline) Codes() *wmo.Table {
	return p.codes
}

// WithCodes returns a shallow copy of p that describes codes with table.
func (p *Pipeline) WithCodes(table *wmo.Table) *Pipeline {
	cp := *p
	cp.codes = table
	return &cp
}

func (p *Pipeline) Search(ctx context.Context, city string, progress ProgressFunc) (*Report, error) {
	city = strings.TrimSpace(city)

	ctx, span := p.tele.StartSpan(ctx, "lookup.Search", attribute.String("city", city))
	defer span.End()

	reqLogger := p.logger
	if requestID, ok := RequestIDFromContext(ctx); ok {
		reqLogger = p.logger.With(zap.String("request_id", requestID))
	}

	if city == "" {
		err := apperr.NewValidation("city", "must not be empty")
		reqLogger.Debug("Rejected empty city")
		return nil, err
	}

	if progress != nil {
		progress(StageGeocoding, nil)
	}

	loc, err := p.geocoder.Resolve(ctx, city)
	p.record(ctx, StageGeocoding, err)
	if err != nil {
		p.tele.RecordError(span, err, attribute.String("stage", string(StageGeocoding)))
		reqLogger.Warn("Geocoding failed",
			zap.String("city", city),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("display_name", loc.DisplayName),
		attribute.Float64("lat", loc.Latitude),
		attribute.Float64("lon", loc.Longitude),
	)

	if progress != nil {
		progress(StageForecast, loc)
	}

	fc, err := p.forecaster.Fetch(ctx, loc.Latitude, loc.Longitude)
	p.record(ctx, StageForecast, err)
	if err != nil {
		p.tele.RecordError(span, err, attribute.String("stage", string(StageForecast)))
		reqLogger.Warn("Forecast fetch failed",
			zap.String("display_name", loc.DisplayName),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err))
		return nil, err
	}

	report := p.buildReport(loc, fc)
	span.SetAttributes(attribute.Int("days", len(report.Daily)))

	reqLogger.Info("Search completed",
		zap.String("city", city),
		zap.String("display_name", loc.DisplayName),
		zap.Int("days", len(report.Daily)))

	return report, nil
}

func (p *Pipeline) record(ctx context.Context, stage Stage, err error) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordStageCall(ctx, string(stage), string(apperr.KindOf(err)))
}

func (p *Pipeline) buildReport(loc *geocoding.Location, fc *forecast.Forecast) *Report {
	days := make([]Day, 0, len(fc.Daily))
	for _, d := range fc.Daily {
		days = append(days, Day{
			Date:           d.Date,
			MaxTempCelsius: d.MaxTempCelsius,
			MinTempCelsius: d.MinTempCelsius,
			WeatherCode:    d.WeatherCode,
			Description:    p.codes.Describe(d.WeatherCode),
		})
	}

	return &Report{
		Location: *loc,
		Current: Conditions{
			TemperatureCelsius: fc.Current.TemperatureCelsius,
			WeatherCode:        fc.Current.WeatherCode,
			Description:        p.codes.Describe(fc.Current.WeatherCode),
		},
		Daily:     days,
		Timezone:  fc.Timezone,
		Language:  p.codes.Lang(),
		FetchedAt: p.now().UTC().Format(time.RFC3339),
	}
}
