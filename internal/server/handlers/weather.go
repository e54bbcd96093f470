package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-lookup/internal/apperr"
	"github.com/vzahanych/weather-lookup/internal/lookup"
	"github.com/vzahanych/weather-lookup/internal/render"
	"github.com/vzahanych/weather-lookup/internal/server/utils"
	"github.com/vzahanych/weather-lookup/internal/wmo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type Searcher interface {
	Search(ctx context.Context, city string, progress lookup.ProgressFunc) (*lookup.Report, error)
}

type WeatherHandler struct {
	searchers   map[string]Searcher
	defaultLang string
	logger      *zap.Logger
}

// NewWeatherHandler serves searches with one Searcher per language.
func NewWeatherHandler(searchers map[string]Searcher, defaultLang string, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		searchers:   searchers,
		defaultLang: defaultLang,
		logger:      logger,
	}
}

func (h *WeatherHandler) GetWeather(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	requestID := utils.GetRequestIDFromGinContext(c)

	reqLogger := h.logger.With(zap.String("request_id", requestID))

	var req WeatherRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		reqLogger.Warn("Invalid request parameters", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: err.Error(),
		})
		return
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		reqLogger.Warn("Request validation failed", zap.Any("fields", fields))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "Invalid request parameters",
			Code:   "INVALID_CITY",
			Fields: fields,
		})
		return
	}

	lang := req.Lang
	if lang == "" {
		lang = h.defaultLang
	}
	searcher, ok := h.searchers[lang]
	if !ok {
		searcher = h.searchers[h.defaultLang]
	}

	reqLogger.Info("Processing weather request",
		zap.String("city", req.City),
		zap.String("lang", lang))

	span := utils.GetSpanFromGinContext(c)
	span.SetAttributes(attribute.String("weather.lang", lang))

	report, err := searcher.Search(ctx, req.City, nil)
	if err != nil {
		status, code := statusForError(err)
		span.SetAttributes(attribute.String("weather.error_code", code))
		reqLogger.Warn("Weather search failed",
			zap.String("city", req.City),
			zap.String("code", code),
			zap.Error(err))
		c.JSON(status, ErrorResponse{
			Error:   render.New(lang).Error(err),
			Code:    code,
			Details: err.Error(),
		})
		return
	}

	span.SetAttributes(attribute.String("weather.location", report.Location.DisplayName))
	reqLogger.Info("Weather request completed successfully",
		zap.String("display_name", report.Location.DisplayName),
		zap.Int("days", len(report.Daily)))

	if req.Format == "text" {
		c.String(http.StatusOK, strings.Join(render.New(lang).Lines(report), "\n")+"\n")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *WeatherHandler) GetCodes(c *gin.Context) {
	var req CodesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request parameters", Code: "INVALID_PARAMS", Details: err.Error()})
		return
	}
	if fields := utils.ValidateStruct(req); fields != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request parameters", Code: "INVALID_PARAMS", Fields: fields})
		return
	}

	lang := req.Lang
	if lang == "" {
		lang = h.defaultLang
	}
	table := wmo.For(lang)

	entries := table.Entries()
	codes := make([]CodeEntry, 0, len(entries))
	for code, label := range entries {
		codes = append(codes, CodeEntry{Code: code, Label: label})
	}

	c.JSON(http.StatusOK, CodesResponse{
		Language: table.Lang(),
		Fallback: table.Fallback(),
		Codes:    codes,
	})
}

func statusForError(err error) (int, string) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest, "INVALID_CITY"
	case apperr.KindNotFound:
		return http.StatusNotFound, "CITY_NOT_FOUND"
	case apperr.KindNetwork:
		return http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"
	case apperr.KindParse:
		return http.StatusBadGateway, "UPSTREAM_INVALID_RESPONSE"
	default:
		return http.StatusInternalServerError, "LOOKUP_ERROR"
	}
}
