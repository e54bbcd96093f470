package handlers

import "github.com/vzahanych/weather-lookup/internal/server/utils"

// WeatherRequest is the query of GET /weather.
type WeatherRequest struct {
	City   string `form:"city" json:"city" validate:"required,cityname,max=100"`
	Lang   string `form:"lang" json:"lang" validate:"omitempty,oneof=en zh"`
	Format string `form:"format" json:"format" validate:"omitempty,oneof=json text"`
}

// CodesRequest is the query of GET /weather/codes.
type CodesRequest struct {
	Lang string `form:"lang" json:"lang" validate:"omitempty,oneof=en zh"`
}

type CodeEntry struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
}

type CodesResponse struct {
	Language string      `json:"language"`
	Fallback string      `json:"fallback"`
	Codes    []CodeEntry `json:"codes"`
}

type ErrorResponse struct {
	Error   string                  `json:"error"`
	Code    string                  `json:"code,omitempty"`
	Details string                  `json:"details,omitempty"`
	Fields  []utils.ValidationError `json:"fields,omitempty"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}
