// Package render formats lookup reports as the text lines shown to a user:
// one current-conditions label and one line per forecast day.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/vzahanych/weather-lookup/internal/apperr"
	"github.com/vzahanych/weather-lookup/internal/lookup"
	"github.com/vzahanych/weather-lookup/internal/wmo"
)

type messages struct {
	current       string
	day           string
	locating      string
	loading       string
	emptyCity     string
	notFound      string
	geoFailed     string
	weatherFailed string
	invalid       string
	failed        string
}

var catalog = map[string]messages{
	wmo.LangEnglish: {
		current:       "%s: %.1f°C, %s",
		day:           "%s: max %.1f°C, min %.1f°C, %s",
		locating:      "Looking up location...",
		loading:       "Loading weather for %s...",
		emptyCity:     "Please enter a city name.",
		notFound:      "City not found: %s",
		geoFailed:     "Location lookup failed: %s",
		weatherFailed: "Weather lookup failed: %s",
		invalid:       "Unexpected response from weather service: %s",
		failed:        "Search failed: %s",
	},
	wmo.LangChinese: {
		current:       "%s当前天气：%.1f°C，%s",
		day:           "%s: 最高 %.1f°C，最低 %.1f°C，%s",
		locating:      "正在查询位置...",
		loading:       "正在加载 %s 的天气...",
		emptyCity:     "请输入城市名！",
		notFound:      "未找到该城市！(%s)",
		geoFailed:     "位置查询失败: %s",
		weatherFailed: "天气查询失败: %s",
		invalid:       "天气服务返回了无法解析的数据: %s",
		failed:        "查询失败: %s",
	},
}

type Renderer struct {
	msg messages
}

// New returns a renderer for lang; unknown languages render in English.
func New(lang string) *Renderer {
	msg, ok := catalog[lang]
	if !ok {
		msg = catalog[wmo.LangEnglish]
	}
	return &Renderer{msg: msg}
}

// Current renders the current-conditions label.
func (r *Renderer) Current(report *lookup.Report) string {
	return fmt.Sprintf(r.msg.current,
		report.Location.DisplayName,
		report.Current.TemperatureCelsius,
		report.Current.Description)
}

func (r *Renderer) Day(day lookup.Day) string {
	return fmt.Sprintf(r.msg.day, day.Date, day.MaxTempCelsius, day.MinTempCelsius, day.Description)
}

// Lines returns the label followed by one line per day, in report order.
func (r *Renderer) Lines(report *lookup.Report) []string {
	lines := make([]string, 0, len(report.Daily)+1)
	lines = append(lines, r.Current(report))
	for _, day := range report.Daily {
		lines = append(lines, r.Day(day))
	}
	return lines
}

func (r *Renderer) Write(w io.Writer, report *lookup.Report) error {
	for _, line := range r.Lines(report) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) Progress(stage lookup.Stage, displayName string) string {
	if stage == lookup.StageForecast {
		return fmt.Sprintf(r.msg.loading, displayName)
	}
	return r.msg.locating
}

// Error renders err as a user-facing message according to its kind.
func (r *Renderer) Error(err error) string {
	var (
		notFound *apperr.NotFoundError
		netErr   *apperr.NetworkError
	)

	switch {
	case apperr.KindOf(err) == apperr.KindValidation:
		return r.msg.emptyCity
	case errors.As(err, &notFound):
		return fmt.Sprintf(r.msg.notFound, notFound.City)
	case apperr.KindOf(err) == apperr.KindParse:
		return fmt.Sprintf(r.msg.invalid, err.Error())
	case errors.As(err, &netErr):
		if netErr.Service == "forecast" {
			return fmt.Sprintf(r.msg.weatherFailed, netErr.Message)
		}
		return fmt.Sprintf(r.msg.geoFailed, netErr.Message)
	default:
		return fmt.Sprintf(r.msg.failed, err.Error())
	}
}
