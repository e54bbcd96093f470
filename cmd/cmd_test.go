package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-lookup/internal/apperr"
	"github.com/vzahanych/weather-lookup/internal/geocoding"
	"github.com/vzahanych/weather-lookup/internal/lookup"
	"github.com/vzahanych/weather-lookup/internal/render"
	"github.com/vzahanych/weather-lookup/internal/session"
	"github.com/vzahanych/weather-lookup/internal/wmo"
	"go.uber.org/zap/zaptest"
)

type scriptedSearcher struct{}

func (scriptedSearcher) Search(_ context.Context, city string, progress lookup.ProgressFunc) (*lookup.Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, apperr.NewValidation("city", "must not be empty")
	}
	if progress != nil {
		progress(lookup.StageGeocoding, nil)
	}
	if city == "Atlantis" {
		return nil, apperr.NewNotFound(city)
	}

	loc := &geocoding.Location{Name: city, Country: "GB", DisplayName: city + ", GB"}
	if progress != nil {
		progress(lookup.StageForecast, loc)
	}
	return &lookup.Report{
		Location: *loc,
		Current:  lookup.Conditions{TemperatureCelsius: 12.5, WeatherCode: 3, Description: "☁️ Overcast"},
		Daily: []lookup.Day{
			{Date: "2024-05-01", MaxTempCelsius: 15, MinTempCelsius: 7, WeatherCode: 3, Description: "☁️ Overcast"},
		},
		Language: "en",
	}, nil
}

func TestSearchPrintsReport(t *testing.T) {
	var out, errOut bytes.Buffer

	err := search(context.Background(), scriptedSearcher{}, render.New("en"), "London", &out, &errOut)
	require.NoError(t, err)

	assert.Equal(t, "London, GB: 12.5°C, ☁️ Overcast\n2024-05-01: max 15.0°C, min 7.0°C, ☁️ Overcast\n", out.String())
	assert.Equal(t, "Looking up location...\nLoading weather for London, GB...\n", errOut.String())
}

func TestSearchRendersError(t *testing.T) {
	var out, errOut bytes.Buffer

	err := search(context.Background(), scriptedSearcher{}, render.New("en"), "Atlantis", &out, &errOut)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "City not found: Atlantis")
}

func TestInteractiveWaitsForLastSearch(t *testing.T) {
	logger := zaptest.NewLogger(t)
	sess := session.New(scriptedSearcher{}, logger, 4)

	var out bytes.Buffer
	in := strings.NewReader("\nLondon\n")

	err := interactive(context.Background(), sess, render.New("en"), in, &out, logger)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "London, GB: 12.5°C, ☁️ Overcast")
	assert.True(t, strings.HasSuffix(text, prompt), text)
}

func TestInteractiveExit(t *testing.T) {
	logger := zaptest.NewLogger(t)
	sess := session.New(scriptedSearcher{}, logger, 4)

	var out bytes.Buffer
	err := interactive(context.Background(), sess, render.New("en"), strings.NewReader("exit\nLondon\n"), &out, logger)
	require.NoError(t, err)

	assert.Equal(t, prompt, out.String())
}

func TestInteractiveReturnsOnCancel(t *testing.T) {
	logger := zaptest.NewLogger(t)
	sess := session.New(scriptedSearcher{}, logger, 4)

	// Nothing is ever written, so a read blocks until the test ends.
	in, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- interactive(ctx, sess, render.New("en"), in, io.Discard, logger)
	}()

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("interactive did not return after cancellation")
	}
}

func TestRunShutsDownAfterFailedSearch(t *testing.T) {
	var out, errOut bytes.Buffer

	root := rootCmd()
	root.SetArgs([]string{"search", "   "})
	root.SetOut(&out)
	root.SetErr(&errOut)

	err := run(context.Background(), root)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, errOut.String(), "Please enter a city name.")

	assert.Nil(t, log, "logger should be released")
	assert.Nil(t, tele, "telemetry should be shut down")
}

func TestPrintCodes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printCodes(&out, wmo.For("en")))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 101)
	assert.Equal(t, " 0  ☀️ Clear", lines[0])
	assert.Equal(t, "--  ❓ Unknown weather code", lines[100])
}
