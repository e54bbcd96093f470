package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-lookup/internal/apperr"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

const testAPIKey = "test-key"

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := config.GeocodingConfig{BaseURL: baseURL, APIKey: testAPIKey}
	return NewClient(cfg, 5*time.Second, zaptest.NewLogger(t), telemetry.Disabled())
}

func TestResolveSuccess(t *testing.T) {
	var requests atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		assert.Equal(t, "/geo/1.0/direct", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "London", q.Get("q"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, testAPIKey, q.Get("appid"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"London","lat":51.5,"lon":-0.12,"country":"GB","state":"England"}]`))
	}))
	defer srv.Close()

	loc, err := newTestClient(t, srv.URL).Resolve(context.Background(), "  London ")
	require.NoError(t, err)

	assert.Equal(t, int32(1), requests.Load())
	assert.Equal(t, 51.5, loc.Latitude)
	assert.Equal(t, -0.12, loc.Longitude)
	assert.Equal(t, "London, GB", loc.DisplayName)
}

func TestResolveEncodesCityName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "São Paulo & co", r.URL.Query().Get("q"))
		assert.NotContains(t, r.URL.RawQuery, " ")
		w.Write([]byte(`[{"name":"São Paulo","lat":-23.55,"lon":-46.63,"country":"BR"}]`))
	}))
	defer srv.Close()

	loc, err := newTestClient(t, srv.URL).Resolve(context.Background(), "São Paulo & co")
	require.NoError(t, err)
	assert.Equal(t, "São Paulo, BR", loc.DisplayName)
}

func TestResolveDisplayNameIsVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"münchen","lat":48.13,"lon":11.58,"country":"de"}]`))
	}))
	defer srv.Close()

	loc, err := newTestClient(t, srv.URL).Resolve(context.Background(), "munich")
	require.NoError(t, err)
	assert.Equal(t, "münchen, de", loc.DisplayName)
}

func TestResolveEmptyInputSendsNoRequest(t *testing.T) {
	var requests atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := client.Resolve(context.Background(), input)

		var validationErr *apperr.ValidationError
		require.ErrorAs(t, err, &validationErr)
	}

	assert.Equal(t, int32(0), requests.Load())
}

func TestResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Resolve(context.Background(), "Atlantis")

	var notFound *apperr.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Atlantis", notFound.City)
}

func TestResolveUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Resolve(context.Background(), "London")

	var netErr *apperr.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusUnauthorized, netErr.StatusCode)
	assert.Equal(t, "Invalid API key", netErr.Message)
}

func TestResolveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Resolve(context.Background(), "London")
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
}

func TestResolveTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(t, srv.URL).Resolve(context.Background(), "London")
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
}

func TestResolveMalformedBody(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"not json", `<html>`, "body"},
		{"object instead of array", `{"name":"London"}`, "body"},
		{"missing lat", `[{"name":"London","lon":-0.12,"country":"GB"}]`, "lat"},
		{"missing lon", `[{"name":"London","lat":51.5,"country":"GB"}]`, "lon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Resolve(context.Background(), "London")

			var parseErr *apperr.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.field, parseErr.Field)
		})
	}
}

func TestResolveRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"London","lat":51.5,"lon":-0.12,"country":"GB"}]`))
	}))
	defer srv.Close()

	cfg := config.GeocodingConfig{BaseURL: srv.URL, APIKey: testAPIKey, RateLimit: 0.001, RateBurst: 1}
	client := NewClient(cfg, 5*time.Second, zaptest.NewLogger(t), telemetry.Disabled())

	_, err := client.Resolve(context.Background(), "London")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Resolve(ctx, "London")
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
}
