package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sarveshwaran777333/Water-buddy/config"
)

func newTestProvider(t *testing.T, geocoding, forecast http.HandlerFunc) *OpenMeteoProvider {
	t.Helper()
	geoSrv := httptest.NewServer(geocoding)
	t.Cleanup(geoSrv.Close)
	fcSrv := httptest.NewServer(forecast)
	t.Cleanup(fcSrv.Close)

	cfg := &config.Config{
		WeatherGeocodingURL: geoSrv.URL,
		WeatherForecastURL:  fcSrv.URL,
		WeatherCacheTTL:     time.Minute,
	}
	return NewOpenMeteoProvider(cfg, zap.NewNop())
}

func TestResolveCoordinates(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t,
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Chennai", r.URL.Query().Get("name"))
			fmt.Fprint(w, `{"results":[{"latitude":13.0827,"longitude":80.2707}]}`)
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)

	lat, lon, err := p.ResolveCoordinates(context.Background(), "Chennai")
	require.NoError(t, err)
	assert.InDelta(t, 13.0827, lat, 1e-6)
	assert.InDelta(t, 80.2707, lon, 1e-6)
}

func TestResolveCoordinates_UnknownCity(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t,
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"results":[]}`)
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)

	_, _, err := p.ResolveCoordinates(context.Background(), "Nowheresville")
	assert.ErrorIs(t, err, ErrWeatherUnavailable)
}

func TestResolveCoordinates_EmptyCity(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t,
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {},
	)

	_, _, err := p.ResolveCoordinates(context.Background(), "")
	assert.ErrorIs(t, err, ErrWeatherUnavailable)
}

func TestCurrentTemperature(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t,
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"current_weather":{"temperature":31.4}}`)
		},
	)

	temp, err := p.CurrentTemperature(context.Background(), 13.08, 80.27)
	require.NoError(t, err)
	assert.InDelta(t, 31.4, temp, 1e-6)
	assert.Equal(t, 3000, WeatherGoal(temp))
}

func TestCurrentTemperature_UpstreamError(t *testing.T) {
	t.Parallel()
	p := newTestProvider(t,
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	)

	_, err := p.CurrentTemperature(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrWeatherUnavailable)
}
