package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/sarveshwaran777333/Water-buddy/cache"
	"github.com/sarveshwaran777333/Water-buddy/config"
)

// WeatherProvider is the external collaborator contract: given a city name
// or a coordinate pair, return a temperature or "unavailable".
type WeatherProvider interface {
	ResolveCoordinates(ctx context.Context, city string) (lat, lon float64, err error)
	CurrentTemperature(ctx context.Context, lat, lon float64) (celsius float64, err error)
}

// OpenMeteoProvider uses the key-free Open-Meteo geocoding and forecast
// APIs. Successful lookups are cached in Redis so dashboard renders do not
// hammer the upstream.
type OpenMeteoProvider struct {
	geocodingURL string
	forecastURL  string
	cacheTTL     time.Duration
	client       *http.Client
	logger       *zap.Logger
}

func NewOpenMeteoProvider(cfg *config.Config, logger *zap.Logger) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		geocodingURL: cfg.WeatherGeocodingURL,
		forecastURL:  cfg.WeatherForecastURL,
		cacheTTL:     cfg.WeatherCacheTTL,
		client:       &http.Client{Timeout: 8 * time.Second},
		logger:       logger,
	}
}

type geoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p *OpenMeteoProvider) ResolveCoordinates(ctx context.Context, city string) (float64, float64, error) {
	if city == "" {
		return 0, 0, ErrWeatherUnavailable
	}

	cacheKey := "weather:geo:" + city
	var cached geoPoint
	if cache.Client != nil && cache.Get(cacheKey, &cached) == nil {
		return cached.Latitude, cached.Longitude, nil
	}

	u := fmt.Sprintf("%s?name=%s&count=1", p.geocodingURL, url.QueryEscape(city))
	var res struct {
		Results []geoPoint `json:"results"`
	}
	if err := p.getJSON(ctx, u, &res); err != nil {
		return 0, 0, err
	}
	if len(res.Results) == 0 {
		return 0, 0, fmt.Errorf("%w: unknown city %q", ErrWeatherUnavailable, city)
	}

	point := res.Results[0]
	if cache.Client != nil {
		if err := cache.Set(cacheKey, point, 24*time.Hour); err != nil {
			p.logger.Warn("weather_cache_set_failed", zap.Error(err))
		}
	}
	return point.Latitude, point.Longitude, nil
}

func (p *OpenMeteoProvider) CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error) {
	cacheKey := fmt.Sprintf("weather:temp:%.4f:%.4f", lat, lon)
	var cached float64
	if cache.Client != nil && cache.Get(cacheKey, &cached) == nil {
		return cached, nil
	}

	u := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current_weather=true", p.forecastURL, lat, lon)
	var res struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
		} `json:"current_weather"`
	}
	if err := p.getJSON(ctx, u, &res); err != nil {
		return 0, err
	}

	temp := res.CurrentWeather.Temperature
	if cache.Client != nil {
		if err := cache.Set(cacheKey, temp, p.cacheTTL); err != nil {
			p.logger.Warn("weather_cache_set_failed", zap.Error(err))
		}
	}
	return temp, nil
}

func (p *OpenMeteoProvider) getJSON(ctx context.Context, u string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrWeatherUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: bad payload: %v", ErrWeatherUnavailable, err)
	}
	return nil
}
