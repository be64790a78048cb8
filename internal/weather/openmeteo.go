package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"farmgrid/internal/grid"
	"farmgrid/internal/httputil"
)

// Forecaster returns the reduced weather for a single coordinate.
type Forecaster interface {
	Forecast(ctx context.Context, c grid.Coord) (Sample, error)
}

// ForecasterFunc adapts a function to Forecaster.
type ForecasterFunc func(ctx context.Context, c grid.Coord) (Sample, error)

// Forecast calls f.
func (f ForecasterFunc) Forecast(ctx context.Context, c grid.Coord) (Sample, error) {
	return f(ctx, c)
}

var hourlyVars = "temperature_2m,relative_humidity_2m,weather_code,cloud_cover,precipitation,wind_speed_120m"

// OpenMeteo queries an Open-Meteo compatible forecast endpoint.
type OpenMeteo struct {
	Client   httputil.HTTPClient
	Endpoint string
	APIKey   string
	Window   int
}

type forecastResponse struct {
	Hourly *struct {
		Temperature   []*float64 `json:"temperature_2m"`
		Humidity      []*float64 `json:"relative_humidity_2m"`
		CloudCover    []*float64 `json:"cloud_cover"`
		Precipitation []*float64 `json:"precipitation"`
		WindSpeed     []*float64 `json:"wind_speed_120m"`
	} `json:"hourly"`
}

// Forecast fetches the hourly forecast at c and averages the leading window
// of each series.
func (o *OpenMeteo) Forecast(ctx context.Context, c grid.Coord) (Sample, error) {
	if !c.Valid() {
		return Sample{}, ErrInvalidCoordinate
	}
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	q.Set("hourly", hourlyVars)
	q.Set("daily", "weather_code,uv_index_max")
	q.Set("timezone", "GMT")
	if o.APIKey != "" {
		q.Set("apikey", o.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to build forecast request: %w", err)
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return Sample{}, fmt.Errorf("forecast request failed: %w", err)
	}
	body, err := httputil.ReadOK(resp)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	var fr forecastResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if fr.Hourly == nil {
		return Sample{}, fmt.Errorf("%w: missing hourly block", ErrBadResponse)
	}

	w := o.Window
	if w <= 0 {
		w = DefaultWindow
	}
	h := fr.Hourly
	return Sample{
		Temperature:   leadingMean(h.Temperature, w),
		Humidity:      leadingMean(h.Humidity, w),
		Precipitation: leadingMean(h.Precipitation, w),
		CloudCover:    leadingMean(h.CloudCover, w),
		WindSpeed:     leadingMean(h.WindSpeed, w),
	}, nil
}
