package engine

import (
	"farmgrid/internal/config"
	"farmgrid/internal/httputil"
	"farmgrid/internal/weather"
	"farmgrid/internal/yield"
)

// Services builds the HTTP forecaster and predictor described by cfg. A nil
// client gets a standard client per service with the configured timeout.
func Services(cfg config.Config, client httputil.HTTPClient) (weather.Forecaster, yield.Predictor) {
	wc, yc := client, client
	if client == nil {
		wc = httputil.NewStandardClient(nil, cfg.Weather.Timeout.Std())
		yc = httputil.NewStandardClient(nil, cfg.Yield.Timeout.Std())
	}
	f := &weather.OpenMeteo{
		Client:   wc,
		Endpoint: cfg.Weather.Endpoint,
		APIKey:   cfg.Weather.APIKey,
		Window:   cfg.Weather.SampleWindow,
	}
	p := &yield.HTTPPredictor{Client: yc, Endpoint: cfg.Yield.Endpoint}
	return f, p
}
