package domain

import (
	"context"
	"time"
)

// WeatherProvider returns a forecast for a location and time.
type WeatherProvider interface {
	Forecast(ctx context.Context, lat, lng float64, at time.Time) (*WeatherSnapshot, error)
}
