package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"teamup/internal/domain"
)

// DefaultBaseURL is the public Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const hourLayout = "2006-01-02T15:04"

type openMeteoClient struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// NewOpenMeteoClient returns a WeatherProvider backed by the Open-Meteo hourly forecast.
func NewOpenMeteoClient(client *http.Client, baseURL string) domain.WeatherProvider {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &openMeteoClient{client: client, baseURL: baseURL, now: time.Now}
}

type forecastResponse struct {
	Hourly struct {
		Time          []string  `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		Precipitation []float64 `json:"precipitation"`
		WeatherCode   []int     `json:"weather_code"`
		WindSpeed     []float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}

func (c *openMeteoClient) Forecast(ctx context.Context, lat, lng float64, at time.Time) (*domain.WeatherSnapshot, error) {
	at = at.UTC()
	day := at.Format(time.DateOnly)
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', 4, 64))
	q.Set("hourly", "temperature_2m,precipitation,weather_code,wind_speed_10m")
	q.Set("timezone", "UTC")
	q.Set("start_date", day)
	q.Set("end_date", day)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api returned status: %d", resp.StatusCode)
	}

	var data forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode forecast: %w", err)
	}
	return data.snapshotAt(at, c.now().UTC())
}

// snapshotAt picks the hourly slot closest to at.
func (r *forecastResponse) snapshotAt(at, fetchedAt time.Time) (*domain.WeatherSnapshot, error) {
	h := r.Hourly
	n := len(h.Time)
	if n == 0 || len(h.Temperature) < n || len(h.Precipitation) < n || len(h.WeatherCode) < n || len(h.WindSpeed) < n {
		return nil, fmt.Errorf("forecast has no usable hourly data")
	}
	best := -1
	var bestSlot time.Time
	var bestDiff time.Duration
	for i, raw := range h.Time {
		slot, err := time.Parse(hourLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parse forecast time %q: %w", raw, err)
		}
		diff := at.Sub(slot).Abs()
		if best < 0 || diff < bestDiff {
			best, bestSlot, bestDiff = i, slot, diff
		}
	}
	return &domain.WeatherSnapshot{
		TemperatureC:  h.Temperature[best],
		WindSpeedKmh:  h.WindSpeed[best],
		Precipitation: h.Precipitation[best],
		WeatherCode:   h.WeatherCode[best],
		Description:   Describe(h.WeatherCode[best]),
		ForecastFor:   bestSlot,
		FetchedAt:     fetchedAt,
	}, nil
}

// Describe maps a WMO weather interpretation code to a short description.
func Describe(code int) string {
	switch {
	case code == 0:
		return "Clear sky"
	case code <= 3:
		return "Partly cloudy"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Rain showers"
	case code == 85 || code == 86:
		return "Snow showers"
	case code >= 95:
		return "Thunderstorm"
	}
	return "Unknown"
}
