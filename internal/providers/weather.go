package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUnknownCity is returned when geocoding finds no match for a city name.
var ErrUnknownCity = errors.New("unsupported city")

// WeatherDay is one day of the provider's daily series.
type WeatherDay struct {
	Day  time.Time // Calendar day
	Temp float64   // Max temperature, °C
	Rain float64   // Precipitation sum, mm
}

// WeatherClient talks to the Open-Meteo forecast and geocoding APIs.
type WeatherClient struct {
	ForecastURL string
	GeocodeURL  string
	HTTP        *http.Client
}

// NewWeatherClient returns a client against the public Open-Meteo endpoints.
func NewWeatherClient() *WeatherClient {
	return &WeatherClient{
		ForecastURL: "https://api.open-meteo.com/v1/forecast",
		GeocodeURL:  "https://geocoding-api.open-meteo.com/v1/search",
		HTTP:        &http.Client{Timeout: 10 * time.Second},
	}
}

// Geocode resolves a city name to coordinates. An empty result set means
// the city is not supported, which is a caller input problem rather than
// a provider failure.
func (c *WeatherClient) Geocode(ctx context.Context, city string) (lat, lon float64, err error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.GeocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding API returned status %d", res.StatusCode)
	}
	var body struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, 0, fmt.Errorf("decode geocoding response: %w", err)
	}
	if len(body.Results) == 0 {
		return 0, 0, ErrUnknownCity
	}
	return body.Results[0].Latitude, body.Results[0].Longitude, nil
}

// DailyForecast returns exactly `days` days of max temperature and
// precipitation. Fewer rows than the horizon is an error; the series is
// never padded or fabricated.
func (c *WeatherClient) DailyForecast(ctx context.Context, lat, lon float64, days int) ([]WeatherDay, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("daily", "temperature_2m_max,precipitation_sum")
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(days))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ForecastURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", res.StatusCode)
	}
	var body struct {
		Daily struct {
			Time             []string  `json:"time"`
			TemperatureMax   []float64 `json:"temperature_2m_max"`
			PrecipitationSum []float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	n := len(body.Daily.Time)
	if n < days || len(body.Daily.TemperatureMax) < days || len(body.Daily.PrecipitationSum) < days {
		return nil, fmt.Errorf("insufficient forecast data: got %d days, need %d", n, days)
	}
	out := make([]WeatherDay, days)
	for i := 0; i < days; i++ {
		day, err := time.Parse("2006-01-02", body.Daily.Time[i])
		if err != nil {
			return nil, fmt.Errorf("bad forecast date %q: %w", body.Daily.Time[i], err)
		}
		out[i] = WeatherDay{
			Day:  day,
			Temp: body.Daily.TemperatureMax[i],
			Rain: body.Daily.PrecipitationSum[i],
		}
	}
	return out, nil
}
