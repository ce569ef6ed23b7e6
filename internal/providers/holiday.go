package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HolidayClient talks to the Calendarific holidays API.
type HolidayClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewHolidayClient returns a client against the public Calendarific endpoint.
func NewHolidayClient(apiKey string) *HolidayClient {
	return &HolidayClient{
		BaseURL: "https://calendarific.com/api/v2/holidays",
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Flags returns one 0/1 holiday flag per day for `days` days starting at
// start. Weekends always count as holidays. A horizon crossing Dec 31
// queries both years. A provider failure degrades to the deterministic
// weekends-only series instead of failing the caller; fellBack reports
// which series was produced.
func (c *HolidayClient) Flags(ctx context.Context, country, location string, start time.Time, days int) (flags []int, fellBack bool) {
	holidays, err := c.fetch(ctx, country, location, start.Year())
	if end := start.AddDate(0, 0, days-1); err == nil && end.Year() != start.Year() {
		var next map[string]bool
		next, err = c.fetch(ctx, country, location, end.Year())
		for k := range next {
			holidays[k] = true
		}
	}
	if err != nil {
		return WeekendFlags(start, days), true
	}
	flags = make([]int, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		if isWeekend(day) || holidays[dateKey(day)] {
			flags[i] = 1
		}
	}
	return flags, false
}

// fetch pulls the year's national holidays for a country.
func (c *HolidayClient) fetch(ctx context.Context, country, location string, year int) (map[string]bool, error) {
	q := url.Values{}
	q.Set("api_key", c.APIKey)
	q.Set("country", country)
	q.Set("year", strconv.Itoa(year))
	q.Set("type", "national")
	if location != "" {
		q.Set("location", location)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holiday request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday API returned status %d", res.StatusCode)
	}
	var body struct {
		Response struct {
			Holidays []struct {
				Date struct {
					ISO string `json:"iso"`
				} `json:"date"`
			} `json:"holidays"`
		} `json:"response"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode holiday response: %w", err)
	}
	holidays := make(map[string]bool, len(body.Response.Holidays))
	for _, h := range body.Response.Holidays {
		iso := h.Date.ISO
		if len(iso) >= 10 {
			iso = iso[:10] // Some entries carry a time component
		}
		if _, err := time.Parse("2006-01-02", iso); err == nil {
			holidays[iso] = true
		}
	}
	return holidays, nil
}

// WeekendFlags is the deterministic fallback series: Saturdays and
// Sundays flagged, everything else zero.
func WeekendFlags(start time.Time, days int) []int {
	flags := make([]int, days)
	for i := 0; i < days; i++ {
		if isWeekend(start.AddDate(0, 0, i)) {
			flags[i] = 1
		}
	}
	return flags
}

func isWeekend(d time.Time) bool {
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}
