// Package weather fetches current conditions from the Open-Meteo forecast
// API and normalises them into prompt-ready strings. The client never
// returns an error: failures degrade into placeholder text so the caller
// can always embed the result in a prompt.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.open-meteo.com/v1"

// Snapshot is the normalised weather view for one request. Every field is a
// display string: numeric values are formatted, missing values are "N/A",
// and whole-snapshot failures are "Unavailable" (transport) or "Error"
// (malformed payload).
type Snapshot struct {
	Temperature  string
	Condition    string
	RainTodayMM  string
	TempMaxToday string
	TempMinToday string
}

func uniform(v string) Snapshot {
	return Snapshot{v, v, v, v, v}
}

// Client issues a single synchronous request per lookup. No retries.
type Client struct {
	httpc   *http.Client
	baseURL string
	log     zerolog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint (used in tests).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// New returns a weather client.
func New(log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		httpc:   &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature *float64 `json:"temperature"`
		WeatherCode *int     `json:"weathercode"`
	} `json:"current_weather"`
	Daily struct {
		TemperatureMax   []*float64 `json:"temperature_2m_max"`
		TemperatureMin   []*float64 `json:"temperature_2m_min"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// Current fetches current conditions plus today's aggregates for the given
// coordinates. Transport or HTTP failure yields an all-"Unavailable"
// snapshot; a payload that cannot be decoded yields all-"Error". Individual
// missing fields on success become "N/A".
func (c *Client) Current(ctx context.Context, latitude, longitude float64) Snapshot {
	url := fmt.Sprintf(
		"%s/forecast?latitude=%s&longitude=%s&daily=temperature_2m_max,temperature_2m_min,precipitation_sum&current_weather=true&timezone=auto",
		c.baseURL,
		strconv.FormatFloat(latitude, 'f', -1, 64),
		strconv.FormatFloat(longitude, 'f', -1, 64),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Error().Err(err).Msg("weather: building request")
		return uniform("Error")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Float64("lat", latitude).Float64("lon", longitude).Msg("weather: fetch failed")
		return uniform("Unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().Int("status", resp.StatusCode).Msg("weather: non-2xx response")
		return uniform("Unavailable")
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error().Err(err).Msg("weather: decoding payload")
		return uniform("Error")
	}

	snap := Snapshot{
		Temperature:  formatValue(payload.CurrentWeather.Temperature),
		Condition:    conditionLabel(payload.CurrentWeather.WeatherCode),
		RainTodayMM:  formatValue(first(payload.Daily.PrecipitationSum)),
		TempMaxToday: formatValue(first(payload.Daily.TemperatureMax)),
		TempMinToday: formatValue(first(payload.Daily.TemperatureMin)),
	}
	return snap
}

func first(vals []*float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	return vals[0]
}

func formatValue(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
