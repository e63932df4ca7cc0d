// Package movies searches The Movie Database (TMDB) for titles matching a
// free-text query. It is a standalone capability: nothing in the chat
// request path calls it, but it shares the server's degrade-to-placeholder
// error policy — failures come back as a single error string, never as an
// error value.
package movies

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	maxResults     = 4
)

// Client searches TMDB. A missing API key degrades every search into a
// configuration error string.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
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

// New returns a movie search client.
func New(apiKey string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Results []struct {
		Title    string `json:"title"`
		Overview string `json:"overview"`
	} `json:"results"`
}

// Search returns up to four movie titles for the query. When filter is
// non-empty only results whose title or overview contains it
// (case-insensitively) are kept, still truncated to four. Every failure
// class maps to a one-element slice holding a placeholder string.
func (c *Client) Search(ctx context.Context, query, filter string) []string {
	if c.apiKey == "" {
		return []string{"Error: TMDB API Key not configured"}
	}

	endpoint := c.baseURL + "/search/movie?api_key=" + url.QueryEscape(c.apiKey) +
		"&query=" + url.QueryEscape(query) + "&language=en-US"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.Error().Err(err).Msg("movies: building request")
		return []string{"Error fetching movie data"}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("query", query).Msg("movies: fetch failed")
		return []string{"Error fetching movie data"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn().Int("status", resp.StatusCode).Msg("movies: non-2xx response")
		return []string{"Error fetching movie data"}
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error().Err(err).Msg("movies: decoding payload")
		return []string{"Error processing movie data"}
	}

	needle := strings.ToLower(filter)
	titles := make([]string, 0, maxResults)
	for _, m := range payload.Results {
		if needle != "" &&
			!strings.Contains(strings.ToLower(m.Title), needle) &&
			!strings.Contains(strings.ToLower(m.Overview), needle) {
			continue
		}
		title := m.Title
		if title == "" {
			title = "Unknown Title"
		}
		titles = append(titles, title)
		if len(titles) == maxResults {
			break
		}
	}
	return titles
}
