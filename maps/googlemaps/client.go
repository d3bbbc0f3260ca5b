// Package googlemaps implements caravan.MapsClient against the Google Maps
// Geocoding and Directions web services.
package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	caravan "github.com/nevindra/caravan"
)

const defaultBaseURL = "https://maps.googleapis.com"

// Client talks to the Google Maps web services with a single API key.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API host, used by tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient creates a maps client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// responseLanguage maps the plan language to the Maps API language code.
// Chinese requests ask for Traditional Chinese, matching the traveler-facing
// prompt packs.
func responseLanguage(language caravan.Language) string {
	switch language {
	case caravan.LanguageChinese:
		return "zh-TW"
	case caravan.LanguageJapanese:
		return "ja"
	default:
		return "en"
	}
}

// --- Geocoding ---

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location caravan.LatLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Geocode resolves a place name to coordinates via the Geocoding API.
func (c *Client) Geocode(ctx context.Context, place string, language caravan.Language) (caravan.LatLng, error) {
	q := url.Values{}
	q.Set("address", place)
	q.Set("language", responseLanguage(language))
	q.Set("key", c.apiKey)

	var resp geocodeResponse
	if err := c.get(ctx, "/maps/api/geocode/json", q, &resp); err != nil {
		return caravan.LatLng{}, err
	}
	if resp.Status != "OK" {
		return caravan.LatLng{}, fmt.Errorf("geocode %q: status %s %s", place, resp.Status, resp.ErrorMessage)
	}
	if len(resp.Results) == 0 {
		return caravan.LatLng{}, fmt.Errorf("geocode %q: no results", place)
	}
	return resp.Results[0].Geometry.Location, nil
}

// --- Directions ---

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Duration returns the duration text of the first leg of the first route,
// departing at noon local time today. Noon gives a representative mid-day
// estimate regardless of when the plan runs.
func (c *Client) Duration(ctx context.Context, from, to caravan.LatLng, mode caravan.TravelMode, language caravan.Language) (string, error) {
	now := c.now()
	departure := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())

	q := url.Values{}
	q.Set("origin", formatLatLng(from))
	q.Set("destination", formatLatLng(to))
	q.Set("mode", string(mode))
	q.Set("language", responseLanguage(language))
	q.Set("alternatives", "false")
	q.Set("departure_time", strconv.FormatInt(departure.Unix(), 10))
	q.Set("key", c.apiKey)

	var resp directionsResponse
	if err := c.get(ctx, "/maps/api/directions/json", q, &resp); err != nil {
		return "", err
	}
	if resp.Status != "OK" {
		return "", fmt.Errorf("directions: status %s %s", resp.Status, resp.ErrorMessage)
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return "", fmt.Errorf("directions: empty route")
	}
	return resp.Routes[0].Legs[0].Duration.Text, nil
}

func formatLatLng(ll caravan.LatLng) string {
	return strconv.FormatFloat(ll.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(ll.Lng, 'f', -1, 64)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &caravan.ErrHTTP{Status: resp.StatusCode, Body: string(body)}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Compile-time interface check.
var _ caravan.MapsClient = (*Client)(nil)
