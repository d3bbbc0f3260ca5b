package googlemaps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	caravan "github.com/nevindra/caravan"
)

func newTestServer(t *testing.T, response string) (*httptest.Server, *[]url.Values) {
	t.Helper()
	var queries []url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query())
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &queries
}

func TestGeocode(t *testing.T) {
	server, queries := newTestServer(t, `{
		"status": "OK",
		"results": [{"geometry": {"location": {"lat": 35.6812, "lng": 139.7671}}}]
	}`)
	client := NewClient("key-1", WithBaseURL(server.URL))

	ll, err := client.Geocode(context.Background(), "Tokyo Station", caravan.LanguageChinese)
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if ll.Lat != 35.6812 || ll.Lng != 139.7671 {
		t.Fatalf("LatLng = %+v", ll)
	}

	q := (*queries)[0]
	if q.Get("address") != "Tokyo Station" {
		t.Fatalf("address = %q", q.Get("address"))
	}
	if q.Get("language") != "zh-TW" {
		t.Fatalf("language = %q, want Traditional Chinese", q.Get("language"))
	}
	if q.Get("key") != "key-1" {
		t.Fatalf("key = %q", q.Get("key"))
	}
}

func TestGeocodeStatusError(t *testing.T) {
	server, _ := newTestServer(t, `{"status": "ZERO_RESULTS", "results": []}`)
	client := NewClient("key-1", WithBaseURL(server.URL))

	if _, err := client.Geocode(context.Background(), "nowhere", caravan.LanguageEnglish); err == nil {
		t.Fatal("want error on non-OK status")
	}
}

func TestDuration(t *testing.T) {
	server, queries := newTestServer(t, `{
		"status": "OK",
		"routes": [{"legs": [{"duration": {"text": "25 mins"}}]}]
	}`)

	fixed := time.Date(2026, time.August, 24, 9, 30, 0, 0, time.UTC)
	client := NewClient("key-1", WithBaseURL(server.URL), WithClock(func() time.Time { return fixed }))

	got, err := client.Duration(context.Background(),
		caravan.LatLng{Lat: 35.68, Lng: 139.76},
		caravan.LatLng{Lat: 35.71, Lng: 139.79},
		caravan.TravelModeTransit, caravan.LanguageJapanese)
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if got != "25 mins" {
		t.Fatalf("duration = %q", got)
	}

	q := (*queries)[0]
	if q.Get("mode") != "transit" {
		t.Fatalf("mode = %q", q.Get("mode"))
	}
	if q.Get("language") != "ja" {
		t.Fatalf("language = %q", q.Get("language"))
	}
	if q.Get("origin") != "35.68,139.76" || q.Get("destination") != "35.71,139.79" {
		t.Fatalf("origin = %q, destination = %q", q.Get("origin"), q.Get("destination"))
	}

	// Departure is pinned to noon of the request's local day.
	noon := time.Date(2026, time.August, 24, 12, 0, 0, 0, time.UTC)
	if q.Get("departure_time") != strconv.FormatInt(noon.Unix(), 10) {
		t.Fatalf("departure_time = %q, want noon", q.Get("departure_time"))
	}
}

func TestDurationEmptyRoute(t *testing.T) {
	server, _ := newTestServer(t, `{"status": "OK", "routes": []}`)
	client := NewClient("key-1", WithBaseURL(server.URL))

	_, err := client.Duration(context.Background(), caravan.LatLng{}, caravan.LatLng{},
		caravan.TravelModeDriving, caravan.LanguageEnglish)
	if err == nil {
		t.Fatal("want error on empty route list")
	}
}

func TestHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over query limit", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)
	client := NewClient("key-1", WithBaseURL(server.URL))

	_, err := client.Geocode(context.Background(), "Tokyo", caravan.LanguageEnglish)
	httpErr, ok := err.(*caravan.ErrHTTP)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if httpErr.Status != http.StatusTooManyRequests {
		t.Fatalf("status = %d", httpErr.Status)
	}
}
