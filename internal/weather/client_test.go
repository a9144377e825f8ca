package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const upstreamPayload = `{
	"name": "Pune",
	"sys": {"country": "IN"},
	"main": {"temp": 27.4, "feels_like": 29.1, "humidity": 64, "pressure": 1009},
	"weather": [{"description": "scattered clouds", "icon": "03d"}],
	"wind": {"speed": 3.6, "deg": 220},
	"visibility": 6000
}`

func TestCurrentReshapesUpstream(t *testing.T) {
	t.Parallel()

	var gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(upstreamPayload))
	}))
	defer upstream.Close()

	c := New(Options{BaseURL: upstream.URL, APIKey: "test-key"})

	report, err := c.Current(context.Background(), "Pune")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if report.Location != "Pune" || report.Country != "IN" {
		t.Fatalf("location = %q/%q", report.Location, report.Country)
	}
	if report.Temperature != 27.4 {
		t.Fatalf("temperature = %v", report.Temperature)
	}
	if report.Description != "Scattered Clouds" {
		t.Fatalf("description = %q", report.Description)
	}
	if report.WindDirection != 220 {
		t.Fatalf("wind_direction = %v", report.WindDirection)
	}
	if report.VisibilityKm != 6 {
		t.Fatalf("visibility = %v, want km", report.VisibilityKm)
	}
	if report.Timestamp == "" {
		t.Fatal("expected a timestamp")
	}
	if gotQuery == "" || !strings.Contains(gotQuery, "q=Pune") || !strings.Contains(gotQuery, "units=metric") {
		t.Fatalf("upstream query = %q", gotQuery)
	}
}

func TestCurrentWindDirectionDefaultsToZero(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Pune","main":{"temp":20},"weather":[],"wind":{"speed":1}}`))
	}))
	defer upstream.Close()

	c := New(Options{BaseURL: upstream.URL, APIKey: "k"})
	report, err := c.Current(context.Background(), "Pune")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if report.WindDirection != 0 {
		t.Fatalf("wind_direction = %v, want 0", report.WindDirection)
	}
}

func TestCurrentNonOKMapsToNotFound(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":"404"}`, http.StatusNotFound)
	}))
	defer upstream.Close()

	c := New(Options{BaseURL: upstream.URL, APIKey: "k"})
	if _, err := c.Current(context.Background(), "Nowhereville"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCurrentWithoutAPIKey(t *testing.T) {
	t.Parallel()

	c := New(Options{BaseURL: "http://example.invalid"})
	if c.Configured() {
		t.Fatal("Configured() = true without a key")
	}
	if _, err := c.Current(context.Background(), "Pune"); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	if got := titleCase("light intensity drizzle"); got != "Light Intensity Drizzle" {
		t.Fatalf("titleCase = %q", got)
	}
	if got := titleCase(""); got != "" {
		t.Fatalf("titleCase empty = %q", got)
	}
}
