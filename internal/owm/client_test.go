package owm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const forecastFixture = `{
  "cod": "200",
  "cnt": 3,
  "list": [
    {"dt": 1751716800, "main": {"temp": 27.4, "feels_like": 27.9, "humidity": 48, "pressure": 1014},
     "weather": [{"main": "Clear", "description": "cielo claro", "icon": "01d"}],
     "wind": {"speed": 3.2, "deg": 120}, "dt_txt": "2025-07-05 12:00:00"},
    {"dt": 1751727600, "main": {"temp": 28.1, "feels_like": 28.6, "humidity": 45, "pressure": 1013},
     "weather": [{"main": "Clouds", "description": "nubes dispersas", "icon": "03d"}],
     "wind": {"speed": 4.1, "deg": 130}, "dt_txt": "2025-07-05 15:00:00"},
    {"dt": 1751738400, "main": {"temp": 24.0, "feels_like": 24.2, "humidity": 60, "pressure": 1013},
     "weather": [],
     "wind": {"speed": 2.0, "deg": 90}, "dt_txt": "2025-07-05 18:00:00"}
  ],
  "city": {"name": "Valencia", "country": "ES", "coord": {"lat": 39.4699, "lon": -0.3763}, "timezone": 7200}
}`

const currentFixture = `{
  "coord": {"lat": 39.4699, "lon": -0.3763},
  "weather": [{"main": "Clear", "description": "cielo claro", "icon": "01d"}],
  "main": {"temp": 31.5, "feels_like": 33.0, "humidity": 40, "pressure": 1012},
  "wind": {"speed": 5.5, "deg": 100},
  "dt": 1751720000,
  "sys": {"country": "ES", "sunrise": 1751690000, "sunset": 1751742000},
  "name": "Valencia"
}`

func newTestClient(url string) *Client {
	c := NewClient(Config{APIKey: "test-key", BaseURL: url})
	c.retryInitial = time.Millisecond
	c.maxElapsed = time.Second
	return c
}

func TestForecastRequestAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("path = %q, want /forecast", r.URL.Path)
		}
		q := r.URL.Query()
		want := map[string]string{"q": "Valencia", "appid": "test-key", "units": "metric", "lang": "es", "cnt": "40"}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("query %s = %q, want %q", k, q.Get(k), v)
			}
		}
		w.Write([]byte(forecastFixture))
	}))
	defer srv.Close()

	resp, result, err := newTestClient(srv.URL).Forecast(context.Background(), ByCity("  Valencia "))
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if result.HTTPStatus != 200 || result.RecordCount != 3 || result.ResponseSize != len(forecastFixture) {
		t.Errorf("result = %+v", result)
	}
	if resp.City.Name != "Valencia" || resp.City.Country != "ES" {
		t.Errorf("city = %+v", resp.City)
	}

	samples := resp.Samples()
	if len(samples) != 3 {
		t.Fatalf("len(samples) = %d, want 3", len(samples))
	}
	s := samples[1]
	if s.Timestamp != 1751727600 || s.Temperature != 28.1 || s.FeelsLike != 28.6 ||
		s.Humidity != 45 || s.WindSpeed != 4.1 || s.ConditionText != "nubes dispersas" {
		t.Errorf("sample = %+v", s)
	}
	if samples[2].ConditionText != "" {
		t.Errorf("empty weather should give empty condition, got %q", samples[2].ConditionText)
	}
}

func TestCurrentByCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("path = %q, want /weather", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "39.4699" || q.Get("lon") != "-0.3763" {
			t.Errorf("lat/lon = %q/%q", q.Get("lat"), q.Get("lon"))
		}
		if q.Has("q") || q.Has("cnt") {
			t.Error("coordinate query should not send q or cnt")
		}
		w.Write([]byte(currentFixture))
	}))
	defer srv.Close()

	resp, _, err := newTestClient(srv.URL).Current(context.Background(), ByCoordinates(39.4699, -0.3763))
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if resp.Name != "Valencia" || resp.Sys.Country != "ES" {
		t.Errorf("resp = %+v", resp)
	}
	s := resp.Sample()
	if s.Temperature != 31.5 || s.ConditionText != "cielo claro" || s.Timestamp != 1751720000 {
		t.Errorf("sample = %+v", s)
	}
}

func TestRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(currentFixture))
	}))
	defer srv.Close()

	if _, _, err := newTestClient(srv.URL).Current(context.Background(), ByCity("Valencia")); err != nil {
		t.Fatalf("Current: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestProviderStatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		notWant error
	}{
		{"unknown city", http.StatusNotFound, `{"cod":"404","message":"city not found"}`, ErrNotFound, ErrNetwork},
		{"bad api key", http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, ErrUnauthorized, ErrNetwork},
		{"server error", http.StatusInternalServerError, `oops`, ErrNetwork, ErrNotFound},
		{"bad gateway", http.StatusBadGateway, ``, ErrNetwork, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				http.Error(w, tt.body, tt.status)
			}))
			defer srv.Close()

			_, result, err := newTestClient(srv.URL).Forecast(context.Background(), ByCity("Atlantis"))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if errors.Is(err, tt.notWant) {
				t.Errorf("err = %v, should not match %v", err, tt.notWant)
			}
			if calls.Load() != 1 {
				t.Errorf("calls = %d, want 1 (no retry)", calls.Load())
			}
			if result.HTTPStatus != tt.status {
				t.Errorf("HTTPStatus = %d, want %d", result.HTTPStatus, tt.status)
			}
		})
	}
}

func TestUnreachableIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, _, err := newTestClient(url).Current(context.Background(), ByCity("Valencia"))
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
}

func TestCanceledContextIsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(currentFixture))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := newTestClient(srv.URL).Current(ctx, ByCity("Valencia"))
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled in chain", err)
	}
}

func TestMalformedResponses(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		forecast bool
	}{
		{"invalid json", `{"list": [`, true},
		{"missing list", `{"city": {"name": "Valencia"}}`, true},
		{"null list", `{"list": null, "city": {"name": "Valencia"}}`, true},
		{"missing city", `{"list": []}`, true},
		{"item without main", `{"list": [{"dt": 1751716800}], "city": {"name": "Valencia"}}`, true},
		{"item without dt", `{"list": [{"main": {"temp": 20}}], "city": {"name": "Valencia"}}`, true},
		{"current without main", `{"weather": [{"description": "x"}], "name": "Valencia"}`, false},
		{"current without weather", `{"main": {"temp": 20}, "name": "Valencia"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(srv.URL)
			var err error
			if tt.forecast {
				_, _, err = c.Forecast(context.Background(), ByCity("Valencia"))
			} else {
				_, _, err = c.Current(context.Background(), ByCity("Valencia"))
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
			if errors.Is(err, ErrNetwork) {
				t.Error("malformed response should not be a network failure")
			}
		})
	}
}

func TestEmptyForecastListIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cnt": 0, "list": [], "city": {"name": "Valencia", "country": "ES"}}`))
	}))
	defer srv.Close()

	resp, _, err := newTestClient(srv.URL).Forecast(context.Background(), ByCity("Valencia"))
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(resp.Samples()) != 0 {
		t.Errorf("samples = %d, want 0", len(resp.Samples()))
	}
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		wantErr bool
	}{
		{"city", ByCity("Madrid"), false},
		{"blank city", ByCity("   "), true},
		{"zero value", Query{}, true},
		{"coordinates", ByCoordinates(40.4, -3.7), false},
		{"origin", ByCoordinates(0, 0), false},
		{"lat out of range", ByCoordinates(91, 0), true},
		{"lon out of range", ByCoordinates(0, -181), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("err = %v, want ErrInvalidQuery", err)
			}
		})
	}
}

func TestInvalidQueryMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv.URL).Forecast(context.Background(), Query{})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("err = %v, want ErrInvalidQuery", err)
	}
	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
}

func TestQueryString(t *testing.T) {
	if got := ByCity("Valencia").String(); got != "valencia" {
		t.Errorf("String() = %q, want valencia", got)
	}
	if got := ByCoordinates(39.46991, -0.37631).String(); got != "39.4699,-0.3763" {
		t.Errorf("String() = %q", got)
	}
}
