package weather

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lolweather/lolweather/internal/forecast"
	"github.com/lolweather/lolweather/internal/owm"
	"github.com/lolweather/lolweather/internal/store"
)

type fakeProvider struct {
	current     *owm.CurrentResponse
	forecast    *owm.ForecastResponse
	currentErr  error
	forecastErr error
	calls       atomic.Int32
}

func (f *fakeProvider) Current(ctx context.Context, q owm.Query) (*owm.CurrentResponse, *owm.FetchResult, error) {
	f.calls.Add(1)
	result := &owm.FetchResult{Endpoint: owm.EndpointCurrent, HTTPStatus: 200, Body: []byte(`{"name":"Valencia"}`)}
	if f.currentErr != nil {
		result.HTTPStatus = 500
		result.Body = nil
		return nil, result, f.currentErr
	}
	result.RecordCount = 1
	return f.current, result, nil
}

func (f *fakeProvider) Forecast(ctx context.Context, q owm.Query) (*owm.ForecastResponse, *owm.FetchResult, error) {
	f.calls.Add(1)
	result := &owm.FetchResult{Endpoint: owm.EndpointForecast, HTTPStatus: 200, Body: []byte(`{"list":[]}`)}
	if f.forecastErr != nil {
		result.HTTPStatus = 500
		result.Body = nil
		return nil, result, f.forecastErr
	}
	result.RecordCount = len(f.forecast.List)
	return f.forecast, result, nil
}

func day(d, hour int, temp float64, desc string) owm.ForecastItem {
	return owm.ForecastItem{
		Dt:      time.Date(2025, 7, d, hour, 0, 0, 0, time.UTC).Unix(),
		Main:    &owm.Main{Temp: temp, FeelsLike: temp, Humidity: 50},
		Wind:    &owm.Wind{Speed: 3},
		Weather: []owm.Condition{{Description: desc}},
	}
}

func testForecast() *owm.ForecastResponse {
	var list []owm.ForecastItem
	temps := []float64{18, 17, 19, 22, 27, 28, 24, 20}
	for d := 5; d <= 6; d++ {
		for i, temp := range temps {
			list = append(list, day(d, i*3, temp, "cielo claro"))
		}
	}
	return &owm.ForecastResponse{
		List: list,
		City: &owm.ForecastCity{Name: "Valencia", Country: "ES"},
	}
}

func testCurrent() *owm.CurrentResponse {
	return &owm.CurrentResponse{
		Name:    "Valencia",
		Dt:      time.Date(2025, 7, 5, 10, 0, 0, 0, time.UTC).Unix(),
		Main:    &owm.Main{Temp: 26, FeelsLike: 27, Humidity: 55},
		Wind:    &owm.Wind{Speed: 4},
		Weather: []owm.Condition{{Description: "nubes dispersas"}},
	}
}

func newTestRepository(p Provider, archive Archive) *Repository {
	a := forecast.NewAssembler(time.UTC,
		forecast.WithEmoteChooser(forecast.FirstChooser[forecast.Emote]{}),
		forecast.WithMessageChooser(forecast.FirstChooser[string]{}),
	)
	return NewRepository(p, a, archive)
}

func TestCurrentWeather(t *testing.T) {
	repo := newTestRepository(&fakeProvider{current: testCurrent()}, nil)

	res := repo.CurrentWeather(context.Background(), owm.ByCity("Valencia"))
	if !res.OK() {
		t.Fatalf("CurrentWeather: %v", res.Err)
	}
	if res.Value.CityName != "Valencia" || res.Value.Temperature != 26 {
		t.Errorf("current = %+v", res.Value)
	}
	if res.Value.ThemeBand != forecast.BandWarm {
		t.Errorf("ThemeBand = %s, want warm", res.Value.ThemeBand)
	}
	if res.Value.Description != "Nubes dispersas" {
		t.Errorf("Description = %q", res.Value.Description)
	}
}

func TestCurrentWeatherFailure(t *testing.T) {
	netErr := fmt.Errorf("%w: connection refused", owm.ErrNetwork)
	repo := newTestRepository(&fakeProvider{currentErr: netErr}, nil)

	res := repo.CurrentWeather(context.Background(), owm.ByCity("Valencia"))
	if res.OK() {
		t.Fatal("expected failure")
	}
	if !errors.Is(res.Err, owm.ErrNetwork) {
		t.Errorf("err = %v, want ErrNetwork", res.Err)
	}
}

func TestForecast(t *testing.T) {
	repo := newTestRepository(&fakeProvider{forecast: testForecast()}, nil)

	res := repo.Forecast(context.Background(), owm.ByCity("Valencia"))
	if !res.OK() {
		t.Fatalf("Forecast: %v", res.Err)
	}
	wf := res.Value
	if wf.CityName != "Valencia" || wf.CountryCode != "ES" {
		t.Errorf("city = %q/%q", wf.CityName, wf.CountryCode)
	}
	if len(wf.Days) != 2 {
		t.Fatalf("len(Days) = %d, want 2", len(wf.Days))
	}
	if wf.Days[0].MaxTemp != 28 || wf.Days[0].MinTemp != 17 || wf.Days[0].AvgTemp != 22.5 {
		t.Errorf("day 0 = %v/%v/%v, want 28/17/22.5", wf.Days[0].MaxTemp, wf.Days[0].MinTemp, wf.Days[0].AvgTemp)
	}
	if wf.Current != nil {
		t.Error("Forecast should not attach current conditions")
	}
}

func TestForecastEmptyIsNotAnError(t *testing.T) {
	p := &fakeProvider{forecast: &owm.ForecastResponse{
		List: []owm.ForecastItem{},
		City: &owm.ForecastCity{Name: "Valencia", Country: "ES"},
	}}
	res := newTestRepository(p, nil).Forecast(context.Background(), owm.ByCity("Valencia"))
	if !res.OK() {
		t.Fatalf("Forecast: %v", res.Err)
	}
	if res.Value.Days == nil || len(res.Value.Days) != 0 {
		t.Errorf("Days = %v, want empty", res.Value.Days)
	}
}

func TestCompleteWeatherJoinPolicy(t *testing.T) {
	netErr := fmt.Errorf("%w: timeout", owm.ErrNetwork)
	malformed := fmt.Errorf("%w: missing list", owm.ErrMalformed)

	tests := []struct {
		name        string
		currentErr  error
		forecastErr error
		wantOK      bool
		wantCurrent bool
		wantErr     error
	}{
		{"both succeed", nil, nil, true, true, nil},
		{"current fails", netErr, nil, true, false, nil},
		{"forecast fails", nil, malformed, false, false, owm.ErrMalformed},
		{"both fail", netErr, netErr, false, false, owm.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{
				current:     testCurrent(),
				forecast:    testForecast(),
				currentErr:  tt.currentErr,
				forecastErr: tt.forecastErr,
			}
			res := newTestRepository(p, nil).CompleteWeather(context.Background(), owm.ByCity("Valencia"))

			if p.calls.Load() != 2 {
				t.Errorf("provider calls = %d, want 2", p.calls.Load())
			}
			if res.OK() != tt.wantOK {
				t.Fatalf("OK = %v, want %v (err %v)", res.OK(), tt.wantOK, res.Err)
			}
			if tt.wantErr != nil && !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("err = %v, want %v", res.Err, tt.wantErr)
			}
			if !tt.wantOK {
				return
			}
			if (res.Value.Current != nil) != tt.wantCurrent {
				t.Errorf("Current = %+v, want present=%v", res.Value.Current, tt.wantCurrent)
			}
			if len(res.Value.Days) != 2 {
				t.Errorf("len(Days) = %d, want 2", len(res.Value.Days))
			}
		})
	}
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := store.New(db)
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestCompleteWeatherArchivesCalls(t *testing.T) {
	s := setupTestStore(t)
	p := &fakeProvider{
		current:    testCurrent(),
		forecast:   testForecast(),
		currentErr: fmt.Errorf("%w: status 500", owm.ErrNetwork),
	}
	ctx := WithRequestID(context.Background(), "req-42")

	res := newTestRepository(p, s).CompleteWeather(ctx, owm.ByCity("Valencia"))
	if !res.OK() {
		t.Fatalf("CompleteWeather: %v", res.Err)
	}

	health, err := s.FetchHealthSince(1)
	if err != nil {
		t.Fatalf("FetchHealthSince: %v", err)
	}
	byEndpoint := map[string]store.FetchHealth{}
	for _, h := range health {
		byEndpoint[h.Endpoint] = h
	}
	if h := byEndpoint[owm.EndpointForecast]; h.Succeeded != 1 || h.Records != 16 {
		t.Errorf("forecast health = %+v", h)
	}
	if h := byEndpoint[owm.EndpointCurrent]; h.Failed != 1 {
		t.Errorf("current health = %+v", h)
	}

	errs, err := s.RecentFetchErrors(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 1 || errs[0].RequestID.String != "req-42" || errs[0].LocationID.String != "valencia" {
		t.Errorf("errors = %+v", errs)
	}

	stats, err := s.ArchiveStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Payloads != 1 || stats.ByEndpoint[owm.EndpointForecast] != 1 {
		t.Errorf("archive = %+v, want only the forecast body", stats)
	}

	latest, err := s.LatestRawPayload(owm.EndpointForecast, "valencia")
	if err != nil || latest == nil {
		t.Fatalf("LatestRawPayload = %v, %v", latest, err)
	}
	if body, err := latest.Body(); err != nil || string(body) != `{"list":[]}` {
		t.Errorf("archived body = %q, %v", body, err)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("%w: city required", owm.ErrInvalidQuery), "invalid_query"},
		{fmt.Errorf("%w: eof", owm.ErrNetwork), "network"},
		{fmt.Errorf("%w: atlantis", owm.ErrNotFound), "not_found"},
		{fmt.Errorf("%w: status 401", owm.ErrUnauthorized), "unauthorized"},
		{fmt.Errorf("%w: %w", owm.ErrNetwork, context.Canceled), "canceled"},
		{fmt.Errorf("%w: missing city", owm.ErrMalformed), "malformed"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
