package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/lolweather/lolweather/internal/forecast"
	"github.com/lolweather/lolweather/internal/owm"
	"github.com/lolweather/lolweather/internal/weather"
)

// viewHeader names the client screen a request is for. A newer request for
// the same screen cancels and supersedes an older one still in flight.
const viewHeader = "X-View-ID"

var errSuperseded = errors.New("superseded by a newer request")

// CurrentResponse adds human descriptors to the current snapshot.
type CurrentResponse struct {
	forecast.CurrentWeather
	WindDescription      string `json:"wind_description"`
	HumidityDescription  string `json:"humidity_description"`
	FeelsLikeDescription string `json:"feels_like_description"`
}

func newCurrentResponse(c forecast.CurrentWeather) CurrentResponse {
	return CurrentResponse{
		CurrentWeather:       c,
		WindDescription:      forecast.WindDescription(c.WindSpeed),
		HumidityDescription:  forecast.HumidityDescription(c.Humidity),
		FeelsLikeDescription: forecast.FeelsLikeDescription(c.Temperature, c.FeelsLike),
	}
}

// ForecastResponse adds the week palette to an assembled forecast.
type ForecastResponse struct {
	forecast.WeekForecast
	Palette forecast.Palette `json:"palette"`
}

func newForecastResponse(wf forecast.WeekForecast) ForecastResponse {
	palette := forecast.DefaultPalette
	if len(wf.Days) > 0 {
		palette = forecast.WeekPalette(wf.MaxWeekTemp(), wf.MinWeekTemp())
	}
	return ForecastResponse{WeekForecast: wf, Palette: palette}
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	serveLatest(s, w, r, "current", func(ctx context.Context) (any, error) {
		res := s.weather.CurrentWeather(ctx, q)
		if !res.OK() {
			return nil, res.Err
		}
		return newCurrentResponse(res.Value), nil
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	serveLatest(s, w, r, "forecast", func(ctx context.Context) (any, error) {
		res := s.weather.Forecast(ctx, q)
		if !res.OK() {
			return nil, res.Err
		}
		return newForecastResponse(res.Value), nil
	})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	serveLatest(s, w, r, "complete", func(ctx context.Context) (any, error) {
		res := s.weather.CompleteWeather(ctx, q)
		if !res.OK() {
			return nil, res.Err
		}
		return newForecastResponse(res.Value), nil
	})
}

// serveLatest runs fetch and writes its result. Requests carrying a view id
// are tracked so only the newest one per view gets a result; older ones
// receive 409.
func serveLatest(s *Server, w http.ResponseWriter, r *http.Request, kind string, fetch func(context.Context) (any, error)) {
	view := r.Header.Get(viewHeader)
	if view == "" {
		v, err := fetch(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
		return
	}

	ctx, ticket := s.latest.Begin(r.Context(), view+"/"+kind)
	v, err := fetch(ctx)

	applied := s.latest.Commit(ticket, func() {
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	})
	if !applied {
		writeError(w, errSuperseded)
	}
}

// parseQuery reads ?city= or ?lat=&lon=.
func parseQuery(r *http.Request) (owm.Query, error) {
	params := r.URL.Query()
	latStr, lonStr := params.Get("lat"), params.Get("lon")

	var q owm.Query
	switch {
	case latStr != "" || lonStr != "":
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return q, fmt.Errorf("%w: lat: %v", owm.ErrInvalidQuery, err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return q, fmt.Errorf("%w: lon: %v", owm.ErrInvalidQuery, err)
		}
		q = owm.ByCoordinates(lat, lon)
	default:
		q = owm.ByCity(params.Get("city"))
	}
	return q, q.Validate()
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func statusFor(err error) (int, string) {
	if errors.Is(err, errSuperseded) {
		return http.StatusConflict, "superseded"
	}
	kind := weather.Kind(err)
	switch kind {
	case "invalid_query":
		return http.StatusBadRequest, kind
	case "not_found":
		return http.StatusNotFound, kind
	case "canceled":
		return 499, kind
	case "malformed":
		return http.StatusUnprocessableEntity, kind
	case "network":
		return http.StatusBadGateway, kind
	default:
		return http.StatusInternalServerError, kind
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := statusFor(err)
	if status >= 500 {
		log.Printf("api: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}
