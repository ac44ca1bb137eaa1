package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/lolweather/lolweather/internal/httputil"
	"github.com/lolweather/lolweather/internal/metrics"
	"github.com/lolweather/lolweather/internal/models"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	EndpointCurrent  = "weather"
	EndpointForecast = "forecast"

	// forecastCount is five days of 3-hour steps.
	forecastCount = 40
)

var (
	// ErrNetwork covers transport failures, timeouts and provider errors
	// not listed below.
	ErrNetwork = errors.New("network failure")
	// ErrNotFound is the provider's 404 for an unknown city.
	ErrNotFound = errors.New("location not found")
	// ErrUnauthorized is the provider rejecting the API key.
	ErrUnauthorized = errors.New("provider rejected api key")
	// ErrMalformed covers undecodable bodies and missing fields.
	ErrMalformed = errors.New("malformed response")
	// ErrInvalidQuery is returned before any request is made.
	ErrInvalidQuery = errors.New("invalid query")
)

// Query selects a location by city name or coordinates.
type Query struct {
	City  string
	Coord *models.Coordinates
}

func ByCity(name string) Query {
	return Query{City: strings.TrimSpace(name)}
}

func ByCoordinates(lat, lon float64) Query {
	return Query{Coord: &models.Coordinates{Lat: lat, Lon: lon}}
}

func (q Query) Validate() error {
	if q.Coord != nil {
		if q.Coord.Lat < -90 || q.Coord.Lat > 90 || q.Coord.Lon < -180 || q.Coord.Lon > 180 {
			return fmt.Errorf("%w: coordinates out of range: %.4f,%.4f", ErrInvalidQuery, q.Coord.Lat, q.Coord.Lon)
		}
		return nil
	}
	if q.City == "" {
		return fmt.Errorf("%w: city or coordinates required", ErrInvalidQuery)
	}
	return nil
}

// String returns the location id used for auditing and cache keys.
func (q Query) String() string {
	if q.Coord != nil {
		return fmt.Sprintf("%.4f,%.4f", q.Coord.Lat, q.Coord.Lon)
	}
	return strings.ToLower(q.City)
}

func (q Query) values() url.Values {
	v := url.Values{}
	if q.Coord != nil {
		v.Set("lat", strconv.FormatFloat(q.Coord.Lat, 'f', -1, 64))
		v.Set("lon", strconv.FormatFloat(q.Coord.Lon, 'f', -1, 64))
	} else {
		v.Set("q", q.City)
	}
	return v
}

// FetchResult describes one provider call for auditing.
type FetchResult struct {
	Endpoint     string
	HTTPStatus   int
	ResponseSize int
	RecordCount  int
	Body         []byte
}

type Config struct {
	APIKey  string
	BaseURL string
	Lang    string
	// RPS and Burst bound outgoing calls; RPS <= 0 disables limiting.
	RPS   float64
	Burst int
	// MaxRetryElapsed bounds retries of rate-limited (429) responses.
	MaxRetryElapsed time.Duration
}

// Client talks to the OpenWeatherMap 2.5 API.
type Client struct {
	apiKey       string
	baseURL      string
	lang         string
	client       *http.Client
	limiter      *rate.Limiter
	maxElapsed   time.Duration
	retryInitial time.Duration
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	lang := cfg.Lang
	if lang == "" {
		lang = "es"
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	maxElapsed := cfg.MaxRetryElapsed
	if maxElapsed == 0 {
		maxElapsed = 30 * time.Second
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		lang:         lang,
		client:       httputil.NewClient(),
		limiter:      rate.NewLimiter(limit, burst),
		maxElapsed:   maxElapsed,
		retryInitial: backoff.DefaultInitialInterval,
	}
}

// Current fetches the current conditions.
func (c *Client) Current(ctx context.Context, q Query) (*CurrentResponse, *FetchResult, error) {
	body, result, err := c.get(ctx, EndpointCurrent, q, nil)
	if err != nil {
		return nil, result, err
	}

	var data CurrentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, result, fmt.Errorf("%w: unmarshal current: %v", ErrMalformed, err)
	}
	if err := data.validate(); err != nil {
		return nil, result, err
	}
	result.RecordCount = 1
	return &data, result, nil
}

// Forecast fetches the 5-day, 3-hour-step forecast.
func (c *Client) Forecast(ctx context.Context, q Query) (*ForecastResponse, *FetchResult, error) {
	extra := url.Values{}
	extra.Set("cnt", strconv.Itoa(forecastCount))

	body, result, err := c.get(ctx, EndpointForecast, q, extra)
	if err != nil {
		return nil, result, err
	}

	var data ForecastResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, result, fmt.Errorf("%w: unmarshal forecast: %v", ErrMalformed, err)
	}
	if err := data.validate(); err != nil {
		return nil, result, err
	}
	result.RecordCount = len(data.List)
	return &data, result, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q Query, extra url.Values) ([]byte, *FetchResult, error) {
	result := &FetchResult{Endpoint: endpoint}
	if err := q.Validate(); err != nil {
		return nil, result, err
	}

	params := q.values()
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", c.lang)
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	var body []byte
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limit wait: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		metrics.ProviderLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.ProviderCallsTotal.WithLabelValues(endpoint, "error").Inc()
			return backoff.Permanent(fmt.Errorf("fetch %s: %w", endpoint, err))
		}
		defer resp.Body.Close()

		result.HTTPStatus = resp.StatusCode
		metrics.ProviderCallsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("rate limited: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			result.ResponseSize = len(b)
			err := fmt.Errorf("fetch %s: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(b)))
			switch resp.StatusCode {
			case http.StatusNotFound:
				err = fmt.Errorf("%w: %s: %w", ErrNotFound, q, err)
			case http.StatusUnauthorized:
				err = fmt.Errorf("%w: %w", ErrUnauthorized, err)
			}
			return backoff.Permanent(err)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInitial
	bo.MaxElapsedTime = c.maxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthorized) {
			return nil, result, err
		}
		return nil, result, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	result.ResponseSize = len(body)
	result.Body = body
	return body, result, nil
}
