package weather

import (
	"context"
	"log"
	"sync"

	"github.com/lolweather/lolweather/internal/forecast"
	"github.com/lolweather/lolweather/internal/metrics"
	"github.com/lolweather/lolweather/internal/models"
	"github.com/lolweather/lolweather/internal/owm"
	"github.com/lolweather/lolweather/internal/store"
)

const source = "owm"

// Provider fetches raw weather data. *owm.Client implements it.
type Provider interface {
	Current(ctx context.Context, q owm.Query) (*owm.CurrentResponse, *owm.FetchResult, error)
	Forecast(ctx context.Context, q owm.Query) (*owm.ForecastResponse, *owm.FetchResult, error)
}

// Archive records provider calls. *store.Store implements it.
type Archive interface {
	StartFetch(source, endpoint string, locationID, requestID *string) (*store.FetchRun, error)
	FinishFetch(run *store.FetchRun, out store.FetchOutcome) error
	StoreRawPayload(runID *int64, source, endpoint string, locationID *string, payload []byte) (int64, error)
}

// Repository is the boundary between the provider and the presentation
// layer. Every operation returns a Result and never panics on provider
// failures.
type Repository struct {
	provider  Provider
	assembler *forecast.Assembler
	archive   Archive
}

// NewRepository builds a repository. archive may be nil.
func NewRepository(p Provider, a *forecast.Assembler, archive Archive) *Repository {
	return &Repository{provider: p, assembler: a, archive: archive}
}

// CurrentWeather fetches the current-conditions snapshot.
func (r *Repository) CurrentWeather(ctx context.Context, q owm.Query) Result[forecast.CurrentWeather] {
	cur, err := r.fetchCurrent(ctx, q)
	r.record("current", err)
	if err != nil {
		log.Printf("weather: current %s: %v", q, err)
		return fail[forecast.CurrentWeather](err)
	}
	return ok(cur)
}

// Forecast fetches and assembles the week forecast without current
// conditions.
func (r *Repository) Forecast(ctx context.Context, q owm.Query) Result[forecast.WeekForecast] {
	fc, err := r.fetchForecast(ctx, q)
	r.record("forecast", err)
	if err != nil {
		log.Printf("weather: forecast %s: %v", q, err)
		return fail[forecast.WeekForecast](err)
	}
	return ok(r.assemble(fc, nil))
}

// CompleteWeather fetches current conditions and the forecast concurrently
// and joins them. A forecast failure fails the result. A current failure
// alone is logged and yields a forecast with Current == nil.
func (r *Repository) CompleteWeather(ctx context.Context, q owm.Query) Result[forecast.WeekForecast] {
	var (
		wg     sync.WaitGroup
		cur    forecast.CurrentWeather
		fc     *forecastData
		curErr error
		fcErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		cur, curErr = r.fetchCurrent(ctx, q)
	}()
	go func() {
		defer wg.Done()
		fc, fcErr = r.fetchForecast(ctx, q)
	}()
	wg.Wait()

	if fcErr != nil {
		r.record("complete", fcErr)
		log.Printf("weather: complete %s: forecast leg: %v", q, fcErr)
		return fail[forecast.WeekForecast](fcErr)
	}
	r.record("complete", nil)

	var current *forecast.CurrentWeather
	if curErr != nil {
		log.Printf("weather: complete %s: current leg failed, returning forecast only: %v", q, curErr)
	} else {
		current = &cur
	}
	return ok(r.assemble(fc, current))
}

type forecastData struct {
	samples []models.WeatherSample
	city    string
	country string
}

func (r *Repository) fetchCurrent(ctx context.Context, q owm.Query) (forecast.CurrentWeather, error) {
	var resp *owm.CurrentResponse
	err := r.audit(ctx, owm.EndpointCurrent, q, func() (*owm.FetchResult, error) {
		var result *owm.FetchResult
		var err error
		resp, result, err = r.provider.Current(ctx, q)
		return result, err
	})
	if err != nil {
		return forecast.CurrentWeather{}, err
	}
	return r.assembler.Current(resp.Sample(), resp.Name), nil
}

func (r *Repository) fetchForecast(ctx context.Context, q owm.Query) (*forecastData, error) {
	var resp *owm.ForecastResponse
	err := r.audit(ctx, owm.EndpointForecast, q, func() (*owm.FetchResult, error) {
		var result *owm.FetchResult
		var err error
		resp, result, err = r.provider.Forecast(ctx, q)
		return result, err
	})
	if err != nil {
		return nil, err
	}
	return &forecastData{
		samples: resp.Samples(),
		city:    resp.City.Name,
		country: resp.City.Country,
	}, nil
}

func (r *Repository) assemble(fc *forecastData, current *forecast.CurrentWeather) forecast.WeekForecast {
	wf, corrections := r.assembler.AssembleWithCorrections(fc.samples, fc.city, fc.country, current)

	for _, c := range corrections {
		if c.Applied() {
			metrics.DaysCorrected.Inc()
			log.Printf("weather: %s day %d max %.1f corrected to %.1f (factor %.3f)",
				fc.city, c.DayIndex, c.RawMax, c.CorrectedMax, c.Factor)
		}
	}

	band := "none"
	if len(wf.Days) > 0 {
		band = wf.Days[0].ThemeBand.String()
	}
	metrics.ForecastsAssembled.WithLabelValues(band).Inc()
	return wf
}

// audit wraps one provider call with a fetch run and raw payload archive.
// Archive failures are logged and never fail the call.
func (r *Repository) audit(ctx context.Context, endpoint string, q owm.Query, call func() (*owm.FetchResult, error)) error {
	if r.archive == nil {
		_, err := call()
		return err
	}

	locationID := q.String()
	var requestID *string
	if id := RequestID(ctx); id != "" {
		requestID = &id
	}

	run, err := r.archive.StartFetch(source, endpoint, &locationID, requestID)
	if err != nil {
		log.Printf("weather: start fetch run: %v", err)
	}

	result, callErr := call()

	out := store.FetchOutcome{Err: callErr}
	if result != nil {
		out.HTTPStatus = result.HTTPStatus
		out.Bytes = result.ResponseSize
		out.Records = result.RecordCount
	}
	if err := r.archive.FinishFetch(run, out); err != nil {
		log.Printf("weather: finish fetch run: %v", err)
	}

	if result != nil && len(result.Body) > 0 {
		var runID *int64
		if run != nil {
			runID = &run.ID
		}
		if _, err := r.archive.StoreRawPayload(runID, source, endpoint, &locationID, result.Body); err != nil {
			log.Printf("weather: store raw payload: %v", err)
		}
	}

	return callErr
}

func (r *Repository) record(op string, err error) {
	metrics.RepositoryResults.WithLabelValues(op, Kind(err)).Inc()
}
