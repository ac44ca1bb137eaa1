package api

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lolweather/lolweather/internal/forecast"
	"github.com/lolweather/lolweather/internal/imagegen"
	"github.com/lolweather/lolweather/internal/owm"
	"github.com/lolweather/lolweather/internal/store"
	"github.com/lolweather/lolweather/internal/weather"
)

// WeatherService is the repository surface the server needs.
type WeatherService interface {
	CurrentWeather(ctx context.Context, q owm.Query) weather.Result[forecast.CurrentWeather]
	Forecast(ctx context.Context, q owm.Query) weather.Result[forecast.WeekForecast]
	CompleteWeather(ctx context.Context, q owm.Query) weather.Result[forecast.WeekForecast]
}

type Config struct {
	Port     string
	Location *time.Location
	ImageDir string
	// OpenAIKey enables banner generation when set.
	OpenAIKey string
	// Messages picks themed messages; random when nil.
	Messages forecast.Chooser[string]
}

type Server struct {
	weather    WeatherService
	store      *store.Store
	port       string
	loc        *time.Location
	latest     *weather.Latest
	imageCache *imagegen.Cache
	imageGen   *imagegen.Generator
	genMu      sync.Mutex // Prevents concurrent generation of the same banner
	cardCache  *imagegen.CardCache
	messages   forecast.Chooser[string]
}

func NewServer(svc WeatherService, st *store.Store, cfg Config) *Server {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	imageDir := cfg.ImageDir
	if imageDir == "" {
		imageDir = "data/images"
	}

	messages := cfg.Messages
	if messages == nil {
		messages = forecast.NewRandomChooser[string](0)
	}

	var imageGen *imagegen.Generator
	if gen, err := imagegen.NewGenerator(cfg.OpenAIKey); err != nil {
		log.Printf("api: banner generation disabled: %v", err)
	} else {
		imageGen = gen
	}

	return &Server{
		weather:    svc,
		store:      st,
		port:       cfg.Port,
		loc:        loc,
		latest:     weather.NewLatest(),
		imageCache: imagegen.NewCache(imageDir),
		imageGen:   imageGen,
		cardCache:  imagegen.NewCardCache(10 * time.Minute),
		messages:   messages,
	}
}

// ImageGenerator returns the banner generator, or nil when disabled.
func (s *Server) ImageGenerator() *imagegen.Generator {
	return s.imageGen
}

func (s *Server) ImageCache() *imagegen.Cache {
	return s.imageCache
}

// ImageGenMutex returns the mutex guarding banner generation, for sharing
// with the scheduler.
func (s *Server) ImageGenMutex() *sync.Mutex {
	return &s.genMu
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/current", s.handleCurrent)
	mux.HandleFunc("GET /api/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/complete", s.handleComplete)
	mux.HandleFunc("GET /api/cities/search", s.handleCitySearch)
	mux.HandleFunc("GET /api/cities/popular", s.handlePopularCities)
	mux.HandleFunc("GET /api/favorites", s.handleListFavorites)
	mux.HandleFunc("POST /api/favorites", s.handleAddFavorite)
	mux.HandleFunc("POST /api/favorites/toggle", s.handleToggleFavorite)
	mux.HandleFunc("DELETE /api/favorites", s.handleRemoveFavorite)
	mux.HandleFunc("GET /api/themes", s.handleThemes)
	mux.HandleFunc("GET /api/message", s.handleMessage)
	mux.HandleFunc("GET /forecast-card.png", s.handleForecastCard)
	mux.HandleFunc("GET /theme-image/{band}", s.handleThemeImage)
	mux.Handle("GET /metrics", promhttp.Handler())
	return withRequestID(mux)
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("api: listening on :%s", s.port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

const requestIDHeader = "X-Request-ID"

// withRequestID tags each request with an id that follows it into logs and
// fetch audits.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(weather.WithRequestID(r.Context(), id)))

		if r.URL.Path != "/metrics" && r.URL.Path != "/health" {
			log.Printf("api: %s %s %d %s [%s]", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Millisecond), id)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
