package ingest

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lolweather/lolweather/internal/forecast"
	"github.com/lolweather/lolweather/internal/imagegen"
	"github.com/lolweather/lolweather/internal/models"
	"github.com/lolweather/lolweather/internal/owm"
	"github.com/lolweather/lolweather/internal/weather"
)

// Weather is the repository surface the scheduler polls.
type Weather interface {
	CompleteWeather(ctx context.Context, q owm.Query) weather.Result[forecast.WeekForecast]
}

// Store holds the favorites to keep warm and the payload archive to prune.
type Store interface {
	ListFavorites() ([]models.City, error)
	CleanupOldRawPayloads(retentionDays int) (int64, error)
}

// BannerGenerator renders a banner image. *imagegen.Generator implements it.
type BannerGenerator interface {
	Generate(ctx context.Context, band forecast.ThemeBand, sky forecast.SkyCondition, tod forecast.TimeOfDay) ([]byte, error)
}

// Scheduler refreshes favorite cities in the background so their fetches are
// archived, and pre-generates the banner each one will show.
type Scheduler struct {
	weather         Weather
	store           Store
	loc             *time.Location
	refreshInterval time.Duration
	cleanupInterval time.Duration
	retentionDays   int
	imageGen        BannerGenerator
	imageCache      *imagegen.Cache
	imageGenMu      *sync.Mutex // Shared with server to prevent duplicate API calls
}

func NewScheduler(w Weather, st Store, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		weather:         w,
		store:           st,
		loc:             loc,
		refreshInterval: 30 * time.Minute,
		cleanupInterval: 24 * time.Hour,
		retentionDays:   7,
	}
}

// SetImageGenerator configures banner pre-generation. The mutex should be
// shared with the HTTP server so the same banner is not generated twice.
func (s *Scheduler) SetImageGenerator(gen BannerGenerator, cache *imagegen.Cache, mu *sync.Mutex) {
	s.imageGen = gen
	s.imageCache = cache
	s.imageGenMu = mu
}

// SetRetentionDays sets how long raw payloads are kept.
func (s *Scheduler) SetRetentionDays(days int) {
	s.retentionDays = days
}

func (s *Scheduler) Run(ctx context.Context) {
	s.RefreshFavorites(ctx)
	s.cleanup()

	refreshTicker := time.NewTicker(s.refreshInterval)
	cleanupTicker := time.NewTicker(s.cleanupInterval)
	defer refreshTicker.Stop()
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: shutting down")
			return
		case <-refreshTicker.C:
			s.RefreshFavorites(ctx)
		case <-cleanupTicker.C:
			s.cleanup()
		}
	}
}

// RefreshFavorites fetches complete weather for every favorite and returns
// how many succeeded. Failures are logged and do not stop the pass.
func (s *Scheduler) RefreshFavorites(ctx context.Context) int {
	favs, err := s.store.ListFavorites()
	if err != nil {
		log.Printf("scheduler: list favorites: %v", err)
		return 0
	}
	if len(favs) == 0 {
		return 0
	}

	refreshed := 0
	for _, city := range favs {
		if ctx.Err() != nil {
			break
		}

		q := owm.ByCoordinates(city.Coord.Lat, city.Coord.Lon)
		if (city.Coord == models.Coordinates{}) {
			q = owm.ByCity(city.Name)
		}

		res := s.weather.CompleteWeather(ctx, q)
		if !res.OK() {
			log.Printf("scheduler: refresh %s (%s): %v", city.Name, city.Country, res.Err)
			continue
		}
		refreshed++
		s.ensureBanner(ctx, res.Value)
	}

	log.Printf("scheduler: refreshed %d/%d favorites", refreshed, len(favs))
	return refreshed
}

// ensureBanner generates today's banner for a forecast when it is not cached.
func (s *Scheduler) ensureBanner(ctx context.Context, wf forecast.WeekForecast) {
	if s.imageGen == nil || s.imageCache == nil || len(wf.Days) == 0 {
		return
	}

	today := wf.Days[0]
	tod := forecast.GetTimeOfDay(time.Now().In(s.loc))
	sky := forecast.ExtractSky(today.DominantCondition)
	key := forecast.BannerKey(today.ThemeBand, sky, tod)

	if _, ok := s.imageCache.Get(key); ok {
		return
	}

	if s.imageGenMu != nil {
		s.imageGenMu.Lock()
		defer s.imageGenMu.Unlock()
	}

	// Double-check cache after acquiring lock
	if _, ok := s.imageCache.Get(key); ok {
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	log.Printf("scheduler: pre-generating banner %s", key)
	data, err := s.imageGen.Generate(genCtx, today.ThemeBand, sky, tod)
	if err != nil {
		log.Printf("scheduler: banner generation failed: %v", err)
		return
	}
	if err := s.imageCache.Set(key, data); err != nil {
		log.Printf("scheduler: failed to cache banner: %v", err)
	}
}

func (s *Scheduler) cleanup() {
	if s.retentionDays <= 0 {
		return
	}
	n, err := s.store.CleanupOldRawPayloads(s.retentionDays)
	if err != nil {
		log.Printf("scheduler: cleanup raw payloads: %v", err)
		return
	}
	if n > 0 {
		log.Printf("scheduler: removed %d raw payloads older than %d days", n, s.retentionDays)
	}
}
