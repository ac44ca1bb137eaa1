package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/lolweather/lolweather/internal/forecast"
	"github.com/lolweather/lolweather/internal/imagegen"
	"github.com/lolweather/lolweather/internal/metrics"
)

// handleThemeImage serves a generated banner for a band. The sky and time of
// day default to clear and the current local time, and can be overridden
// with ?sky= and ?tod=. It checks the cache first, falls back to any banner
// for the band while generating in the background, and generates
// synchronously when nothing is cached.
func (s *Server) handleThemeImage(w http.ResponseWriter, r *http.Request) {
	band, ok := forecast.ParseBand(r.PathValue("band"))
	if !ok {
		http.Error(w, "unknown theme band", http.StatusNotFound)
		return
	}

	now := time.Now().In(s.loc)
	sky := forecast.SkyClear
	if v := r.URL.Query().Get("sky"); v != "" {
		sky = forecast.ExtractSky(v)
	}
	tod := forecast.GetTimeOfDay(now)
	if v := r.URL.Query().Get("tod"); v != "" {
		tod = forecast.TimeOfDay(v)
	}
	key := forecast.BannerKey(band, sky, tod)

	if data, ok := s.imageCache.Get(key); ok {
		metrics.ImagesGenerated.WithLabelValues("cache").Inc()
		serveBannerImage(w, data)
		return
	}

	if data, ok := s.imageCache.GetAnyWithPrefix(band.String() + "_"); ok {
		metrics.ImagesGenerated.WithLabelValues("fallback").Inc()
		go s.generateAndCache(band, sky, tod)
		serveBannerImage(w, data)
		return
	}

	if s.imageGen != nil {
		s.genMu.Lock()
		defer s.genMu.Unlock()

		if data, ok := s.imageCache.Get(key); ok {
			serveBannerImage(w, data)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		data, err := s.imageGen.Generate(ctx, band, sky, tod)
		if err != nil {
			log.Printf("api: banner generation failed: %v", err)
			http.Error(w, "Image generation failed", http.StatusServiceUnavailable)
			return
		}
		metrics.ImagesGenerated.WithLabelValues("generated").Inc()

		if err := s.imageCache.Set(key, data); err != nil {
			log.Printf("api: cache banner: %v", err)
		}
		serveBannerImage(w, data)
		return
	}

	http.Error(w, "Theme image service unavailable", http.StatusServiceUnavailable)
}

func serveBannerImage(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

func (s *Server) generateAndCache(band forecast.ThemeBand, sky forecast.SkyCondition, tod forecast.TimeOfDay) {
	if s.imageGen == nil {
		return
	}
	key := forecast.BannerKey(band, sky, tod)

	s.genMu.Lock()
	defer s.genMu.Unlock()

	if _, ok := s.imageCache.Get(key); ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	data, err := s.imageGen.Generate(ctx, band, sky, tod)
	if err != nil {
		log.Printf("api: background banner generation failed: %v", err)
		return
	}
	metrics.ImagesGenerated.WithLabelValues("generated").Inc()

	if err := s.imageCache.Set(key, data); err != nil {
		log.Printf("api: cache banner: %v", err)
	}
}

// handleForecastCard renders a shareable PNG card for ?city= or ?lat=&lon=.
func (s *Server) handleForecastCard(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if data, ok := s.cardCache.Get(q.String()); ok {
		servePNG(w, data)
		return
	}

	res := s.weather.CompleteWeather(r.Context(), q)
	if !res.OK() {
		writeError(w, res.Err)
		return
	}
	wf := res.Value

	var banner []byte
	if len(wf.Days) > 0 {
		today := wf.Days[0]
		tod := forecast.GetTimeOfDay(time.Now().In(s.loc))
		banner, _ = s.imageCache.Get(forecast.BannerKey(today.ThemeBand, forecast.ExtractSky(today.DominantCondition), tod))
	}

	data, err := imagegen.RenderCard(banner, wf)
	if err != nil {
		log.Printf("api: render card: %v", err)
		http.Error(w, "Failed to render card", http.StatusInternalServerError)
		return
	}
	s.cardCache.Set(q.String(), data)
	servePNG(w, data)
}

func servePNG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=600")
	w.Write(data)
}
