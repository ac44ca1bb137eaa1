package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lolweather_provider_calls_total",
			Help: "Total OpenWeatherMap API calls",
		},
		[]string{"endpoint", "status"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lolweather_provider_latency_seconds",
			Help:    "OpenWeatherMap API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ForecastsAssembled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lolweather_forecasts_assembled_total",
			Help: "Total week forecasts assembled",
		},
		[]string{"theme_band"},
	)

	DaysCorrected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lolweather_days_corrected_total",
			Help: "Total forecast days rescaled by the anomaly corrector",
		},
	)

	RepositoryResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lolweather_repository_results_total",
			Help: "Repository operation outcomes",
		},
		[]string{"operation", "outcome"},
	)

	SupersededRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lolweather_superseded_requests_total",
			Help: "Results discarded because a newer request for the same view was issued",
		},
	)

	ImagesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lolweather_images_generated_total",
			Help: "Theme images generated or served from cache",
		},
		[]string{"source"},
	)
)
