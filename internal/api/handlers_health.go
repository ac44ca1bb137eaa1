package api

import (
	"context"
	"net/http"
	"time"

	"github.com/lolweather/lolweather/internal/store"
)

type HealthStatus struct {
	Status       string              `json:"status"`
	Fetches      []store.FetchHealth `json:"fetches,omitempty"`
	RecentErrors []FetchError        `json:"recent_errors,omitempty"`
	Archive      *store.ArchiveStats `json:"archive,omitempty"`
	Errors       []string            `json:"errors,omitempty"`
}

type FetchError struct {
	StartedAt time.Time `json:"started_at"`
	Endpoint  string    `json:"endpoint"`
	Location  string    `json:"location,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Message   string    `json:"message"`
}

// handleHealth reports storage reachability and the last day of provider
// fetches. Recent failures degrade the status without failing it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{Status: "ok"}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.store.Ping(ctx); err != nil {
			health.Errors = append(health.Errors, "store: "+err.Error())
		} else {
			fetches, err := s.store.FetchHealthSince(1)
			if err != nil {
				health.Errors = append(health.Errors, "fetch health: "+err.Error())
			}
			health.Fetches = fetches

			recent, err := s.store.RecentFetchErrors(5)
			if err != nil {
				health.Errors = append(health.Errors, "fetch errors: "+err.Error())
			}
			for _, run := range recent {
				health.RecentErrors = append(health.RecentErrors, FetchError{
					StartedAt: run.StartedAt,
					Endpoint:  run.Endpoint,
					Location:  run.LocationID.String,
					RequestID: run.RequestID.String,
					Message:   run.Error.String,
				})
			}

			if stats, err := s.store.ArchiveStats(); err != nil {
				health.Errors = append(health.Errors, "archive: "+err.Error())
			} else {
				health.Archive = &stats
			}
		}
	}

	for _, f := range health.Fetches {
		if f.Failed > 0 && f.Succeeded == 0 {
			health.Status = "degraded"
		}
	}
	status := http.StatusOK
	if len(health.Errors) > 0 {
		health.Status = "error"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}
