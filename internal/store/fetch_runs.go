package store

import (
	"database/sql"
	"time"
)

// FetchRun audits one provider call.
type FetchRun struct {
	ID         int64          `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt sql.NullTime   `json:"-"`
	Source     string         `json:"source"`
	Endpoint   string         `json:"endpoint"`
	LocationID sql.NullString `json:"-"`
	RequestID  sql.NullString `json:"-"`
	HTTPStatus sql.NullInt64  `json:"-"`
	Bytes      sql.NullInt64  `json:"-"`
	Records    sql.NullInt64  `json:"-"`
	Success    bool           `json:"success"`
	Error      sql.NullString `json:"-"`
}

// Duration is how long the call took, or zero while unfinished.
func (r *FetchRun) Duration() time.Duration {
	if !r.FinishedAt.Valid {
		return 0
	}
	return r.FinishedAt.Time.Sub(r.StartedAt)
}

// FetchOutcome is what a finished provider call reports back.
type FetchOutcome struct {
	HTTPStatus int // zero when no response arrived
	Bytes      int
	Records    int
	Err        error
}

// StartFetch records the start of a provider call.
func (s *Store) StartFetch(source, endpoint string, locationID, requestID *string) (*FetchRun, error) {
	run := &FetchRun{
		StartedAt:  time.Now().UTC(),
		Source:     source,
		Endpoint:   endpoint,
		LocationID: nullString(locationID),
		RequestID:  nullString(requestID),
	}

	result, err := s.db.Exec(`
		INSERT INTO fetch_runs (started_at, source, endpoint, location_id, request_id, success)
		VALUES (?, ?, ?, ?, ?, FALSE)
	`, run.StartedAt, run.Source, run.Endpoint, run.LocationID, run.RequestID)
	if err != nil {
		return nil, err
	}
	if run.ID, err = result.LastInsertId(); err != nil {
		return nil, err
	}
	return run, nil
}

// FinishFetch stores the outcome of a run started with StartFetch.
func (s *Store) FinishFetch(run *FetchRun, out FetchOutcome) error {
	if run == nil {
		return nil
	}

	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	run.Success = out.Err == nil
	if out.HTTPStatus != 0 {
		run.HTTPStatus = sql.NullInt64{Int64: int64(out.HTTPStatus), Valid: true}
	}
	run.Bytes = sql.NullInt64{Int64: int64(out.Bytes), Valid: true}
	run.Records = sql.NullInt64{Int64: int64(out.Records), Valid: true}
	if out.Err != nil {
		run.Error = sql.NullString{String: out.Err.Error(), Valid: true}
	}

	_, err := s.db.Exec(`
		UPDATE fetch_runs SET
			finished_at = ?, http_status = ?, response_bytes = ?,
			records = ?, success = ?, error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.HTTPStatus, run.Bytes, run.Records, run.Success, run.Error, run.ID)
	return err
}

// FetchHealth summarizes one endpoint's calls on one day. Calls still in
// flight count towards Total only.
type FetchHealth struct {
	Date      string `json:"date"`
	Source    string `json:"source"`
	Endpoint  string `json:"endpoint"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Records   int64  `json:"records"`
	Locations int    `json:"locations"`
}

// FetchHealthSince returns per-day, per-endpoint summaries for the last N days.
func (s *Store) FetchHealthSince(days int) ([]FetchHealth, error) {
	rows, err := s.db.Query(`
		SELECT
			DATE(SUBSTR(started_at, 1, 19)) as date,
			source,
			endpoint,
			COUNT(*),
			SUM(CASE WHEN success THEN 1 ELSE 0 END),
			SUM(CASE WHEN NOT success AND finished_at IS NOT NULL THEN 1 ELSE 0 END),
			COALESCE(SUM(records), 0),
			COUNT(DISTINCT location_id)
		FROM fetch_runs
		WHERE SUBSTR(started_at, 1, 19) > datetime('now', '-' || ? || ' days')
		GROUP BY date, source, endpoint
		ORDER BY date DESC, source, endpoint
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []FetchHealth
	for rows.Next() {
		var h FetchHealth
		if err := rows.Scan(&h.Date, &h.Source, &h.Endpoint, &h.Total,
			&h.Succeeded, &h.Failed, &h.Records, &h.Locations); err != nil {
			return nil, err
		}
		results = append(results, h)
	}
	return results, rows.Err()
}

// RecentFetchErrors returns the newest failed runs first.
func (s *Store) RecentFetchErrors(limit int) ([]FetchRun, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, source, endpoint, location_id, request_id,
			   http_status, response_bytes, records, success, error_message
		FROM fetch_runs
		WHERE success = FALSE AND finished_at IS NOT NULL
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []FetchRun
	for rows.Next() {
		var r FetchRun
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Source, &r.Endpoint,
			&r.LocationID, &r.RequestID, &r.HTTPStatus, &r.Bytes,
			&r.Records, &r.Success, &r.Error); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
