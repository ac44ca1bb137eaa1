package store

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// ArchivedPayload is one provider response body kept for replay and
// debugging. The body is stored gzipped and deduplicated by content hash.
type ArchivedPayload struct {
	ID         int64
	RunID      sql.NullInt64
	FetchedAt  time.Time
	Source     string
	Endpoint   string
	LocationID sql.NullString
	Hash       string
	compressed []byte
}

// Body returns the decompressed response.
func (p *ArchivedPayload) Body() ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(p.compressed))
	if err != nil {
		return nil, fmt.Errorf("open payload %d: %w", p.ID, err)
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

// PayloadHash is the dedupe key of a response body.
func PayloadHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func gzipBytes(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(body); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("close gzip: %w", err)
	}
	return buf.Bytes(), nil
}

// StoreRawPayload archives a response body. It returns the new row id, or 0
// when an identical body is already archived.
func (s *Store) StoreRawPayload(runID *int64, source, endpoint string, locationID *string, payload []byte) (int64, error) {
	compressed, err := gzipBytes(payload)
	if err != nil {
		return 0, err
	}

	result, err := s.db.Exec(`
		INSERT INTO raw_payloads
		(fetch_run_id, fetched_at, source, endpoint, location_id, payload_compressed, payload_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(payload_hash) DO NOTHING
	`, nullInt64(runID), time.Now().UTC(), source, endpoint, nullString(locationID), compressed, PayloadHash(payload))
	if err != nil {
		return 0, fmt.Errorf("insert raw payload: %w", err)
	}

	if n, err := result.RowsAffected(); err != nil || n == 0 {
		return 0, err
	}
	return result.LastInsertId()
}

const payloadColumns = `id, fetch_run_id, fetched_at, source, endpoint, location_id, payload_hash, payload_compressed`

func scanPayload(row *sql.Row) (*ArchivedPayload, error) {
	var p ArchivedPayload
	err := row.Scan(&p.ID, &p.RunID, &p.FetchedAt, &p.Source, &p.Endpoint, &p.LocationID, &p.Hash, &p.compressed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LatestRawPayload returns the most recent archived response for an endpoint
// and location, or nil when none is archived.
func (s *Store) LatestRawPayload(endpoint, locationID string) (*ArchivedPayload, error) {
	return scanPayload(s.db.QueryRow(`
		SELECT `+payloadColumns+`
		FROM raw_payloads
		WHERE endpoint = ? AND location_id = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1
	`, endpoint, locationID))
}

// RawPayloadByHash returns the archived response with the given hash, or nil.
func (s *Store) RawPayloadByHash(hash string) (*ArchivedPayload, error) {
	return scanPayload(s.db.QueryRow(`SELECT `+payloadColumns+` FROM raw_payloads WHERE payload_hash = ?`, hash))
}

// ArchiveStats summarizes the payload archive.
type ArchiveStats struct {
	Payloads        int            `json:"payloads"`
	CompressedBytes int64          `json:"compressed_bytes"`
	Locations       int            `json:"locations"`
	ByEndpoint      map[string]int `json:"by_endpoint"`
	Oldest          *time.Time     `json:"oldest,omitempty"`
	Newest          *time.Time     `json:"newest,omitempty"`
}

func (s *Store) ArchiveStats() (ArchiveStats, error) {
	stats := ArchiveStats{ByEndpoint: make(map[string]int)}

	if err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(LENGTH(payload_compressed)), 0), COUNT(DISTINCT location_id)
		FROM raw_payloads
	`).Scan(&stats.Payloads, &stats.CompressedBytes, &stats.Locations); err != nil {
		return stats, err
	}
	if stats.Payloads == 0 {
		return stats, nil
	}

	// MIN/MAX lose the DATETIME column type, so read the endpoints directly.
	var oldest, newest time.Time
	if err := s.db.QueryRow(`SELECT fetched_at FROM raw_payloads ORDER BY fetched_at ASC LIMIT 1`).Scan(&oldest); err != nil {
		return stats, err
	}
	if err := s.db.QueryRow(`SELECT fetched_at FROM raw_payloads ORDER BY fetched_at DESC LIMIT 1`).Scan(&newest); err != nil {
		return stats, err
	}
	stats.Oldest, stats.Newest = &oldest, &newest

	rows, err := s.db.Query(`SELECT endpoint, COUNT(*) FROM raw_payloads GROUP BY endpoint`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var endpoint string
		var n int
		if err := rows.Scan(&endpoint, &n); err != nil {
			return stats, err
		}
		stats.ByEndpoint[endpoint] = n
	}
	return stats, rows.Err()
}

// CleanupOldRawPayloads deletes payloads fetched more than retentionDays ago
// and returns how many were removed.
func (s *Store) CleanupOldRawPayloads(retentionDays int) (int64, error) {
	result, err := s.db.Exec(`
		DELETE FROM raw_payloads
		WHERE fetched_at < DATE('now', '-' || ? || ' days')
	`, retentionDays)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
