package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/fontfallback/pkg/manifest"
)

// ErrNotFound is returned when no stylesheet is stored for a URL.
var ErrNotFound = errors.New("stylesheet not found")

// Stylesheet is a stored download.
type Stylesheet struct {
	ID          int64
	URL         string
	Content     string
	ContentHash string
	Provider    bool
	FaceCount   int
	Formats     []string
	FetchedAt   time.Time
}

// StylesheetInfo is a listing row; it leaves out the content.
type StylesheetInfo struct {
	URL            string
	SizeBytes      int
	Provider       bool
	FaceCount      int
	Formats        []string
	FetchedAt      time.Time
	FailedAttempts int
}

// SaveStylesheet inserts s or replaces the stored copy for the same URL,
// returning the stylesheet_id. The id of an existing URL is kept.
func (db *DB) SaveStylesheet(s Stylesheet) (int64, error) {
	formats, err := json.Marshal(s.Formats)
	if err != nil {
		return 0, fmt.Errorf("failed to encode formats: %w", err)
	}
	sum := sha256.Sum256([]byte(s.Content))

	_, err = db.Exec(`
		INSERT INTO stylesheets (url, content, content_hash, provider, face_count, formats, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(url) DO UPDATE SET
			content = excluded.content,
			content_hash = excluded.content_hash,
			provider = excluded.provider,
			face_count = excluded.face_count,
			formats = excluded.formats,
			fetched_at = CURRENT_TIMESTAMP
	`, s.URL, s.Content, hex.EncodeToString(sum[:]), s.Provider, s.FaceCount, string(formats))
	if err != nil {
		return 0, fmt.Errorf("failed to save stylesheet: %w", err)
	}

	var id int64
	if err := db.QueryRow("SELECT stylesheet_id FROM stylesheets WHERE url = ?", s.URL).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get stylesheet ID: %w", err)
	}
	return id, nil
}

// RecordAttempt records a download attempt for url.
func (db *DB) RecordAttempt(url string, success bool) error {
	_, err := db.Exec(`INSERT INTO fetch_attempts (url, success) VALUES (?, ?)`, url, success)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// GetStylesheet returns the stored stylesheet for url or ErrNotFound.
func (db *DB) GetStylesheet(url string) (*Stylesheet, error) {
	var s Stylesheet
	var formats sql.NullString
	err := db.QueryRow(`
		SELECT stylesheet_id, url, content, content_hash, provider, face_count, formats, fetched_at
		FROM stylesheets WHERE url = ?
	`, url).Scan(&s.ID, &s.URL, &s.Content, &s.ContentHash, &s.Provider, &s.FaceCount, &formats, &s.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stylesheet: %w", err)
	}
	s.Formats = decodeFormats(formats)
	return &s, nil
}

// ListStylesheets returns stored stylesheets, most recently fetched first.
// A limit of zero or less lists everything.
func (db *DB) ListStylesheets(limit int) ([]StylesheetInfo, error) {
	query := `
		SELECT s.url, length(CAST(s.content AS BLOB)), s.provider, s.face_count, s.formats, s.fetched_at,
			(SELECT COUNT(*) FROM fetch_attempts a WHERE a.url = s.url AND a.success = 0)
		FROM stylesheets s
		ORDER BY s.fetched_at DESC, s.stylesheet_id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stylesheets: %w", err)
	}
	defer rows.Close()

	var out []StylesheetInfo
	for rows.Next() {
		var info StylesheetInfo
		var formats sql.NullString
		if err := rows.Scan(&info.URL, &info.SizeBytes, &info.Provider, &info.FaceCount, &formats, &info.FetchedAt, &info.FailedAttempts); err != nil {
			return nil, fmt.Errorf("failed to scan stylesheet: %w", err)
		}
		info.Formats = decodeFormats(formats)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Manifest returns every stored stylesheet as a font manifest, in the order
// the URLs were first stored.
func (db *DB) Manifest() (manifest.Manifest, error) {
	rows, err := db.Query(`SELECT url, content FROM stylesheets ORDER BY stylesheet_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query manifest: %w", err)
	}
	defer rows.Close()

	m := manifest.Manifest{}
	for rows.Next() {
		var e manifest.Entry
		if err := rows.Scan(&e.URL, &e.Content); err != nil {
			return nil, fmt.Errorf("failed to scan manifest entry: %w", err)
		}
		m = append(m, e)
	}
	return m, rows.Err()
}

// DeleteStylesheet removes the stored stylesheet and attempts for url. It
// reports whether a stylesheet was stored.
func (db *DB) DeleteStylesheet(url string) (bool, error) {
	res, err := db.Exec(`DELETE FROM stylesheets WHERE url = ?`, url)
	if err != nil {
		return false, fmt.Errorf("failed to delete stylesheet: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM fetch_attempts WHERE url = ?`, url); err != nil {
		return false, fmt.Errorf("failed to delete attempts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted rows: %w", err)
	}
	return n > 0, nil
}

func decodeFormats(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	var formats []string
	if err := json.Unmarshal([]byte(s.String), &formats); err != nil {
		return nil
	}
	return formats
}
