// Package store persists rating snapshots to SQLite so rating evolution
// can be inspected after a replay.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"league-predictor/internal/core/league"
	"league-predictor/internal/core/rating"
	"league-predictor/internal/telemetry"
)

// RatingsStore writes the per-series rating snapshots of a trained model.
type RatingsStore struct {
	db *sql.DB
}

func Open(path string) (*RatingsStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ratings_history (
			stage        TEXT    NOT NULL,
			match_number INTEGER NOT NULL,
			entity       TEXT    NOT NULL,
			mu           REAL    NOT NULL,
			sigma        REAL    NOT NULL,
			PRIMARY KEY (stage, match_number, entity)
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	return &RatingsStore{db: db}, nil
}

// SaveHistory replaces the stored snapshots with the model's current
// history and records the global prior.
func (s *RatingsStore) SaveHistory(prior rating.Rating, h *rating.History) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for key, value := range map[string]float64{
		"prior_mu":    prior.Mu,
		"prior_sigma": prior.Sigma,
	} {
		if _, err := tx.Exec(
			`INSERT INTO meta (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return fmt.Errorf("save prior: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM ratings_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	rows := 0
	for _, key := range h.Keys() {
		for entity, r := range h.At(key) {
			if _, err := tx.Exec(
				`INSERT INTO ratings_history (stage, match_number, entity, mu, sigma)
				 VALUES (?, ?, ?, ?, ?)`,
				key.Stage, key.Number, entity, r.Mu, r.Sigma,
			); err != nil {
				return fmt.Errorf("save snapshot %s/%d/%s: %w", key.Stage, key.Number, entity, err)
			}
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	telemetry.Infof("ratings store: saved %d snapshot rows", rows)
	return nil
}

// Prior reads back the stored global prior; ok is false if none was saved.
func (s *RatingsStore) Prior() (prior rating.Rating, ok bool, err error) {
	read := func(key string) (float64, bool, error) {
		var v float64
		err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		return v, true, nil
	}

	mu, okMu, err := read("prior_mu")
	if err != nil {
		return rating.Rating{}, false, fmt.Errorf("read prior: %w", err)
	}
	sigma, okSigma, err := read("prior_sigma")
	if err != nil {
		return rating.Rating{}, false, fmt.Errorf("read prior: %w", err)
	}
	if !okMu || !okSigma {
		return rating.Rating{}, false, nil
	}
	return rating.Rating{Mu: mu, Sigma: sigma}, true, nil
}

// Snapshot reads back one (stage, match number) snapshot.
func (s *RatingsStore) Snapshot(key league.MatchKey) (map[string]rating.Rating, error) {
	rows, err := s.db.Query(
		`SELECT entity, mu, sigma FROM ratings_history
		 WHERE stage = ? AND match_number = ?`,
		key.Stage, key.Number,
	)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	defer rows.Close()

	out := make(map[string]rating.Rating)
	for rows.Next() {
		var entity string
		var r rating.Rating
		if err := rows.Scan(&entity, &r.Mu, &r.Sigma); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out[entity] = r
	}
	return out, rows.Err()
}

func (s *RatingsStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
