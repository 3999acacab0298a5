package database

import (
	"database/sql"
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/username/fursio/src/logger"
	"github.com/username/fursio/src/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SQLRateCacheStore persists one rate series per cache key (one key per
// calendar year). Storage problems degrade to cache misses: the resolver
// falls through to the remote fetch or the static table, so a broken cache
// never blocks a run.
type SQLRateCacheStore struct {
	db *sql.DB
}

func NewSQLRateCacheStore(db *sql.DB) *SQLRateCacheStore {
	return &SQLRateCacheStore{db: db}
}

// Get loads a cached series. The second return value is false on miss or on
// any storage/decode problem.
func (s *SQLRateCacheStore) Get(key string) (*models.CachedRateSeries, bool) {
	var ratesJSON string
	var fetchedAt int64
	err := s.db.QueryRow(`SELECT rates_json, fetched_at FROM rate_cache WHERE cache_key = ?`, key).
		Scan(&ratesJSON, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		logger.L.Warn("Rate cache read failed, treating as miss", "key", key, "error", err)
		return nil, false
	}

	series := &models.CachedRateSeries{FetchedAt: fetchedAt}
	if err := json.Unmarshal([]byte(ratesJSON), &series.Rates); err != nil {
		logger.L.Warn("Rate cache entry corrupt, treating as miss", "key", key, "error", err)
		return nil, false
	}
	return series, true
}

// Set upserts a series. Writes for the same year are idempotent (the series
// is deterministic), so a lost race between concurrent writers is harmless.
func (s *SQLRateCacheStore) Set(key string, series *models.CachedRateSeries) {
	ratesJSON, err := json.Marshal(series.Rates)
	if err != nil {
		logger.L.Warn("Failed to encode rate series for cache", "key", key, "error", err)
		return
	}
	_, err = s.db.Exec(
		`INSERT INTO rate_cache (cache_key, rates_json, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET rates_json = excluded.rates_json, fetched_at = excluded.fetched_at`,
		key, string(ratesJSON), series.FetchedAt)
	if err != nil {
		logger.L.Warn("Rate cache write failed", "key", key, "error", err)
	}
}
