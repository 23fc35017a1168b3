package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/platform/obs"
	"fmt"
	"strings"
	"time"
)

// SQLSuggestionCache is a Postgres-backed cache mapping normalized
// query text to the geocoding suggestions returned for it.
type SQLSuggestionCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSQLSuggestionCache(db *sql.DB, ttl time.Duration) *SQLSuggestionCache {
	return &SQLSuggestionCache{DB: db, TTL: ttl}
}

// Create the suggestion_cache table if it does not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	_, err := db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS suggestion_cache (
		query       TEXT PRIMARY KEY,
		suggestions JSONB NOT NULL,
		cached_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`)
	if err != nil {
		return fmt.Errorf("init schema: create suggestion_cache: %w", err)
	}
	return nil
}

// Purge deletes entries older than olderThan; zero deletes everything.
func Purge(ctx context.Context, db *sql.DB, olderThan time.Duration) (int64, error) {
	if db == nil {
		return 0, errors.New("purge: DB is nil")
	}

	res, err := db.ExecContext(ctx, `
	DELETE FROM suggestion_cache
	WHERE cached_at <= now() - make_interval(secs => $1);
	`, olderThan.Seconds())
	if err != nil {
		return 0, fmt.Errorf("purge suggestion_cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge suggestion_cache: rows affected: %w", err)
	}
	return n, nil
}

// Fetch cached suggestions for the given query.
func (s *SQLSuggestionCache) Get(
	ctx context.Context,
	query string,
) (_ []domain.Suggestion, _ bool, err error) {
	defer obs.Time(ctx, "suggest.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("suggestion cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false, nil
	}

	q := `
	SELECT suggestions
	FROM suggestion_cache
	WHERE query = $1
	  AND cached_at > now() - make_interval(secs => $2);
	`

	var raw []byte
	err = s.DB.QueryRowContext(ctx, q, query, s.TTL.Seconds()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get suggestion cache: query suggestion_cache table: %w", err)
	}

	var out []domain.Suggestion
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("get suggestion cache: decode row %q: %w", query, err)
	}
	return out, true, nil
}

// Store query -> suggestions in the cache.
func (s *SQLSuggestionCache) Put(ctx context.Context, query string, suggestions []domain.Suggestion) error {
	if s.DB == nil {
		return errors.New("suggestion cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("insert suggestion cache: empty query key")
	}

	raw, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("insert suggestion cache: encode %q: %w", query, err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO suggestion_cache (query, suggestions, cached_at)
	VALUES ($1, $2, now())
	ON CONFLICT (query) DO UPDATE
	SET suggestions = EXCLUDED.suggestions,
		cached_at = EXCLUDED.cached_at;
	`, query, raw)
	if err != nil {
		return fmt.Errorf("insert suggestion cache query=%q: %w", query, err)
	}

	return nil
}
