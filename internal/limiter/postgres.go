package limiter

import (
	"context"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is a PostgreSQL-backed limiter with a sliding window per (scope, ip).
// Every attempt counts toward the window, successful or not.
type PG struct {
	pool  pgxQuerier
	rules map[string]Rule
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(pool *pgxpool.Pool, rules map[string]Rule) *PG {
	return &PG{pool: pool, rules: rules}
}

// NewPGWithQuerier constructs a PostgreSQL-backed limiter over any querier.
func NewPGWithQuerier(q pgxQuerier, rules map[string]Rule) *PG {
	return &PG{pool: q, rules: rules}
}

// HashIP returns a stable hash for an IP string to avoid storing raw addresses.
func HashIP(ip string) []byte {
	h := sha256.Sum256([]byte(ip))
	return h[:]
}

// Attempt upserts the attempt counter for (scope, ip). The window restarts
// once the gap since window_start exceeds the rule's window.
func (l *PG) Attempt(ctx context.Context, scope string, ip string) (bool, time.Duration, error) {
	rule, ok := l.rules[scope]
	if !ok {
		return false, 0, errors.New("no limiter rule for scope " + scope)
	}

	const q = `
INSERT INTO auth_limiter (scope, ip_hash, attempt_count, window_start)
VALUES ($1, $2, 1, now())
ON CONFLICT (scope, ip_hash) DO UPDATE
SET
  attempt_count = CASE WHEN now() - auth_limiter.window_start > $3::interval THEN 1 ELSE auth_limiter.attempt_count + 1 END,
  window_start = CASE WHEN now() - auth_limiter.window_start > $3::interval THEN now() ELSE auth_limiter.window_start END
RETURNING attempt_count, window_start`

	var attempts int
	var windowStart time.Time
	if err := l.pool.QueryRow(ctx, q, scope, HashIP(ip), rule.Window).Scan(&attempts, &windowStart); err != nil {
		return false, 0, err
	}
	if attempts > rule.MaxAttempts {
		retryAfter := time.Until(windowStart.Add(rule.Window))
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter, nil
	}
	return true, 0, nil
}
