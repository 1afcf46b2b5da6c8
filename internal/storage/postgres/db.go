package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ratiba-events/server/internal/metrics"
)

const uniqueViolation = "23505"

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func pick(pool *pgxpool.Pool, tx pgx.Tx) queryer {
	if tx != nil {
		return tx
	}
	return pool
}

// isUniqueViolation reports whether err is a unique_violation on the named
// constraint. An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// guardedInsert runs fn so that a failing statement does not abort the
// surrounding transaction. Inside a transaction fn runs under a savepoint
// that is rolled back on error; outside one the statement autocommits.
func guardedInsert(ctx context.Context, pool *pgxpool.Pool, tx pgx.Tx, fn func(queryer) error) error {
	if tx == nil {
		return fn(pool)
	}
	sp, err := tx.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(sp); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}

// observe records query latency. Missing rows and unique violations are
// expected outcomes and are not counted as failures.
func observe(operation string, start time.Time, err error) {
	if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err, "") {
		err = nil
	}
	metrics.RecordQuery(operation, start, err)
}
