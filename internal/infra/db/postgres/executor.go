package postgres

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"promo-bot/internal/domain"
	"promo-bot/internal/domain/ports/repository"
)

// executor is what pgx.Tx, *pgxpool.Conn and *pgxpool.Pool have in common.
type executor interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// getExecutor picks where a repository call runs: inside tx when one is
// given, on pool when tx is nil.
func getExecutor(pool *pgxpool.Pool, tx repository.Tx) (executor, error) {
	if tx == nil {
		if pool == nil {
			return nil, domain.ErrInvalidArgument
		}
		return pool, nil
	}
	if ex, ok := tx.(executor); ok {
		return ex, nil
	}
	return nil, domain.ErrInvalidExecContext
}

// isTx reports whether row locks make sense for tx.
func isTx(tx repository.Tx) bool {
	_, ok := tx.(pgx.Tx)
	return ok
}
