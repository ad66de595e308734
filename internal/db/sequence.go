package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NextSequence atomically increments and returns the per-scope counter.
// The upsert takes a row lock on the scope, so concurrent allocations for
// the same scope are serialized by Postgres and each caller sees a distinct
// value. Counters never decrease, so numbers freed by deleted rows are not
// reissued.
func NextSequence(ctx context.Context, q rowQuerier, scope string) (int64, error) {
	var v int64
	err := q.QueryRow(ctx, `
		INSERT INTO id_sequences (scope, last_value)
		VALUES ($1, 1)
		ON CONFLICT (scope) DO UPDATE
		SET last_value = id_sequences.last_value + 1
		RETURNING last_value
	`, scope).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("next sequence for %s: %w", scope, err)
	}
	return v, nil
}
