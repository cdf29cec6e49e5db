package crmkv

import (
	"context"
	"errors"
	"fmt"

	"github.com/a-h/crmkv/db"
	"github.com/a-h/crmkv/db/stmts"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/multierr"
)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		pool: pool,
	}
}

type Postgres struct {
	pool *pgxpool.Pool
}

func (pg *Postgres) isDB() db.DB { return pg }

func (pg *Postgres) Query(ctx context.Context, queries ...db.Query) (outputs [][]db.Row, err error) {
	outputs = make([][]db.Row, len(queries))
	for i, q := range queries {
		rows, err := pg.pool.Query(ctx, q.SQL, pgx.NamedArgs(q.Args))
		if err != nil {
			return outputs, fmt.Errorf("query: error in query index %d: %w", i, err)
		}
		for rows.Next() {
			var r db.Row
			if err = rows.Scan(&r.ID, &r.Entity, &r.Value, &r.Created); err != nil {
				rows.Close()
				return outputs, fmt.Errorf("query: error scanning row: %w", err)
			}
			outputs[i] = append(outputs[i], r)
		}
		rows.Close()
		if err = rows.Err(); err != nil {
			return outputs, fmt.Errorf("query: error in query index %d: %w", i, err)
		}
	}
	return outputs, nil
}

func (pg *Postgres) Mutate(ctx context.Context, mutations ...db.Mutation) (rowsAffected []int64, err error) {
	rowsAffected = make([]int64, len(mutations))
	for i, m := range mutations {
		if m.ArgsError != nil {
			return nil, fmt.Errorf("mutate: error in mutation: %w", m.ArgsError)
		}
		res, execErr := pg.pool.Exec(ctx, m.SQL, pgx.NamedArgs(m.Args))
		if execErr != nil {
			if isUniqueViolation(execErr) {
				execErr = fmt.Errorf("%w: %w", db.ErrConstraint, execErr)
			}
			err = multierr.Append(err, fmt.Errorf("mutate: error in mutation index %d: %w", i, execErr))
			continue
		}
		rowsAffected[i] = res.RowsAffected()
		if m.MustAffectRows && rowsAffected[i] == 0 {
			err = multierr.Append(err, fmt.Errorf("mutate: error in mutation index %d: %w", i, db.ErrNoRowsAffected))
		}
	}

	return rowsAffected, err
}

// uniqueViolation is the SQLSTATE of unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (pg *Postgres) Statements() db.StatementSet {
	return stmts.Postgres{}
}
