package crmkv

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/crmkv/db"
	"github.com/a-h/crmkv/db/stmts"
	"go.uber.org/multierr"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func NewSqlite(pool *sqlitex.Pool) *Sqlite {
	return &Sqlite{
		pool: pool,
	}
}

type Sqlite struct {
	pool *sqlitex.Pool
}

func (s *Sqlite) isDB() db.DB { return s }

func (s *Sqlite) Query(ctx context.Context, queries ...db.Query) (outputs [][]db.Row, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	outputs = make([][]db.Row, len(queries))
	for i, q := range queries {
		opts := &sqlitex.ExecOptions{
			Named: q.Args,
			ResultFunc: func(stmt *sqlite.Stmt) (err error) {
				valueBytes, err := io.ReadAll(stmt.GetReader("value"))
				if err != nil {
					return fmt.Errorf("query: error reading value: %w", err)
				}
				created, err := time.Parse(stmts.CreatedLayout, stmt.GetText("created"))
				if err != nil {
					return fmt.Errorf("query: error parsing created time: %w", err)
				}
				r := db.Row{
					ID:      stmt.GetText("id"),
					Entity:  stmt.GetText("entity"),
					Value:   valueBytes,
					Created: created,
				}
				outputs[i] = append(outputs[i], r)
				return nil
			},
		}
		if err = sqlitex.Execute(conn, q.SQL, opts); err != nil {
			return outputs, fmt.Errorf("query: error in query index %d: %w", i, err)
		}
	}

	return outputs, nil
}

func (s *Sqlite) Mutate(ctx context.Context, mutations ...db.Mutation) (rowsAffected []int64, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	rowsAffected = make([]int64, len(mutations))
	for i, m := range mutations {
		if m.ArgsError != nil {
			return nil, fmt.Errorf("mutate: error in mutation: %w", m.ArgsError)
		}
		opts := &sqlitex.ExecOptions{
			Named: m.Args,
		}
		if execErr := sqlitex.Execute(conn, m.SQL, opts); execErr != nil {
			if sqlite.ErrCode(execErr).ToPrimary() == sqlite.ResultConstraint {
				execErr = fmt.Errorf("%w: %w", db.ErrConstraint, execErr)
			}
			err = multierr.Append(err, fmt.Errorf("mutate: error in mutation index %d: %w", i, execErr))
			continue
		}
		rowsAffected[i] = int64(conn.Changes())
		if m.MustAffectRows && rowsAffected[i] == 0 {
			err = multierr.Append(err, fmt.Errorf("mutate: error in mutation index %d: %w", i, db.ErrNoRowsAffected))
		}
	}

	return rowsAffected, err
}

func (s *Sqlite) Statements() db.StatementSet {
	return stmts.SQLite{}
}
