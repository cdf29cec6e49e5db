package crmkv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/a-h/crmkv/db"
	"github.com/a-h/crmkv/db/stmts"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"go.uber.org/multierr"
)

func NewRqlite(client *rqlitehttp.Client) *Rqlite {
	return &Rqlite{
		client:          client,
		timeout:         time.Second * 30,
		readConsistency: rqlitehttp.ReadConsistencyLevelWeak,
	}
}

type Rqlite struct {
	client          *rqlitehttp.Client
	timeout         time.Duration
	readConsistency rqlitehttp.ReadConsistencyLevel
}

func (rq *Rqlite) isDB() db.DB { return rq }

// rqlite expects named parameters without the leading colon used by zombiezen.
func rqliteParams(args map[string]any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	params := make(map[string]any, len(args))
	for k, v := range args {
		params[strings.TrimPrefix(k, ":")] = v
	}
	return params
}

func checkResultColumns(columns []string) (err error) {
	expected := []string{"id", "entity", "value", "created"}
	if len(columns) != len(expected) {
		return fmt.Errorf("row: expected %d columns, got %d", len(expected), len(columns))
	}
	for i, c := range expected {
		if columns[i] != c {
			return fmt.Errorf("row: expected %v columns, got: %#v", expected, columns)
		}
	}
	return nil
}

func newRowFromValues(values []any) (r db.Row, err error) {
	if len(values) != 4 {
		return r, fmt.Errorf("row: expected 4 columns, got %d", len(values))
	}
	var ok bool
	if r.ID, ok = values[0].(string); !ok {
		return r, fmt.Errorf("row: id: expected string, got %T", values[0])
	}
	if r.Entity, ok = values[1].(string); !ok {
		return r, fmt.Errorf("row: entity: expected string, got %T", values[1])
	}
	value, ok := values[2].(string)
	if !ok {
		return r, fmt.Errorf("row: value: expected string, got %T", values[2])
	}
	r.Value = []byte(value)
	created, ok := values[3].(string)
	if !ok {
		return r, fmt.Errorf("row: created: expected string, got %T", values[3])
	}
	if r.Created, err = time.Parse(stmts.CreatedLayout, created); err != nil {
		return r, fmt.Errorf("row: created: %w", err)
	}
	return r, nil
}

func (rq *Rqlite) Query(ctx context.Context, queries ...db.Query) (outputs [][]db.Row, err error) {
	var statements rqlitehttp.SQLStatements
	for _, q := range queries {
		statements = append(statements, rqlitehttp.SQLStatements{{
			SQL:         q.SQL,
			NamedParams: rqliteParams(q.Args),
		}}...)
	}
	opts := &rqlitehttp.QueryOptions{
		Timeout: rq.timeout,
		Level:   rq.readConsistency,
	}
	qr, err := rq.client.Query(ctx, statements, opts)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	if len(qr.Results) != len(queries) {
		return nil, fmt.Errorf("query: expected %d results, got %d", len(queries), len(qr.Results))
	}
	outputs = make([][]db.Row, len(queries))
	for i, result := range qr.Results {
		if result.Error != "" {
			return outputs, fmt.Errorf("query: error in query index %d: %s", i, result.Error)
		}
		if len(result.Values) == 0 {
			continue
		}
		if err = checkResultColumns(result.Columns); err != nil {
			return outputs, fmt.Errorf("query: error in query index %d: %w", i, err)
		}
		for _, values := range result.Values {
			r, err := newRowFromValues(values)
			if err != nil {
				return outputs, fmt.Errorf("query: error in query index %d: %w", i, err)
			}
			outputs[i] = append(outputs[i], r)
		}
	}
	return outputs, nil
}

func (rq *Rqlite) Mutate(ctx context.Context, mutations ...db.Mutation) (rowsAffected []int64, err error) {
	var statements rqlitehttp.SQLStatements
	for _, m := range mutations {
		if m.ArgsError != nil {
			return nil, fmt.Errorf("mutate: error in mutation: %w", m.ArgsError)
		}
		statements = append(statements, rqlitehttp.SQLStatements{{
			SQL:         m.SQL,
			NamedParams: rqliteParams(m.Args),
		}}...)
	}
	opts := &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Wait:        true,
		Timeout:     rq.timeout,
	}
	qr, err := rq.client.Execute(ctx, statements, opts)
	if err != nil {
		return nil, fmt.Errorf("mutate: %w", err)
	}
	if len(qr.Results) != len(mutations) {
		return nil, fmt.Errorf("mutate: expected %d results, got %d", len(mutations), len(qr.Results))
	}
	rowsAffected = make([]int64, len(mutations))
	for i, result := range qr.Results {
		if result.Error != "" {
			resultErr := errors.New(result.Error)
			if strings.Contains(result.Error, "constraint failed") {
				resultErr = fmt.Errorf("%w: %w", db.ErrConstraint, resultErr)
			}
			err = multierr.Append(err, fmt.Errorf("mutate: error in mutation index %d: %w", i, resultErr))
			continue
		}
		rowsAffected[i] = int64(result.RowsAffected)
		if mutations[i].MustAffectRows && rowsAffected[i] == 0 {
			err = multierr.Append(err, fmt.Errorf("mutate: error in mutation index %d: %w", i, db.ErrNoRowsAffected))
		}
	}
	return rowsAffected, err
}

func (rq *Rqlite) Statements() db.StatementSet {
	return stmts.SQLite{}
}
