package db

import (
	"context"
	"errors"
	"time"
)

// Row is a record as stored, prior to its value being unmarshaled.
type Row struct {
	ID      string    `json:"id"`
	Entity  string    `json:"entity"`
	Value   []byte    `json:"value"`
	Created time.Time `json:"created"`
}

type DB interface {
	// Query runs queries against the store. The query should return rows, and the rows are returned as-is.
	Query(ctx context.Context, queries ...Query) (output [][]Row, err error)
	// Mutate runs mutations against the store.
	Mutate(ctx context.Context, mutations ...Mutation) (rowsAffected []int64, err error)
	// Statements returns the SQL dialect understood by the store.
	Statements() StatementSet
}

type Query struct {
	SQL  string
	Args map[string]any
}

type Mutation struct {
	SQL  string
	Args map[string]any
	// If the value can't be marshalled, the ArgsError is set.
	ArgsError      error
	MustAffectRows bool
}

// ErrNoRowsAffected is returned by Mutate when a mutation with MustAffectRows set changed nothing.
var ErrNoRowsAffected = errors.New("no rows affected")

// ErrConstraint is returned by Mutate when a mutation violates a table constraint, e.g. a duplicate id.
var ErrConstraint = errors.New("constraint violation")
