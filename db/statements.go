package db

import "time"

type StatementSet interface {
	Init() []Mutation
	Get(entity, id string) Query
	Find(entity string, conditions []Condition, orders []Order) Query
	Insert(entity, id string, created time.Time, value any) Mutation
	Update(entity, id string, patch any) Mutation
	Delete(entity, id string) Mutation
}

// Condition is an equality test against a single field of the record value.
type Condition struct {
	// Field is the name of the field within the record value.
	Field string
	// Kind is the stored type tag of the field.
	Kind string
	// Path is the location of the comparable scalar within the field, e.g. "value" or "value.id".
	Path string
	// Scalar is the value compared against Path by dialects that extract scalars.
	Scalar any
	// Entity is the referenced entity of a reference condition, compared at value.entity alongside Scalar.
	Entity string
	// Document is the JSON object {field: {...}} used by dialects that test containment.
	Document string
}

// Order sorts by a field of the record value, or by the created column when Created is set.
type Order struct {
	Field      string
	Created    bool
	Descending bool
}
