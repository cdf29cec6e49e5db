package crmkv

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/a-h/crmkv/db"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Condition is an equality test on a field.
type Condition struct {
	Field string
	Value Value
}

func Equal(field string, v Value) Condition {
	return Condition{Field: field, Value: v}
}

type Order struct {
	Field     string
	Direction Direction
}

func Asc(field string) Order {
	return Order{Field: field, Direction: Ascending}
}

func Desc(field string) Order {
	return Order{Field: field, Direction: Descending}
}

// Query selects records of a single entity that match every condition.
type Query struct {
	Entity string
	// Columns to return. All fields are returned if empty.
	Columns    []string
	Conditions []Condition
	Orders     []Order
}

var fieldNameRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateFieldName(field string) error {
	if !fieldNameRegexp.MatchString(field) {
		return fmt.Errorf("invalid field name %q", field)
	}
	return nil
}

// Validate checks that the query is well formed. It does not require conditions.
func (q Query) Validate() error {
	if err := validateFieldName(q.Entity); err != nil {
		return fmt.Errorf("%w: entity: %w", ErrInvalidQuery, err)
	}
	for _, c := range q.Columns {
		if err := validateFieldName(c); err != nil {
			return fmt.Errorf("%w: column: %w", ErrInvalidQuery, err)
		}
	}
	for _, c := range q.Conditions {
		if err := validateFieldName(c.Field); err != nil {
			return fmt.Errorf("%w: condition: %w", ErrInvalidQuery, err)
		}
		if c.Field == FieldCreatedOn {
			return fmt.Errorf("%w: condition: %q can only be used to order results", ErrInvalidQuery, FieldCreatedOn)
		}
		if c.Value.IsUnset() {
			return fmt.Errorf("%w: condition: %q compared to an unset value", ErrInvalidQuery, c.Field)
		}
	}
	for _, o := range q.Orders {
		if err := validateFieldName(o.Field); err != nil {
			return fmt.Errorf("%w: order: %w", ErrInvalidQuery, err)
		}
		if o.Direction != Ascending && o.Direction != Descending {
			return fmt.Errorf("%w: order: invalid direction %d", ErrInvalidQuery, o.Direction)
		}
	}
	return nil
}

// NewestFirst returns true if the first sort order is creation time descending.
func (q Query) NewestFirst() bool {
	return len(q.Orders) > 0 && q.Orders[0].Field == FieldCreatedOn && q.Orders[0].Direction == Descending
}

func (c Condition) toDB() (dc db.Condition, err error) {
	document, err := json.Marshal(map[string]Value{c.Field: c.Value})
	if err != nil {
		return dc, err
	}
	dc = db.Condition{
		Field:    c.Field,
		Kind:     string(c.Value.Kind()),
		Path:     "value",
		Document: string(document),
	}
	switch c.Value.Kind() {
	case KindString:
		dc.Scalar = c.Value.s
	case KindBool:
		// JSON booleans are extracted by SQLite as 0 or 1.
		dc.Scalar = int64(0)
		if c.Value.b {
			dc.Scalar = int64(1)
		}
	case KindTime:
		dc.Scalar = c.Value.t.Format(timeLayout)
	case KindOption:
		dc.Scalar = int64(c.Value.o)
	case KindReference:
		dc.Path = "value.id"
		dc.Scalar = c.Value.ref.ID.String()
		dc.Entity = c.Value.ref.Entity
	}
	return dc, nil
}

func (o Order) toDB() db.Order {
	return db.Order{
		Field:      o.Field,
		Created:    o.Field == FieldCreatedOn,
		Descending: o.Direction == Descending,
	}
}
