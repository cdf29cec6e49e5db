package crmkv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/a-h/crmkv/db"
	"github.com/google/uuid"
)

// RecordStore is the CRUD backend that selectors act on.
type RecordStore interface {
	// RetrieveMultiple returns the records matching the query, in the query's sort order.
	RetrieveMultiple(ctx context.Context, q Query) (records Records, err error)
	// Create inserts the record and returns its id.
	Create(ctx context.Context, r Record) (id uuid.UUID, err error)
	// Update sets the fields of r on the stored record with r's id. Unset fields are removed.
	Update(ctx context.Context, r Record) error
	// Delete removes the record. ErrNotFound is returned if it does not exist.
	Delete(ctx context.Context, entity string, id uuid.UUID) error
}

// Schema maps entity names to their fields and the kind of value each field holds.
type Schema map[string]map[string]Kind

func (s Schema) validate(r Record) error {
	if err := validateFieldName(r.Entity); err != nil {
		return fmt.Errorf("%w: entity: %w", ErrValidation, err)
	}
	var fields map[string]Kind
	if s != nil {
		var ok bool
		if fields, ok = s[r.Entity]; !ok {
			return fmt.Errorf("%w: unknown entity %q", ErrValidation, r.Entity)
		}
	}
	for name, v := range r.Fields {
		if err := validateFieldName(name); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		var expected Kind
		switch name {
		case FieldCreatedOn:
			return fmt.Errorf("%w: %q is read-only", ErrValidation, FieldCreatedOn)
		case FieldStatusCode:
			expected = KindOption
		default:
			if s == nil {
				continue
			}
			var ok bool
			if expected, ok = fields[name]; !ok {
				return fmt.Errorf("%w: unknown field %q on entity %q", ErrValidation, name, r.Entity)
			}
		}
		if !v.IsUnset() && v.Kind() != expected {
			return fmt.Errorf("%w: field %q: expected %s, got %s", ErrValidation, name, expected, v.Kind())
		}
	}
	return nil
}

func NewStore(db db.DB, schema Schema) *Store {
	return &Store{
		db:     db,
		schema: schema,
		Now:    time.Now,
		NewID:  uuid.New,
	}
}

// Store is a RecordStore backed by a SQL database.
type Store struct {
	db     db.DB
	schema Schema
	// Now is used to set the created time of new records.
	Now func() time.Time
	// NewID is used to assign ids to new records.
	NewID func() uuid.UUID
}

func (s *Store) isRecordStore() RecordStore { return s }

func storeError(op string, err error) error {
	if errors.Is(err, db.ErrNoRowsAffected) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, db.ErrConstraint) {
		return fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// Init creates the tables if they don't exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.Mutate(ctx, s.db.Statements().Init()...); err != nil {
		return storeError("init", err)
	}
	return nil
}

func newRecordFromRow(row db.Row) (r Record, err error) {
	r.Entity = row.Entity
	if r.ID, err = uuid.Parse(row.ID); err != nil {
		return r, fmt.Errorf("record: id: %w", err)
	}
	r.Created = row.Created.UTC()
	if err = json.Unmarshal(row.Value, &r.Fields); err != nil {
		return r, fmt.Errorf("record: value: %w", err)
	}
	if r.Fields == nil {
		r.Fields = map[string]Value{}
	}
	return r, nil
}

func (s *Store) query(ctx context.Context, op string, q db.Query, columns []string) (records Records, err error) {
	outputs, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, storeError(op, err)
	}
	if len(outputs) != 1 {
		return nil, fmt.Errorf("%s: %w: expected 1 result, got %d", op, ErrStoreUnavailable, len(outputs))
	}
	records = make(Records, len(outputs[0]))
	for i, row := range outputs[0] {
		r, err := newRecordFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records[i] = r.project(columns)
	}
	return records, nil
}

// RetrieveMultiple returns the records matching the query. Records with equal
// sort keys are returned in id order.
func (s *Store) RetrieveMultiple(ctx context.Context, q Query) (records Records, err error) {
	if err = q.Validate(); err != nil {
		return nil, fmt.Errorf("retrievemultiple: %w", err)
	}
	conditions := make([]db.Condition, len(q.Conditions))
	for i, c := range q.Conditions {
		if conditions[i], err = c.toDB(); err != nil {
			return nil, fmt.Errorf("retrievemultiple: %w: %w", ErrInvalidQuery, err)
		}
	}
	orders := make([]db.Order, len(q.Orders))
	for i, o := range q.Orders {
		orders[i] = o.toDB()
	}
	return s.query(ctx, "retrievemultiple", s.db.Statements().Find(q.Entity, conditions, orders), q.Columns)
}

// Retrieve gets a single record by id. If the record does not exist, it returns ok=false.
func (s *Store) Retrieve(ctx context.Context, entity string, id uuid.UUID, columns ...string) (r Record, ok bool, err error) {
	q := Query{Entity: entity, Columns: columns}
	if err = q.Validate(); err != nil {
		return r, false, fmt.Errorf("retrieve: %w", err)
	}
	records, err := s.query(ctx, "retrieve", s.db.Statements().Get(entity, id.String()), columns)
	if err != nil {
		return r, false, err
	}
	if len(records) > 1 {
		return r, false, fmt.Errorf("retrieve: multiple records found for id %q", id)
	}
	if len(records) == 0 {
		return r, false, nil
	}
	return records[0], true, nil
}

// Create inserts a new record. If the record's id is uuid.Nil, a new id is
// assigned. New records are active unless a status code is given.
func (s *Store) Create(ctx context.Context, r Record) (id uuid.UUID, err error) {
	if err = s.schema.validate(r); err != nil {
		return uuid.Nil, fmt.Errorf("create: %w", err)
	}
	id = r.ID
	if id == uuid.Nil {
		id = s.NewID()
	}
	value := make(map[string]Value, len(r.Fields)+1)
	for name, v := range r.Fields {
		if v.IsUnset() {
			continue
		}
		value[name] = v
	}
	if _, ok := value[FieldStatusCode]; !ok {
		value[FieldStatusCode] = Option(StatusActive)
	}
	// PostgreSQL stores microseconds.
	created := s.Now().UTC().Truncate(time.Microsecond)
	if _, err = s.db.Mutate(ctx, s.db.Statements().Insert(r.Entity, id.String(), created, value)); err != nil {
		return uuid.Nil, storeError("create", err)
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, r Record) (err error) {
	if r.ID == uuid.Nil {
		return fmt.Errorf("update: %w: record has no id", ErrValidation)
	}
	if err = s.schema.validate(r); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	patch := make(map[string]Value, len(r.Fields))
	for name, v := range r.Fields {
		patch[name] = v
	}
	if _, err = s.db.Mutate(ctx, s.db.Statements().Update(r.Entity, r.ID.String(), patch)); err != nil {
		return storeError("update", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, entity string, id uuid.UUID) (err error) {
	if err = validateFieldName(entity); err != nil {
		return fmt.Errorf("delete: %w: entity: %w", ErrValidation, err)
	}
	if _, err = s.db.Mutate(ctx, s.db.Statements().Delete(entity, id.String())); err != nil {
		return storeError("delete", err)
	}
	return nil
}
