package crmkv

import (
	"iter"
	"maps"
	"time"

	"github.com/google/uuid"
)

const (
	// FieldCreatedOn is the system field holding the record's creation time. It is read-only.
	FieldCreatedOn = "createdon"
	// FieldStatusCode is the system field holding the record's status option code.
	FieldStatusCode = "statuscode"
	// StatusActive is the status code given to new records.
	StatusActive = 1
)

// Record is a snapshot of a row in the store.
type Record struct {
	Entity  string           `json:"entity"`
	ID      uuid.UUID        `json:"id"`
	Created time.Time        `json:"created"`
	Fields  map[string]Value `json:"fields"`
}

// NewRecord creates an empty record. Pass uuid.Nil to have the store assign the id on create.
func NewRecord(entity string, id uuid.UUID) Record {
	return Record{
		Entity: entity,
		ID:     id,
		Fields: map[string]Value{},
	}
}

// Get returns the value of the field. Absent fields are unset.
func (r Record) Get(field string) Value {
	if field == FieldCreatedOn {
		if r.Created.IsZero() {
			return Unset()
		}
		return Time(r.Created)
	}
	return r.Fields[field]
}

// Has returns true if the field is present and not unset.
func (r Record) Has(field string) bool {
	return !r.Get(field).IsUnset()
}

func (r *Record) Set(field string, v Value) {
	if r.Fields == nil {
		r.Fields = map[string]Value{}
	}
	r.Fields[field] = v
}

// Clone returns a copy of the record that shares no state with r.
func (r Record) Clone() Record {
	r.Fields = maps.Clone(r.Fields)
	if r.Fields == nil {
		r.Fields = map[string]Value{}
	}
	return r
}

// project returns a copy of the record containing only the named fields.
func (r Record) project(columns []string) Record {
	if len(columns) == 0 {
		return r
	}
	fields := make(map[string]Value, len(columns))
	for _, c := range columns {
		if v, ok := r.Fields[c]; ok && !v.IsUnset() {
			fields[c] = v
		}
	}
	r.Fields = fields
	return r
}

// Records is an ordered sequence of records.
type Records []Record

func (r Records) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, record := range r {
			if !yield(record) {
				return
			}
		}
	}
}

func (r Records) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r))
	for i, record := range r {
		ids[i] = record.ID
	}
	return ids
}
