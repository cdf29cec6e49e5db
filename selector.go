package crmkv

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// DefaultSuffixLayout is the time format appended to the name of cloned records.
const DefaultSuffixLayout = "20060102 15:04:05"

// NewSelector creates a Selector that renames and clones records using the given name field.
func NewSelector(nameField string) *Selector {
	return &Selector{
		NameField:    nameField,
		StatusField:  FieldStatusCode,
		ActiveStatus: StatusActive,
		SuffixLayout: DefaultSuffixLayout,
		Now:          time.Now,
	}
}

// Selector finds records, selects from them, and mutates the selection.
// The store to act on is passed to each call.
type Selector struct {
	// NameField is the display name field, set by RenameNewest and required by CloneWithTimestampSuffix.
	NameField string
	// StatusField and ActiveStatus restrict DeleteAllButNewest and RenameNewest to active records.
	StatusField  string
	ActiveStatus int
	SuffixLayout string
	Now          func() time.Time
	Log          *slog.Logger
}

func (s *Selector) log() *slog.Logger {
	if s.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Log
}

// Find returns the records matching the query. Queries without conditions are rejected.
func (s *Selector) Find(ctx context.Context, store RecordStore, q Query) (records Records, err error) {
	if len(q.Conditions) == 0 {
		return nil, fmt.Errorf("find: %w: at least one condition is required", ErrInvalidQuery)
	}
	if err = q.Validate(); err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	return store.RetrieveMultiple(ctx, q)
}

// Select returns the records chosen by rule from the results of the query.
func (s *Selector) Select(ctx context.Context, store RecordStore, q Query, rule Rule) (records Records, err error) {
	if records, err = s.Find(ctx, store, q); err != nil {
		return nil, err
	}
	return rule(records), nil
}

// DeleteSelected deletes the records chosen by rule from the results of the
// query. Every delete is attempted even if an earlier one fails.
func (s *Selector) DeleteSelected(ctx context.Context, store RecordStore, q Query, rule Rule) (deleted int, err error) {
	records, err := s.Select(ctx, store, q, rule)
	if err != nil {
		return 0, fmt.Errorf("deleteselected: %w", err)
	}
	deleted, err = s.deleteEach(ctx, store, q.Entity, records)
	s.log().Info("Deleted selected records.", slog.String("entity", q.Entity), slog.Int("deleted", deleted), slog.Int("failed", len(records)-deleted))
	return deleted, err
}

func (s *Selector) deleteEach(ctx context.Context, store RecordStore, entity string, records Records) (deleted int, err error) {
	for r := range records.All() {
		if deleteErr := store.Delete(ctx, entity, r.ID); deleteErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", r.ID, deleteErr))
			continue
		}
		deleted++
	}
	return deleted, err
}

func (s *Selector) newestActiveQuery(entity, matchField string, matchValue Value) Query {
	return Query{
		Entity: entity,
		Conditions: []Condition{
			Equal(matchField, matchValue),
			Equal(s.StatusField, Option(s.ActiveStatus)),
		},
		Orders: []Order{Desc(FieldCreatedOn)},
	}
}

// DeleteAllButNewest deletes every active record where matchField equals
// matchValue, except the most recently created one. Every delete is
// attempted even if an earlier one fails; deleted is the number that
// succeeded and err combines the failures.
func (s *Selector) DeleteAllButNewest(ctx context.Context, store RecordStore, entity, matchField string, matchValue Value) (deleted int, err error) {
	records, err := s.Find(ctx, store, s.newestActiveQuery(entity, matchField, matchValue))
	if err != nil {
		return 0, fmt.Errorf("deleteallbutnewest: %w", err)
	}
	if len(records) <= 1 {
		s.log().Debug("Nothing to delete.", slog.String("entity", entity), slog.Int("matched", len(records)))
		return 0, nil
	}
	newest, _, err := SelectNewest(records)
	if err != nil {
		return 0, fmt.Errorf("deleteallbutnewest: %w", err)
	}
	if deleted, err = s.deleteEach(ctx, store, entity, SelectAllButFirst(records)); err != nil {
		err = fmt.Errorf("deleteallbutnewest: %w", err)
	}
	s.log().Info("Deleted all but the newest record.",
		slog.String("entity", entity),
		slog.String("kept", newest.ID.String()),
		slog.Int("deleted", deleted),
		slog.Int("failed", len(records)-1-deleted),
	)
	return deleted, err
}

// RenameNewest sets the name field of the most recently created active record
// where matchField equals matchValue. It returns false if no record matched.
func (s *Selector) RenameNewest(ctx context.Context, store RecordStore, entity, matchField string, matchValue Value, newName string) (ok bool, err error) {
	records, err := s.Find(ctx, store, s.newestActiveQuery(entity, matchField, matchValue))
	if err != nil {
		return false, fmt.Errorf("renamenewest: %w", err)
	}
	newest, ok, err := SelectNewest(records)
	if err != nil {
		return false, fmt.Errorf("renamenewest: %w", err)
	}
	if !ok {
		s.log().Debug("No record to rename.", slog.String("entity", entity))
		return false, nil
	}
	// Only the id and the renamed field are sent, so other fields are left as they are.
	update := NewRecord(entity, newest.ID)
	update.Set(s.NameField, String(newName))
	if err = store.Update(ctx, update); err != nil {
		return false, fmt.Errorf("renamenewest: %w", err)
	}
	s.log().Info("Renamed newest record.", slog.String("entity", entity), slog.String("id", newest.ID.String()))
	return true, nil
}

// CloneWithTimestampSuffix creates a new record containing the fieldsToCopy
// present on source. The name field is suffixed with the current time, and
// codeField is set to codeValue. The source id is never copied.
func (s *Selector) CloneWithTimestampSuffix(ctx context.Context, store RecordStore, source Record, fieldsToCopy []string, codeField string, codeValue Value) (id uuid.UUID, err error) {
	name, ok := source.Get(s.NameField).AsString()
	if !ok {
		return uuid.Nil, fmt.Errorf("clone: %w: %q", ErrMissingField, s.NameField)
	}
	clone := NewRecord(source.Entity, uuid.Nil)
	for _, field := range fieldsToCopy {
		if field == FieldCreatedOn {
			continue
		}
		v := source.Get(field)
		if v.IsUnset() {
			continue
		}
		clone.Set(field, v)
	}
	clone.Set(s.NameField, String(name+"_"+s.Now().Format(s.SuffixLayout)))
	clone.Set(codeField, codeValue)
	if id, err = store.Create(ctx, clone); err != nil {
		return uuid.Nil, fmt.Errorf("clone: %w", err)
	}
	s.log().Info("Cloned record.", slog.String("entity", source.Entity), slog.String("source", source.ID.String()), slog.String("id", id.String()))
	return id, nil
}
