package crmkv

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func newSelectorStoreTest(ctx context.Context, store *Store) func(t *testing.T) {
	return func(t *testing.T) {
		defer clearEntity(ctx, t, store, personEntity)
		store.Now = newTestClock().Now

		sel := NewSelector("name")
		sel.Now = func() time.Time { return time.Date(2024, time.May, 6, 7, 8, 9, 0, time.UTC) }

		var ids []uuid.UUID
		for _, name := range []string{"Oldest", "Middle", "Newest"} {
			id, err := store.Create(ctx, newPerson(name, "NIBCREATE"))
			if err != nil {
				t.Fatalf("unexpected error creating record: %v", err)
			}
			ids = append(ids, id)
		}
		inactive := newPerson("Inactive", "NIBCREATE")
		inactive.Set(FieldStatusCode, Option(2))
		inactiveID, err := store.Create(ctx, inactive)
		if err != nil {
			t.Fatalf("unexpected error creating record: %v", err)
		}

		t.Run("DeleteAllButNewest keeps the newest active record", func(t *testing.T) {
			deleted, err := sel.DeleteAllButNewest(ctx, store, personEntity, "code", String("NIBCREATE"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if deleted != 2 {
				t.Errorf("expected 2 deleted, got %d", deleted)
			}
			remaining, err := store.RetrieveMultiple(ctx, Query{Entity: personEntity, Orders: []Order{Desc(FieldCreatedOn)}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff([]uuid.UUID{inactiveID, ids[2]}, remaining.IDs()); diff != "" {
				t.Error(diff)
			}
		})
		t.Run("DeleteAllButNewest does nothing when one record matches", func(t *testing.T) {
			deleted, err := sel.DeleteAllButNewest(ctx, store, personEntity, "code", String("NIBCREATE"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if deleted != 0 {
				t.Errorf("expected 0 deleted, got %d", deleted)
			}
		})
		t.Run("RenameNewest renames only the name field", func(t *testing.T) {
			ok, err := sel.RenameNewest(ctx, store, personEntity, "code", String("NIBCREATE"), "Nguyen Van Demo")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatal("expected a record to be renamed")
			}
			actual, _, err := store.Retrieve(ctx, personEntity, ids[2])
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			expected := map[string]Value{
				"name":          String("Nguyen Van Demo"),
				"code":          String("NIBCREATE"),
				FieldStatusCode: Option(StatusActive),
			}
			if diff := cmp.Diff(expected, actual.Fields); diff != "" {
				t.Error(diff)
			}
		})
		t.Run("CloneWithTimestampSuffix creates a new record", func(t *testing.T) {
			source, _, err := store.Retrieve(ctx, personEntity, ids[2])
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			id, err := sel.CloneWithTimestampSuffix(ctx, store, source, []string{"name", "dob"}, "code", String("CLONE"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id == source.ID {
				t.Fatal("expected a new id")
			}
			actual, ok, err := store.Retrieve(ctx, personEntity, id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatal("expected clone to be found")
			}
			expected := map[string]Value{
				"name":          String("Nguyen Van Demo_20240506 07:08:09"),
				"code":          String("CLONE"),
				FieldStatusCode: Option(StatusActive),
			}
			if diff := cmp.Diff(expected, actual.Fields); diff != "" {
				t.Error(diff)
			}
		})
	}
}
