package crmkv

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func newRetrieveTest(ctx context.Context, store *Store) func(t *testing.T) {
	return func(t *testing.T) {
		defer clearEntity(ctx, t, store, personEntity)
		store.Now = newTestClock().Now

		t.Run("Missing records return ok=false", func(t *testing.T) {
			_, ok, err := store.Retrieve(ctx, personEntity, uuid.New())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				t.Error("expected record not to be found")
			}
		})
		t.Run("Records of other entities are not returned", func(t *testing.T) {
			id, err := store.Create(ctx, newPerson("Alice", "ALICE"))
			if err != nil {
				t.Fatalf("unexpected error creating record: %v", err)
			}
			_, ok, err := store.Retrieve(ctx, teamEntity, id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				t.Error("expected record not to be found")
			}
		})
		t.Run("Columns limit the fields returned", func(t *testing.T) {
			id, err := store.Create(ctx, newPerson("Bob", "BOB"))
			if err != nil {
				t.Fatalf("unexpected error creating record: %v", err)
			}
			actual, ok, err := store.Retrieve(ctx, personEntity, id, "name", "dob")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatal("expected record to be found")
			}
			expected := map[string]Value{"name": String("Bob")}
			if diff := cmp.Diff(expected, actual.Fields); diff != "" {
				t.Error(diff)
			}
			if actual.Has("dob") {
				t.Error("expected dob to be unset")
			}
		})
	}
}
