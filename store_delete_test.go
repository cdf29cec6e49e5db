package crmkv

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func newDeleteTest(ctx context.Context, store *Store) func(t *testing.T) {
	return func(t *testing.T) {
		defer clearEntity(ctx, t, store, personEntity)
		store.Now = newTestClock().Now

		t.Run("Can delete", func(t *testing.T) {
			id, err := store.Create(ctx, newPerson("Alice", "ALICE"))
			if err != nil {
				t.Fatalf("unexpected error creating record: %v", err)
			}

			if err := store.Delete(ctx, personEntity, id); err != nil {
				t.Errorf("unexpected error deleting record: %v", err)
			}

			_, ok, err := store.Retrieve(ctx, personEntity, id)
			if err != nil {
				t.Errorf("unexpected error retrieving record: %v", err)
			}
			if ok {
				t.Error("expected record to be deleted")
			}
		})
		t.Run("Deleting a missing record returns ErrNotFound", func(t *testing.T) {
			if err := store.Delete(ctx, personEntity, uuid.New()); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
		t.Run("Deleting with the wrong entity returns ErrNotFound", func(t *testing.T) {
			id, err := store.Create(ctx, newPerson("Bob", "BOB"))
			if err != nil {
				t.Fatalf("unexpected error creating record: %v", err)
			}
			if err := store.Delete(ctx, teamEntity, id); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}
