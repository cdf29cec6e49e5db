package crmkv

import (
	"context"
	"testing"
	"time"

	"github.com/a-h/crmkv/db"
	"github.com/google/uuid"
)

const (
	personEntity = "person"
	teamEntity   = "team"
)

var testSchema = Schema{
	personEntity: {
		"name":    KindString,
		"code":    KindString,
		"dob":     KindTime,
		"active":  KindBool,
		"type":    KindOption,
		"manager": KindReference,
	},
	teamEntity: {
		"name": KindString,
	},
}

// testClock advances by a second each time it is read, so records are created in order.
type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newPerson(name, code string) Record {
	r := NewRecord(personEntity, uuid.Nil)
	r.Set("name", String(name))
	r.Set("code", String(code))
	return r
}

func clearEntity(ctx context.Context, t *testing.T, store *Store, entity string) {
	t.Helper()
	records, err := store.RetrieveMultiple(ctx, Query{Entity: entity})
	if err != nil {
		t.Fatalf("unexpected error listing %s: %v", entity, err)
	}
	for _, r := range records {
		if err := store.Delete(ctx, entity, r.ID); err != nil {
			t.Fatalf("unexpected error deleting %s %s: %v", entity, r.ID, err)
		}
	}
}

func runStoreTests(t *testing.T, database db.DB) {
	ctx := context.Background()
	store := NewStore(database, testSchema)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("unexpected error initializing store: %v", err)
	}

	// Clear the data before running the tests.
	clearEntity(ctx, t, store, personEntity)
	clearEntity(ctx, t, store, teamEntity)

	t.Run("Create", newCreateTest(ctx, store))
	t.Run("Retrieve", newRetrieveTest(ctx, store))
	t.Run("RetrieveMultiple", newRetrieveMultipleTest(ctx, store))
	t.Run("Update", newUpdateTest(ctx, store))
	t.Run("Delete", newDeleteTest(ctx, store))
	t.Run("Selector", newSelectorStoreTest(ctx, store))

	clearEntity(ctx, t, store, personEntity)
	clearEntity(ctx, t, store, teamEntity)
	remaining, err := store.RetrieveMultiple(ctx, Query{Entity: personEntity})
	if err != nil {
		t.Fatalf("unexpected error listing after tests: %v", err)
	}
	if len(remaining) > 0 {
		t.Fatalf("expected all data to be deleted after tests, got %d items", len(remaining))
	}
}
