package crmkv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func names(records Records) (names []string) {
	for r := range records.All() {
		name, _ := r.Get("name").AsString()
		names = append(names, name)
	}
	return names
}

func newRetrieveMultipleTest(ctx context.Context, store *Store) func(t *testing.T) {
	return func(t *testing.T) {
		defer clearEntity(ctx, t, store, personEntity)
		store.Now = newTestClock().Now

		managerID := uuid.MustParse("9a4d35f2-7c1e-4f7e-b1f0-5c2c3e4d5e6f")
		dob := time.Date(1985, time.February, 2, 0, 0, 0, 0, time.UTC)

		alice := newPerson("Alice", "A")
		alice.Set("active", Bool(true))
		alice.Set("type", Option(1))
		alice.Set("manager", Ref("systemuser", managerID))
		alice.Set("dob", Time(dob))

		bob := newPerson("Bob", "B")
		bob.Set("active", Bool(false))
		bob.Set("type", Option(2))

		carol := newPerson("Carol", "A")
		carol.Set("active", Bool(true))
		carol.Set("type", Option(2))
		carol.Set(FieldStatusCode, Option(2))

		for _, r := range []Record{alice, bob, carol} {
			if _, err := store.Create(ctx, r); err != nil {
				t.Fatalf("unexpected error creating record: %v", err)
			}
		}
		team := NewRecord(teamEntity, uuid.Nil)
		team.Set("name", String("Team A"))
		if _, err := store.Create(ctx, team); err != nil {
			t.Fatalf("unexpected error creating record: %v", err)
		}
		defer clearEntity(ctx, t, store, teamEntity)

		tests := []struct {
			name     string
			query    Query
			expected []string
		}{
			{
				name:     "no conditions returns every record of the entity",
				query:    Query{Entity: personEntity, Orders: []Order{Asc("name")}},
				expected: []string{"Alice", "Bob", "Carol"},
			},
			{
				name:     "string condition",
				query:    Query{Entity: personEntity, Conditions: []Condition{Equal("code", String("A"))}, Orders: []Order{Asc("name")}},
				expected: []string{"Alice", "Carol"},
			},
			{
				name:     "boolean condition",
				query:    Query{Entity: personEntity, Conditions: []Condition{Equal("active", Bool(false))}},
				expected: []string{"Bob"},
			},
			{
				name:     "option condition",
				query:    Query{Entity: personEntity, Conditions: []Condition{Equal("type", Option(2))}, Orders: []Order{Asc("name")}},
				expected: []string{"Bob", "Carol"},
			},
			{
				name:     "reference condition",
				query:    Query{Entity: personEntity, Conditions: []Condition{Equal("manager", Ref("systemuser", managerID))}},
				expected: []string{"Alice"},
			},
			{
				name:     "reference to another entity with the same id does not match",
				query:    Query{Entity: personEntity, Conditions: []Condition{Equal("manager", Ref(teamEntity, managerID))}},
				expected: nil,
			},
			{
				name:     "time condition",
				query:    Query{Entity: personEntity, Conditions: []Condition{Equal("dob", Time(dob))}},
				expected: []string{"Alice"},
			},
			{
				name: "conditions are combined with and",
				query: Query{Entity: personEntity, Conditions: []Condition{
					Equal("code", String("A")),
					Equal(FieldStatusCode, Option(StatusActive)),
				}},
				expected: []string{"Alice"},
			},
			{
				name:     "values of a different kind do not match",
				query:    Query{Entity: personEntity, Conditions: []Condition{Equal("type", String("2"))}},
				expected: nil,
			},
			{
				name:     "newest first",
				query:    Query{Entity: personEntity, Orders: []Order{Desc(FieldCreatedOn)}},
				expected: []string{"Carol", "Bob", "Alice"},
			},
			{
				name:     "descending by field",
				query:    Query{Entity: personEntity, Orders: []Order{Desc("name")}},
				expected: []string{"Carol", "Bob", "Alice"},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				records, err := store.RetrieveMultiple(ctx, tt.query)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if diff := cmp.Diff(tt.expected, names(records)); diff != "" {
					t.Error(diff)
				}
			})
		}

		t.Run("Columns limit the fields returned", func(t *testing.T) {
			records, err := store.RetrieveMultiple(ctx, Query{
				Entity:     personEntity,
				Columns:    []string{"name"},
				Conditions: []Condition{Equal("code", String("B"))},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(records))
			}
			if diff := cmp.Diff(map[string]Value{"name": String("Bob")}, records[0].Fields); diff != "" {
				t.Error(diff)
			}
		})
		t.Run("Records created at the same time are ordered by id", func(t *testing.T) {
			created := time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)
			store.Now = func() time.Time { return created }
			defer func() { store.Now = newTestClock().Now }()

			second := newPerson("Tie 2", "TIE")
			second.ID = uuid.MustParse("00000000-0000-4000-8000-000000000002")
			first := newPerson("Tie 1", "TIE")
			first.ID = uuid.MustParse("00000000-0000-4000-8000-000000000001")
			for _, r := range []Record{second, first} {
				if _, err := store.Create(ctx, r); err != nil {
					t.Fatalf("unexpected error creating record: %v", err)
				}
			}

			records, err := store.RetrieveMultiple(ctx, Query{
				Entity:     personEntity,
				Conditions: []Condition{Equal("code", String("TIE"))},
				Orders:     []Order{Desc(FieldCreatedOn)},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff([]uuid.UUID{first.ID, second.ID}, records.IDs()); diff != "" {
				t.Error(diff)
			}
		})
		t.Run("Malformed queries are rejected", func(t *testing.T) {
			queries := []Query{
				{Entity: ""},
				{Entity: personEntity, Conditions: []Condition{Equal("name'; drop table records; --", String("x"))}},
				{Entity: personEntity, Conditions: []Condition{Equal("name", Unset())}},
				{Entity: personEntity, Conditions: []Condition{Equal(FieldCreatedOn, Time(time.Now()))}},
				{Entity: personEntity, Orders: []Order{{Field: "name", Direction: Direction(5)}}},
			}
			for _, q := range queries {
				_, err := store.RetrieveMultiple(ctx, q)
				if !errors.Is(err, ErrInvalidQuery) {
					t.Errorf("%+v: expected invalid query error, got %v", q, err)
				}
			}
		})
	}
}
