package stmts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/a-h/crmkv/db"
)

type Postgres struct{}

func (pg Postgres) isStatementSet() db.StatementSet {
	return pg
}

func (Postgres) Init() []db.Mutation {
	return []db.Mutation{
		{
			SQL: `CREATE TABLE IF NOT EXISTS records (
    id uuid PRIMARY KEY,
    entity text NOT NULL,
    value jsonb NOT NULL,
    created timestamptz NOT NULL
);`,
		},
		{
			SQL: `CREATE INDEX IF NOT EXISTS records_entity_created ON records(entity, created);`,
		},
		{
			SQL: `CREATE INDEX IF NOT EXISTS records_value ON records USING GIN (value jsonb_path_ops);`,
		},
	}
}

func (Postgres) Get(entity, id string) db.Query {
	return db.Query{
		SQL: `SELECT id::text, entity, value, created FROM records WHERE entity = @entity AND id = @id::uuid;`,
		Args: map[string]any{
			"entity": entity,
			"id":     id,
		},
	}
}

func (Postgres) Find(entity string, conditions []db.Condition, orders []db.Order) db.Query {
	args := map[string]any{
		"entity": entity,
	}
	var sb strings.Builder
	sb.WriteString(`SELECT id::text, entity, value, created FROM records WHERE entity = @entity`)
	for i, c := range conditions {
		fmt.Fprintf(&sb, ` AND value @> @c%d::jsonb`, i)
		args[fmt.Sprintf("c%d", i)] = c.Document
	}
	sb.WriteString(` ORDER BY `)
	for i, o := range orders {
		if o.Created {
			sb.WriteString(`created`)
		} else {
			fmt.Fprintf(&sb, `value->(@o%d::text)->'value'`, i)
			args[fmt.Sprintf("o%d", i)] = o.Field
		}
		if o.Descending {
			sb.WriteString(` DESC`)
		}
		sb.WriteString(`, `)
	}
	sb.WriteString(`id;`)
	return db.Query{
		SQL:  sb.String(),
		Args: args,
	}
}

func (Postgres) Insert(entity, id string, created time.Time, value any) db.Mutation {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return db.Mutation{
			ArgsError: err,
		}
	}
	return db.Mutation{
		SQL: `INSERT INTO records (id, entity, value, created) VALUES (@id::uuid, @entity, @value::jsonb, @created);`,
		Args: map[string]any{
			"id":      id,
			"entity":  entity,
			"value":   string(jsonValue),
			"created": created.UTC(),
		},
		MustAffectRows: true,
	}
}

// Update merges the patch into the stored value. Fields set to null in the
// patch are removed.
func (Postgres) Update(entity, id string, patch any) db.Mutation {
	jsonPatch, err := json.Marshal(patch)
	if err != nil {
		return db.Mutation{
			ArgsError: err,
		}
	}
	return db.Mutation{
		SQL: `UPDATE records SET value = jsonb_strip_nulls(value || @patch::jsonb) WHERE entity = @entity AND id = @id::uuid;`,
		Args: map[string]any{
			"entity": entity,
			"id":     id,
			"patch":  string(jsonPatch),
		},
		MustAffectRows: true,
	}
}

func (Postgres) Delete(entity, id string) db.Mutation {
	return db.Mutation{
		SQL: `DELETE FROM records WHERE entity = @entity AND id = @id::uuid;`,
		Args: map[string]any{
			"entity": entity,
			"id":     id,
		},
		MustAffectRows: true,
	}
}
