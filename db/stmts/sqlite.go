package stmts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/a-h/crmkv/db"
)

type SQLite struct {
}

func (ss SQLite) isStatementSet() db.StatementSet {
	return ss
}

func (SQLite) Init() []db.Mutation {
	return []db.Mutation{
		{
			SQL: `create table if not exists records (id text primary key, entity text not null, value jsonb not null, created text not null) without rowid;`,
		},
		{
			SQL: `create index if not exists records_entity_created on records(entity, created);`,
		},
	}
}

func (SQLite) Get(entity, id string) db.Query {
	return db.Query{
		SQL: `select id, entity, json(value) as value, created from records where entity = :entity and id = :id;`,
		Args: map[string]any{
			":entity": entity,
			":id":     id,
		},
	}
}

func sqliteFieldPath(field, path string) string {
	if path == "" {
		return fmt.Sprintf(`$."%s"`, field)
	}
	return fmt.Sprintf(`$."%s".%s`, field, path)
}

func (SQLite) Find(entity string, conditions []db.Condition, orders []db.Order) db.Query {
	args := map[string]any{
		":entity": entity,
	}
	var sb strings.Builder
	sb.WriteString(`select id, entity, json(value) as value, created from records where entity = :entity`)
	for i, c := range conditions {
		fmt.Fprintf(&sb, ` and json_extract(value, :c%[1]d_kind_path) = :c%[1]d_kind and json_extract(value, :c%[1]d_path) = :c%[1]d`, i)
		args[fmt.Sprintf(":c%d_kind_path", i)] = sqliteFieldPath(c.Field, "type")
		args[fmt.Sprintf(":c%d_kind", i)] = c.Kind
		args[fmt.Sprintf(":c%d_path", i)] = sqliteFieldPath(c.Field, c.Path)
		args[fmt.Sprintf(":c%d", i)] = c.Scalar
		if c.Entity != "" {
			fmt.Fprintf(&sb, ` and json_extract(value, :c%[1]d_entity_path) = :c%[1]d_entity`, i)
			args[fmt.Sprintf(":c%d_entity_path", i)] = sqliteFieldPath(c.Field, "value.entity")
			args[fmt.Sprintf(":c%d_entity", i)] = c.Entity
		}
	}
	sb.WriteString(` order by `)
	for i, o := range orders {
		if o.Created {
			sb.WriteString(`created`)
		} else {
			fmt.Fprintf(&sb, `json_extract(value, :o%d_path)`, i)
			args[fmt.Sprintf(":o%d_path", i)] = sqliteFieldPath(o.Field, "value")
		}
		if o.Descending {
			sb.WriteString(` desc`)
		}
		sb.WriteString(`, `)
	}
	// Records with equal sort keys are returned in id order.
	sb.WriteString(`id;`)
	return db.Query{
		SQL:  sb.String(),
		Args: args,
	}
}

func (SQLite) Insert(entity, id string, created time.Time, value any) db.Mutation {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return db.Mutation{
			ArgsError: err,
		}
	}
	return db.Mutation{
		SQL: `insert into records (id, entity, value, created) values (:id, :entity, jsonb(:value), :created);`,
		Args: map[string]any{
			":id":      id,
			":entity":  entity,
			":value":   string(jsonValue),
			":created": formatCreated(created),
		},
		MustAffectRows: true,
	}
}

// Update applies a JSON merge patch (RFC 7396), so null values remove fields.
func (SQLite) Update(entity, id string, patch any) db.Mutation {
	jsonPatch, err := json.Marshal(patch)
	if err != nil {
		return db.Mutation{
			ArgsError: err,
		}
	}
	return db.Mutation{
		SQL: `update records set value = jsonb_patch(value, jsonb(:patch)) where entity = :entity and id = :id;`,
		Args: map[string]any{
			":entity": entity,
			":id":     id,
			":patch":  string(jsonPatch),
		},
		MustAffectRows: true,
	}
}

func (SQLite) Delete(entity, id string) db.Mutation {
	return db.Mutation{
		SQL: `delete from records where entity = :entity and id = :id;`,
		Args: map[string]any{
			":entity": entity,
			":id":     id,
		},
		MustAffectRows: true,
	}
}
