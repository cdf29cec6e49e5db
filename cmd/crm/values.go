package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/a-h/crmkv"
)

var kinds = []crmkv.Kind{crmkv.KindString, crmkv.KindBool, crmkv.KindTime, crmkv.KindOption, crmkv.KindReference}

// parseValue parses "kind:value", or a plain string if there is no known kind prefix.
func parseValue(s string) (crmkv.Value, error) {
	for _, k := range kinds {
		if rest, ok := strings.CutPrefix(s, string(k)+":"); ok {
			return crmkv.ParseValue(k, rest)
		}
	}
	return crmkv.String(s), nil
}

// parseCondition parses "field=value" or "field=kind:value".
func parseCondition(s string) (c crmkv.Condition, err error) {
	field, value, ok := strings.Cut(s, "=")
	if !ok {
		return c, fmt.Errorf("condition %q: expected field=value", s)
	}
	v, err := parseValue(value)
	if err != nil {
		return c, fmt.Errorf("condition %q: %w", s, err)
	}
	return crmkv.Equal(field, v), nil
}

// parseOrder parses "field", "field:asc" or "field:desc".
func parseOrder(s string) (o crmkv.Order, err error) {
	field, direction, _ := strings.Cut(s, ":")
	switch direction {
	case "", "asc":
		return crmkv.Asc(field), nil
	case "desc":
		return crmkv.Desc(field), nil
	}
	return o, fmt.Errorf("order %q: unknown direction %q", s, direction)
}

var rules = map[string]crmkv.Rule{
	"all":           crmkv.SelectAll,
	"first":         crmkv.SelectFirst,
	"all-but-first": crmkv.SelectAllButFirst,
}

// parseQuery builds a query from field=value conditions and field:direction orders.
func parseQuery(entity string, where, order, columns []string) (q crmkv.Query, err error) {
	q = crmkv.Query{
		Entity:  entity,
		Columns: columns,
	}
	for _, w := range where {
		cond, err := parseCondition(w)
		if err != nil {
			return q, err
		}
		q.Conditions = append(q.Conditions, cond)
	}
	for _, o := range order {
		ord, err := parseOrder(o)
		if err != nil {
			return q, err
		}
		q.Orders = append(q.Orders, ord)
	}
	return q, nil
}

func readFields(r io.Reader) (fields map[string]crmkv.Value, err error) {
	if err = json.NewDecoder(r).Decode(&fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return fields, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
