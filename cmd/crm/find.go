package main

import (
	"context"
	"fmt"

	"github.com/a-h/crmkv"
)

type FindCommand struct {
	Entity  string   `arg:"" help:"The entity to search." required:""`
	Where   []string `help:"Conditions, as field=value or field=kind:value, e.g. statuscode=optionset:1."`
	Order   []string `help:"Sort orders, as field or field:desc, e.g. createdon:desc."`
	Columns []string `help:"The fields to return. All fields are returned if none are given."`
	Select  string   `help:"The records to return from the ordered results." enum:"all,first,all-but-first" default:"all"`
	All     bool     `help:"Allow a search with no conditions."`
}

func (c *FindCommand) Run(ctx context.Context, g GlobalFlags) error {
	store, err := g.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	q, err := parseQuery(c.Entity, c.Where, c.Order, c.Columns)
	if err != nil {
		return err
	}

	var records crmkv.Records
	if c.All && len(q.Conditions) == 0 {
		records, err = store.RetrieveMultiple(ctx, q)
		records = rules[c.Select](records)
	} else {
		records, err = g.Selector().Select(ctx, store, q, rules[c.Select])
	}
	if err != nil {
		return fmt.Errorf("failed to find records: %w", err)
	}

	return printJSON(records)
}
