package main

import (
	"context"
	"fmt"
)

type DeleteSelectedCommand struct {
	Entity string   `arg:"" help:"The entity to delete from." required:""`
	Where  []string `help:"Conditions, as field=value or field=kind:value. At least one is required." required:""`
	Order  []string `help:"Sort orders, as field or field:desc, e.g. createdon:desc."`
	Select string   `help:"The records to delete from the ordered results." enum:"all,first,all-but-first" default:"all"`
}

func (c *DeleteSelectedCommand) Run(ctx context.Context, g GlobalFlags) error {
	store, err := g.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	q, err := parseQuery(c.Entity, c.Where, c.Order, nil)
	if err != nil {
		return err
	}

	deleted, err := g.Selector().DeleteSelected(ctx, store, q, rules[c.Select])
	fmt.Printf("Deleted %d records\n", deleted)
	return err
}
