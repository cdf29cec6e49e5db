package main

import (
	"context"
	"fmt"
)

type DeleteAllButNewestCommand struct {
	Entity string `arg:"" help:"The entity to delete from." required:""`
	Field  string `arg:"" help:"The field to match." required:""`
	Value  string `arg:"" help:"The value to match, as value or kind:value." required:""`
}

func (c *DeleteAllButNewestCommand) Run(ctx context.Context, g GlobalFlags) error {
	store, err := g.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	v, err := parseValue(c.Value)
	if err != nil {
		return err
	}

	deleted, err := g.Selector().DeleteAllButNewest(ctx, store, c.Entity, c.Field, v)
	fmt.Printf("Deleted %d records\n", deleted)
	return err
}
