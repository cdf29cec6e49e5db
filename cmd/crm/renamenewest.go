package main

import (
	"context"
	"fmt"
)

type RenameNewestCommand struct {
	Entity string `arg:"" help:"The entity to update." required:""`
	Field  string `arg:"" help:"The field to match." required:""`
	Value  string `arg:"" help:"The value to match, as value or kind:value." required:""`
	Name   string `arg:"" help:"The new name." required:""`
}

func (c *RenameNewestCommand) Run(ctx context.Context, g GlobalFlags) error {
	store, err := g.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	v, err := parseValue(c.Value)
	if err != nil {
		return err
	}

	ok, err := g.Selector().RenameNewest(ctx, store, c.Entity, c.Field, v, c.Name)
	if err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}
	if !ok {
		return fmt.Errorf("no active %s found where %s is %q", c.Entity, c.Field, c.Value)
	}
	return nil
}
