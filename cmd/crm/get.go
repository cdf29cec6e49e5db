package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type GetCommand struct {
	Entity  string    `arg:"" help:"The entity of the record." required:""`
	ID      uuid.UUID `arg:"" help:"The id of the record to get." required:""`
	Columns []string  `help:"The fields to return. All fields are returned if none are given."`
}

func (c *GetCommand) Run(ctx context.Context, g GlobalFlags) error {
	store, err := g.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	r, ok, err := store.Retrieve(ctx, c.Entity, c.ID, c.Columns...)
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s %q not found", c.Entity, c.ID)
	}

	return printJSON(r)
}
