package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type DeleteCommand struct {
	Entity string    `arg:"" help:"The entity of the record." required:""`
	ID     uuid.UUID `arg:"" help:"The id of the record to delete." required:""`
}

func (c *DeleteCommand) Run(ctx context.Context, g GlobalFlags) error {
	store, err := g.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	return store.Delete(ctx, c.Entity, c.ID)
}
