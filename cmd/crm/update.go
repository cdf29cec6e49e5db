package main

import (
	"context"
	"fmt"
	"os"

	"github.com/a-h/crmkv"
	"github.com/google/uuid"
)

type UpdateCommand struct {
	Entity string    `arg:"" help:"The entity of the record." required:""`
	ID     uuid.UUID `arg:"" help:"The id of the record to update." required:""`
}

func (c *UpdateCommand) Run(ctx context.Context, g GlobalFlags) error {
	store, err := g.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	fields, err := readFields(os.Stdin)
	if err != nil {
		return err
	}
	r := crmkv.NewRecord(c.Entity, c.ID)
	for name, v := range fields {
		r.Set(name, v)
	}

	return store.Update(ctx, r)
}
