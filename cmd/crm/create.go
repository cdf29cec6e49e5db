package main

import (
	"context"
	"fmt"
	"os"

	"github.com/a-h/crmkv"
	"github.com/google/uuid"
)

type CreateCommand struct {
	Entity string `arg:"" help:"The entity of the record to create." required:""`
}

func (c *CreateCommand) Run(ctx context.Context, g GlobalFlags) error {
	store, err := g.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	fields, err := readFields(os.Stdin)
	if err != nil {
		return err
	}
	r := crmkv.NewRecord(c.Entity, uuid.Nil)
	for name, v := range fields {
		r.Set(name, v)
	}

	id, err := store.Create(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	fmt.Println(id)
	return nil
}
