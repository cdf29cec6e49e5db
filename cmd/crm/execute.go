package main

import (
	"context"
	"fmt"

	"github.com/a-h/crmkv/employee"
	"github.com/a-h/crmkv/pipeline"
	"github.com/google/uuid"
)

type ExecuteCommand struct {
	UserID uuid.UUID `help:"The id of the user the plugin runs as."`
}

func (c *ExecuteCommand) Run(ctx context.Context, g GlobalFlags) error {
	store, err := g.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	plugin := employee.NewPlugin()
	pc := pipeline.Context{
		UserID: c.UserID,
		Store:  store,
		Log:    g.Logger(),
	}
	if err = pipeline.Run(ctx, pc, plugin); err != nil {
		return err
	}

	return printJSON(map[string]any{
		"deleted": plugin.Result.Deleted,
		"renamed": plugin.Result.Renamed,
		"source":  plugin.Result.Source.ID,
		"created": plugin.Result.Created,
	})
}
