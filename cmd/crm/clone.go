package main

import (
	"context"
	"fmt"

	"github.com/a-h/crmkv"
	"github.com/google/uuid"
)

type CloneCommand struct {
	Entity    string    `arg:"" help:"The entity of the record." required:""`
	ID        uuid.UUID `arg:"" help:"The id of the record to clone." required:""`
	Fields    []string  `help:"The fields to copy." default:"new_employee_name,new_dob,new_gender,new_employee_type,new_manager"`
	CodeField string    `help:"The field set to the code value." default:"new_employee_code"`
	CodeValue string    `help:"The code value, as value or kind:value." default:"NIBCREATE"`
	NameField string    `help:"The name field to add the timestamp suffix to." default:"new_employee_name"`
}

func (c *CloneCommand) Run(ctx context.Context, g GlobalFlags) error {
	store, err := g.Store(ctx)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	code, err := parseValue(c.CodeValue)
	if err != nil {
		return err
	}

	source, ok, err := store.Retrieve(ctx, c.Entity, c.ID)
	if err != nil {
		return fmt.Errorf("failed to get record: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s %q not found: %w", c.Entity, c.ID, crmkv.ErrNotFound)
	}

	sel := g.Selector()
	sel.NameField = c.NameField
	id, err := sel.CloneWithTimestampSuffix(ctx, store, source, c.Fields, c.CodeField, code)
	if err != nil {
		return fmt.Errorf("failed to clone: %w", err)
	}
	fmt.Println(id)
	return nil
}
