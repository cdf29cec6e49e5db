// Package employee demonstrates create, retrieve, update and delete against the new_employee entity.
package employee

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/a-h/crmkv"
	"github.com/a-h/crmkv/pipeline"
	"github.com/google/uuid"
)

const (
	Entity = "new_employee"

	FieldCode     = "new_employee_code"
	FieldName     = "new_employee_name"
	FieldDOB      = "new_dob"
	FieldGender   = "new_gender"
	FieldType     = "new_employee_type"
	FieldManager  = "new_manager"
	ManagerEntity = "systemuser"

	// CodeCreatedByPlugin marks records created by the plugin.
	CodeCreatedByPlugin = "NIBCREATE"
	// CodeSource is the code of the record the plugin clones.
	CodeSource = "NIB00003"
	// DemoName is the name given to the newest record created by the plugin.
	DemoName = "Nguyen Van Demo"
)

// CopiedFields are read from the source record and copied into the clone.
var CopiedFields = []string{FieldName, FieldDOB, FieldGender, FieldType, FieldManager}

var Schema = crmkv.Schema{
	Entity: {
		FieldCode:    crmkv.KindString,
		FieldName:    crmkv.KindString,
		FieldDOB:     crmkv.KindTime,
		FieldGender:  crmkv.KindBool,
		FieldType:    crmkv.KindOption,
		FieldManager: crmkv.KindReference,
	},
}

func NewPlugin() *Plugin {
	return &Plugin{
		Selector: crmkv.NewSelector(FieldName),
	}
}

// Plugin deletes all but the newest plugin-created employee, renames the
// newest, then clones the source employee.
type Plugin struct {
	Selector *crmkv.Selector
	// Result of the last execution.
	Result Result
}

type Result struct {
	Deleted int
	Renamed bool
	Source  crmkv.Record
	Found   bool
	Created uuid.UUID
}

func (p *Plugin) Name() string { return "employee" }

func (p *Plugin) Execute(ctx context.Context, pc pipeline.Context) (err error) {
	p.Result = Result{}
	if pc.Log == nil {
		pc.Log = slog.New(slog.DiscardHandler)
	}
	sel := *p.Selector
	sel.Log = pc.Log

	code := crmkv.String(CodeCreatedByPlugin)
	if p.Result.Deleted, err = sel.DeleteAllButNewest(ctx, pc.Store, Entity, FieldCode, code); err != nil {
		return fmt.Errorf("employee: delete: %w", err)
	}
	if p.Result.Renamed, err = sel.RenameNewest(ctx, pc.Store, Entity, FieldCode, code, DemoName); err != nil {
		return fmt.Errorf("employee: update: %w", err)
	}
	if p.Result.Source, p.Result.Found, err = Retrieve(ctx, &sel, pc.Store, CodeSource); err != nil {
		return fmt.Errorf("employee: retrieve: %w", err)
	}
	if !p.Result.Found {
		pc.Log.Warn("Source employee not found.", slog.String("code", CodeSource))
		// Cloning an empty record reports the missing name field.
		p.Result.Source = crmkv.NewRecord(Entity, uuid.Nil)
	}
	if p.Result.Created, err = sel.CloneWithTimestampSuffix(ctx, pc.Store, p.Result.Source, CopiedFields, FieldCode, code); err != nil {
		return fmt.Errorf("employee: create: %w", err)
	}
	return nil
}

// Retrieve returns the first active employee with the given code.
func Retrieve(ctx context.Context, sel *crmkv.Selector, store crmkv.RecordStore, code string) (r crmkv.Record, ok bool, err error) {
	q := crmkv.Query{
		Entity:  Entity,
		Columns: CopiedFields,
		Conditions: []crmkv.Condition{
			crmkv.Equal(FieldCode, crmkv.String(code)),
			crmkv.Equal(sel.StatusField, crmkv.Option(sel.ActiveStatus)),
		},
	}
	records, err := sel.Find(ctx, store, q)
	if err != nil {
		return r, false, err
	}
	first := crmkv.SelectFirst(records)
	if len(first) == 0 {
		return r, false, nil
	}
	return first[0], true, nil
}
