// Package pipeline runs plugins against a record store on behalf of a user.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/a-h/crmkv"
	"github.com/google/uuid"
)

// Context is the execution context given to each plugin. The store is
// injected per execution; plugins must not keep it beyond Execute.
type Context struct {
	UserID uuid.UUID
	Store  crmkv.RecordStore
	Log    *slog.Logger
}

type Plugin interface {
	Name() string
	Execute(ctx context.Context, pc Context) error
}

// Run executes the plugins in order, stopping at the first error.
func Run(ctx context.Context, pc Context, plugins ...Plugin) error {
	if pc.Store == nil {
		return fmt.Errorf("pipeline: no store")
	}
	if pc.Log == nil {
		pc.Log = slog.New(slog.DiscardHandler)
	}
	for _, p := range plugins {
		log := pc.Log.With(slog.String("plugin", p.Name()), slog.String("user", pc.UserID.String()))
		start := time.Now()
		log.Debug("Executing plugin.")
		if err := p.Execute(ctx, Context{UserID: pc.UserID, Store: pc.Store, Log: log}); err != nil {
			log.Error("Plugin failed.", slog.String("error", err.Error()), slog.Duration("duration", time.Since(start)))
			return fmt.Errorf("pipeline: %s: %w", p.Name(), err)
		}
		log.Info("Plugin complete.", slog.Duration("duration", time.Since(start)))
	}
	return nil
}
