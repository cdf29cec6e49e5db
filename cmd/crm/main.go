package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/a-h/crmkv"
	"github.com/a-h/crmkv/db"
	"github.com/a-h/crmkv/employee"
	"github.com/alecthomas/kong"
	"github.com/jackc/pgx/v5/pgxpool"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"zombiezen.com/go/sqlite/sqlitex"
)

type GlobalFlags struct {
	Type       string `help:"The type of record store to use." enum:"sqlite,postgres,rqlite" default:"sqlite" env:"CRM_TYPE"`
	Connection string `help:"The connection string to use." default:"file:data.db?mode=rwc" env:"CRM_CONNECTION"`
	LogLevel   string `help:"The minimum level of log messages written to stderr." enum:"debug,info,warn,error" default:"warn" env:"CRM_LOG_LEVEL"`
}

func (g GlobalFlags) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.LogLevel)); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (g GlobalFlags) Store(ctx context.Context) (*crmkv.Store, error) {
	db, err := g.DB(ctx)
	if err != nil {
		return nil, err
	}
	return crmkv.NewStore(db, employee.Schema), nil
}

func (g GlobalFlags) Selector() *crmkv.Selector {
	sel := crmkv.NewSelector(employee.FieldName)
	sel.Log = g.Logger()
	return sel
}

func (g GlobalFlags) DB(ctx context.Context) (db.DB, error) {
	switch g.Type {
	case "sqlite":
		pool, err := sqlitex.NewPool(g.Connection, sqlitex.PoolOptions{})
		if err != nil {
			return nil, err
		}
		return crmkv.NewSqlite(pool), nil
	case "postgres":
		pool, err := pgxpool.New(ctx, g.Connection)
		if err != nil {
			return nil, err
		}
		return crmkv.NewPostgres(pool), nil
	case "rqlite":
		u, err := url.Parse(g.Connection)
		if err != nil {
			return nil, err
		}
		user := u.Query().Get("user")
		password := u.Query().Get("password")
		// Remove user and password from the connection string.
		u.RawQuery = ""
		client := rqlitehttp.NewClient(u.String(), nil)
		if user != "" && password != "" {
			client.SetBasicAuth(user, password)
		}
		return crmkv.NewRqlite(client), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", g.Type)
	}
}

type CLI struct {
	GlobalFlags

	Init               InitCommand               `cmd:"init" help:"Initialize the store."`
	Create             CreateCommand             `cmd:"create" help:"Create a record from JSON fields read from stdin."`
	Get                GetCommand                `cmd:"get" help:"Get a record by id."`
	Find               FindCommand               `cmd:"find" help:"Find records matching conditions."`
	Update             UpdateCommand             `cmd:"update" help:"Update fields of a record from JSON read from stdin."`
	Delete             DeleteCommand             `cmd:"delete" help:"Delete a record."`
	DeleteAllButNewest DeleteAllButNewestCommand `cmd:"delete-all-but-newest" help:"Delete all matching active records except the newest."`
	DeleteSelected     DeleteSelectedCommand     `cmd:"delete-selected" help:"Delete the records chosen by a selection rule from a search."`
	RenameNewest       RenameNewestCommand       `cmd:"rename-newest" help:"Rename the newest matching active record."`
	Clone              CloneCommand              `cmd:"clone" help:"Clone a record, adding a timestamp suffix to its name."`
	Execute            ExecuteCommand            `cmd:"execute" help:"Run the employee plugin."`
	BenchmarkCreate    BenchmarkCreateCommand    `cmd:"benchmark-create" help:"Benchmark record creation."`
}

func main() {
	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(cli.GlobalFlags, (*GlobalFlags)(nil)),
	)
	if err := kctx.Run(ctx, cli.GlobalFlags); err != nil {
		fmt.Println(err)

		os.Exit(1)
	}
}
