package main

import (
	"os"
	"strings"

	"github.com/kitobxon/kitobxon/pkg/config"
	"github.com/kitobxon/kitobxon/pkg/database"
	"github.com/kitobxon/kitobxon/pkg/migrations"
	"github.com/kitobxon/kitobxon/pkg/search"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

// runner carries the connection opened in Before to every command.
type runner struct {
	db  *bun.DB
	log logger.Logger
}

func main() {
	r := &runner{log: logger.New()}

	app := &cli.App{
		Name:   "migrations",
		Usage:  "manage the kitobxon database schema",
		Before: r.open,
		After:  r.close,
		Commands: []*cli.Command{
			{Name: "init", Usage: "create migration tables", Action: r.init},
			{Name: "migrate", Usage: "apply pending migrations", Action: r.migrate},
			{Name: "rollback", Usage: "roll back the last migration group", Action: r.rollback},
			{Name: "create", Usage: "create a Go migration", ArgsUsage: "<name words...>", Action: r.create},
			{Name: "status", Usage: "list unapplied migrations", Action: r.status},
			{Name: "reindex-search", Usage: "rebuild the book search index from the books table", Action: r.reindex},
		},
	}
	if err := app.Run(os.Args); err != nil {
		r.log.Err(err).Fatal("migrations failed")
	}
}

func (r *runner) open(c *cli.Context) error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "config error")
	}
	r.db, err = database.New(cfg)
	if err != nil {
		return errors.Wrap(err, "database error")
	}
	return errors.WithStack(database.CheckFTS5Support(c.Context, r.db))
}

func (r *runner) close(_ *cli.Context) error {
	if r.db == nil {
		return nil
	}
	return errors.WithStack(r.db.Close())
}

func (r *runner) init(c *cli.Context) error {
	return errors.WithStack(migrations.NewMigrator(r.db).Init(c.Context))
}

func (r *runner) migrate(c *cli.Context) error {
	group, err := migrations.BringUpToDate(c.Context, r.db)
	if err != nil {
		return err
	}
	if group.ID == 0 {
		r.log.Info("no new migrations to run")
		return nil
	}
	r.log.Info("migrated", logger.Data{"group": group.String()})
	return nil
}

func (r *runner) rollback(c *cli.Context) error {
	group, err := migrations.Rollback(c.Context, r.db)
	if err != nil {
		return err
	}
	if group.ID == 0 {
		r.log.Info("no groups to roll back")
		return nil
	}
	r.log.Info("rolled back", logger.Data{"group": group.String()})
	return nil
}

func (r *runner) create(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("migration name is required")
	}
	name := strings.Join(c.Args().Slice(), "_")
	mf, err := migrations.NewMigrator(r.db).CreateGoMigration(c.Context, name, migrate.WithGoTemplate(migrationTemplate))
	if err != nil {
		return errors.WithStack(err)
	}
	r.log.Info("created migration", logger.Data{"name": mf.Name, "path": mf.Path})
	return nil
}

func (r *runner) status(c *cli.Context) error {
	pending, err := migrations.Pending(c.Context, r.db)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(pending))
	for _, m := range pending {
		names = append(names, m.Name)
	}
	r.log.Info("migration status", logger.Data{"pending": len(names), "names": names})
	return nil
}

func (r *runner) reindex(c *cli.Context) error {
	n, err := search.NewService(r.db).Reindex(c.Context)
	if err != nil {
		return err
	}
	r.log.Info("search index rebuilt", logger.Data{"books": n})
	return nil
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, "")
		return errors.WithStack(err)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, "")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
