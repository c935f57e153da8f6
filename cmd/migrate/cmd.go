package migrate

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/mitchellh/cli"
	"github.com/yusufsyaifudin/appstore/assets"
	"github.com/yusufsyaifudin/appstore/container"
	"github.com/yusufsyaifudin/appstore/extd"
	"github.com/yusufsyaifudin/appstore/pkg/migration"
	"github.com/yusufsyaifudin/ylog"
)

const (
	ExitSuccess = 0
	ExitErr     = 1
)

// migrationTable keeps golang-migrate state, all storefront tables share one database.
const migrationTable = "schema_migrations_appstore"

type Cmd struct {
	flags      *flag.FlagSet
	configFile string
}

func NewCmd() func() (cli.Command, error) {
	return func() (cli.Command, error) {
		cmd := &Cmd{}
		cmd.flags = flag.NewFlagSet("migrate", flag.ContinueOnError)
		cmd.flags.StringVar(&cmd.configFile, "config", container.DefaultConfigFile, "Config file to load")
		cmd.flags.StringVar(&cmd.configFile, "c", container.DefaultConfigFile, "Alias for config file to load")
		return cmd, nil
	}
}

var _ cli.Command = (*Cmd)(nil)

func (c *Cmd) Help() string {
	return `Run database migration on the database label used by the auth service.

Usage: appstore migrate [-config config.yml] up|down|version`
}

func (c *Cmd) Synopsis() string {
	return "Run database migration (up, down, version)"
}

func (c *Cmd) Run(args []string) int {
	err := c.flags.Parse(args)
	if err != nil {
		log.Printf("error parsing migrate argument: %s\n", err)
		return ExitErr
	}

	if c.flags.NArg() != 1 {
		log.Println(c.Help())
		return cli.RunResultHelp
	}

	direction := c.flags.Arg(0)
	switch direction {
	case "up", "down", "version":
	default:
		log.Printf("unknown migrate direction '%s'\n", direction)
		return cli.RunResultHelp
	}

	cfg, err := container.LoadConfig(c.configFile)
	if err != nil {
		log.Printf("error load config: %s\n", err)
		return ExitErr
	}

	ctx := extd.SetupLog(context.Background())
	err = run(ctx, cfg, direction)
	if err != nil {
		ylog.Error(ctx, "migration: failed", ylog.KV("direction", direction), ylog.KV("error", err))
		return ExitErr
	}

	return ExitSuccess
}

func run(ctx context.Context, cfg container.Config, direction string) (err error) {
	repositories, err := container.SetupRepositories(cfg.DatabaseResources)
	if err != nil {
		return fmt.Errorf("setup repositories: %w", err)
	}

	defer func() {
		if _err := repositories.Close(); _err != nil {
			ylog.Error(ctx, "migration: close repositories failed", ylog.KV("error", _err))
		}
	}()

	dbLabel := cfg.Services.Auth.DBLabel
	db, err := repositories.SQL(dbLabel)
	if err != nil {
		return err
	}

	if err = db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db %s: %w", dbLabel, err)
	}

	mig, err := migration.NewSQLImmigration(migration.SQLImmigrationConfig{
		Dialect:        "postgres",
		DB:             db.DB,
		MigrationTable: migrationTable,
		Source:         assets.Migrations,
		SourceDir:      assets.MigrationDir,
	})
	if err != nil {
		return err
	}

	defer func() {
		if _err := mig.Close(); _err != nil {
			ylog.Error(ctx, "migration: close failed", ylog.KV("error", _err))
		}
	}()

	switch direction {
	case "up":
		err = mig.Up()
	case "down":
		err = mig.Down()
	}

	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, err := mig.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	ylog.Info(ctx, "migration: done",
		ylog.KV("direction", direction),
		ylog.KV("version", version),
		ylog.KV("dirty", dirty),
	)
	return nil
}
