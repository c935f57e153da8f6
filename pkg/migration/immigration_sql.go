package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"go.uber.org/multierr"
)

type SQLImmigrationConfig struct {
	Dialect        string  `validate:"required,oneof=postgres"`
	DB             *sql.DB `validate:"required"`
	MigrationTable string  `validate:"required"`
	Source         fs.FS   `validate:"required"`
	SourceDir      string  `validate:"required"`
}

type SQLImmigration struct {
	m *migrate.Migrate
}

var _ Immigration = (*SQLImmigration)(nil)

func NewSQLImmigration(config SQLImmigrationConfig) (*SQLImmigration, error) {
	err := validator.Validate(config)
	if err != nil {
		return nil, fmt.Errorf("sql immigration config: %w", err)
	}

	src, err := iofs.New(config.Source, config.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("open migration source %s: %w", config.SourceDir, err)
	}

	dbDriver, err := postgres.WithInstance(config.DB, &postgres.Config{
		MigrationsTable: config.MigrationTable,
	})
	if err != nil {
		err = multierr.Append(err, src.Close())
		return nil, fmt.Errorf("prepare %s migration driver: %w", config.Dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, config.Dialect, dbDriver)
	if err != nil {
		return nil, fmt.Errorf("prepare migration: %w", err)
	}

	return &SQLImmigration{m: m}, nil
}

// Up applies every pending migration, nothing to apply is not an error.
func (p *SQLImmigration) Up() error {
	return ignoreNoChange(p.m.Up())
}

// Down rolls back every applied migration.
func (p *SQLImmigration) Down() error {
	return ignoreNoChange(p.m.Down())
}

func (p *SQLImmigration) Version() (version uint, dirty bool, err error) {
	version, dirty, err = p.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	return
}

// Close releases the source and the dedicated connection, the *sql.DB stays open.
func (p *SQLImmigration) Close() error {
	srcErr, dbErr := p.m.Close()
	return multierr.Combine(srcErr, dbErr)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}

	return err
}
