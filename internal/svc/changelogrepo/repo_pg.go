package changelogrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	changelogColumns = `id, app_id, developer_id, version, title, content, type, release_date, created_at, updated_at`

	sqlCreateChangelog = `INSERT INTO changelogs (` + changelogColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING ` + changelogColumns + `;`

	sqlGetChangelogByID = `SELECT ` + changelogColumns + ` FROM changelogs WHERE id = $1 LIMIT 1;`

	sqlListChangelogsByApp       = `SELECT ` + changelogColumns + ` FROM changelogs WHERE app_id = $1 ORDER BY release_date DESC, id DESC;`
	sqlListChangelogsByDeveloper = `SELECT ` + changelogColumns + ` FROM changelogs WHERE developer_id = $1 ORDER BY release_date DESC, id DESC;`

	sqlUpdateChangelog = `UPDATE changelogs SET version = $2, title = $3, content = $4, type = $5, release_date = $6, updated_at = $7 WHERE id = $1 RETURNING ` + changelogColumns + `;`

	sqlDelChangelogByID = `DELETE FROM changelogs WHERE id = $1 RETURNING id;`
)

type RepoPostgresConfig struct {
	Connection sqlx.QueryerContext `validate:"required"`
}

type RepoPostgres struct {
	Config RepoPostgresConfig
}

var _ Repo = (*RepoPostgres)(nil)

// Postgres return repo interface which implements using PgSQL
func Postgres(conf RepoPostgresConfig) (service *RepoPostgres, err error) {
	err = validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	service = &RepoPostgres{
		Config: conf,
	}
	return
}

func (p *RepoPostgres) Create(ctx context.Context, in InputCreate) (out OutCreate, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "changelogrepo.Create")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	c := in.Changelog
	inserted := Changelog{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &inserted, sqlCreateChangelog,
		c.ID, c.AppID, c.DeveloperID, c.Version, c.Title, c.Content, c.Type, c.ReleaseDate, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		err = fmt.Errorf("insert changelog error: %w", err)
		return
	}

	out = OutCreate{
		Changelog: inserted,
	}
	return
}

func (p *RepoPostgres) GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	c, err := p.getOne(ctx, sqlGetChangelogByID, in.ID)
	if err != nil {
		return
	}

	out = OutGetByID{
		Changelog: c,
	}
	return
}

func (p *RepoPostgres) ListByApp(ctx context.Context, in InputListByApp) (out OutList, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "changelogrepo.ListByApp")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	return p.list(ctx, sqlListChangelogsByApp, in.AppID)
}

func (p *RepoPostgres) ListByDeveloper(ctx context.Context, in InputListByDeveloper) (out OutList, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	return p.list(ctx, sqlListChangelogsByDeveloper, in.DeveloperID)
}

func (p *RepoPostgres) Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	c := in.Changelog
	c, err = p.getOne(ctx, sqlUpdateChangelog, c.ID, c.Version, c.Title, c.Content, c.Type, c.ReleaseDate, c.UpdatedAt)
	if err != nil {
		return
	}

	out = OutUpdate{
		Changelog: c,
	}
	return
}

func (p *RepoPostgres) DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	var id int64
	err = sqlx.GetContext(ctx, p.Config.Connection, &id, sqlDelChangelogByID, in.ID)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil // discard error
		return
	}

	if err != nil {
		err = fmt.Errorf("delete changelog error: %w", err)
		return
	}

	out = OutDelByID{
		Success: id == in.ID,
	}
	return
}

func (p *RepoPostgres) list(ctx context.Context, query string, args ...interface{}) (out OutList, err error) {
	changelogs := make([]Changelog, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &changelogs, query, args...)
	if err != nil {
		err = fmt.Errorf("cannot get list of changelogs: %w", err)
		return
	}

	out = OutList{
		Changelogs: changelogs,
	}
	return
}

func (p *RepoPostgres) getOne(ctx context.Context, query string, args ...interface{}) (c Changelog, err error) {
	err = sqlx.GetContext(ctx, p.Config.Connection, &c, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return
	}

	if err != nil {
		err = fmt.Errorf("query changelog error: %w", err)
		return
	}

	return
}
