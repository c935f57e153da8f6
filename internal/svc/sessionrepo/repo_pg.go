package sessionrepo

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
	sqlCreateSession = `INSERT INTO sessions (id, account_id, token, expires_at, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id, account_id, token, expires_at, created_at;`

	sqlGetSessionByToken = `SELECT id, account_id, token, expires_at, created_at FROM sessions WHERE token = $1 AND expires_at > $2 LIMIT 1;`

	sqlDelSessionByToken = `DELETE FROM sessions WHERE token = $1 RETURNING id;`
)

type RepoPostgresConfig struct {
	Connection sqlx.QueryerContext `validate:"required"`
}

type RepoPostgres struct {
	Config RepoPostgresConfig
}

var _ Repo = (*RepoPostgres)(nil)

// Postgres return repo interface which implements using PgSQL.
// Expired rows are never pruned, they are just not returned.
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
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	s := in.Session
	inserted := Session{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &inserted, sqlCreateSession,
		s.ID, s.AccountID, s.Token, s.ExpiresAt, s.CreatedAt,
	)
	if err != nil {
		err = fmt.Errorf("insert session error: %w", err)
		return
	}

	out = OutCreate{
		Session: inserted,
	}
	return
}

func (p *RepoPostgres) GetByToken(ctx context.Context, in InputGetByToken) (out OutGetByToken, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "sessionrepo.GetByToken")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	s := Session{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &s, sqlGetSessionByToken, in.Token, in.Now)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return
	}

	if err != nil {
		err = fmt.Errorf("query session error: %w", err)
		return
	}

	out = OutGetByToken{
		Session: s,
	}
	return
}

func (p *RepoPostgres) DelByToken(ctx context.Context, in InputDelByToken) (out OutDelByToken, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	var id int64
	err = sqlx.GetContext(ctx, p.Config.Connection, &id, sqlDelSessionByToken, in.Token)
	if errors.Is(err, sql.ErrNoRows) {
		out = OutDelByToken{
			Success: false,
		}

		err = nil // discard error
		return
	}

	if err != nil {
		err = fmt.Errorf("delete session error: %w", err)
		return
	}

	out = OutDelByToken{
		Success: id > 0,
	}
	return
}
