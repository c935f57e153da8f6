package ratingrepo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	ratingColumns = `id, app_id, account_id, score, review, created_at`

	sqlCreateRating = `INSERT INTO app_ratings (` + ratingColumns + `) VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + ratingColumns + `;`

	sqlRatingStats = `SELECT COALESCE(AVG(score), 0)::float8 AS average, COUNT(*) AS total FROM app_ratings WHERE app_id = $1;`

	sqlListRatingsByApp = `SELECT ` + ratingColumns + ` FROM app_ratings WHERE app_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3;`
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
	ctx, span = tracer.StartSpan(ctx, "ratingrepo.Create")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	r := in.Rating
	inserted := Rating{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &inserted, sqlCreateRating,
		r.ID, r.AppID, r.AccountID, r.Score, r.Review, r.CreatedAt,
	)
	if err != nil {
		err = fmt.Errorf("insert rating error: %w", err)
		return
	}

	out = OutCreate{
		Rating: inserted,
	}
	return
}

// Stats reads every rating row of the app, average is zero when there is no rating.
func (p *RepoPostgres) Stats(ctx context.Context, in InputStats) (out OutStats, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "ratingrepo.Stats")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	stats := Stats{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &stats, sqlRatingStats, in.AppID)
	if err != nil {
		err = fmt.Errorf("cannot aggregate ratings: %w", err)
		return
	}

	out = OutStats{
		Stats: stats,
	}
	return
}

func (p *RepoPostgres) ListByApp(ctx context.Context, in InputListByApp) (out OutListByApp, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	ratings := make([]Rating, 0)
	err = sqlx.SelectContext(ctx, p.Config.Connection, &ratings, sqlListRatingsByApp, in.AppID, in.Limit, in.Skip)
	if err != nil {
		err = fmt.Errorf("cannot get list of ratings: %w", err)
		return
	}

	out = OutListByApp{
		Ratings: ratings,
	}
	return
}
