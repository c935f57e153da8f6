package ratingsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/apprepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/appsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/ratingrepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/metric"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/pkg/uid"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type DefaultServiceConfig struct {
	UIDGen     uid.UID         `validate:"required"`
	AppRepo    apprepo.Repo    `validate:"required"`
	RatingRepo ratingrepo.Repo `validate:"required"`
}

type DefaultService struct {
	Config DefaultServiceConfig
	now    func() time.Time
}

var _ Service = (*DefaultService)(nil)

func New(dep DefaultServiceConfig) (*DefaultService, error) {
	if err := validator.Validate(dep); err != nil {
		return nil, err
	}

	return &DefaultService{
		Config: dep,
		now:    time.Now,
	}, nil
}

// Add never de-duplicates: the same account may rate an app many times.
func (d *DefaultService) Add(ctx context.Context, in InputAdd) (out OutAdd, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "ratingsvc.Add")
	defer span.End()

	if in.AccountID <= 0 {
		err = svcerr.Unauthorized("unauthorized")
		return
	}

	if in.Score < 1 || in.Score > 5 {
		err = ErrInvalidScore
		return
	}

	if in.AppID <= 0 {
		err = svcerr.NotFound("app not found")
		return
	}

	_, err = d.Config.AppRepo.GetByID(ctx, apprepo.InputGetByID{ID: in.AppID})
	if errors.Is(err, apprepo.ErrNotFound) {
		err = svcerr.NotFound("app not found")
		return
	}

	if err != nil {
		err = fmt.Errorf("get app error: %w", err)
		return
	}

	id, err := uid.NextInt64(d.Config.UIDGen)
	if err != nil {
		return
	}

	review := locale.NullText{}
	if in.Review != nil && !in.Review.IsZero() {
		review = locale.NullText{Text: *in.Review, Valid: true}
	}

	now := d.now().UTC().UnixMicro()
	created, err := d.Config.RatingRepo.Create(ctx, ratingrepo.InputCreate{
		Rating: ratingrepo.Rating{
			ID:        id,
			AppID:     in.AppID,
			AccountID: in.AccountID,
			Score:     in.Score,
			Review:    review,
			CreatedAt: now,
		},
	})
	if err != nil {
		err = fmt.Errorf("create rating error: %w", err)
		return
	}

	metric.Ratings.Inc()

	app, err := d.recompute(ctx, in.AppID, now)
	if err != nil {
		ylog.Error(ctx, "rating stored but app aggregate is not updated",
			ylog.KV("error", err),
			ylog.KV("app_id", in.AppID),
			ylog.KV("rating_id", created.Rating.ID),
		)
		return
	}

	out = OutAdd{
		Rating: RatingFromRepo(created.Rating),
		App:    appsvc.AppFromRepo(app),
	}
	return
}

func (d *DefaultService) ListByApp(ctx context.Context, in InputListByApp) (out OutListByApp, err error) {
	if in.AppID <= 0 {
		out = OutListByApp{Ratings: []Rating{}}
		return
	}

	limit, skip := in.Limit, in.Skip
	if limit <= 0 {
		limit = DefaultListLimit
	}

	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	if skip < 0 {
		skip = 0
	}

	listed, err := d.Config.RatingRepo.ListByApp(ctx, ratingrepo.InputListByApp{
		AppID: in.AppID,
		Limit: limit,
		Skip:  skip,
	})
	if err != nil {
		err = fmt.Errorf("list ratings error: %w", err)
		return
	}

	ratings := make([]Rating, 0, len(listed.Ratings))
	for _, r := range listed.Ratings {
		ratings = append(ratings, RatingFromRepo(r))
	}

	out = OutListByApp{
		Ratings: ratings,
	}
	return
}

// recompute reads every rating row, so concurrent writers converge to the last full read.
func (d *DefaultService) recompute(ctx context.Context, appID, now int64) (app apprepo.App, err error) {
	stats, err := d.Config.RatingRepo.Stats(ctx, ratingrepo.InputStats{AppID: appID})
	if err != nil {
		err = fmt.Errorf("aggregate ratings error: %w", err)
		return
	}

	updated, err := d.Config.AppRepo.SetRating(ctx, apprepo.InputSetRating{
		ID:           appID,
		Rating:       RoundRating(stats.Stats.Average),
		TotalRatings: stats.Stats.Total,
		UpdatedAt:    now,
	})
	if err != nil {
		err = fmt.Errorf("write app aggregate error: %w", err)
		return
	}

	app = updated.App
	return
}
