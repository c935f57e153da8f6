package changelogsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/apprepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/changelogrepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/policy"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/pkg/uid"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type DefaultServiceConfig struct {
	UIDGen        uid.UID            `validate:"required"`
	AppRepo       apprepo.Repo       `validate:"required"`
	ChangelogRepo changelogrepo.Repo `validate:"required"`
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

func (d *DefaultService) Create(ctx context.Context, in InputCreate) (out OutCreate, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "changelogsvc.Create")
	defer span.End()

	version := strings.TrimSpace(in.Version)
	typ := strings.ToLower(strings.TrimSpace(in.Type))
	switch {
	case in.AppID <= 0:
		err = svcerr.InvalidInput("appId is required")
	case version == "":
		err = svcerr.InvalidInput("version is required")
	case !validVersionLength(version):
		err = errVersionTooLong()
	case in.Title.IsZero():
		err = svcerr.InvalidInput("title is required")
	case in.Content.IsZero():
		err = svcerr.InvalidInput("content is required")
	case typ == "":
		err = svcerr.InvalidInput("type is required")
	case strings.TrimSpace(in.ReleaseDate) == "":
		err = svcerr.InvalidInput("releaseDate is required")
	case !validType(typ):
		err = errInvalidType()
	}

	if err != nil {
		return
	}

	releaseDate, err := ParseReleaseDate(in.ReleaseDate)
	if err != nil {
		return
	}

	app, err := d.Config.AppRepo.GetByID(ctx, apprepo.InputGetByID{ID: in.AppID})
	if errors.Is(err, apprepo.ErrNotFound) {
		err = svcerr.NotFound("app not found")
		return
	}

	if err != nil {
		err = fmt.Errorf("get app error: %w", err)
		return
	}

	if !policy.CanMutate(app.App.DeveloperID, in.Actor) {
		err = svcerr.Forbidden("forbidden")
		return
	}

	id, err := uid.NextInt64(d.Config.UIDGen)
	if err != nil {
		return
	}

	now := d.now().UTC().UnixMicro()
	created, err := d.Config.ChangelogRepo.Create(ctx, changelogrepo.InputCreate{
		Changelog: changelogrepo.Changelog{
			ID:          id,
			AppID:       in.AppID,
			DeveloperID: in.Actor.ID,
			Version:     version,
			Title:       in.Title,
			Content:     in.Content,
			Type:        typ,
			ReleaseDate: releaseDate.UnixMicro(),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	})
	if err != nil {
		err = fmt.Errorf("create changelog error: %w", err)
		return
	}

	out = OutCreate{
		Changelog: ChangelogFromRepo(created.Changelog),
	}
	return
}

func (d *DefaultService) Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "changelogsvc.Update")
	defer span.End()

	c, err := d.get(ctx, in.ID)
	if err != nil {
		return
	}

	if !policy.CanMutate(c.DeveloperID, in.Actor) {
		err = svcerr.Forbidden("forbidden")
		return
	}

	p := in.Patch
	if p.Version != nil {
		c.Version = strings.TrimSpace(*p.Version)
		if c.Version == "" {
			err = svcerr.InvalidInput("version is required")
			return
		}

		if !validVersionLength(c.Version) {
			err = errVersionTooLong()
			return
		}
	}

	if p.Title != nil {
		if p.Title.IsZero() {
			err = svcerr.InvalidInput("title is required")
			return
		}

		c.Title = *p.Title
	}

	if p.Content != nil {
		if p.Content.IsZero() {
			err = svcerr.InvalidInput("content is required")
			return
		}

		c.Content = *p.Content
	}

	if p.Type != nil {
		typ := strings.ToLower(strings.TrimSpace(*p.Type))
		if !validType(typ) {
			err = errInvalidType()
			return
		}

		c.Type = typ
	}

	if p.ReleaseDate != nil {
		var releaseDate time.Time
		releaseDate, err = ParseReleaseDate(*p.ReleaseDate)
		if err != nil {
			return
		}

		c.ReleaseDate = releaseDate.UnixMicro()
	}

	c.UpdatedAt = d.now().UTC().UnixMicro()
	updated, err := d.Config.ChangelogRepo.Update(ctx, changelogrepo.InputUpdate{Changelog: c})
	if errors.Is(err, changelogrepo.ErrNotFound) {
		err = svcerr.NotFound("changelog not found")
		return
	}

	if err != nil {
		err = fmt.Errorf("update changelog error: %w", err)
		return
	}

	out = OutUpdate{
		Changelog: ChangelogFromRepo(updated.Changelog),
	}
	return
}

func (d *DefaultService) Delete(ctx context.Context, in InputDelete) (out OutDelete, err error) {
	c, err := d.get(ctx, in.ID)
	if err != nil {
		return
	}

	if !policy.CanMutate(c.DeveloperID, in.Actor) {
		err = svcerr.Forbidden("forbidden")
		return
	}

	deleted, err := d.Config.ChangelogRepo.DelByID(ctx, changelogrepo.InputDelByID{ID: in.ID})
	if err != nil {
		err = fmt.Errorf("delete changelog error: %w", err)
		return
	}

	if !deleted.Success {
		err = svcerr.NotFound("changelog not found")
		return
	}

	out = OutDelete{
		Success: true,
	}
	return
}

// ListByApp is public and returns empty list for unknown app.
func (d *DefaultService) ListByApp(ctx context.Context, in InputListByApp) (out OutList, err error) {
	if in.AppID <= 0 {
		out = OutList{Changelogs: []Changelog{}}
		return
	}

	listed, err := d.Config.ChangelogRepo.ListByApp(ctx, changelogrepo.InputListByApp{AppID: in.AppID})
	if err != nil {
		err = fmt.Errorf("list changelogs by app error: %w", err)
		return
	}

	out = OutList{
		Changelogs: ChangelogsFromRepo(listed.Changelogs),
	}
	return
}

func (d *DefaultService) ListByDeveloper(ctx context.Context, in InputListByDeveloper) (out OutList, err error) {
	if in.AccountID <= 0 {
		err = svcerr.Unauthorized("unauthorized")
		return
	}

	listed, err := d.Config.ChangelogRepo.ListByDeveloper(ctx, changelogrepo.InputListByDeveloper{DeveloperID: in.AccountID})
	if err != nil {
		err = fmt.Errorf("list changelogs by developer error: %w", err)
		return
	}

	out = OutList{
		Changelogs: ChangelogsFromRepo(listed.Changelogs),
	}
	return
}

func (d *DefaultService) get(ctx context.Context, id int64) (c changelogrepo.Changelog, err error) {
	if id <= 0 {
		err = svcerr.NotFound("changelog not found")
		return
	}

	got, err := d.Config.ChangelogRepo.GetByID(ctx, changelogrepo.InputGetByID{ID: id})
	if errors.Is(err, changelogrepo.ErrNotFound) {
		err = svcerr.NotFound("changelog not found")
		return
	}

	if err != nil {
		err = fmt.Errorf("get changelog error: %w", err)
		return
	}

	c = got.Changelog
	return
}
