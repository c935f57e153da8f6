package appsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/yusufsyaifudin/appstore/internal/svc/apprepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/policy"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/metric"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/pkg/uid"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/trace"
)

const DefaultImageMaxBytes = 500 * 1024

type DefaultServiceConfig struct {
	UIDGen        uid.UID      `validate:"required"`
	AppRepo       apprepo.Repo `validate:"required"`
	ImageMaxBytes int          `validate:"min=0"`
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

	if dep.ImageMaxBytes <= 0 {
		dep.ImageMaxBytes = DefaultImageMaxBytes
	}

	return &DefaultService{
		Config: dep,
		now:    time.Now,
	}, nil
}

// List only ever returns approved apps.
func (d *DefaultService) List(ctx context.Context, in InputList) (out OutList, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "appsvc.List")
	defer span.End()

	limit, skip := normalizePage(in.Limit, in.Skip)
	listed, err := d.Config.AppRepo.List(ctx, apprepo.InputList{
		Status:   apprepo.StatusApproved,
		Featured: in.Featured,
		Category: in.Category,
		Query:    in.Query,
		Sort:     in.Sort,
		Limit:    limit,
		Skip:     skip,
	})
	if err != nil {
		err = fmt.Errorf("list apps error: %w", err)
		return
	}

	out = OutList{
		Apps: AppsFromRepo(listed.Apps),
	}
	return
}

// ListByStatus is the moderation queue, newest first.
func (d *DefaultService) ListByStatus(ctx context.Context, in InputListByStatus) (out OutList, err error) {
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = apprepo.StatusPending
	}

	if !validStatus(status) {
		err = svcerr.InvalidInput("invalid status %q", in.Status)
		return
	}

	limit, skip := normalizePage(in.Limit, in.Skip)
	listed, err := d.Config.AppRepo.List(ctx, apprepo.InputList{
		Status: status,
		Sort:   apprepo.SortRecent,
		Limit:  limit,
		Skip:   skip,
	})
	if err != nil {
		err = fmt.Errorf("list apps by status error: %w", err)
		return
	}

	out = OutList{
		Apps: AppsFromRepo(listed.Apps),
	}
	return
}

func (d *DefaultService) ListByOwner(ctx context.Context, in InputListByOwner) (out OutList, err error) {
	if in.AccountID <= 0 {
		err = svcerr.Unauthorized("unauthorized")
		return
	}

	listed, err := d.Config.AppRepo.ListByDeveloper(ctx, apprepo.InputListByDeveloper{DeveloperID: in.AccountID})
	if err != nil {
		err = fmt.Errorf("list developer apps error: %w", err)
		return
	}

	out = OutList{
		Apps: AppsFromRepo(listed.Apps),
	}
	return
}

func (d *DefaultService) Get(ctx context.Context, in InputGet) (out OutGet, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "appsvc.Get")
	defer span.End()

	app, err := d.get(ctx, in.ID)
	if err != nil {
		return
	}

	out = OutGet{
		App: AppFromRepo(app),
	}
	return
}

func (d *DefaultService) Create(ctx context.Context, in InputCreate) (out OutCreate, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "appsvc.Create")
	defer span.End()

	if in.Actor.ID <= 0 {
		err = svcerr.Unauthorized("unauthorized")
		return
	}

	f := in.Fields
	now := d.now().UTC().UnixMicro()
	app := apprepo.App{
		DeveloperID:      in.Actor.ID,
		Name:             f.Name,
		Description:      f.Description,
		ShortDescription: f.ShortDescription,
		Requirements:     f.Requirements,
		Category:         strings.TrimSpace(f.Category),
		Version:          strings.TrimSpace(f.Version),
		Icon:             strings.TrimSpace(f.Icon),
		Screenshots:      pq.StringArray(nonNil(f.Screenshots)),
		DownloadURL:      strings.TrimSpace(f.DownloadURL),
		WebsiteURL:       strings.TrimSpace(f.WebsiteURL),
		SupportURL:       strings.TrimSpace(f.SupportURL),
		Size:             strings.TrimSpace(f.Size),
		Tags:             pq.StringArray(cleanTags(f.Tags)),
		Status:           apprepo.StatusPending,
		Featured:         false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err = validateRequired(app); err != nil {
		return
	}

	if err = validateLength(app); err != nil {
		return
	}

	if err = validateImages(app, d.Config.ImageMaxBytes); err != nil {
		return
	}

	app.ID, err = uid.NextInt64(d.Config.UIDGen)
	if err != nil {
		return
	}

	created, err := d.Config.AppRepo.Create(ctx, apprepo.InputCreate{App: app})
	if err != nil {
		err = fmt.Errorf("create app error: %w", err)
		return
	}

	ylog.Info(ctx, "app submitted", ylog.KV("app_id", created.App.ID), ylog.KV("developer_id", in.Actor.ID))
	out = OutCreate{
		App: AppFromRepo(created.App),
	}
	return
}

func (d *DefaultService) Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "appsvc.Update")
	defer span.End()

	app, err := d.get(ctx, in.ID)
	if err != nil {
		return
	}

	if !policy.CanMutate(app.DeveloperID, in.Actor) {
		err = svcerr.Forbidden("forbidden")
		return
	}

	p := in.Patch
	if !policy.CanChangeStatus(in.Actor) {
		p.Status = nil
		p.Featured = nil
	}

	if p.Name != nil {
		app.Name = *p.Name
	}

	if p.Description != nil {
		app.Description = *p.Description
	}

	if p.ShortDescription != nil {
		app.ShortDescription = *p.ShortDescription
	}

	if p.Requirements != nil {
		app.Requirements = *p.Requirements
	}

	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	setString(&app.Category, p.Category)
	setString(&app.Version, p.Version)
	setString(&app.Icon, p.Icon)
	setString(&app.DownloadURL, p.DownloadURL)
	setString(&app.WebsiteURL, p.WebsiteURL)
	setString(&app.SupportURL, p.SupportURL)
	setString(&app.Size, p.Size)

	if p.Screenshots != nil {
		app.Screenshots = nonNil(*p.Screenshots)
	}

	if p.Tags != nil {
		app.Tags = cleanTags(*p.Tags)
	}

	if err = validateRequired(app); err != nil {
		return
	}

	if err = validateLength(app); err != nil {
		return
	}

	if p.Icon != nil || p.Screenshots != nil {
		if err = validateImages(app, d.Config.ImageMaxBytes); err != nil {
			return
		}
	}

	now := d.now().UTC().UnixMicro()
	if p.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*p.Status))
		if !validStatus(status) {
			err = svcerr.InvalidInput("invalid status %q", *p.Status)
			return
		}

		if status == apprepo.StatusApproved && app.PublishedAt == 0 {
			app.PublishedAt = now
		}

		app.Status = status
	}

	if p.Featured != nil {
		app.Featured = *p.Featured
	}

	app.UpdatedAt = now
	updated, err := d.Config.AppRepo.Update(ctx, apprepo.InputUpdate{App: app})
	if errors.Is(err, apprepo.ErrNotFound) {
		err = notFound(in.ID)
		return
	}

	if err != nil {
		err = fmt.Errorf("update app error: %w", err)
		return
	}

	out = OutUpdate{
		App: AppFromRepo(updated.App),
	}
	return
}

func (d *DefaultService) Delete(ctx context.Context, in InputDelete) (out OutDelete, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "appsvc.Delete")
	defer span.End()

	app, err := d.get(ctx, in.ID)
	if err != nil {
		return
	}

	if !policy.CanMutate(app.DeveloperID, in.Actor) {
		err = svcerr.Forbidden("forbidden")
		return
	}

	deleted, err := d.Config.AppRepo.DelByID(ctx, apprepo.InputDelByID{ID: in.ID})
	if err != nil {
		err = fmt.Errorf("delete app error: %w", err)
		return
	}

	if !deleted.Success {
		err = notFound(in.ID)
		return
	}

	ylog.Info(ctx, "app deleted", ylog.KV("app_id", in.ID), ylog.KV("actor_id", in.Actor.ID))
	out = OutDelete{
		Success: true,
	}
	return
}

func (d *DefaultService) IncrementDownloads(ctx context.Context, in InputIncrementDownloads) (out OutIncrementDownloads, err error) {
	if in.ID <= 0 {
		err = notFound(in.ID)
		return
	}

	inc, err := d.Config.AppRepo.IncrementDownloads(ctx, apprepo.InputIncrementDownloads{
		ID:        in.ID,
		UpdatedAt: d.now().UTC().UnixMicro(),
	})
	if errors.Is(err, apprepo.ErrNotFound) {
		err = notFound(in.ID)
		return
	}

	if err != nil {
		err = fmt.Errorf("increment downloads error: %w", err)
		return
	}

	metric.Downloads.Inc()
	out = OutIncrementDownloads{
		Downloads: inc.Downloads,
	}
	return
}

func (d *DefaultService) get(ctx context.Context, id int64) (app apprepo.App, err error) {
	if id <= 0 {
		err = notFound(id)
		return
	}

	got, err := d.Config.AppRepo.GetByID(ctx, apprepo.InputGetByID{ID: id})
	if errors.Is(err, apprepo.ErrNotFound) {
		err = notFound(id)
		return
	}

	if err != nil {
		err = fmt.Errorf("get app error: %w", err)
		return
	}

	app = got.App
	return
}
