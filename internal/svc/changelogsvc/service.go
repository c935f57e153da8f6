package changelogsvc

import (
	"context"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/policy"
)

// Service manages release notes of an application. Only the app owner or an admin can write.
type Service interface {
	Create(ctx context.Context, in InputCreate) (out OutCreate, err error)
	Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error)
	Delete(ctx context.Context, in InputDelete) (out OutDelete, err error)
	ListByApp(ctx context.Context, in InputListByApp) (out OutList, err error)
	ListByDeveloper(ctx context.Context, in InputListByDeveloper) (out OutList, err error)
}

type Changelog struct {
	ID          int64
	AppID       int64
	DeveloperID int64
	Version     string
	Title       locale.Text
	Content     locale.Text
	Type        string
	ReleaseDate time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InputCreate.ReleaseDate is RFC3339 or YYYY-MM-DD.
type InputCreate struct {
	Actor       policy.Actor
	AppID       int64
	Version     string
	Title       locale.Text
	Content     locale.Text
	Type        string
	ReleaseDate string
}

type OutCreate struct {
	Changelog Changelog
}

// Patch only changes non-nil fields.
type Patch struct {
	Version     *string
	Title       *locale.Text
	Content     *locale.Text
	Type        *string
	ReleaseDate *string
}

type InputUpdate struct {
	ID    int64
	Actor policy.Actor
	Patch Patch
}

type OutUpdate struct {
	Changelog Changelog
}

type InputDelete struct {
	ID    int64
	Actor policy.Actor
}

type OutDelete struct {
	Success bool
}

type InputListByApp struct {
	AppID int64
}

type InputListByDeveloper struct {
	AccountID int64
}

type OutList struct {
	Changelogs []Changelog
}
