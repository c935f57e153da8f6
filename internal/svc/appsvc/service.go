package appsvc

import (
	"context"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/policy"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Service is an interface of final business logic.
// Any input and output from/to this function should be SAFE for external party to consume,
// i.e: request or response from HTTP handler
type Service interface {
	List(ctx context.Context, in InputList) (out OutList, err error)
	ListByStatus(ctx context.Context, in InputListByStatus) (out OutList, err error)
	ListByOwner(ctx context.Context, in InputListByOwner) (out OutList, err error)
	Get(ctx context.Context, in InputGet) (out OutGet, err error)
	Create(ctx context.Context, in InputCreate) (out OutCreate, err error)
	Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error)
	Delete(ctx context.Context, in InputDelete) (out OutDelete, err error)
	IncrementDownloads(ctx context.Context, in InputIncrementDownloads) (out OutIncrementDownloads, err error)
}

// App is like apprepo.App but this only use for returning output via external service.
// This must not have any json or yaml tag, any output method (HTTP, gRPC, etc) must define its own entity standard.
type App struct {
	ID               int64
	DeveloperID      int64
	Name             locale.Text
	Description      locale.Text
	ShortDescription locale.Text
	Requirements     locale.Text
	Category         string
	Version          string
	Icon             string
	Screenshots      []string
	DownloadURL      string
	WebsiteURL       string
	SupportURL       string
	Size             string
	Tags             []string
	Rating           float64
	TotalRatings     int64
	Downloads        int64
	Status           string
	Featured         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PublishedAt      *time.Time
}

// InputList lists approved apps only.
// Limit <= 0 means DefaultListLimit and it is capped at MaxListLimit, negative Skip means 0.
type InputList struct {
	Featured bool
	Category string
	Query    string
	Sort     string // popular, rating or recent (default)
	Limit    int64
	Skip     int64
}

type InputListByStatus struct {
	Status string
	Limit  int64
	Skip   int64
}

type InputListByOwner struct {
	AccountID int64
}

type OutList struct {
	Apps []App
}

type InputGet struct {
	ID int64
}

type OutGet struct {
	App App
}

// AppFields is every attribute a developer can submit.
type AppFields struct {
	Name             locale.Text
	Description      locale.Text
	ShortDescription locale.Text
	Requirements     locale.Text
	Category         string
	Version          string
	Icon             string
	Screenshots      []string
	DownloadURL      string
	WebsiteURL       string
	SupportURL       string
	Size             string
	Tags             []string
}

// InputCreate always creates pending, non-featured app owned by Actor.
type InputCreate struct {
	Actor  policy.Actor
	Fields AppFields
}

type OutCreate struct {
	App App
}

// AppPatch only changes non-nil fields.
// Status and Featured are dropped silently when the actor is not admin.
type AppPatch struct {
	Name             *locale.Text
	Description      *locale.Text
	ShortDescription *locale.Text
	Requirements     *locale.Text
	Category         *string
	Version          *string
	Icon             *string
	Screenshots      *[]string
	DownloadURL      *string
	WebsiteURL       *string
	SupportURL       *string
	Size             *string
	Tags             *[]string
	Status           *string
	Featured         *bool
}

type InputUpdate struct {
	ID    int64
	Actor policy.Actor
	Patch AppPatch
}

type OutUpdate struct {
	App App
}

type InputDelete struct {
	ID    int64
	Actor policy.Actor
}

type OutDelete struct {
	Success bool
}

type InputIncrementDownloads struct {
	ID int64
}

type OutIncrementDownloads struct {
	Downloads int64
}
