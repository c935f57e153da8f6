package apprepo

import (
	"context"
	"errors"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("app not found")
)

// Repo is App repository service
type Repo interface {
	Create(ctx context.Context, in InputCreate) (out OutCreate, err error)
	GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error)
	List(ctx context.Context, in InputList) (out OutList, err error)
	ListByDeveloper(ctx context.Context, in InputListByDeveloper) (out OutListByDeveloper, err error)
	Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error)
	DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error)
	IncrementDownloads(ctx context.Context, in InputIncrementDownloads) (out OutIncrementDownloads, err error)
	SetRating(ctx context.Context, in InputSetRating) (out OutSetRating, err error)
}

type InputCreate struct {
	App App `validate:"required"`
}

type OutCreate struct {
	App App
}

type InputGetByID struct {
	ID int64 `validate:"required"`
}

type OutGetByID struct {
	App App
}

// InputList filters apps by status, the other filters are optional.
// Query is matched as case-insensitive substring against every name and description variant.
type InputList struct {
	Status   string `validate:"required,oneof=pending approved rejected suspended"`
	Featured bool
	Category string
	Query    string
	Sort     string
	Limit    int64 `validate:"required,min=1,max=100"`
	Skip     int64 `validate:"min=0"`
}

type OutList struct {
	Apps []App
}

type InputListByDeveloper struct {
	DeveloperID int64 `validate:"required"`
}

type OutListByDeveloper struct {
	Apps []App
}

// InputUpdate overwrites every client-writable column of App.ID.
// Rating, TotalRatings, Downloads and CreatedAt are ignored.
type InputUpdate struct {
	App App `validate:"required"`
}

type OutUpdate struct {
	App App
}

type InputDelByID struct {
	ID int64 `validate:"required"`
}

type OutDelByID struct {
	Success bool
}

type InputIncrementDownloads struct {
	ID        int64 `validate:"required"`
	UpdatedAt int64 `validate:"required"`
}

type OutIncrementDownloads struct {
	Downloads int64
}

type InputSetRating struct {
	ID           int64   `validate:"required"`
	Rating       float64 `validate:"min=0,max=5"`
	TotalRatings int64   `validate:"min=0"`
	UpdatedAt    int64   `validate:"required"`
}

type OutSetRating struct {
	App App
}
