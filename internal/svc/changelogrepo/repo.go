package changelogrepo

import (
	"context"
	"errors"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("changelog not found")
)

// Repo is Changelog repository service. Every list is ordered by newest release first.
type Repo interface {
	Create(ctx context.Context, in InputCreate) (out OutCreate, err error)
	GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error)
	ListByApp(ctx context.Context, in InputListByApp) (out OutList, err error)
	ListByDeveloper(ctx context.Context, in InputListByDeveloper) (out OutList, err error)
	Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error)
	DelByID(ctx context.Context, in InputDelByID) (out OutDelByID, err error)
}

type InputCreate struct {
	Changelog Changelog `validate:"required"`
}

type OutCreate struct {
	Changelog Changelog
}

type InputGetByID struct {
	ID int64 `validate:"required"`
}

type OutGetByID struct {
	Changelog Changelog
}

type InputListByApp struct {
	AppID int64 `validate:"required"`
}

type InputListByDeveloper struct {
	DeveloperID int64 `validate:"required"`
}

type OutList struct {
	Changelogs []Changelog
}

// InputUpdate overwrites version, title, content, type and release date.
type InputUpdate struct {
	Changelog Changelog `validate:"required"`
}

type OutUpdate struct {
	Changelog Changelog
}

type InputDelByID struct {
	ID int64 `validate:"required"`
}

type OutDelByID struct {
	Success bool
}
