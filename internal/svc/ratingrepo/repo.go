package ratingrepo

import (
	"context"
	"errors"
)

var (
	ErrValidation = errors.New("validation error")
)

// Repo is Rating repository service
type Repo interface {
	Create(ctx context.Context, in InputCreate) (out OutCreate, err error)
	Stats(ctx context.Context, in InputStats) (out OutStats, err error)
	ListByApp(ctx context.Context, in InputListByApp) (out OutListByApp, err error)
}

type InputCreate struct {
	Rating Rating `validate:"required"`
}

type OutCreate struct {
	Rating Rating
}

type InputStats struct {
	AppID int64 `validate:"required"`
}

type OutStats struct {
	Stats Stats
}

type InputListByApp struct {
	AppID int64 `validate:"required"`
	Limit int64 `validate:"required,min=1,max=100"`
	Skip  int64 `validate:"min=0"`
}

type OutListByApp struct {
	Ratings []Rating
}
