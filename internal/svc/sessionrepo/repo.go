package sessionrepo

import (
	"context"
	"errors"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("session not found or expired")
)

// Repo is Session repository service
type Repo interface {
	Create(ctx context.Context, in InputCreate) (out OutCreate, err error)
	GetByToken(ctx context.Context, in InputGetByToken) (out OutGetByToken, err error)
	DelByToken(ctx context.Context, in InputDelByToken) (out OutDelByToken, err error)
}

type InputCreate struct {
	Session Session `validate:"required"`
}

type OutCreate struct {
	Session Session
}

// InputGetByToken only returns session which ExpiresAt is after Now.
type InputGetByToken struct {
	Token string `validate:"required"`
	Now   int64  `validate:"required"`
}

type OutGetByToken struct {
	Session Session
}

type InputDelByToken struct {
	Token string `validate:"required"`
}

type OutDelByToken struct {
	Success bool
}
