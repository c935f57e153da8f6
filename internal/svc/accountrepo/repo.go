package accountrepo

import (
	"context"
	"errors"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("account not found")
	ErrDuplicate  = errors.New("account email already exist")
)

// Repo is Account repository service
type Repo interface {
	Create(ctx context.Context, in InputCreate) (out OutCreate, err error)
	GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error)
	GetByEmail(ctx context.Context, in InputGetByEmail) (out OutGetByEmail, err error)
	Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error)
	SetVerified(ctx context.Context, in InputSetVerified) (out OutSetVerified, err error)
}

type InputCreate struct {
	Account Account `validate:"required"`
}

type OutCreate struct {
	Account Account
}

type InputGetByID struct {
	ID int64 `validate:"required"`
}

type OutGetByID struct {
	Account Account
}

type InputGetByEmail struct {
	Email string `validate:"required"`
}

type OutGetByEmail struct {
	Account Account
}

// InputUpdate only updates profile fields: name, language and avatar.
type InputUpdate struct {
	Account Account `validate:"required"`
}

type OutUpdate struct {
	Account Account
}

type InputSetVerified struct {
	ID        int64 `validate:"required"`
	UpdatedAt int64 `validate:"required"`
}

type OutSetVerified struct {
	Account Account
}
