package authsvc

import (
	"context"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/policy"
)

// Service issues credential and session, and resolves token back into an account.
// Error returned is *svcerr.Error when it is caused by the caller.
type Service interface {
	Register(ctx context.Context, in InputRegister) (out OutRegister, err error)
	Login(ctx context.Context, in InputLogin) (out OutLogin, err error)
	Authenticate(ctx context.Context, in InputAuthenticate) (out OutAuthenticate, err error)
	Logout(ctx context.Context, in InputLogout) (out OutLogout, err error)
	Me(ctx context.Context, in InputMe) (out OutMe, err error)
	UpdateProfile(ctx context.Context, in InputUpdateProfile) (out OutUpdateProfile, err error)
	VerifyEmail(ctx context.Context, in InputVerifyEmail) (out OutVerifyEmail, err error)
}

// Account is the public view of an account, it never contains the password hash.
type Account struct {
	ID         int64
	Email      string
	Name       string
	Role       policy.Role
	Language   locale.Lang
	Avatar     string
	IsVerified bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a Account) Actor() policy.Actor {
	return policy.Actor{
		ID:   a.ID,
		Role: a.Role,
	}
}

// Credential is the signed access token. The session it refers expires at the same time.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

type InputRegister struct {
	Email    string
	Password string
	Name     string
	Role     string // optional, default developer
	Language string // optional, default en
}

type OutRegister struct {
	Account    Account
	Credential Credential
}

type InputLogin struct {
	Email    string
	Password string
}

type OutLogin struct {
	Account    Account
	Credential Credential
}

type InputAuthenticate struct {
	Token string
}

type OutAuthenticate struct {
	Account      Account
	SessionToken string
}

type InputLogout struct {
	SessionToken string
}

type OutLogout struct {
	Success bool
}

type InputMe struct {
	AccountID int64 `validate:"required"`
}

type OutMe struct {
	Account Account
}

// InputUpdateProfile only changes non-nil fields. Empty Avatar removes the avatar.
type InputUpdateProfile struct {
	AccountID int64 `validate:"required"`
	Name      *string
	Language  *string
	Avatar    *string
}

type OutUpdateProfile struct {
	Account Account
}

type InputVerifyEmail struct {
	Token string
}

type OutVerifyEmail struct {
	Account Account
}
