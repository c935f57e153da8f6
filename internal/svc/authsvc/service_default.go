package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/satori/uuid"
	"github.com/yusufsyaifudin/appstore/internal/svc/accountrepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/policy"
	"github.com/yusufsyaifudin/appstore/internal/svc/sessionrepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/dataurl"
	"github.com/yusufsyaifudin/appstore/pkg/mailclient"
	"github.com/yusufsyaifudin/appstore/pkg/metric"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/pkg/uid"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost    = 12
	DefaultImageMaxBytes = 500 * 1024

	minPasswordLength = 6

	// column lengths of accounts table
	maxEmailLength = 320
	maxNameLength  = 255
)

type DefaultServiceConfig struct {
	UIDGen      uid.UID           `validate:"required"`
	AccountRepo accountrepo.Repo  `validate:"required"`
	SessionRepo sessionrepo.Repo  `validate:"required"`
	Tokens      *TokenIssuer      `validate:"required"`
	Mailer      mailclient.Client `validate:"required"`
	MailFrom    string            `validate:"required,email"`

	// PublicBaseURL is prefix of the verification link sent by e-mail.
	PublicBaseURL string `validate:"required,url"`

	// EnforceSession makes Authenticate check the session store, so logout revokes the token immediately.
	EnforceSession bool

	BcryptCost    int `validate:"omitempty,min=4,max=31"`
	ImageMaxBytes int `validate:"min=0"`
}

type DefaultService struct {
	Config DefaultServiceConfig

	// dummyHash is compared against when the email is unknown, so both failures take the same time.
	dummyHash []byte
	now       func() time.Time
}

var _ Service = (*DefaultService)(nil)

func New(dep DefaultServiceConfig) (*DefaultService, error) {
	if err := validator.Validate(dep); err != nil {
		return nil, err
	}

	if dep.BcryptCost <= 0 {
		dep.BcryptCost = DefaultBcryptCost
	}

	if dep.ImageMaxBytes <= 0 {
		dep.ImageMaxBytes = DefaultImageMaxBytes
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte("appstore-dummy-password"), dep.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("cannot prepare dummy hash: %w", err)
	}

	return &DefaultService{
		Config:    dep,
		dummyHash: dummyHash,
		now:       time.Now,
	}, nil
}

func (d *DefaultService) Register(ctx context.Context, in InputRegister) (out OutRegister, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "authsvc.Register")
	defer span.End()

	defer func() {
		metric.AuthAttempts.WithLabelValues("register", resultLabel(err)).Inc()
	}()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if email == "" || in.Password == "" || name == "" {
		err = svcerr.InvalidInput("email, password, and name are required")
		return
	}

	if validator.Var(email, fmt.Sprintf("max=%d", maxEmailLength)) != nil {
		err = svcerr.InvalidInput("email must be at most %d characters", maxEmailLength)
		return
	}

	if validator.Var(email, "email") != nil {
		err = svcerr.InvalidInput("invalid email address")
		return
	}

	if err = validateName(name); err != nil {
		return
	}

	if len(in.Password) < minPasswordLength {
		err = svcerr.InvalidInput("password must be at least %d characters long", minPasswordLength)
		return
	}

	role := policy.RoleDeveloper
	if r := strings.TrimSpace(in.Role); r != "" {
		role = policy.Role(strings.ToLower(r))
	}

	if !role.Valid() {
		err = svcerr.InvalidInput("role must be one of developer or admin")
		return
	}

	lang := locale.EN
	if l := strings.TrimSpace(in.Language); l != "" {
		var ok bool
		lang, ok = locale.ParseLang(l)
		if !ok {
			err = svcerr.InvalidInput("language must be one of en, th or zh")
			return
		}
	}

	_, err = d.Config.AccountRepo.GetByEmail(ctx, accountrepo.InputGetByEmail{Email: email})
	switch {
	case err == nil:
		err = svcerr.Conflict("user with this email already exists")
		return
	case errors.Is(err, accountrepo.ErrNotFound):
		err = nil
	default:
		err = fmt.Errorf("check existing account error: %w", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), d.Config.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		err = svcerr.InvalidInput("password must be at most 72 bytes long")
		return
	}

	if err != nil {
		err = fmt.Errorf("cannot hash password: %w", err)
		return
	}

	id, err := uid.NextInt64(d.Config.UIDGen)
	if err != nil {
		return
	}

	now := d.now().UTC().UnixMicro()
	created, err := d.Config.AccountRepo.Create(ctx, accountrepo.InputCreate{
		Account: accountrepo.Account{
			ID:           id,
			Email:        email,
			PasswordHash: string(hash),
			Name:         name,
			Role:         string(role),
			Language:     string(lang),
			IsVerified:   false,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	})
	if errors.Is(err, accountrepo.ErrDuplicate) {
		err = svcerr.Conflict("user with this email already exists")
		return
	}

	if err != nil {
		err = fmt.Errorf("create account error: %w", err)
		return
	}

	cred, err := d.issueSession(ctx, created.Account)
	if err != nil {
		return
	}

	d.sendVerification(ctx, created.Account)

	out = OutRegister{
		Account:    AccountFromRepo(created.Account),
		Credential: cred,
	}
	return
}

func (d *DefaultService) Login(ctx context.Context, in InputLogin) (out OutLogin, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "authsvc.Login")
	defer span.End()

	defer func() {
		metric.AuthAttempts.WithLabelValues("login", resultLabel(err)).Inc()
	}()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		err = svcerr.InvalidInput("email and password are required")
		return
	}

	found, err := d.Config.AccountRepo.GetByEmail(ctx, accountrepo.InputGetByEmail{Email: email})
	if errors.Is(err, accountrepo.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(d.dummyHash, []byte(in.Password))
		err = svcerr.Unauthorized("invalid email or password")
		return
	}

	if err != nil {
		err = fmt.Errorf("get account by email error: %w", err)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(found.Account.PasswordHash), []byte(in.Password))
	if err != nil {
		err = svcerr.Unauthorized("invalid email or password")
		return
	}

	cred, err := d.issueSession(ctx, found.Account)
	if err != nil {
		return
	}

	out = OutLogin{
		Account:    AccountFromRepo(found.Account),
		Credential: cred,
	}
	return
}

// Authenticate fails closed: any doubt about the token means unauthorized.
func (d *DefaultService) Authenticate(ctx context.Context, in InputAuthenticate) (out OutAuthenticate, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "authsvc.Authenticate")
	defer span.End()

	token := strings.TrimSpace(in.Token)
	if token == "" {
		err = svcerr.Unauthorized("unauthorized")
		return
	}

	claims, err := d.Config.Tokens.Parse(token)
	if err != nil {
		ylog.Debug(ctx, "access token rejected", ylog.KV("error", err))
		err = svcerr.Unauthorized("unauthorized")
		return
	}

	if d.Config.EnforceSession {
		var sess sessionrepo.OutGetByToken
		sess, err = d.Config.SessionRepo.GetByToken(ctx, sessionrepo.InputGetByToken{
			Token: claims.ID,
			Now:   d.now().UTC().UnixMicro(),
		})
		if errors.Is(err, sessionrepo.ErrNotFound) {
			err = svcerr.Unauthorized("unauthorized")
			return
		}

		if err != nil {
			err = fmt.Errorf("get session error: %w", err)
			return
		}

		if sess.Session.AccountID != claims.UserID {
			ylog.Error(ctx, "session belongs to another account",
				ylog.KV("session_account_id", sess.Session.AccountID),
				ylog.KV("token_account_id", claims.UserID),
			)
			err = svcerr.Unauthorized("unauthorized")
			return
		}
	}

	acc, err := d.Config.AccountRepo.GetByID(ctx, accountrepo.InputGetByID{ID: claims.UserID})
	if errors.Is(err, accountrepo.ErrNotFound) {
		err = svcerr.Unauthorized("unauthorized")
		return
	}

	if err != nil {
		err = fmt.Errorf("get account error: %w", err)
		return
	}

	out = OutAuthenticate{
		Account:      AccountFromRepo(acc.Account),
		SessionToken: claims.ID,
	}
	return
}

// Logout is idempotent, unknown session is not an error.
func (d *DefaultService) Logout(ctx context.Context, in InputLogout) (out OutLogout, err error) {
	if strings.TrimSpace(in.SessionToken) == "" {
		err = svcerr.Unauthorized("unauthorized")
		return
	}

	del, err := d.Config.SessionRepo.DelByToken(ctx, sessionrepo.InputDelByToken{Token: in.SessionToken})
	if err != nil {
		err = fmt.Errorf("delete session error: %w", err)
		return
	}

	out = OutLogout{
		Success: del.Success,
	}
	return
}

func (d *DefaultService) Me(ctx context.Context, in InputMe) (out OutMe, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = svcerr.Unauthorized("unauthorized")
		return
	}

	acc, err := d.Config.AccountRepo.GetByID(ctx, accountrepo.InputGetByID{ID: in.AccountID})
	if errors.Is(err, accountrepo.ErrNotFound) {
		err = svcerr.NotFound("user not found")
		return
	}

	if err != nil {
		err = fmt.Errorf("get account error: %w", err)
		return
	}

	out = OutMe{
		Account: AccountFromRepo(acc.Account),
	}
	return
}

func (d *DefaultService) UpdateProfile(ctx context.Context, in InputUpdateProfile) (out OutUpdateProfile, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "authsvc.UpdateProfile")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = svcerr.Unauthorized("unauthorized")
		return
	}

	current, err := d.Config.AccountRepo.GetByID(ctx, accountrepo.InputGetByID{ID: in.AccountID})
	if errors.Is(err, accountrepo.ErrNotFound) {
		err = svcerr.NotFound("user not found")
		return
	}

	if err != nil {
		err = fmt.Errorf("get account error: %w", err)
		return
	}

	acc := current.Account
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			err = svcerr.InvalidInput("name is required")
			return
		}

		if err = validateName(name); err != nil {
			return
		}

		acc.Name = name
	}

	if in.Language != nil {
		lang, ok := locale.ParseLang(*in.Language)
		if !ok {
			err = svcerr.InvalidInput("language must be one of en, th or zh")
			return
		}

		acc.Language = string(lang)
	}

	if in.Avatar != nil {
		avatar := strings.TrimSpace(*in.Avatar)
		if avatar != "" {
			if _err := dataurl.Validate(avatar, dataurl.DefaultAllowedTypes, d.Config.ImageMaxBytes); _err != nil {
				err = svcerr.InvalidInput("avatar: %s", _err)
				return
			}
		}

		acc.Avatar = avatar
	}

	acc.UpdatedAt = d.now().UTC().UnixMicro()
	updated, err := d.Config.AccountRepo.Update(ctx, accountrepo.InputUpdate{Account: acc})
	if err != nil {
		err = fmt.Errorf("update account error: %w", err)
		return
	}

	out = OutUpdateProfile{
		Account: AccountFromRepo(updated.Account),
	}
	return
}

func (d *DefaultService) VerifyEmail(ctx context.Context, in InputVerifyEmail) (out OutVerifyEmail, err error) {
	accountID, err := d.Config.Tokens.ParseVerification(strings.TrimSpace(in.Token))
	if err != nil {
		ylog.Debug(ctx, "verification token rejected", ylog.KV("error", err))
		err = svcerr.InvalidInput("invalid or expired verification token")
		return
	}

	verified, err := d.Config.AccountRepo.SetVerified(ctx, accountrepo.InputSetVerified{
		ID:        accountID,
		UpdatedAt: d.now().UTC().UnixMicro(),
	})
	if errors.Is(err, accountrepo.ErrNotFound) {
		err = svcerr.InvalidInput("invalid or expired verification token")
		return
	}

	if err != nil {
		err = fmt.Errorf("verify account error: %w", err)
		return
	}

	out = OutVerifyEmail{
		Account: AccountFromRepo(verified.Account),
	}
	return
}

func (d *DefaultService) issueSession(ctx context.Context, acc accountrepo.Account) (cred Credential, err error) {
	sessionToken := uuid.NewV4().String()
	token, expiresAt, err := d.Config.Tokens.Issue(acc.ID, acc.Email, acc.Role, sessionToken)
	if err != nil {
		return
	}

	sessionID, err := uid.NextInt64(d.Config.UIDGen)
	if err != nil {
		return
	}

	_, err = d.Config.SessionRepo.Create(ctx, sessionrepo.InputCreate{
		Session: sessionrepo.Session{
			ID:        sessionID,
			AccountID: acc.ID,
			Token:     sessionToken,
			ExpiresAt: expiresAt.UnixMicro(),
			CreatedAt: expiresAt.Add(-d.Config.Tokens.TTL()).UnixMicro(),
		},
	})
	if err != nil {
		err = fmt.Errorf("create session error: %w", err)
		return
	}

	cred = Credential{
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return
}

// sendVerification never fails the caller, the user can still use the account unverified.
func (d *DefaultService) sendVerification(ctx context.Context, acc accountrepo.Account) {
	token, err := d.Config.Tokens.IssueVerification(acc.ID)
	if err != nil {
		ylog.Error(ctx, "cannot issue verification token", ylog.KV("error", err))
		return
	}

	link := strings.TrimRight(d.Config.PublicBaseURL, "/") + "/auth/verify?token=" + url.QueryEscape(token)
	err = d.Config.Mailer.Send(ctx, mailclient.Message{
		From:    d.Config.MailFrom,
		To:      []string{acc.Email},
		Subject: "Verify your e-mail address",
		Body:    fmt.Sprintf("Hello %s,\r\n\r\nPlease verify your e-mail address by opening this link:\r\n%s\r\n", acc.Name, link),
	})
	if err != nil {
		ylog.Error(ctx, "cannot send verification e-mail", ylog.KV("error", err), ylog.KV("account_id", acc.ID))
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}

	switch svcerr.KindOf(err) {
	case svcerr.KindInvalidInput:
		return "invalid"
	case svcerr.KindConflict:
		return "conflict"
	case svcerr.KindUnauthorized:
		return "unauthorized"
	default:
		return "error"
	}
}
