// Package httpauth resolves the caller identity from the auth cookie (or bearer token)
// and guards the routes which need it.
package httpauth

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/authsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/policy"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

const CookieName = "auth-token"

type Config struct {
	AuthService  authsvc.Service `validate:"required"`
	CookieSecure bool
	CookieMaxAge time.Duration `validate:"min=0"`
}

type Guard struct {
	cfg Config
}

func New(cfg Config) (*Guard, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	if cfg.CookieMaxAge <= 0 {
		cfg.CookieMaxAge = authsvc.DefaultTokenTTL
	}

	return &Guard{cfg: cfg}, nil
}

type ctxKey struct{}

type identity struct {
	account      authsvc.Account
	sessionToken string
}

// WithAccount puts the authenticated account into ctx.
func WithAccount(ctx context.Context, acc authsvc.Account, sessionToken string) context.Context {
	return context.WithValue(ctx, ctxKey{}, identity{account: acc, sessionToken: sessionToken})
}

// AccountFromContext returns the account stored by RequireAuth or RequireRole.
func AccountFromContext(ctx context.Context) (authsvc.Account, bool) {
	id, ok := ctx.Value(ctxKey{}).(identity)
	return id.account, ok
}

func SessionTokenFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(identity)
	return id.sessionToken
}

// TokenFromRequest reads the auth cookie first, then the Authorization: Bearer header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value)
	}

	scheme, token, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

func (g *Guard) resolve(r *http.Request) (*http.Request, bool) {
	ctx := r.Context()

	token := TokenFromRequest(r)
	if token == "" {
		return r, false
	}

	out, err := g.cfg.AuthService.Authenticate(ctx, authsvc.InputAuthenticate{Token: token})
	if err != nil {
		if svcerr.KindOf(err) == svcerr.KindInternal {
			ylog.Error(ctx, "authenticate failed", ylog.KV("error", err))
		}

		return r, false
	}

	ctx = WithAccount(ctx, out.Account, out.SessionToken)

	// re-inject log tracer so every log line after this point carry the account id
	resp := respbuilder.MetaFromContext(ctx)
	logData := tracer.LogData{
		RemoteAddr: resp.RemoteAddr,
		TraceID:    resp.TraceID,
		AccountID:  strconv.FormatInt(out.Account.ID, 10),
	}

	if logTracer, _err := ylog.NewTracer(logData, ylog.WithTag("tracer")); _err == nil {
		ctx = ylog.Inject(ctx, logTracer)
	}

	return r.WithContext(ctx), true
}

// RequireAuth answers 401 before calling next when the caller cannot be identified.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, ok := g.resolve(r)
		if !ok {
			respbuilder.WriteError(w, r, respbuilder.ErrUnauthorized, nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 403 when the caller cannot be identified or has another role.
func (g *Guard) RequireRole(role policy.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, ok := g.resolve(r)
			if !ok {
				respbuilder.WriteError(w, r, respbuilder.ErrForbidden, nil)
				return
			}

			acc, _ := AccountFromContext(r.Context())
			if acc.Role != role {
				respbuilder.WriteError(w, r, respbuilder.ErrForbidden, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SetCookie writes the access token as http only cookie.
func (g *Guard) SetCookie(w http.ResponseWriter, cred authsvc.Credential) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    cred.Token,
		Path:     "/",
		Expires:  cred.ExpiresAt,
		MaxAge:   int(g.cfg.CookieMaxAge.Seconds()),
		Secure:   g.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (g *Guard) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   g.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
