package accountrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/yusufsyaifudin/appstore/pkg/pgutil"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	accountColumns = `id, email, password_hash, name, role, language, avatar, is_verified, created_at, updated_at`

	sqlCreateAccount = `INSERT INTO accounts (` + accountColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING ` + accountColumns + `;`

	sqlGetAccountByID    = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 LIMIT 1;`
	sqlGetAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 LIMIT 1;`

	sqlUpdateAccount = `UPDATE accounts SET name = $2, language = $3, avatar = $4, updated_at = $5 WHERE id = $1 RETURNING ` + accountColumns + `;`

	sqlSetAccountVerified = `UPDATE accounts SET is_verified = TRUE, updated_at = $2 WHERE id = $1 RETURNING ` + accountColumns + `;`
)

type RepoPostgresConfig struct {
	Connection sqlx.QueryerContext `validate:"required"`
}

type RepoPostgres struct {
	Config RepoPostgresConfig
}

var _ Repo = (*RepoPostgres)(nil)

// Postgres return repo interface which implements using PgSQL
func Postgres(conf RepoPostgresConfig) (service *RepoPostgres, err error) {
	err = validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	service = &RepoPostgres{
		Config: conf,
	}
	return
}

func (p *RepoPostgres) Create(ctx context.Context, in InputCreate) (out OutCreate, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "accountrepo.Create")
	defer span.End()

	acc := in.Account
	acc.Email = normalizeEmail(acc.Email)

	err = validator.Validate(InputCreate{Account: acc})
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	inserted := Account{}
	err = sqlx.GetContext(ctx, p.Config.Connection, &inserted, sqlCreateAccount,
		acc.ID, acc.Email, acc.PasswordHash, acc.Name, acc.Role, acc.Language, acc.Avatar, acc.IsVerified,
		acc.CreatedAt, acc.UpdatedAt,
	)

	if pgutil.IsUniqueViolation(err) {
		err = fmt.Errorf("%w: %s", ErrDuplicate, acc.Email)
		return
	}

	if err != nil {
		err = fmt.Errorf("insert account error: %w", err)
		return
	}

	out = OutCreate{
		Account: inserted,
	}
	return
}

func (p *RepoPostgres) GetByID(ctx context.Context, in InputGetByID) (out OutGetByID, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "accountrepo.GetByID")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	acc, err := p.getOne(ctx, sqlGetAccountByID, in.ID)
	if err != nil {
		return
	}

	out = OutGetByID{
		Account: acc,
	}
	return
}

func (p *RepoPostgres) GetByEmail(ctx context.Context, in InputGetByEmail) (out OutGetByEmail, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "accountrepo.GetByEmail")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	acc, err := p.getOne(ctx, sqlGetAccountByEmail, normalizeEmail(in.Email))
	if err != nil {
		return
	}

	out = OutGetByEmail{
		Account: acc,
	}
	return
}

func (p *RepoPostgres) Update(ctx context.Context, in InputUpdate) (out OutUpdate, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	acc := in.Account
	acc, err = p.getOne(ctx, sqlUpdateAccount, acc.ID, acc.Name, acc.Language, acc.Avatar, acc.UpdatedAt)
	if err != nil {
		return
	}

	out = OutUpdate{
		Account: acc,
	}
	return
}

func (p *RepoPostgres) SetVerified(ctx context.Context, in InputSetVerified) (out OutSetVerified, err error) {
	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrValidation, err)
		return
	}

	acc, err := p.getOne(ctx, sqlSetAccountVerified, in.ID, in.UpdatedAt)
	if err != nil {
		return
	}

	out = OutSetVerified{
		Account: acc,
	}
	return
}

func (p *RepoPostgres) getOne(ctx context.Context, query string, args ...interface{}) (acc Account, err error) {
	err = sqlx.GetContext(ctx, p.Config.Connection, &acc, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
		return
	}

	if err != nil {
		err = fmt.Errorf("query account error: %w", err)
		return
	}

	return
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
