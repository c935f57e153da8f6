package accountrepo

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*RepoPostgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo, err := Postgres(RepoPostgresConfig{
		Connection: sqlx.NewDb(db, "postgres"),
	})
	require.NoError(t, err)
	return repo, mock
}

func accountRows(accounts ...Account) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "name", "role", "language", "avatar", "is_verified", "created_at", "updated_at",
	})

	for _, a := range accounts {
		rows.AddRow(a.ID, a.Email, a.PasswordHash, a.Name, a.Role, a.Language, a.Avatar, a.IsVerified, a.CreatedAt, a.UpdatedAt)
	}

	return rows
}

func sampleAccount() Account {
	return Account{
		ID:           1,
		Email:        "dev@example.com",
		PasswordHash: "$2a$12$hash",
		Name:         "Dev",
		Role:         "developer",
		Language:     "en",
		CreatedAt:    1700000000000000,
		UpdatedAt:    1700000000000000,
	}
}

func TestPostgres(t *testing.T) {
	_, err := Postgres(RepoPostgresConfig{})
	assert.Error(t, err)
}

func TestRepoPostgres_Create(t *testing.T) {
	t.Run("email lowercased", func(t *testing.T) {
		repo, mock := newMock(t)

		acc := sampleAccount()
		acc.Email = " Dev@Example.COM "

		mock.ExpectQuery(regexp.QuoteMeta(sqlCreateAccount)).
			WithArgs(acc.ID, "dev@example.com", acc.PasswordHash, acc.Name, acc.Role, acc.Language, "", false,
				acc.CreatedAt, acc.UpdatedAt).
			WillReturnRows(accountRows(sampleAccount()))

		out, err := repo.Create(context.Background(), InputCreate{Account: acc})
		assert.NoError(t, err)
		assert.Equal(t, "dev@example.com", out.Account.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta(sqlCreateAccount)).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.Create(context.Background(), InputCreate{Account: sampleAccount()})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("invalid role", func(t *testing.T) {
		repo, _ := newMock(t)

		acc := sampleAccount()
		acc.Role = "root"
		_, err := repo.Create(context.Background(), InputCreate{Account: acc})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestRepoPostgres_GetByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta(sqlGetAccountByEmail)).
			WithArgs("dev@example.com").
			WillReturnRows(accountRows(sampleAccount()))

		out, err := repo.GetByEmail(context.Background(), InputGetByEmail{Email: "DEV@example.com"})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), out.Account.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(regexp.QuoteMeta(sqlGetAccountByEmail)).
			WithArgs("nobody@example.com").
			WillReturnRows(accountRows())

		_, err := repo.GetByEmail(context.Background(), InputGetByEmail{Email: "nobody@example.com"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepoPostgres_GetByID(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(sqlGetAccountByID)).
		WithArgs(int64(1)).
		WillReturnRows(accountRows(sampleAccount()))

	out, err := repo.GetByID(context.Background(), InputGetByID{ID: 1})
	assert.NoError(t, err)
	assert.Equal(t, "Dev", out.Account.Name)

	_, err = repo.GetByID(context.Background(), InputGetByID{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRepoPostgres_Update(t *testing.T) {
	repo, mock := newMock(t)

	acc := sampleAccount()
	acc.Name = "New Name"
	acc.Language = "th"
	acc.UpdatedAt = 1700000000000001

	mock.ExpectQuery(regexp.QuoteMeta(sqlUpdateAccount)).
		WithArgs(acc.ID, "New Name", "th", "", acc.UpdatedAt).
		WillReturnRows(accountRows(acc))

	out, err := repo.Update(context.Background(), InputUpdate{Account: acc})
	assert.NoError(t, err)
	assert.Equal(t, "th", out.Account.Language)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoPostgres_SetVerified(t *testing.T) {
	repo, mock := newMock(t)

	acc := sampleAccount()
	acc.IsVerified = true

	mock.ExpectQuery(regexp.QuoteMeta(sqlSetAccountVerified)).
		WithArgs(acc.ID, int64(5)).
		WillReturnRows(accountRows(acc))

	out, err := repo.SetVerified(context.Background(), InputSetVerified{ID: acc.ID, UpdatedAt: 5})
	assert.NoError(t, err)
	assert.True(t, out.Account.IsVerified)
}
