package container

import (
	"context"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/yusufsyaifudin/appstore/internal/svc/accountrepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/apprepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/changelogrepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/ratingrepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/sessionrepo"
	"github.com/yusufsyaifudin/appstore/pkg/multidb"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"go.uber.org/multierr"
)

// Repositories is an abstraction layer to list down all repositories.
// This only will connect and save the repository.
// To use this, you must select the db label based on config file
type Repositories interface {
	io.Closer

	Ping(ctx context.Context) error
	AccountRepo(dbLabel string) (accountrepo.Repo, error)
	SessionRepo(dbLabel string) (sessionrepo.Repo, error)
	AppRepo(dbLabel string) (apprepo.Repo, error)
	ChangelogRepo(dbLabel string) (changelogrepo.Repo, error)
	RatingRepo(dbLabel string) (ratingrepo.Repo, error)
}

// RepositoryImpl the real implementation of Repositories
type RepositoryImpl struct {
	dbResourceMap ConfigDatabaseResources `validate:"required,structonly"`
	dbSqlConn     multidb.MultiDB         `validate:"required"` // all database connection
}

// Ensure that RepositoryImpl implements RepositoryImpl
var _ Repositories = (*RepositoryImpl)(nil)

// SetupRepositories return pointer because it heavily used.
// This will initialize all required dependencies to run.
// This will return RepositoryImpl instead Repositories,
// the reason is when SetupRepositories called it must be close in deferred mode, any passed value using interface
// won't let user Close any dependencies during run-time.
func SetupRepositories(conf ConfigDatabaseResources) (*RepositoryImpl, error) {
	sqlDbConfig := multidb.DatabaseResources{}
	for name, conn := range conf {
		sqlDbConfig[name] = multidb.DatabaseResource{
			Disable:  conn.Disable,
			Driver:   multidb.Driver(conn.Driver),
			Postgres: multidb.GoSqlDb(conn.Postgres),
		}
	}

	dbSqlConn, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{Config: sqlDbConfig})
	if err != nil {
		return nil, err
	}

	dep := &RepositoryImpl{
		dbResourceMap: conf,
		dbSqlConn:     dbSqlConn,
	}

	err = validator.Validate(dep)
	if err != nil {
		return nil, err
	}

	return dep, nil
}

// sqlConn return the connection of dbLabel, for now only postgres label is supported by every repository.
func (r *RepositoryImpl) sqlConn(dbLabel, repoName string) (*sqlx.DB, error) {
	repoConnInfo, ok := r.dbResourceMap[dbLabel]
	if !ok {
		return nil, fmt.Errorf("unknown database key %s on %s", dbLabel, repoName)
	}

	sqlDriver := repoConnInfo.Driver
	switch sqlDriver {
	case multidb.Postgres.String():
		return r.dbSqlConn.GetSqlx(multidb.Postgres, dbLabel)

	default:
		return nil, fmt.Errorf("not supported db driver '%s' on label '%s' for %s", sqlDriver, dbLabel, repoName)
	}
}

// SQL returns the raw connection of dbLabel, used by the migrate command.
func (r *RepositoryImpl) SQL(dbLabel string) (*sqlx.DB, error) {
	return r.sqlConn(dbLabel, "migration")
}

func (r *RepositoryImpl) Ping(ctx context.Context) error {
	return r.dbSqlConn.Ping(ctx)
}

func (r *RepositoryImpl) AccountRepo(dbLabel string) (accountrepo.Repo, error) {
	conn, err := r.sqlConn(dbLabel, "accountRepo")
	if err != nil {
		return nil, err
	}

	return accountrepo.Postgres(accountrepo.RepoPostgresConfig{Connection: conn})
}

func (r *RepositoryImpl) SessionRepo(dbLabel string) (sessionrepo.Repo, error) {
	conn, err := r.sqlConn(dbLabel, "sessionRepo")
	if err != nil {
		return nil, err
	}

	return sessionrepo.Postgres(sessionrepo.RepoPostgresConfig{Connection: conn})
}

// AppRepo return apprepo.Repo and return error when connection is closed or nil.
// This should never have caused panic.
func (r *RepositoryImpl) AppRepo(dbLabel string) (apprepo.Repo, error) {
	conn, err := r.sqlConn(dbLabel, "appRepo")
	if err != nil {
		return nil, err
	}

	return apprepo.Postgres(apprepo.RepoPostgresConfig{Connection: conn})
}

func (r *RepositoryImpl) ChangelogRepo(dbLabel string) (changelogrepo.Repo, error) {
	conn, err := r.sqlConn(dbLabel, "changelogRepo")
	if err != nil {
		return nil, err
	}

	return changelogrepo.Postgres(changelogrepo.RepoPostgresConfig{Connection: conn})
}

func (r *RepositoryImpl) RatingRepo(dbLabel string) (ratingrepo.Repo, error) {
	conn, err := r.sqlConn(dbLabel, "ratingRepo")
	if err != nil {
		return nil, err
	}

	return ratingrepo.Postgres(ratingrepo.RepoPostgresConfig{Connection: conn})
}

// Close will close all dependencies.
func (r *RepositoryImpl) Close() error {
	if r == nil {
		return nil
	}

	if r.dbSqlConn == nil {
		return nil
	}

	var err error
	if _err := r.dbSqlConn.Close(); _err != nil {
		err = multierr.Append(err, fmt.Errorf("close db error: %w", _err))
	}

	return err
}
