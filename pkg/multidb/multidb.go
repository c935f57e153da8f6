package multidb

import (
	"context"
	"io"

	"github.com/jmoiron/sqlx"
)

// MultiDB holds every sql connection keyed by its label in the config file.
type MultiDB interface {
	GetSqlx(driver Driver, key string) (*sqlx.DB, error)
	Ping(ctx context.Context) error
	io.Closer
}
