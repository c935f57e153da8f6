package multidb

import (
	"context"

	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/yusufsyaifudin/ylog"
)

// QueryLogger routes sqldb-logger output to ylog, so query log carries the request trace id.
// Failed queries are logged as error, everything else as debug.
type QueryLogger struct {
	Label string
}

func (q *QueryLogger) Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	if level == sqldblogger.LevelError {
		ylog.Error(ctx, msg, ylog.KV("db", q.Label), ylog.KV("sql", data))
		return
	}

	ylog.Debug(ctx, msg, ylog.KV("db", q.Label), ylog.KV("sql", data))
}

var _ sqldblogger.Logger = (*QueryLogger)(nil)
