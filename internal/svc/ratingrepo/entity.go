package ratingrepo

import "github.com/yusufsyaifudin/appstore/internal/svc/locale"

// Rating is a single score given by an account. One account may rate the same app many times.
type Rating struct {
	ID        int64           `db:"id" validate:"required"`
	AppID     int64           `db:"app_id" validate:"required"`
	AccountID int64           `db:"account_id" validate:"required"`
	Score     int             `db:"score" validate:"required,min=1,max=5"`
	Review    locale.NullText `db:"review"`
	CreatedAt int64           `db:"created_at" validate:"required"`
}

// Stats is the aggregate of every rating of one app.
type Stats struct {
	Average float64 `db:"average"`
	Total   int64   `db:"total"`
}
