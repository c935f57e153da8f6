package ratingsvc

import (
	"context"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/appsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
)

// Service records ratings and keeps the app aggregate (rating, totalRatings) in sync.
type Service interface {
	Add(ctx context.Context, in InputAdd) (out OutAdd, err error)
	ListByApp(ctx context.Context, in InputListByApp) (out OutListByApp, err error)
}

type Rating struct {
	ID        int64
	AppID     int64
	AccountID int64
	Score     int
	Review    *locale.Text
	CreatedAt time.Time
}

type InputAdd struct {
	AppID     int64
	AccountID int64
	Score     int
	Review    *locale.Text // optional
}

// OutAdd contains the app with recomputed aggregate.
type OutAdd struct {
	Rating Rating
	App    appsvc.App
}

type InputListByApp struct {
	AppID int64
	Limit int64
	Skip  int64
}

type OutListByApp struct {
	Ratings []Rating
}
