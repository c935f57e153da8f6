package httptyped

import (
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/ratingsvc"
)

type Rating struct {
	ID        int64        `json:"id,string"`
	AppID     int64        `json:"appId,string"`
	AccountID int64        `json:"userId,string"`
	Rating    int          `json:"rating"`
	Review    *locale.Text `json:"review,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

func RatingFromSvc(r ratingsvc.Rating) Rating {
	return Rating{
		ID:        r.ID,
		AppID:     r.AppID,
		AccountID: r.AccountID,
		Rating:    r.Score,
		Review:    r.Review,
		CreatedAt: r.CreatedAt,
	}
}

type RatingsResp struct {
	Ratings []Rating `json:"ratings"`
}

// RatingResp returns the app too, so client can refresh the aggregate without another request.
type RatingResp struct {
	Rating Rating `json:"rating"`
	App    App    `json:"app"`
}
