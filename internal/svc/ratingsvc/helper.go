package ratingsvc

import (
	"math"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/ratingrepo"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
)

// ErrInvalidScore is returned when the score is not a whole star between 1 and 5.
var ErrInvalidScore = svcerr.InvalidInput("rating must be an integer between 1 and 5")

// RoundRating rounds mean score to one decimal place, i.e: 3.666 becomes 3.7.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func RatingFromRepo(r ratingrepo.Rating) Rating {
	out := Rating{
		ID:        r.ID,
		AppID:     r.AppID,
		AccountID: r.AccountID,
		Score:     r.Score,
		CreatedAt: time.UnixMicro(r.CreatedAt).UTC(),
	}

	if r.Review.Valid {
		review := r.Review.Text
		out.Review = &review
	}

	return out
}
