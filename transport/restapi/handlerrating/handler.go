package handlerrating

import (
	"math"
	"net/http"

	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/ratingsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httpauth"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httptyped"
)

type HandlerConfig struct {
	RatingService ratingsvc.Service `validate:"required"`
}

type Handler struct {
	Config HandlerConfig
}

func NewHandler(conf HandlerConfig) (*Handler, error) {
	err := validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	return &Handler{Config: conf}, nil
}

type ListReq struct {
	Limit int64 `schema:"limit"`
	Skip  int64 `schema:"skip"`
}

// List returns the newest ratings of an app.
// Path          : GET /apps/{id}/ratings
// Request Query : ListReq
// Response      : httptyped.RatingsResp
func (h *Handler) List() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		appID, ok := httptyped.URLParamID(r, "id")
		if !ok {
			httptyped.WriteError(w, r, svcerr.NotFound("app not found"))
			return
		}

		var query ListReq
		if err := httptyped.DecodeQuery(r, &query); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		out, err := h.Config.RatingService.ListByApp(r.Context(), ratingsvc.InputListByApp{
			AppID: appID,
			Limit: query.Limit,
			Skip:  query.Skip,
		})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		ratings := make([]httptyped.Rating, 0, len(out.Ratings))
		for _, rating := range out.Ratings {
			ratings = append(ratings, httptyped.RatingFromSvc(rating))
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.RatingsResp{Ratings: ratings})
	}
}

// AddReq.Rating is a number in json, a fractional one is rejected.
type AddReq struct {
	Rating float64      `json:"rating"`
	Review *locale.Text `json:"review,omitempty"`
}

// Add rates an app as the caller and returns the app with new aggregate.
// Path         : POST /apps/{id}/ratings
// Request Body : AddReq
// Response     : httptyped.RatingResp
func (h *Handler) Add() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := httpauth.AccountFromContext(r.Context())
		if !ok {
			httptyped.WriteError(w, r, svcerr.Unauthorized("unauthorized"))
			return
		}

		appID, ok := httptyped.URLParamID(r, "id")
		if !ok {
			httptyped.WriteError(w, r, svcerr.NotFound("app not found"))
			return
		}

		var reqBody AddReq
		if err := httptyped.DecodeJSON(r, &reqBody); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		if reqBody.Rating != math.Trunc(reqBody.Rating) || reqBody.Rating < 1 || reqBody.Rating > 5 {
			httptyped.WriteError(w, r, ratingsvc.ErrInvalidScore)
			return
		}

		out, err := h.Config.RatingService.Add(r.Context(), ratingsvc.InputAdd{
			AppID:     appID,
			AccountID: acc.ID,
			Score:     int(reqBody.Rating),
			Review:    reqBody.Review,
		})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusCreated, w, r, httptyped.RatingResp{
			Rating: httptyped.RatingFromSvc(out.Rating),
			App:    httptyped.AppFromSvc(out.App),
		})
	}
}
