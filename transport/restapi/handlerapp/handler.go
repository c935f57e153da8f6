package handlerapp

import (
	"net/http"

	"github.com/yusufsyaifudin/appstore/internal/svc/appsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httpauth"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httptyped"
)

type HandlerConfig struct {
	AppService appsvc.Service `validate:"required"`
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

func errAppNotFound() error {
	return svcerr.NotFound("app not found")
}

type ListAppsReq struct {
	Featured bool   `schema:"featured"`
	Category string `schema:"category"`
	Query    string `schema:"q"`
	Sort     string `schema:"sort"`
	Limit    int64  `schema:"limit"`
	Skip     int64  `schema:"skip"`
}

// ListApps lists approved apps.
// Path          : GET /apps
// Request Query : ListAppsReq
// Response      : httptyped.AppsResp
func (h *Handler) ListApps() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var query ListAppsReq
		if err := httptyped.DecodeQuery(r, &query); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		out, err := h.Config.AppService.List(r.Context(), appsvc.InputList{
			Featured: query.Featured,
			Category: query.Category,
			Query:    query.Query,
			Sort:     query.Sort,
			Limit:    query.Limit,
			Skip:     query.Skip,
		})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.AppsResp{
			Apps: httptyped.AppsFromSvc(out.Apps),
		})
	}
}

// GetApp get one by id, whatever its status.
// Path          : GET /apps/{id}
// Response      : httptyped.AppResp
func (h *Handler) GetApp() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := httptyped.URLParamID(r, "id")
		if !ok {
			httptyped.WriteError(w, r, errAppNotFound())
			return
		}

		out, err := h.Config.AppService.Get(r.Context(), appsvc.InputGet{ID: id})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.AppResp{
			App: httptyped.AppFromSvc(out.App),
		})
	}
}

// AppReq is the submission form. Status, featured and the counters are not accepted here.
type AppReq struct {
	Name             locale.Text `json:"name"`
	Description      locale.Text `json:"description"`
	ShortDescription locale.Text `json:"shortDescription"`
	Requirements     locale.Text `json:"requirements"`
	Category         string      `json:"category"`
	Version          string      `json:"version"`
	Icon             string      `json:"icon"`
	Screenshots      []string    `json:"screenshots"`
	DownloadURL      string      `json:"downloadUrl"`
	WebsiteURL       string      `json:"websiteUrl"`
	SupportURL       string      `json:"supportUrl"`
	Size             string      `json:"size"`
	Tags             []string    `json:"tags"`
}

// CreateApp submits new app owned by the caller, it always starts as pending.
// Path         : POST /apps/developer
// Request Body : AppReq
// Response     : httptyped.AppResp
func (h *Handler) CreateApp() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := httpauth.AccountFromContext(r.Context())
		if !ok {
			httptyped.WriteError(w, r, svcerr.Unauthorized("unauthorized"))
			return
		}

		var reqBody AppReq
		if err := httptyped.DecodeJSON(r, &reqBody); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		out, err := h.Config.AppService.Create(r.Context(), appsvc.InputCreate{
			Actor: acc.Actor(),
			Fields: appsvc.AppFields{
				Name:             reqBody.Name,
				Description:      reqBody.Description,
				ShortDescription: reqBody.ShortDescription,
				Requirements:     reqBody.Requirements,
				Category:         reqBody.Category,
				Version:          reqBody.Version,
				Icon:             reqBody.Icon,
				Screenshots:      reqBody.Screenshots,
				DownloadURL:      reqBody.DownloadURL,
				WebsiteURL:       reqBody.WebsiteURL,
				SupportURL:       reqBody.SupportURL,
				Size:             reqBody.Size,
				Tags:             reqBody.Tags,
			},
		})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusCreated, w, r, httptyped.AppResp{
			App: httptyped.AppFromSvc(out.App),
		})
	}
}

// ListMyApps lists every app owned by the caller, any status.
// Path          : GET /apps/developer
// Response      : httptyped.AppsResp
func (h *Handler) ListMyApps() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := httpauth.AccountFromContext(r.Context())
		if !ok {
			httptyped.WriteError(w, r, svcerr.Unauthorized("unauthorized"))
			return
		}

		out, err := h.Config.AppService.ListByOwner(r.Context(), appsvc.InputListByOwner{AccountID: acc.ID})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.AppsResp{
			Apps: httptyped.AppsFromSvc(out.Apps),
		})
	}
}

// PatchAppReq only changes the fields present in the body.
// Status and featured are ignored unless the caller is admin.
type PatchAppReq struct {
	Name             *locale.Text `json:"name,omitempty"`
	Description      *locale.Text `json:"description,omitempty"`
	ShortDescription *locale.Text `json:"shortDescription,omitempty"`
	Requirements     *locale.Text `json:"requirements,omitempty"`
	Category         *string      `json:"category,omitempty"`
	Version          *string      `json:"version,omitempty"`
	Icon             *string      `json:"icon,omitempty"`
	Screenshots      *[]string    `json:"screenshots,omitempty"`
	DownloadURL      *string      `json:"downloadUrl,omitempty"`
	WebsiteURL       *string      `json:"websiteUrl,omitempty"`
	SupportURL       *string      `json:"supportUrl,omitempty"`
	Size             *string      `json:"size,omitempty"`
	Tags             *[]string    `json:"tags,omitempty"`
	Status           *string      `json:"status,omitempty"`
	Featured         *bool        `json:"featured,omitempty"`
}

// PatchApp partially updates an app owned by the caller (or any app when admin).
// Path         : PUT /apps/{id}
// Request Body : PatchAppReq
// Response     : httptyped.AppResp
func (h *Handler) PatchApp() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := httpauth.AccountFromContext(r.Context())
		if !ok {
			httptyped.WriteError(w, r, svcerr.Unauthorized("unauthorized"))
			return
		}

		id, ok := httptyped.URLParamID(r, "id")
		if !ok {
			httptyped.WriteError(w, r, errAppNotFound())
			return
		}

		var reqBody PatchAppReq
		if err := httptyped.DecodeJSON(r, &reqBody); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		out, err := h.Config.AppService.Update(r.Context(), appsvc.InputUpdate{
			ID:    id,
			Actor: acc.Actor(),
			Patch: appsvc.AppPatch{
				Name:             reqBody.Name,
				Description:      reqBody.Description,
				ShortDescription: reqBody.ShortDescription,
				Requirements:     reqBody.Requirements,
				Category:         reqBody.Category,
				Version:          reqBody.Version,
				Icon:             reqBody.Icon,
				Screenshots:      reqBody.Screenshots,
				DownloadURL:      reqBody.DownloadURL,
				WebsiteURL:       reqBody.WebsiteURL,
				SupportURL:       reqBody.SupportURL,
				Size:             reqBody.Size,
				Tags:             reqBody.Tags,
				Status:           reqBody.Status,
				Featured:         reqBody.Featured,
			},
		})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.AppResp{
			App: httptyped.AppFromSvc(out.App),
		})
	}
}

// DelApp deletes an app owned by the caller (or any app when admin).
// Path          : DELETE /apps/{id}
// Response      : httptyped.MessageResp
func (h *Handler) DelApp() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := httpauth.AccountFromContext(r.Context())
		if !ok {
			httptyped.WriteError(w, r, svcerr.Unauthorized("unauthorized"))
			return
		}

		id, ok := httptyped.URLParamID(r, "id")
		if !ok {
			httptyped.WriteError(w, r, errAppNotFound())
			return
		}

		_, err := h.Config.AppService.Delete(r.Context(), appsvc.InputDelete{ID: id, Actor: acc.Actor()})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.MessageResp{
			Message: "app deleted successfully",
		})
	}
}

// Download counts one download. It is public.
// Path          : POST /apps/{id}/download
// Response      : httptyped.DownloadResp
func (h *Handler) Download() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := httptyped.URLParamID(r, "id")
		if !ok {
			httptyped.WriteError(w, r, errAppNotFound())
			return
		}

		out, err := h.Config.AppService.IncrementDownloads(r.Context(), appsvc.InputIncrementDownloads{ID: id})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.DownloadResp{
			Message:   "download count incremented",
			Downloads: out.Downloads,
		})
	}
}
