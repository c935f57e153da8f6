package handlerchangelog

import (
	"net/http"
	"strings"

	"github.com/yusufsyaifudin/appstore/internal/svc/changelogsvc"
	"github.com/yusufsyaifudin/appstore/internal/svc/locale"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httpauth"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httptyped"
)

type HandlerConfig struct {
	ChangelogService changelogsvc.Service `validate:"required"`
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

// ListByApp is the public release history of an app.
// Path          : GET /apps/{id}/changelogs
// Response      : httptyped.ChangelogsResp
func (h *Handler) ListByApp() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		// unknown or malformed app id simply has no history
		appID, _ := httptyped.URLParamID(r, "id")

		out, err := h.Config.ChangelogService.ListByApp(r.Context(), changelogsvc.InputListByApp{AppID: appID})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.ChangelogsResp{
			Changelogs: httptyped.ChangelogsFromSvc(out.Changelogs),
		})
	}
}

type ListReq struct {
	AppID string `schema:"appId"`
}

// List returns the changelogs of appId when set, otherwise every changelog written by the caller.
// Path          : GET /changelogs
// Request Query : ListReq
// Response      : httptyped.ChangelogsResp
func (h *Handler) List() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := httpauth.AccountFromContext(r.Context())
		if !ok {
			httptyped.WriteError(w, r, svcerr.Unauthorized("unauthorized"))
			return
		}

		var query ListReq
		if err := httptyped.DecodeQuery(r, &query); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		var (
			out changelogsvc.OutList
			err error
		)

		if strings.TrimSpace(query.AppID) != "" {
			appID, _ := httptyped.ParseID(query.AppID)
			out, err = h.Config.ChangelogService.ListByApp(r.Context(), changelogsvc.InputListByApp{AppID: appID})
		} else {
			out, err = h.Config.ChangelogService.ListByDeveloper(r.Context(), changelogsvc.InputListByDeveloper{AccountID: acc.ID})
		}

		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.ChangelogsResp{
			Changelogs: httptyped.ChangelogsFromSvc(out.Changelogs),
		})
	}
}

type CreateReq struct {
	AppID       string      `json:"appId"`
	Version     string      `json:"version"`
	Title       locale.Text `json:"title"`
	Content     locale.Text `json:"content"`
	Type        string      `json:"type"`
	ReleaseDate string      `json:"releaseDate"`
}

// Create adds new changelog to an app owned by the caller.
// Path         : POST /changelogs
// Request Body : CreateReq
// Response     : httptyped.ChangelogResp
func (h *Handler) Create() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := httpauth.AccountFromContext(r.Context())
		if !ok {
			httptyped.WriteError(w, r, svcerr.Unauthorized("unauthorized"))
			return
		}

		var reqBody CreateReq
		if err := httptyped.DecodeJSON(r, &reqBody); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		var appID int64
		if strings.TrimSpace(reqBody.AppID) != "" {
			if appID, ok = httptyped.ParseID(reqBody.AppID); !ok {
				httptyped.WriteError(w, r, svcerr.NotFound("app not found"))
				return
			}
		}

		out, err := h.Config.ChangelogService.Create(r.Context(), changelogsvc.InputCreate{
			Actor:       acc.Actor(),
			AppID:       appID,
			Version:     reqBody.Version,
			Title:       reqBody.Title,
			Content:     reqBody.Content,
			Type:        reqBody.Type,
			ReleaseDate: reqBody.ReleaseDate,
		})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusCreated, w, r, httptyped.ChangelogResp{
			Changelog: httptyped.ChangelogFromSvc(out.Changelog),
		})
	}
}

type PatchReq struct {
	Version     *string      `json:"version,omitempty"`
	Title       *locale.Text `json:"title,omitempty"`
	Content     *locale.Text `json:"content,omitempty"`
	Type        *string      `json:"type,omitempty"`
	ReleaseDate *string      `json:"releaseDate,omitempty"`
}

// Patch partially updates a changelog.
// Path         : PUT /changelogs/{id}
// Request Body : PatchReq
// Response     : httptyped.ChangelogResp
func (h *Handler) Patch() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := httpauth.AccountFromContext(r.Context())
		if !ok {
			httptyped.WriteError(w, r, svcerr.Unauthorized("unauthorized"))
			return
		}

		id, ok := httptyped.URLParamID(r, "id")
		if !ok {
			httptyped.WriteError(w, r, svcerr.NotFound("changelog not found"))
			return
		}

		var reqBody PatchReq
		if err := httptyped.DecodeJSON(r, &reqBody); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		out, err := h.Config.ChangelogService.Update(r.Context(), changelogsvc.InputUpdate{
			ID:    id,
			Actor: acc.Actor(),
			Patch: changelogsvc.Patch{
				Version:     reqBody.Version,
				Title:       reqBody.Title,
				Content:     reqBody.Content,
				Type:        reqBody.Type,
				ReleaseDate: reqBody.ReleaseDate,
			},
		})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.ChangelogResp{
			Changelog: httptyped.ChangelogFromSvc(out.Changelog),
		})
	}
}

// Delete removes a changelog.
// Path          : DELETE /changelogs/{id}
// Response      : httptyped.MessageResp
func (h *Handler) Delete() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, ok := httpauth.AccountFromContext(r.Context())
		if !ok {
			httptyped.WriteError(w, r, svcerr.Unauthorized("unauthorized"))
			return
		}

		id, ok := httptyped.URLParamID(r, "id")
		if !ok {
			httptyped.WriteError(w, r, svcerr.NotFound("changelog not found"))
			return
		}

		_, err := h.Config.ChangelogService.Delete(r.Context(), changelogsvc.InputDelete{ID: id, Actor: acc.Actor()})
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		respbuilder.WriteJSON(http.StatusOK, w, r, httptyped.MessageResp{
			Message: "changelog deleted successfully",
		})
	}
}
