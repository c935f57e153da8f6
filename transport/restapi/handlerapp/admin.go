package handlerapp

import (
	"net/http"

	"github.com/yusufsyaifudin/appstore/internal/svc/appsvc"
	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httptyped"
)

type AdminListReq struct {
	Status string `schema:"status"`
	Limit  int64  `schema:"limit"`
	Skip   int64  `schema:"skip"`
}

// AdminListApps is the moderation queue, pending apps unless status says otherwise.
// Path          : GET /admin/apps
// Request Query : AdminListReq
// Response      : httptyped.AppsResp
func (h *Handler) AdminListApps() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var query AdminListReq
		if err := httptyped.DecodeQuery(r, &query); err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		out, err := h.Config.AppService.ListByStatus(r.Context(), appsvc.InputListByStatus{
			Status: query.Status,
			Limit:  query.Limit,
			Skip:   query.Skip,
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
