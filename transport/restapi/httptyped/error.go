package httptyped

import (
	"net/http"

	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
	"github.com/yusufsyaifudin/ylog"
)

var kindMap = map[svcerr.Kind]respbuilder.ErrKind{
	svcerr.KindInvalidInput: respbuilder.ErrValidation,
	svcerr.KindUnauthorized: respbuilder.ErrUnauthorized,
	svcerr.KindForbidden:    respbuilder.ErrForbidden,
	svcerr.KindNotFound:     respbuilder.ErrResourceNotFound,
	svcerr.KindConflict:     respbuilder.ErrDuplicateEntries,
}

// WriteError translates service error into the http error body.
// Anything which is not *svcerr.Error is logged and answered as internal server error.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind, ok := kindMap[svcerr.KindOf(err)]
	if !ok {
		ylog.Error(r.Context(), "unhandled error", ylog.KV("error", err))
		kind = respbuilder.ErrUnhandled
	}

	respbuilder.WriteError(w, r, kind, err)
}
