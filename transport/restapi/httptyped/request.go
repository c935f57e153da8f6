package httptyped

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/appstore/internal/svc/svcerr"
	"github.com/yusufsyaifudin/ylog"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

// DecodeJSON decodes request body into dst. Every failure is the caller fault.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return svcerr.InvalidInput("request body is nil")
	}

	defer func() {
		if _err := r.Body.Close(); _err != nil {
			ylog.Error(r.Context(), "cannot close request body", ylog.KV("error", _err))
		}
	}()

	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return svcerr.InvalidInput("request body is empty")
	}

	if err != nil {
		return svcerr.InvalidInput("invalid request body: %s", err)
	}

	return nil
}

// DecodeQuery decodes url query into dst using the `schema` struct tag.
func DecodeQuery(r *http.Request, dst interface{}) error {
	if err := queryDecoder.Decode(dst, r.URL.Query()); err != nil {
		return svcerr.InvalidInput("invalid query parameter: %s", err)
	}

	return nil
}

// ParseID parses positive decimal id. Anything else is reported as not ok.
func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// URLParamID reads path parameter name as id.
func URLParamID(r *http.Request, name string) (int64, bool) {
	return ParseID(chi.URLParam(r, name))
}
