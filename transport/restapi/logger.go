package restapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/satori/uuid"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/appstore/pkg/dataurl"
	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

const (
	requestTimeout = 30 * time.Second

	// maxLoggedString caps non json body written to the access log.
	maxLoggedString = 4096
)

// maskedFields never reach the access log, neither in request nor response body.
var maskedFields = map[string]struct{}{
	"password": {},
}

// maskedHeaders carry credential.
var maskedHeaders = map[string]struct{}{
	"Authorization": {},
	"Cookie":        {},
	"Set-Cookie":    {},
}

func toSimpleMap(h http.Header) map[string]string {
	out := map[string]string{}
	for k, v := range h {
		if _, masked := maskedHeaders[k]; masked {
			out[k] = "***"
			continue
		}

		out[k] = strings.Join(v, " ")
	}

	return out
}

// mask replaces sensitive value in the top level json object.
func mask(obj interface{}) interface{} {
	m, ok := obj.(map[string]interface{})
	if !ok {
		return obj
	}

	for k := range m {
		if _, masked := maskedFields[k]; masked {
			m[k] = "***"
		}
	}

	return m
}

// shortenDataURI walks the decoded json and replaces every inline image with its header only.
func shortenDataURI(obj interface{}) interface{} {
	switch v := obj.(type) {
	case string:
		return dataurl.Shorten(v)
	case map[string]interface{}:
		for k, item := range v {
			v[k] = shortenDataURI(item)
		}
		return v
	case []interface{}:
		for i, item := range v {
			v[i] = shortenDataURI(item)
		}
		return v
	default:
		return obj
	}
}

func truncate(s string) string {
	if len(s) <= maxLoggedString {
		return s
	}

	return fmt.Sprintf("%s...<%d bytes truncated>", s[:maxLoggedString], len(s)-maxLoggedString)
}

// requestLogger logs request and response. Request body bigger than maxBodyBytes is answered with 413
// without calling next.
func requestLogger(skipFunc func(r *http.Request) bool, maxBodyBytes int64, next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if r.Body != nil && maxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}

		if skipFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		var globalErr error
		t1 := time.Now().UTC()
		ctx := r.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		traceID := uuid.NewV4().String()

		propagateData := tracer.LogData{
			RemoteAddr: r.RemoteAddr,
			TraceID:    traceID,
		}

		logTraceData, err := ylog.NewTracer(propagateData, ylog.WithTag("tracer"))
		if err != nil {
			// this should never happen, but once it happens, we need to log in the response
			globalErr = multierr.Append(globalErr, fmt.Errorf("error prepare log tracer data: %w", err))
		}

		responseTracer := respbuilder.RequestMeta{
			RemoteAddr: r.RemoteAddr,
			TraceID:    traceID,
		}

		// Inject logger and response tracer at same time
		if logTraceData != nil {
			ctx = ylog.Inject(ctx, logTraceData)
		}
		ctx = respbuilder.WithMeta(ctx, responseTracer)
		r = r.WithContext(ctx)

		reqBody := make([]byte, 0)
		if r.Body != nil {
			defer func() {
				if _err := r.Body.Close(); _err != nil {
					_err = fmt.Errorf("cannot close request body: %w", _err)
					globalErr = multierr.Append(globalErr, _err)
				}
			}()

			reqBody, err = io.ReadAll(r.Body)

			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				err = fmt.Errorf("request body is larger than %d bytes", tooLarge.Limit)
				respbuilder.WriteError(w, r, respbuilder.ErrPayloadTooLarge, err)
				ylog.Access(ctx, ylog.AccessLogData{
					Path: r.RequestURI,
					Request: ylog.HTTPData{
						Header: toSimpleMap(r.Header),
					},
					Error:       err.Error(),
					ElapsedTime: time.Since(t1).Milliseconds(),
				})
				return
			}

			if err != nil {
				globalErr = multierr.Append(globalErr, fmt.Errorf("error read request body: %w", err))
				reqBody = []byte(``)
			}

			r.Body = io.NopCloser(bytes.NewBuffer(reqBody))
		}

		// non json body (or empty) is logged as is, unless it may contain password
		var reqBodyStr = string(reqBody)
		var reqBodyObj interface{} = map[string]interface{}{}
		if len(reqBody) > 0 {
			if _err := json.Unmarshal(reqBody, &reqBodyObj); _err != nil {
				globalErr = multierr.Append(globalErr, fmt.Errorf("error marshal request body: %w", _err))
				if strings.Contains(strings.ToLower(reqBodyStr), "password") {
					reqBodyStr = "***"
				}
			} else {
				reqBodyObj = shortenDataURI(mask(reqBodyObj))
				reqBodyStr = "" // set to empty string if valid json payload
			}
		}

		reqBodyStr = truncate(reqBodyStr)

		// continue serve, and record the response
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, r)

		respBody := rec.Body.Bytes()

		var respBodyStr = string(respBody)
		var respBodyData interface{}
		if _err := json.Unmarshal(respBody, &respBodyData); _err != nil {
			globalErr = multierr.Append(globalErr, fmt.Errorf("error marshal response body: %w", _err))
		} else {
			respBodyData = shortenDataURI(respBodyData)
			respBodyStr = "" // set to empty string if success as json object
		}

		respBodyStr = truncate(respBodyStr)

		for k, v := range rec.Header() {
			w.Header()[k] = v
		}

		w.WriteHeader(rec.Code)
		_, err = bytes.NewReader(respBody).WriteTo(w)
		if err != nil {
			globalErr = multierr.Append(globalErr, fmt.Errorf("error write response body: %w", err))
		}

		errStr := ""
		if globalErr != nil {
			errStr = globalErr.Error()
		}

		// log request
		ylog.Access(ctx, ylog.AccessLogData{
			Path: r.RequestURI,
			Request: ylog.HTTPData{
				Header:     toSimpleMap(r.Header),
				DataObject: reqBodyObj,
				DataString: reqBodyStr,
			},
			Response: ylog.HTTPData{
				Header:     toSimpleMap(rec.Header()),
				DataObject: respBodyData,
				DataString: respBodyStr,
			},
			Error:       errStr,
			ElapsedTime: time.Since(t1).Milliseconds(),
		})
	}
}
