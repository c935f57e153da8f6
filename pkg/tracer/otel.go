package tracer

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/yusufsyaifudin/appstore/pkg/validator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerAppName = "appstore"

// LogData is propagated into ylog tracer, so every log line written with the same context carry it.
type LogData struct {
	RemoteAddr string `json:"remote_addr,omitempty"`
	TraceID    string `json:"trace_id,omitempty"`
	AccountID  string `json:"account_id,omitempty"`
}

func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(tracerAppName).Start(ctx, spanName, opts...)
}

// InitTraceProvider registers global tracer provider which batch the span into exp.
func InitTraceProvider(exp sdktrace.SpanExporter, serviceName, environment string) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			attribute.String("environment", environment),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp
}

type MiddlewareConfig struct {
	TracerName     string                        `validate:"required"`
	ServiceName    string                        `validate:"required"`
	SkipFunc       func(r *http.Request) bool    `validate:"-"`
	TracerProvider trace.TracerProvider          `validate:"required"`
	TextPropagator propagation.TextMapPropagator `validate:"required"`
}

func Middleware(cfg MiddlewareConfig, next http.Handler) http.HandlerFunc {
	if _err := validator.Validate(cfg); _err != nil {
		return func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		}
	}

	if cfg.SkipFunc == nil {
		cfg.SkipFunc = func(r *http.Request) bool {
			return false
		}
	}

	fn := func(w http.ResponseWriter, r *http.Request) {
		if cfg.SkipFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ctx = cfg.TextPropagator.Extract(ctx, propagation.HeaderCarrier(r.Header))

		opts := []trace.SpanStartOption{
			trace.WithAttributes(semconv.NetAttributesFromHTTPRequest("tcp", r)...),
			trace.WithAttributes(semconv.EndUserAttributesFromHTTPRequest(r)...),
			trace.WithAttributes(semconv.HTTPServerAttributesFromHTTPRequest(cfg.ServiceName, r.URL.Path, r)...),
			trace.WithSpanKind(trace.SpanKindServer),
		}

		spanName := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		newCtx, span := cfg.TracerProvider.Tracer(cfg.TracerName).Start(ctx, spanName, opts...)
		defer span.End()

		respRec := httptest.NewRecorder()
		r = r.WithContext(newCtx)
		next.ServeHTTP(respRec, r)

		attrs := semconv.HTTPAttributesFromHTTPStatusCode(respRec.Code)
		spanStatus, spanMessage := semconv.SpanStatusFromHTTPStatusCodeAndSpanKind(respRec.Code, trace.SpanKindServer)
		span.SetAttributes(attrs...)
		span.SetStatus(spanStatus, spanMessage)

		for k, v := range respRec.Header() {
			w.Header()[k] = v
		}

		// inject to header response
		cfg.TextPropagator.Inject(newCtx, propagation.HeaderCarrier(w.Header()))

		w.WriteHeader(respRec.Code)
		if _, _err := bytes.NewReader(respRec.Body.Bytes()).WriteTo(w); _err != nil {
			_err = fmt.Errorf("write response body error: %w", _err)
			span.RecordError(_err)
		}
	}

	return fn
}
