package respbuilder

import "context"

type metaCtxKey struct{}

// RequestMeta is echoed in every response, TraceID goes to the Tracer-ID header and the error body.
type RequestMeta struct {
	RemoteAddr string
	TraceID    string
}

func WithMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaCtxKey{}, meta)
}

// MetaFromContext returns zero RequestMeta when the request never passed the request logger.
func MetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(metaCtxKey{}).(RequestMeta)
	return meta
}
