package types

type ContextKey string

const (
	CtxRequestID ContextKey = "ctx_request_id"

	HeaderRequestID = "X-Request-ID"
)

// RequestIDFromContext returns the request id stamped by the request
// middleware, empty when absent.
func RequestIDFromContext(ctx interface{ Value(any) any }) string {
	if v, ok := ctx.Value(CtxRequestID).(string); ok {
		return v
	}
	return ""
}
