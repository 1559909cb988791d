package httpx

import "context"

type ctxKey string

const CtxKeyAccountID ctxKey = "account_id"

// WithAccountID attaches the authenticated account id, used for per-user rate
// limiting and request logs.
func WithAccountID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxKeyAccountID, id)
}

// AccountIDFromContext returns the account id set by WithAccountID, or "".
func AccountIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyAccountID).(string)
	return id
}
