// Package obscontext carries request-scoped correlation values.
package obscontext

import "context"

type ctxKey int

const (
	requestIDKey ctxKey = iota
	shopKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithShop records the shop a request prices for.
func WithShop(ctx context.Context, shop string) context.Context {
	return context.WithValue(ctx, shopKey, shop)
}

func ShopFromContext(ctx context.Context) string {
	v, _ := ctx.Value(shopKey).(string)
	return v
}
