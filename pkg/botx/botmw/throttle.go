package botmw

import (
	"context"
	"time"

	"github.com/Semior001/vacations/pkg/botx"
	cache "github.com/go-pkgz/expirable-cache/v2"
)

// Throttle drops requests with the same text from the same user in the same chat,
// repeated within the ttl.
func Throttle(ttl time.Duration, maxKeys int) botx.Middleware {
	seen := cache.NewCache[string, struct{}]().
		WithTTL(ttl).
		WithMaxKeys(maxKeys)

	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			if ttl <= 0 {
				return next(ctx, req)
			}

			key := req.Chat.ID + "/" + req.From.ID + "/" + req.Text
			if _, ok := seen.Get(key); ok {
				return nil, nil
			}
			seen.Set(key, struct{}{}, ttl)

			return next(ctx, req)
		}
	}
}
