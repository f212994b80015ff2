package botmw

import (
	"context"
	"fmt"

	"github.com/Semior001/vacations/pkg/botx"
	"github.com/Semior001/vacations/pkg/logx"
	"github.com/google/uuid"
)

// RequestID is a middleware that adds request id to context.
func RequestID() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			id := uuid.New().String()
			ctx = logx.ContextWithRequestID(ctx, id)

			return next(ctx, req)
		}
	}
}

// AppendRequestIDOnError is a middleware that tells the requester about the failure
// and the request id to look for in logs.
func AppendRequestIDOnError() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) (resps []botx.Response, err error) {
			resps, err = next(ctx, req)
			if err == nil {
				return resps, nil
			}

			reqID, _ := logx.RequestIDFromContext(ctx)
			suffix := fmt.Sprintf("\n\nRequest ID: `%s`", reqID)

			for i := range resps {
				if resps[i].ChatID == req.Chat.ID {
					resps[i].Text += suffix
					return resps, err
				}
			}

			resps = append(resps, botx.Response{
				ChatID:           req.Chat.ID,
				ReplyToMessageID: req.MessageID,
				Text:             "Something went wrong, please try again later or ask the bot admin." + suffix,
			})

			return resps, err
		}
	}
}
