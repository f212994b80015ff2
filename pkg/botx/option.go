package botx

import (
	"time"

	"golang.org/x/exp/slog"
)

// Options defines options for Bot.
type Options struct {
	Workers     int
	Logger      *slog.Logger
	SendTimeout time.Duration
}

// Option defines a function that configures Bot.
type Option func(*Options)

// WithWorkers sets the number of concurrent update handlers, at least one.
func WithWorkers(workers int) Option {
	return func(o *Options) {
		if workers > 0 {
			o.Workers = workers
		}
	}
}

// WithLogger sets the logger to use.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithSendTimeout limits the time to deliver every response.
// Zero means no limit besides the context of the bot.
func WithSendTimeout(d time.Duration) Option {
	return func(o *Options) { o.SendTimeout = d }
}
