// Package cmd contains commands for the application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Semior001/vacations/app/bot"
	"github.com/Semior001/vacations/app/store"
	"github.com/Semior001/vacations/app/vacation"
	"github.com/Semior001/vacations/pkg/botx"
	"github.com/Semior001/vacations/pkg/botx/botapi"
	"github.com/Semior001/vacations/pkg/logx"
	"github.com/go-pkgz/requester"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// Run is a command to run the bot.
type Run struct {
	Bot struct {
		Timeout  time.Duration `long:"timeout" env:"TIMEOUT" default:"6m" description:"timeout for handling a single message"`
		Workers  int           `long:"workers" env:"WORKERS" default:"10" description:"number of concurrent message handlers"`
		Throttle time.Duration `long:"throttle" env:"THROTTLE" default:"1s" description:"ignore repeated messages within this period, 0 to disable"`

		Telegram struct {
			Token   string        `long:"token" env:"TOKEN" required:"true" description:"telegram token"`
			Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"90s" description:"timeout for telegram API calls"`
		} `group:"telegram" namespace:"telegram" env-namespace:"TELEGRAM"`

		AdminIDs []string `long:"admin-ids" env:"ADMIN_IDS" env-delim:"," description:"admin IDs"`
	} `group:"bot" namespace:"bot" env-namespace:"BOT"`

	Reminder struct {
		Interval time.Duration `long:"interval" env:"INTERVAL" default:"24h" description:"interval between reminder sweeps"`
		Schedule string        `long:"schedule" env:"SCHEDULE" description:"cron expression for reminder sweeps, overrides interval"`
		LeadDays int           `long:"lead-days" env:"LEAD_DAYS" default:"7" description:"days before the vacation to remind"`
		CatchUp  bool          `long:"catch-up" env:"CATCH_UP" description:"remind about missed vacations within lead days"`
	} `group:"reminder" namespace:"reminder" env-namespace:"REMINDER"`

	Store store.Options `group:"store" namespace:"store" env-namespace:"STORE"`
}

// Execute runs the command.
func (r Run) Execute(_ []string) error {
	lg := slog.Default()

	schedule, err := vacation.Schedule(r.Reminder.Schedule, r.Reminder.Interval)
	if err != nil {
		return fmt.Errorf("make reminder schedule: %w", err)
	}

	s, err := store.Open(r.Store)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := s.Close(); err != nil {
			lg.Error("close store", slog.Any("err", err))
		}
	}()

	rq := requester.New(
		http.Client{Timeout: r.Bot.Telegram.Timeout},
		logx.LoggingRoundTripper(lg.With(slog.String("prefix", "telegram-http")), logx.RoundTripperOpts{
			Level:   slog.LevelDebug,
			Secrets: []string{r.Bot.Telegram.Token},
		}),
	)

	api, err := botapi.NewTelegram(
		lg.With(slog.String("prefix", "telegram")),
		r.Bot.Telegram.Token,
		100,
		rq.Client(),
	)
	if err != nil {
		return fmt.Errorf("make telegram controller: %w", err)
	}

	svc := vacation.NewService(
		lg.With(slog.String("prefix", "vacation")),
		store.NewLocked(s),
		vacation.Params{LeadDays: r.Reminder.LeadDays, CatchUp: r.Reminder.CatchUp},
	)

	ctrl := &bot.Ctrl{
		Logger:         lg.With(slog.String("prefix", "bot")),
		Service:        svc,
		API:            api,
		AdminIDs:       r.Bot.AdminIDs,
		HandlerTimeout: r.Bot.Timeout,
		ThrottleTTL:    r.Bot.Throttle,
	}

	b := botx.NewBot(
		ctrl.Routes().Handle,
		api,
		botx.WithLogger(lg.With(slog.String("prefix", "botx"))),
		botx.WithWorkers(r.Bot.Workers),
		botx.WithSendTimeout(r.Bot.Telegram.Timeout),
	)

	sweeper := vacation.NewSweeper(lg.With(slog.String("prefix", "sweeper")), svc, ctrl, schedule)

	if err = api.SetCommands(context.Background(), ctrl.Commands()); err != nil {
		// the bot works without the commands menu
		lg.Warn("failed to set bot commands", slog.Any("err", err))
	}

	if err = ctrl.NotifyAdmins(context.Background(), "bot started"); err != nil {
		return fmt.Errorf("notify admins about started bot: %w", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case sig := <-sig:
			slog.Warn("caught signal, stopping", slog.String("signal", sig.String()))
			stop()
			return ctx.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	ewg.Go(func() error {
		lg.Info("starting bot")
		b.Run(ctx)
		lg.Warn("bot stopped")
		return nil
	})
	ewg.Go(func() error {
		lg.Info("starting reminder sweeper", slog.Int("lead_days", svc.LeadDays))
		err := sweeper.Run(ctx)
		lg.Warn("reminder sweeper stopped")
		return err
	})

	// api lives longer than the context to notify admins about stopping
	apiStopped := make(chan struct{})
	go func() {
		lg.Info("starting telegram api")
		api.Run()
		lg.Warn("telegram api stopped listening for updates")
		close(apiStopped)
	}()

	if err := ewg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		msg := fmt.Sprintf("bot stopped with error: %v", err)

		if sendErr := ctrl.NotifyAdmins(context.Background(), msg); sendErr != nil {
			return fmt.Errorf("notify admins about stopped bot (for reason: %v): %w", err, sendErr)
		}

		return err
	}

	if err := ctrl.NotifyAdmins(context.Background(), "bot stopped"); err != nil {
		return fmt.Errorf("notify admins about stopped bot: %w", err)
	}

	lg.Info("stopping telegram api")
	api.Stop()
	<-apiStopped
	lg.Info("telegram api stopped")

	return nil
}
