// Package bot contains routers and controllers for bots.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Semior001/vacations/app/vacation"
	"github.com/Semior001/vacations/pkg/botx"
	"github.com/Semior001/vacations/pkg/botx/botmw"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// Ctrl provides routes and controllers for bot updates.
type Ctrl struct {
	Logger         *slog.Logger
	Service        *vacation.Service
	API            botx.API
	AdminIDs       []string
	HandlerTimeout time.Duration
	ThrottleTTL    time.Duration
}

// Routes returns a multiplexer for bot controllers.
func (c *Ctrl) Routes() *botx.Router {
	rtr := botx.NewRouter()

	rtr.Use(
		botmw.RequestID(),
		botmw.AppendRequestIDOnError(),
		botmw.Logger(c.Logger),
		botmw.Timeout(c.HandlerTimeout),
		// Timeout runs the rest of the chain in its own goroutine
		botmw.Recover(c.Logger),
		botmw.Throttle(c.ThrottleTTL, 1000),
		c.ensureUser,
	)

	rtr.NotFound(c.notFound)
	rtr.Add("/start", c.start)
	rtr.Add("/help", c.help)
	rtr.Add("/otpusk", c.add)
	rtr.Add("/vacation", c.add)
	rtr.Add("/myvacation", c.own)
	rtr.Add("/delvacation", c.delete)
	rtr.Add("/allvacations", c.chat)

	rtr.Group(func(rtr *botx.Router) {
		rtr.Use(c.ensureAdmin)

		rtr.Add("/users", c.users)
		rtr.Add("/sweep", c.sweep)
	})

	return rtr
}

// Commands returns the list of commands to publish in the messenger.
func (c *Ctrl) Commands() []botx.Command {
	return []botx.Command{
		{Command: "start", Description: "Start the bot and see what it can do"},
		{Command: "help", Description: "Show help"},
		{Command: "otpusk", Description: "Add a vacation: /otpusk YYYY-MM-DD DAYS"},
		{Command: "myvacation", Description: "Show your vacations"},
		{Command: "delvacation", Description: "Delete a vacation: /delvacation YYYY-MM-DD"},
		{Command: "allvacations", Description: "Show vacations of everyone in this chat"},
	}
}

// NotifyAdmins sends a message to all admins.
func (c *Ctrl) NotifyAdmins(ctx context.Context, msg string) error {
	for _, adminID := range c.AdminIDs {
		if err := c.API.SendMessage(ctx, botx.Response{
			ChatID: adminID,
			Text:   msg,
		}); err != nil {
			return fmt.Errorf("send message to admin: %w", err)
		}
	}

	return nil
}

func (c *Ctrl) notFound(_ context.Context, req botx.Request) ([]botx.Response, error) {
	// group members talk to each other, the bot answers only to its commands
	if cmd, _ := req.Command(); cmd == "" || !req.Chat.Private {
		return nil, nil
	}

	return reply(req, "🤔 I don't know this command, see /help."), nil
}

func (c *Ctrl) ensureAdmin(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		if !lo.Contains(c.AdminIDs, req.From.ID) {
			return nil, nil
		}

		return h(ctx, req)
	}
}

// ensureUser drops messages without an author, e.g. channel posts.
func (c *Ctrl) ensureUser(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		if req.From.ID == "" {
			return nil, nil
		}

		return h(ctx, req)
	}
}

func reply(req botx.Request, text string) []botx.Response {
	return []botx.Response{{
		ChatID:           req.Chat.ID,
		ReplyToMessageID: req.MessageID,
		Text:             text,
	}}
}

func chatID(req botx.Request) (int64, error) {
	id, err := strconv.ParseInt(req.Chat.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse chat id %q: %w", req.Chat.ID, err)
	}
	return id, nil
}

// telegram legacy markdown allows escaping only these
var mdEscaper = strings.NewReplacer(
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	"[", "\\[",
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}
