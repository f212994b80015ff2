// Package botapi contains implementations of bot API interfaces.
package botapi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Semior001/vacations/pkg/botx"
	"github.com/samber/lo"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/exp/slog"
)

// Telegram is a controller that handles requests from telegram.
type Telegram struct {
	api     *tgbotapi.BotAPI
	updates chan botx.Request
	done    chan struct{}
}

// NewTelegram returns a new telegram bot controller.
// Client is used for all calls to the telegram API.
func NewTelegram(lg *slog.Logger, token string, bufferSize int, cl tgbotapi.HTTPClient) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, cl)
	if err != nil {
		return nil, fmt.Errorf("make new api: %w", err)
	}

	stdlibLogger := slog.NewLogLogger(lg.Handler(), slog.LevelWarn)
	stdlibLogger.SetPrefix("telegram-bot-api: ")

	if err = tgbotapi.SetLogger(stdlibLogger); err != nil {
		return nil, fmt.Errorf("set logger: %w", err)
	}

	lg.Info("authorized in telegram", slog.String("bot", api.Self.UserName))

	return &Telegram{
		api:     api,
		updates: make(chan botx.Request, bufferSize),
		done:    make(chan struct{}),
	}, nil
}

// Run runs telegram bot listener until Stop is called.
// The updates channel is closed when Run returns.
func (b *Telegram) Run() {
	defer close(b.updates)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		update, ok := <-updates
		if !ok {
			return
		}

		req, ok := requestFromUpdate(update)
		if !ok {
			continue
		}

		select {
		case b.updates <- req:
		case <-b.done:
			return
		}
	}
}

func requestFromUpdate(update tgbotapi.Update) (botx.Request, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return botx.Request{}, false
	}

	req := botx.Request{
		MessageID: strconv.Itoa(msg.MessageID),
		Chat: botx.Chat{
			ID:       strconv.FormatInt(msg.Chat.ID, 10),
			Username: msg.Chat.UserName,
			Private:  msg.Chat.IsPrivate(),
		},
		Text: msg.Text,
	}

	if msg.From != nil {
		req.From = botx.User{
			ID:        strconv.FormatInt(msg.From.ID, 10),
			Username:  msg.From.UserName,
			FirstName: msg.From.FirstName,
		}
	}

	return req, true
}

// Stop stops telegram bot listener.
func (b *Telegram) Stop() {
	close(b.done)
	b.api.StopReceivingUpdates()
}

// Updates returns updates channel.
func (b *Telegram) Updates() <-chan botx.Request {
	return b.updates
}

// SetCommands publishes the list of bot commands.
func (b *Telegram) SetCommands(ctx context.Context, cmds []botx.Command) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	cfg := tgbotapi.NewSetMyCommands(lo.Map(cmds, func(c botx.Command, _ int) tgbotapi.BotCommand {
		return tgbotapi.BotCommand{Command: c.Command, Description: c.Description}
	})...)

	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("set my commands: %w", err)
	}

	return nil
}

// SendMessage sends message to telegram user.
func (b *Telegram) SendMessage(ctx context.Context, resp botx.Response) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	chatID, err := strconv.ParseInt(resp.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, resp.Text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if resp.ReplyToMessageID != "" {
		if msg.ReplyToMessageID, err = strconv.Atoi(resp.ReplyToMessageID); err != nil {
			return fmt.Errorf("parse reply to message id: %w", err)
		}
	}

	if _, err = b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}
