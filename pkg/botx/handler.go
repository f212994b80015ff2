package botx

import (
	"context"
	"strings"
)

// Handler handles requests.
type Handler func(ctx context.Context, req Request) ([]Response, error)

// Middleware wraps a handler.
type Middleware func(Handler) Handler

// With returns a new handler with middleware applied.
func (h Handler) With(mvs ...Middleware) Handler {
	base := h
	for i := len(mvs) - 1; i >= 0; i-- {
		base = mvs[i](base)
	}
	return base
}

// Response is a response from handler.
type Response struct {
	ReplyToMessageID string
	ChatID           string
	Text             string
}

// Request is a request for handler.
type Request struct {
	MessageID string
	Chat      Chat
	From      User
	Text      string
}

// Command splits the request text into the command and its arguments.
// The bot name suffix, as in "/help@some_bot", is dropped.
// Returns empty command if the text is not a command.
func (r Request) Command() (cmd string, args []string) {
	fields := strings.Fields(r.Text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}

	cmd, _, _ = strings.Cut(fields[0], "@")
	return cmd, fields[1:]
}

// Chat contains chat information.
type Chat struct {
	ID       string
	Username string
	Private  bool
}

// User contains information about the author of the message.
type User struct {
	ID        string
	Username  string
	FirstName string
}

// DisplayName returns the username if it is set, otherwise the first name.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// Command describes a command for the list of bot commands.
type Command struct {
	Command     string
	Description string
}

// NotFound is a default handler for not found commands.
func NotFound(_ context.Context, req Request) ([]Response, error) {
	return []Response{{
		ChatID: req.Chat.ID,
		Text:   "command not found",
	}}, nil
}
