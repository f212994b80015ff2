package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/Semior001/vacations/pkg/botx"
)

func (c *Ctrl) users(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	users, err := c.Service.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	sb := &strings.Builder{}
	_, _ = sb.WriteString(fmt.Sprintf("Users: %d\n", len(users)))
	for _, u := range users {
		_, _ = sb.WriteString(fmt.Sprintf("id: %s, username: %s, chat: %d, vacations: %d\n",
			u.UserID, escapeMarkdown(u.Username), u.ChatID, u.Vacations))
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   sb.String(),
	}}, nil
}

func (c *Ctrl) sweep(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	stats, err := c.Service.Sweep(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text: fmt.Sprintf("reminded: %d, failed: %d, pruned: %d, dropped users: %d\n",
			stats.Reminded, stats.Failed, stats.Pruned, stats.DroppedUsers),
	}}, nil
}
