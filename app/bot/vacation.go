package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Semior001/vacations/app/store"
	"github.com/Semior001/vacations/app/vacation"
	"github.com/Semior001/vacations/pkg/botx"
)

var helpTmpl = template.Must(template.New("help").Parse(`*Vacations bot*

1️⃣ /otpusk YYYY-MM-DD DAYS - add a new vacation.
2️⃣ /myvacation - show your vacations.
3️⃣ /delvacation YYYY-MM-DD - delete a vacation.
4️⃣ /allvacations - vacations of everyone in this chat.

I will remind you {{.}} days before your vacation starts.`))

func (c *Ctrl) start(_ context.Context, req botx.Request) ([]botx.Response, error) {
	return reply(req, "🛫 Hi! Planning a vacation? Send `/otpusk YYYY-MM-DD DAYS`, "+
		"e.g. `/otpusk 2025-08-01 10`, and off you go! 🌴"), nil
}

func (c *Ctrl) help(_ context.Context, req botx.Request) ([]botx.Response, error) {
	sb := &strings.Builder{}
	if err := helpTmpl.Execute(sb, c.Service.LeadDays); err != nil {
		return nil, fmt.Errorf("execute help template: %w", err)
	}
	return reply(req, sb.String()), nil
}

var addErrorMessages = []struct {
	err  error
	text string
}{
	{vacation.ErrInvalidDate, "❗ The date must be in YYYY-MM-DD format, e.g. `2025-08-01`."},
	{vacation.ErrDateTooFar, fmt.Sprintf("🚀 Planning a vacation after %d is too bold, let's keep it simpler.", vacation.MaxYear)},
	{vacation.ErrInvalidLength, fmt.Sprintf("❗ Days must be a number from %d to %d.", vacation.MinLength, vacation.MaxLength)},
	{vacation.ErrDateNotFuture, "⏰ A vacation can start tomorrow at the earliest."},
	{vacation.ErrDuplicateDate, "✅ You have already added a vacation starting at this date, nothing changed."},
}

func (c *Ctrl) add(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	cmd, args := req.Command()
	if len(args) < 2 {
		return reply(req, fmt.Sprintf("⚠️ Usage: `%s YYYY-MM-DD DAYS`, please specify the date and the number of days.", cmd)), nil
	}

	chat, err := chatID(req)
	if err != nil {
		return nil, err
	}

	// not a number is reported the same way as out of range
	length, err := strconv.Atoi(args[1])
	if err != nil {
		length = 0
	}

	a, err := c.Service.Add(ctx, vacation.AddRequest{
		UserID:   store.UserID(req.From.ID),
		ChatID:   chat,
		Username: req.From.DisplayName(),
		Start:    args[0],
		Length:   length,
	})
	for _, m := range addErrorMessages {
		if errors.Is(err, m.err) {
			return reply(req, m.text), nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("add vacation: %w", err)
	}

	return reply(req, fmt.Sprintf("🎉 Hooray! Vacation from %s for %d days is added.", a.Start, a.Length)), nil
}

func (c *Ctrl) own(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	statuses, err := c.Service.ListOwn(ctx, store.UserID(req.From.ID))
	if err != nil {
		return nil, fmt.Errorf("list own vacations: %w", err)
	}

	if len(statuses) == 0 {
		return reply(req, "🤷 You have no planned vacations yet."), nil
	}

	sb := &strings.Builder{}
	_, _ = sb.WriteString(fmt.Sprintf("✈️ Your vacations, @%s:\n", escapeMarkdown(req.From.DisplayName())))
	for _, st := range statuses {
		switch st.Phase {
		case vacation.Upcoming:
			_, _ = sb.WriteString(fmt.Sprintf("• Starts %s (in %d days), %d days long.\n",
				st.Start, st.DaysUntil, st.Length))
		case vacation.Active:
			_, _ = sb.WriteString(fmt.Sprintf("• On vacation now: %d days left (%s to %s).\n",
				st.DaysRemaining, st.Start, st.End()))
		case vacation.Completed:
			_, _ = sb.WriteString(fmt.Sprintf("• Finished vacation %s to %s.\n", st.Start, st.End()))
		}
	}

	return reply(req, sb.String()), nil
}

func (c *Ctrl) delete(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	_, args := req.Command()
	if len(args) < 1 {
		return reply(req, "⚠️ Specify the date to delete: `/delvacation YYYY-MM-DD`."), nil
	}

	err := c.Service.Delete(ctx, vacation.DeleteRequest{
		UserID: store.UserID(req.From.ID),
		Start:  args[0],
	})
	switch {
	case errors.Is(err, vacation.ErrInvalidDate):
		return reply(req, "❗ Date format is YYYY-MM-DD, e.g. `2025-08-01`."), nil
	case errors.Is(err, store.ErrNotFound):
		return reply(req, "🔍 No vacation starts at this date."), nil
	case err != nil:
		return nil, fmt.Errorf("delete vacation: %w", err)
	}

	return reply(req, fmt.Sprintf("✅ Vacation `%s` is deleted.", args[0])), nil
}

func (c *Ctrl) chat(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	chat, err := chatID(req)
	if err != nil {
		return nil, err
	}

	entries, err := c.Service.ListChat(ctx, chat)
	if err != nil {
		return nil, fmt.Errorf("list chat vacations: %w", err)
	}

	if len(entries) == 0 {
		return reply(req, "🤷 Nobody in this chat has planned a vacation."), nil
	}

	sb := &strings.Builder{}
	_, _ = sb.WriteString("🏖️ Upcoming vacations:\n")
	for _, e := range entries {
		name := e.Username
		if name == "" {
			name = "unknown"
		}

		if e.DaysUntil > 0 {
			_, _ = sb.WriteString(fmt.Sprintf("• %s: in %d days, starts %s, %d days long.\n",
				escapeMarkdown(name), e.DaysUntil, e.Start, e.Length))
			continue
		}

		_, _ = sb.WriteString(fmt.Sprintf("• %s: on vacation until %s! %d days long.\n",
			escapeMarkdown(name), e.End(), e.Length))
	}

	return reply(req, sb.String()), nil
}

var reminderTmpl = template.Must(template.New("reminder").Parse(
	"🔔 Hi, {{.Name}}! Your vacation starts in {{.DaysUntil}} days: " +
		"from {{.Start}} for {{.Length}} days. Don't forget to pack your suitcase!"))

// Remind sends the reminder about the upcoming vacation to the user's chat.
func (c *Ctrl) Remind(ctx context.Context, r vacation.Reminder) error {
	name := r.Username
	if name == "" {
		name = "friend"
	}

	sb := &strings.Builder{}
	err := reminderTmpl.Execute(sb, struct {
		Name      string
		DaysUntil int
		Start     store.Date
		Length    int
	}{
		Name:      escapeMarkdown(name),
		DaysUntil: r.DaysUntil,
		Start:     r.Absence.Start,
		Length:    r.Absence.Length,
	})
	if err != nil {
		return fmt.Errorf("execute reminder template: %w", err)
	}

	if err = c.API.SendMessage(ctx, botx.Response{
		ChatID: strconv.FormatInt(r.ChatID, 10),
		Text:   sb.String(),
	}); err != nil {
		return fmt.Errorf("send reminder to chat %d: %w", r.ChatID, err)
	}

	return nil
}
