package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Semior001/vacations/app/store"
	"github.com/Semior001/vacations/app/vacation"
	"github.com/Semior001/vacations/pkg/botx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// today is 2025-07-25
func newTestCtrl(t *testing.T, recs store.Records) (*Ctrl, *store.Memory, *botx.APIMock) {
	t.Helper()

	mem := store.NewMemory()
	if recs != nil {
		require.NoError(t, mem.Save(context.Background(), recs))
	}

	api := &botx.APIMock{SendMessageFunc: func(context.Context, botx.Response) error { return nil }}

	return &Ctrl{
		Logger: slog.Default(),
		Service: vacation.NewService(slog.Default(), store.NewLocked(mem), vacation.Params{
			Now: func() time.Time { return time.Date(2025, time.July, 25, 12, 0, 0, 0, time.Local) },
		}),
		API:            api,
		AdminIDs:       []string{"1"},
		HandlerTimeout: time.Minute,
	}, mem, api
}

func request(text string) botx.Request {
	return botx.Request{
		MessageID: "10",
		Chat:      botx.Chat{ID: "-100", Private: false},
		From:      botx.User{ID: "42", Username: "semior_"},
		Text:      text,
	}
}

func handle(t *testing.T, c *Ctrl, req botx.Request) string {
	t.Helper()
	resps, err := c.Routes().Handle(context.Background(), req)
	require.NoError(t, err)
	if len(resps) == 0 {
		return ""
	}
	require.Len(t, resps, 1)
	assert.Equal(t, req.Chat.ID, resps[0].ChatID)
	return resps[0].Text
}

func TestCtrl_Add(t *testing.T) {
	c, mem, _ := newTestCtrl(t, nil)

	tests := []struct {
		text string
		want string
	}{
		{text: "/otpusk", want: "⚠️ Usage: `/otpusk YYYY-MM-DD DAYS`, please specify the date and the number of days."},
		{text: "/vacation 2025-08-01", want: "⚠️ Usage: `/vacation YYYY-MM-DD DAYS`, please specify the date and the number of days."},
		{text: "/otpusk 01.08.2025 10", want: "❗ The date must be in YYYY-MM-DD format, e.g. `2025-08-01`."},
		{text: "/otpusk 2100-08-01 10", want: "🚀 Planning a vacation after 2099 is too bold, let's keep it simpler."},
		{text: "/otpusk 2025-08-01 ten", want: "❗ Days must be a number from 1 to 365."},
		{text: "/otpusk 2025-08-01 366", want: "❗ Days must be a number from 1 to 365."},
		{text: "/otpusk 2025-07-25 3", want: "⏰ A vacation can start tomorrow at the earliest."},
		{text: "/otpusk 2025-08-01 10", want: "🎉 Hooray! Vacation from 2025-08-01 for 10 days is added."},
		{text: "/otpusk@vacations_bot 2025-08-01 5", want: "✅ You have already added a vacation starting at this date, nothing changed."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, handle(t, c, request(tt.text)), tt.text)
	}

	recs, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.Records{"42": {
		Vacations: []store.Absence{{Start: store.NewDate(2025, time.August, 1), Length: 10}},
		ChatID:    -100,
		Username:  "semior_",
	}}, recs)
}

func TestCtrl_Own(t *testing.T) {
	c, _, _ := newTestCtrl(t, nil)
	assert.Equal(t, "🤷 You have no planned vacations yet.", handle(t, c, request("/myvacation")))

	c, _, _ = newTestCtrl(t, store.Records{"42": {
		Vacations: []store.Absence{
			{Start: store.NewDate(2025, time.July, 1), Length: 3},
			{Start: store.NewDate(2025, time.July, 20), Length: 10},
			{Start: store.NewDate(2025, time.August, 1), Length: 10},
		},
		ChatID: -100,
	}})

	assert.Equal(t, "✈️ Your vacations, @semior\\_:\n"+
		"• Finished vacation 2025-07-01 to 2025-07-03.\n"+
		"• On vacation now: 5 days left (2025-07-20 to 2025-07-29).\n"+
		"• Starts 2025-08-01 (in 7 days), 10 days long.\n",
		handle(t, c, request("/myvacation")))
}

func TestCtrl_Delete(t *testing.T) {
	c, mem, _ := newTestCtrl(t, store.Records{"42": {
		Vacations: []store.Absence{{Start: store.NewDate(2025, time.August, 1), Length: 10}},
		ChatID:    -100,
	}})

	assert.Equal(t, "⚠️ Specify the date to delete: `/delvacation YYYY-MM-DD`.", handle(t, c, request("/delvacation")))
	assert.Equal(t, "❗ Date format is YYYY-MM-DD, e.g. `2025-08-01`.", handle(t, c, request("/delvacation 1.08.2025")))
	assert.Equal(t, "🔍 No vacation starts at this date.", handle(t, c, request("/delvacation 2025-08-02")))
	assert.Equal(t, "✅ Vacation `2025-08-01` is deleted.", handle(t, c, request("/delvacation 2025-08-01")))

	recs, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs["42"].Vacations)
}

func TestCtrl_Chat(t *testing.T) {
	c, _, _ := newTestCtrl(t, nil)
	assert.Equal(t, "🤷 Nobody in this chat has planned a vacation.", handle(t, c, request("/allvacations")))

	c, _, _ = newTestCtrl(t, store.Records{
		"42": {
			Vacations: []store.Absence{{Start: store.NewDate(2025, time.August, 1), Length: 10}},
			ChatID:    -100,
			Username:  "semior",
		},
		"7": {
			Vacations: []store.Absence{
				{Start: store.NewDate(2025, time.July, 1), Length: 2},
				{Start: store.NewDate(2025, time.July, 25), Length: 3},
			},
			ChatID: -100,
		},
		"8": {
			Vacations: []store.Absence{{Start: store.NewDate(2025, time.July, 28), Length: 1}},
			ChatID:    -200,
			Username:  "elsewhere",
		},
	})

	assert.Equal(t, "🏖️ Upcoming vacations:\n"+
		"• unknown: on vacation until 2025-07-27! 3 days long.\n"+
		"• semior: in 7 days, starts 2025-08-01, 10 days long.\n",
		handle(t, c, request("/allvacations")))
}

func TestCtrl_Remind(t *testing.T) {
	c, _, api := newTestCtrl(t, nil)

	err := c.Remind(context.Background(), vacation.Reminder{
		UserID:    "42",
		ChatID:    -100,
		Username:  "semior_",
		Absence:   store.Absence{Start: store.NewDate(2025, time.August, 1), Length: 10},
		DaysUntil: 7,
	})
	require.NoError(t, err)

	require.Len(t, api.SendMessageCalls(), 1)
	assert.Equal(t, botx.Response{
		ChatID: "-100",
		Text: "🔔 Hi, semior\\_! Your vacation starts in 7 days: from 2025-08-01 for 10 days. " +
			"Don't forget to pack your suitcase!",
	}, api.SendMessageCalls()[0].Resp)

	api.SendMessageFunc = func(context.Context, botx.Response) error { return errors.New("forbidden") }
	err = c.Remind(context.Background(), vacation.Reminder{ChatID: -100})
	assert.ErrorContains(t, err, "forbidden")
	assert.Contains(t, api.SendMessageCalls()[1].Resp.Text, "Hi, friend!")
}

func TestCtrl_Admin(t *testing.T) {
	c, mem, api := newTestCtrl(t, store.Records{
		"42": {
			Vacations: []store.Absence{{Start: store.NewDate(2025, time.August, 1), Length: 10}},
			ChatID:    -100,
			Username:  "semior",
		},
		"7": {
			Vacations: []store.Absence{{Start: store.NewDate(2025, time.July, 1), Length: 2}},
			ChatID:    -100,
		},
	})

	req := request("/users")
	assert.Empty(t, handle(t, c, req), "non-admins are ignored")

	req.From.ID = "1"
	assert.Equal(t, "Users: 2\n"+
		"id: 7, username: , chat: -100, vacations: 1\n"+
		"id: 42, username: semior, chat: -100, vacations: 1\n",
		handle(t, c, req))

	req.Text = "/sweep"
	assert.Equal(t, "reminded: 1, failed: 0, pruned: 1, dropped users: 1\n", handle(t, c, req))
	require.Len(t, api.SendMessageCalls(), 1)
	assert.Equal(t, "-100", api.SendMessageCalls()[0].Resp.ChatID)

	recs, err := mem.Load(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, recs, store.UserID("7"))
}

func TestCtrl_Routes_Misc(t *testing.T) {
	c, _, _ := newTestCtrl(t, nil)

	assert.Empty(t, handle(t, c, request("hello everyone")))
	assert.Empty(t, handle(t, c, request("/unknown")), "silent in groups")

	req := request("/unknown")
	req.Chat.Private = true
	assert.Equal(t, "🤔 I don't know this command, see /help.", handle(t, c, req))

	req = request("/otpusk 2025-08-01 10")
	req.From = botx.User{}
	assert.Empty(t, handle(t, c, req), "messages without author are dropped")

	assert.Contains(t, handle(t, c, request("/help")), "I will remind you 7 days before your vacation starts.")
	assert.Contains(t, handle(t, c, request("/start")), "/otpusk 2025-08-01 10")
}

func TestCtrl_Routes_Panic(t *testing.T) {
	c, _, _ := newTestCtrl(t, nil)
	c.Service = nil // every service call panics

	resps, err := c.Routes().Handle(context.Background(), request("/help"))
	assert.ErrorContains(t, err, "panic: ")
	require.Len(t, resps, 1)
	assert.Equal(t, "-100", resps[0].ChatID)
	assert.Equal(t, "10", resps[0].ReplyToMessageID)
	assert.Contains(t, resps[0].Text, "Something went wrong")
	assert.Contains(t, resps[0].Text, "Request ID: `")
}

func TestCtrl_NotifyAdmins(t *testing.T) {
	c, _, api := newTestCtrl(t, nil)
	c.AdminIDs = []string{"1", "2"}

	require.NoError(t, c.NotifyAdmins(context.Background(), "bot started"))
	require.Len(t, api.SendMessageCalls(), 2)
	assert.Equal(t, botx.Response{ChatID: "2", Text: "bot started"}, api.SendMessageCalls()[1].Resp)
}
