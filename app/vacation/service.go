// Package vacation contains the lifecycle of users' absences:
// registering, listing, deleting and reminding about them.
package vacation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Semior001/vacations/app/store"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// Validation errors returned by Service.Add.
var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrDateTooFar    = errors.New("date is too far in the future")
	ErrInvalidLength = errors.New("invalid length")
	ErrDateNotFuture = errors.New("date is not in the future")
	ErrDuplicateDate = errors.New("absence with this start date already exists")
)

const (
	// MaxYear is the last year an absence may start in.
	MaxYear = 2099
	// MinLength and MaxLength bound the length of an absence in days.
	MinLength = 1
	MaxLength = 365
)

// Params defines parameters of the service.
type Params struct {
	// LeadDays is how many days before the start the reminder is sent.
	LeadDays int
	// CatchUp makes the sweep remind about absences starting within LeadDays
	// that were not reminded yet, instead of only those starting in exactly LeadDays.
	CatchUp bool
	// Now returns current time, time.Now if nil.
	Now func() time.Time
}

// Service manages absences of users.
type Service struct {
	log   *slog.Logger
	store *store.Locked
	Params
}

// NewService creates new service.
func NewService(lg *slog.Logger, st *store.Locked, params Params) *Service {
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.LeadDays <= 0 {
		params.LeadDays = 7
	}

	return &Service{log: lg, store: st, Params: params}
}

// Today returns the current local wall-clock date.
func (s *Service) Today() store.Date { return store.DateOf(s.Now()) }

// AddRequest describes an absence to register.
// ChatID and a non-empty Username replace the stored ones on success.
type AddRequest struct {
	UserID   store.UserID
	ChatID   int64
	Username string
	Start    string // YYYY-MM-DD
	Length   int
}

// Add validates and registers the absence.
func (s *Service) Add(ctx context.Context, req AddRequest) (store.Absence, error) {
	start, err := store.ParseDate(req.Start)
	if err != nil {
		return store.Absence{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	if start.Year() > MaxYear {
		return store.Absence{}, ErrDateTooFar
	}

	if req.Length < MinLength || req.Length > MaxLength {
		return store.Absence{}, ErrInvalidLength
	}

	if !start.After(s.Today()) {
		return store.Absence{}, ErrDateNotFuture
	}

	a := store.Absence{Start: start, Length: req.Length}

	err = s.store.Update(ctx, func(recs store.Records) error {
		u := recs[req.UserID]

		if slices.IndexFunc(u.Vacations, func(v store.Absence) bool { return v.Start.Equal(start) }) >= 0 {
			return ErrDuplicateDate
		}

		u.Vacations = append(u.Vacations, a)
		sort.SliceStable(u.Vacations, func(i, j int) bool {
			return u.Vacations[i].Start.Before(u.Vacations[j].Start)
		})
		u.ChatID = req.ChatID
		if req.Username != "" {
			u.Username = req.Username
		}

		recs[req.UserID] = u
		return nil
	})
	if err != nil {
		return store.Absence{}, fmt.Errorf("add absence: %w", err)
	}

	s.log.DebugCtx(ctx, "absence added",
		slog.String("user_id", string(req.UserID)),
		slog.String("start", start.String()),
		slog.Int("length", req.Length))

	return a, nil
}

// DeleteRequest describes an absence to remove.
type DeleteRequest struct {
	UserID store.UserID
	Start  string // YYYY-MM-DD
}

// Delete removes the absence that starts at the given date.
// The user's chat and name are left as they are.
// Returns store.ErrNotFound if the user has no such absence.
func (s *Service) Delete(ctx context.Context, req DeleteRequest) error {
	start, err := store.ParseDate(req.Start)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	err = s.store.Update(ctx, func(recs store.Records) error {
		u, ok := recs[req.UserID]
		if !ok {
			return store.ErrNotFound
		}

		idx := slices.IndexFunc(u.Vacations, func(v store.Absence) bool { return v.Start.Equal(start) })
		if idx < 0 {
			return store.ErrNotFound
		}

		u.Vacations = slices.Delete(u.Vacations, idx, idx+1)

		recs[req.UserID] = u
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete absence %s: %w", start, err)
	}

	return nil
}

// Phase is a stage of the absence relative to some date.
type Phase int

// Phases of the absence.
const (
	Upcoming Phase = iota
	Active
	Completed
)

func (p Phase) String() string {
	switch p {
	case Upcoming:
		return "upcoming"
	case Active:
		return "active"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Status is an absence classified relative to a date.
type Status struct {
	store.Absence
	Phase         Phase
	DaysUntil     int // days before the start, set for upcoming absences
	DaysRemaining int // days left including today, set for active absences
}

// Classify returns the status of the absence at the given date.
func Classify(a store.Absence, today store.Date) Status {
	st := Status{Absence: a}
	switch end := a.End(); {
	case a.Start.After(today):
		st.Phase = Upcoming
		st.DaysUntil = a.Start.Sub(today)
	case !end.Before(today):
		st.Phase = Active
		st.DaysRemaining = end.Sub(today) + 1
	default:
		st.Phase = Completed
	}
	return st
}

// ListOwn returns statuses of all user's absences in the stored order.
func (s *Service) ListOwn(ctx context.Context, id store.UserID) ([]Status, error) {
	today := s.Today()

	var res []Status
	err := s.store.View(ctx, func(recs store.Records) error {
		for _, a := range recs[id].Vacations {
			res = append(res, Classify(a, today))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list own absences: %w", err)
	}

	return res, nil
}

// ChatEntry is an absence of a chat member that is not completed yet.
type ChatEntry struct {
	store.Absence
	UserID    store.UserID
	Username  string
	DaysUntil int // zero or negative if already started
}

// ListChat returns not completed absences of all users affiliated with the chat,
// sorted by the days left before the start.
func (s *Service) ListChat(ctx context.Context, chatID int64) ([]ChatEntry, error) {
	today := s.Today()

	var res []ChatEntry
	err := s.store.View(ctx, func(recs store.Records) error {
		res = chatUpcoming(recs, chatID, today)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list chat absences: %w", err)
	}

	return res, nil
}

// chatUpcoming orders equal days by user id, then by the user's stored order.
func chatUpcoming(recs store.Records, chatID int64, today store.Date) []ChatEntry {
	var res []ChatEntry
	for _, id := range recs.IDs() {
		u := recs[id]
		if u.ChatID != chatID {
			continue
		}

		for _, a := range u.Vacations {
			if a.End().Before(today) {
				continue
			}

			res = append(res, ChatEntry{
				Absence:   a,
				UserID:    id,
				Username:  u.Username,
				DaysUntil: a.Start.Sub(today),
			})
		}
	}

	sort.SliceStable(res, func(i, j int) bool { return res[i].DaysUntil < res[j].DaysUntil })
	return res
}

// Users returns all stored users ordered by id.
func (s *Service) Users(ctx context.Context) ([]UserSummary, error) {
	var res []UserSummary
	err := s.store.View(ctx, func(recs store.Records) error {
		for _, id := range recs.IDs() {
			u := recs[id]
			res = append(res, UserSummary{
				UserID:    id,
				ChatID:    u.ChatID,
				Username:  u.Username,
				Vacations: len(u.Vacations),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return res, nil
}

// UserSummary is a short description of the stored user.
type UserSummary struct {
	UserID    store.UserID
	ChatID    int64
	Username  string
	Vacations int
}
