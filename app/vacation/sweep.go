package vacation

import (
	"context"
	"fmt"

	"github.com/Semior001/vacations/app/store"
	"golang.org/x/exp/slog"
)

//go:generate moq -out mock_notifier.go . Notifier

// Notifier delivers reminders to users.
type Notifier interface {
	Remind(ctx context.Context, r Reminder) error
}

// Reminder is a notice about the upcoming absence.
type Reminder struct {
	UserID    store.UserID
	ChatID    int64
	Username  string
	Absence   store.Absence
	DaysUntil int
}

// SweepStats describes the results of a single sweep.
type SweepStats struct {
	Reminded     int // reminders delivered
	Failed       int // reminders failed to deliver
	Pruned       int // completed absences removed
	DroppedUsers int // users removed as having no absences left
}

// Sweep reminds users about absences that start soon, removes completed absences
// and users without absences, and saves the result.
// Delivery errors are logged and do not stop the sweep.
func (s *Service) Sweep(ctx context.Context, n Notifier) (SweepStats, error) {
	today := s.Today()
	var stats SweepStats

	err := s.store.Update(ctx, func(recs store.Records) error {
		for _, id := range recs.IDs() {
			u := recs[id]
			kept := make([]store.Absence, 0, len(u.Vacations))

			for _, a := range u.Vacations {
				if s.due(a, today) {
					r := Reminder{
						UserID:    id,
						ChatID:    u.ChatID,
						Username:  u.Username,
						Absence:   a,
						DaysUntil: a.Start.Sub(today),
					}

					if err := n.Remind(ctx, r); err != nil {
						stats.Failed++
						s.log.WarnCtx(ctx, "failed to deliver reminder",
							slog.String("user_id", string(id)),
							slog.Int64("chat_id", u.ChatID),
							slog.String("start", a.Start.String()),
							slog.Any("err", err))
					} else {
						stats.Reminded++
						a.Reminded = true
					}
				}

				if a.End().Before(today) {
					stats.Pruned++
					continue
				}

				kept = append(kept, a)
			}

			if len(kept) == 0 {
				stats.DroppedUsers++
				delete(recs, id)
				continue
			}

			u.Vacations = kept
			recs[id] = u
		}

		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("sweep: %w", err)
	}

	s.log.InfoCtx(ctx, "sweep finished",
		slog.String("today", today.String()),
		slog.Int("reminded", stats.Reminded),
		slog.Int("failed", stats.Failed),
		slog.Int("pruned", stats.Pruned),
		slog.Int("dropped_users", stats.DroppedUsers))

	return stats, nil
}

// due reports whether the reminder about the absence must be sent today.
func (s *Service) due(a store.Absence, today store.Date) bool {
	if a.Reminded {
		return false
	}

	days := a.Start.Sub(today)
	if s.CatchUp {
		return days > 0 && days <= s.LeadDays
	}

	return days == s.LeadDays
}
