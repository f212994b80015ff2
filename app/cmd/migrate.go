package cmd

import (
	"context"
	"fmt"

	"github.com/Semior001/vacations/app/store"
	"golang.org/x/exp/slog"
)

// Migrate is a command to copy all records from one store to another.
type Migrate struct {
	From store.Options `group:"from" namespace:"from" env-namespace:"FROM"`
	To   store.Options `group:"to" namespace:"to" env-namespace:"TO"`
}

// Execute runs the command.
func (m Migrate) Execute(_ []string) error {
	if m.From == m.To {
		return fmt.Errorf("source and destination are the same: %s at %q", m.From.Type, m.From.Path)
	}

	from, err := store.Open(m.From)
	if err != nil {
		return fmt.Errorf("make source store: %w", err)
	}
	defer closeStore(from, "source")

	to, err := store.Open(m.To)
	if err != nil {
		return fmt.Errorf("make destination store: %w", err)
	}
	defer closeStore(to, "destination")

	n, err := migrate(context.Background(), from, to)
	if err != nil {
		return err
	}

	slog.Info("migrated records",
		slog.Int("users", n),
		slog.String("from", m.From.Type),
		slog.String("to", m.To.Type))

	return nil
}

func migrate(ctx context.Context, from, to store.Interface) (int, error) {
	recs, err := from.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load source records: %w", err)
	}

	if err = to.Save(ctx, recs); err != nil {
		return 0, fmt.Errorf("save records to destination: %w", err)
	}

	return len(recs), nil
}

func closeStore(s store.Interface, name string) {
	if err := s.Close(); err != nil {
		slog.Error("close store", slog.String("store", name), slog.Any("err", err))
	}
}
