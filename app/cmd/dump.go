package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Semior001/vacations/app/store"
	ical "github.com/arran4/golang-ical"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

// Dump is a command to print all stored vacations.
type Dump struct {
	Format string        `long:"format" env:"FORMAT" choice:"json" choice:"yaml" choice:"ics" default:"json" description:"output format"`
	Output string        `long:"output" short:"o" env:"OUTPUT" description:"output file, stdout if empty"`
	Store  store.Options `group:"store" namespace:"store" env-namespace:"STORE"`
}

// Execute runs the command.
func (d Dump) Execute(_ []string) error {
	s, err := store.Open(d.Store)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("close store", slog.Any("err", err))
		}
	}()

	recs, err := s.Load(context.Background())
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	w := io.Writer(os.Stdout)
	if d.Output != "" {
		f, err := os.Create(d.Output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err = writeDump(w, d.Format, recs, time.Now()); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}

	slog.Info("dumped records", slog.Int("users", len(recs)), slog.String("format", d.Format))
	return nil
}

func writeDump(w io.Writer, format string, recs store.Records, now time.Time) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(recs); err != nil {
			return err
		}
		return enc.Close()
	case "ics":
		_, err := io.WriteString(w, calendar(recs, now).Serialize())
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// calendar makes an all-day event for every vacation.
func calendar(recs store.Records, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//Semior001//vacations//EN")

	for _, id := range recs.IDs() {
		u := recs[id]

		name := u.Username
		if name == "" {
			name = string(id)
		}

		for _, a := range u.Vacations {
			ev := cal.AddEvent(fmt.Sprintf("%s-%s@vacations", id, a.Start))
			ev.SetDtStampTime(now)
			ev.SetAllDayStartAt(a.Start.Time())
			// end date of all-day events is exclusive
			ev.SetAllDayEndAt(a.End().AddDays(1).Time())
			ev.SetSummary(fmt.Sprintf("%s on vacation for %d days", name, a.Length))
		}
	}

	return cal
}
