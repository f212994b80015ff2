package store

import (
	"context"
	"fmt"
	"sync"
)

// Locked serializes load-modify-save cycles over the underlying store,
// so that concurrent updates within the process do not overwrite each other.
// Processes sharing the same backend are not coordinated.
type Locked struct {
	mu sync.Mutex
	st Interface
}

// NewLocked wraps the store.
func NewLocked(st Interface) *Locked { return &Locked{st: st} }

// View loads the records and passes them to fn.
func (l *Locked) View(ctx context.Context, fn func(Records) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	recs, err := l.st.Load(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	return fn(recs)
}

// Update loads the records, lets fn modify them in place and saves them back.
// Nothing is saved if fn returns an error, the error is returned as is.
func (l *Locked) Update(ctx context.Context, fn func(Records) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	recs, err := l.st.Load(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if recs == nil {
		recs = Records{}
	}

	if err = fn(recs); err != nil {
		return err
	}

	if err = l.st.Save(ctx, recs); err != nil {
		return fmt.Errorf("save records: %w", err)
	}

	return nil
}
