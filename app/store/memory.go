package store

import (
	"context"
	"sync"
)

// Memory keeps records in process memory, nothing survives a restart.
type Memory struct {
	mu   sync.Mutex
	recs Records
}

// NewMemory creates an empty Memory storage.
func NewMemory() *Memory { return &Memory{recs: Records{}} }

// Load returns a deep copy of the stored records.
func (m *Memory) Load(context.Context) (Records, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recs.clone(), nil
}

// Save replaces the stored records with a deep copy of recs.
func (m *Memory) Save(_ context.Context, recs Records) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = recs.clone()
	return nil
}

// Close does nothing.
func (m *Memory) Close() error { return nil }

func (r Records) clone() Records {
	res := make(Records, len(r))
	for id, u := range r {
		u.Vacations = append([]Absence{}, u.Vacations...)
		res[id] = u
	}
	return res
}
