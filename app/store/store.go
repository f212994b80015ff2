// Package store contains entities and services to process and contain them.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

// Interface defines methods for store.
// Store is always read and written as a whole.
type Interface interface {
	Load(ctx context.Context) (Records, error)
	Save(ctx context.Context, recs Records) error
	Close() error
}

// UserID is a string form of the numeric messenger user id.
type UserID string

// ParseUserID makes a UserID out of a numeric id.
func ParseUserID(id int64) UserID { return UserID(strconv.FormatInt(id, 10)) }

// Absence is a user-registered interval of days.
type Absence struct {
	Start    Date `json:"start" yaml:"start"`
	Length   int  `json:"length" yaml:"length"`
	Reminded bool `json:"reminded,omitempty" yaml:"reminded,omitempty"`
}

// End returns the last day of the absence, inclusive.
func (a Absence) End() Date { return a.Start.AddDays(a.Length - 1) }

// User is a struct that contains the user's data.
type User struct {
	Vacations []Absence `json:"vacations" yaml:"vacations"`
	ChatID    int64     `json:"chat_id" yaml:"chat_id"`
	Username  string    `json:"username" yaml:"username"`
}

// Records maps users to their data.
type Records map[UserID]User

// IDs returns user ids in ascending numeric order, non-numeric ids go last.
func (r Records) IDs() []UserID {
	ids := make([]UserID, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(string(ids[i]), 10, 64)
		b, errB := strconv.ParseInt(string(ids[j]), 10, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})

	return ids
}

// Options defines the backend and its location.
type Options struct {
	Type string `long:"type" env:"TYPE" choice:"file" choice:"bolt" choice:"sqlite" choice:"memory" default:"file" description:"storage backend"`
	Path string `long:"path" env:"PATH" default:"vacations.json" description:"location of the storage file"`
}

// Open makes a store for the given options.
func Open(opts Options) (Interface, error) {
	switch opts.Type {
	case "file":
		return NewFile(opts.Path), nil
	case "bolt":
		return NewBolt(opts.Path)
	case "sqlite":
		return NewSQLite(opts.Path)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", opts.Type)
	}
}
