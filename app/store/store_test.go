package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() Records {
	return Records{
		"42": {
			Vacations: []Absence{
				{Start: NewDate(2025, time.August, 1), Length: 10},
				{Start: NewDate(2025, time.September, 15), Length: 3, Reminded: true},
			},
			ChatID:   -100500,
			Username: "semior",
		},
		"7": {
			Vacations: []Absence{{Start: NewDate(2026, time.January, 2), Length: 1}},
			ChatID:    -100500,
			Username:  "Пётр",
		},
	}
}

func TestBackends_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		open func(t *testing.T) Interface
	}{
		{name: "file", open: func(t *testing.T) Interface {
			return NewFile(filepath.Join(t.TempDir(), "vacations.json"))
		}},
		{name: "bolt", open: func(t *testing.T) Interface {
			b, err := NewBolt(filepath.Join(t.TempDir(), "vacations.db"))
			require.NoError(t, err)
			return b
		}},
		{name: "sqlite", open: func(t *testing.T) Interface {
			s, err := NewSQLite(filepath.Join(t.TempDir(), "vacations.sqlite"))
			require.NoError(t, err)
			return s
		}},
		{name: "memory", open: func(*testing.T) Interface { return NewMemory() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tt.open(t)
			defer func() { require.NoError(t, st.Close()) }()
			ctx := context.Background()

			recs, err := st.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, recs)

			require.NoError(t, st.Save(ctx, testRecords()))

			recs, err = st.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, testRecords(), recs)

			// save replaces everything, dropped users disappear
			recs = testRecords()
			delete(recs, "7")
			require.NoError(t, st.Save(ctx, recs))

			recs, err = st.Load(ctx)
			require.NoError(t, err)
			assert.Len(t, recs, 1)
			assert.Contains(t, recs, UserID("42"))
		})
	}
}

func TestFile_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacations.json")
	st := NewFile(path)

	err := st.Save(context.Background(), Records{"42": {
		Vacations: []Absence{{Start: NewDate(2025, time.August, 1), Length: 10}},
		ChatID:    -1,
		Username:  "semior",
	}})
	require.NoError(t, err)

	bts, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"42": {
		"vacations": [{"start": "2025-08-01", "length": 10}],
		"chat_id": -1,
		"username": "semior"
	}}`, string(bts))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be renamed")
}

func TestFile_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacations.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"42": {"vacations": [{"start": "01.08.2025"}]}}`), 0o600))
	_, err := NewFile(path).Load(context.Background())
	assert.ErrorContains(t, err, "01.08.2025")

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))
	_, err = NewFile(path).Load(context.Background())
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`null`), 0o600))
	recs, err := NewFile(path).Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestFile_LoadOldFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacations.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"42": {
		"vacations": [{"start": "2025-08-01", "length": 10}],
		"chat_id": -1,
		"username": "semior"
	}}`), 0o600))

	recs, err := NewFile(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Records{"42": {
		Vacations: []Absence{{Start: NewDate(2025, time.August, 1), Length: 10}},
		ChatID:    -1,
		Username:  "semior",
	}}, recs)
}

func TestRecords_IDs(t *testing.T) {
	recs := Records{"100": {}, "7": {}, "-5": {}, "abc": {}, "42": {}}
	assert.Equal(t, []UserID{"-5", "7", "42", "100", "abc"}, recs.IDs())
}

func TestOpen(t *testing.T) {
	st, err := Open(Options{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, st)

	st, err = Open(Options{Type: "file", Path: "x.json"})
	require.NoError(t, err)
	assert.IsType(t, &File{}, st)

	_, err = Open(Options{Type: "redis"})
	assert.Error(t, err)
}

type nilStore struct{ Memory }

func (*nilStore) Load(context.Context) (Records, error) { return nil, nil }

func TestLocked_NilRecords(t *testing.T) {
	l := NewLocked(&nilStore{})

	err := l.Update(context.Background(), func(recs Records) error {
		assert.NotPanics(t, func() { recs["1"] = User{ChatID: 1} })
		return nil
	})
	require.NoError(t, err)
}

func TestLocked_Update(t *testing.T) {
	ctx := context.Background()
	l := NewLocked(NewMemory())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Update(ctx, func(recs Records) error {
				u := recs["1"]
				u.ChatID++
				recs["1"] = u
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	err := l.View(ctx, func(recs Records) error {
		assert.Equal(t, int64(50), recs["1"].ChatID)
		return nil
	})
	require.NoError(t, err)

	errBoom := errors.New("boom")
	err = l.Update(ctx, func(recs Records) error {
		delete(recs, "1")
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	err = l.View(ctx, func(recs Records) error {
		assert.Contains(t, recs, UserID("1"), "failed update must not be saved")
		return nil
	})
	require.NoError(t, err)
}
