package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers "sqlite" driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	chat_id INTEGER NOT NULL,
	username TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS vacations (
	user_id TEXT NOT NULL,
	start TEXT NOT NULL,
	length INTEGER NOT NULL,
	reminded INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, start),
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);
`

// SQLite is a storage that keeps records in an sqlite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database at path and makes the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// sqlite allows a single writer, so does the store
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err = db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Load returns all users with their vacations.
func (s *SQLite) Load(ctx context.Context) (Records, error) {
	recs := Records{}

	rows, err := s.db.QueryContext(ctx, "SELECT id, chat_id, username FROM users")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			u  User
		)
		if err = rows.Scan(&id, &u.ChatID, &u.Username); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Vacations = []Absence{}
		recs[UserID(id)] = u
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	vrows, err := s.db.QueryContext(ctx,
		"SELECT user_id, start, length, reminded FROM vacations ORDER BY user_id, start")
	if err != nil {
		return nil, fmt.Errorf("query vacations: %w", err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var (
			userID, start string
			a             Absence
		)
		if err = vrows.Scan(&userID, &start, &a.Length, &a.Reminded); err != nil {
			return nil, fmt.Errorf("scan vacation: %w", err)
		}

		if a.Start, err = ParseDate(start); err != nil {
			return nil, fmt.Errorf("vacation of user %s: %w", userID, err)
		}

		u, ok := recs[UserID(userID)]
		if !ok {
			return nil, fmt.Errorf("vacation %s of unknown user %s", start, userID)
		}
		u.Vacations = append(u.Vacations, a)
		recs[UserID(userID)] = u
	}
	if err = vrows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vacations: %w", err)
	}

	return recs, nil
}

// Save replaces all rows with the given records in a single transaction.
func (s *SQLite) Save(ctx context.Context, recs Records) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM vacations"); err != nil {
		return fmt.Errorf("clear vacations: %w", err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}

	for id, u := range recs {
		_, err = tx.ExecContext(ctx, "INSERT INTO users (id, chat_id, username) VALUES (?, ?, ?)",
			string(id), u.ChatID, u.Username)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", id, err)
		}

		for _, a := range u.Vacations {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO vacations (user_id, start, length, reminded) VALUES (?, ?, ?, ?)",
				string(id), a.Start.String(), a.Length, a.Reminded)
			if err != nil {
				return fmt.Errorf("insert vacation %s of user %s: %w", a.Start, id, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }
