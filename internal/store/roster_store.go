package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"seals/api/internal/roster"
	"seals/api/internal/util"
)

// RosterStore is the SQL-backed roster collection.
// Rows are returned in insertion order, which is tracked by the seq column
// and never by created_at.
type RosterStore struct {
	handle *Handle
	now    func() time.Time
	newID  func() string
}

func NewRosterStore(handle *Handle) *RosterStore {
	return &RosterStore{
		handle: handle,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return util.NewID("") },
	}
}

func (s *RosterStore) Ping(ctx context.Context) error {
	return s.handle.Ping(ctx)
}

func (s *RosterStore) List(ctx context.Context) ([]roster.Entry, error) {
	return s.query(ctx, "list roster", `SELECT id, name, position, number FROM roster ORDER BY seq`)
}

func (s *RosterStore) ListByPosition(ctx context.Context, position string) ([]roster.Entry, error) {
	return s.query(ctx, "list roster by position", `SELECT id, name, position, number FROM roster WHERE position = $1 ORDER BY seq`, position)
}

func (s *RosterStore) ListByNumber(ctx context.Context, number string) ([]roster.Entry, error) {
	return s.query(ctx, "list roster by number", `SELECT id, name, position, number FROM roster WHERE number = $1 ORDER BY seq`, number)
}

// Search matches term as a case-insensitive substring of name, position or
// number.
func (s *RosterStore) Search(ctx context.Context, term string, limit int) ([]roster.Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(term))) + "%"
	return s.query(ctx, "search roster", `
		SELECT id, name, position, number FROM roster
		WHERE LOWER(name) LIKE $1 ESCAPE '\'
			OR LOWER(position) LIKE $2 ESCAPE '\'
			OR LOWER(number) LIKE $3 ESCAPE '\'
		ORDER BY seq
		LIMIT $4`, pattern, pattern, pattern, limit)
}

func (s *RosterStore) Count(ctx context.Context) (int, error) {
	db, err := s.handle.DB(ctx)
	if err != nil {
		return 0, err
	}
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roster`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count roster: %w", err)
	}
	return count, nil
}

// Insert stores entry under a new id and returns it.
func (s *RosterStore) Insert(ctx context.Context, entry roster.Entry) (roster.Entry, error) {
	entry.ID = s.newID()
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		return s.insertTx(ctx, tx, entry)
	})
	if err != nil {
		return roster.Entry{}, err
	}
	return entry, nil
}

// Delete reports whether a row was removed.
func (s *RosterStore) Delete(ctx context.Context, id string) (bool, error) {
	db, err := s.handle.DB(ctx)
	if err != nil {
		return false, err
	}
	result, err := db.ExecContext(ctx, rebind(s.handle.Driver(), `DELETE FROM roster WHERE id = $1`), id)
	if err != nil {
		return false, fmt.Errorf("delete roster entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete roster entry: %w", err)
	}
	return affected > 0, nil
}

// Seed inserts entries in order when the table is empty and reports how
// many rows were written. Either every entry is written or none is.
func (s *RosterStore) Seed(ctx context.Context, entries []roster.Entry) (int, error) {
	written := 0
	err := s.withWriteTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM roster`).Scan(&count); err != nil {
			return fmt.Errorf("count roster: %w", err)
		}
		if count > 0 {
			return nil
		}
		for _, entry := range entries {
			entry.ID = s.newID()
			if err := s.insertTx(ctx, tx, entry); err != nil {
				return err
			}
		}
		written = len(entries)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed roster: %w", err)
	}
	return written, nil
}

// withWriteTx runs fn in a transaction that holds off other writers, so
// seq values are handed out one at a time.
func (s *RosterStore) withWriteTx(ctx context.Context, fn func(*sql.Tx) error) error {
	db, err := s.handle.DB(ctx)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin roster write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.handle.Driver() == DriverPostgres {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE roster IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock roster: %w", err)
		}
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster write: %w", err)
	}
	return nil
}

func (s *RosterStore) insertTx(ctx context.Context, tx *sql.Tx, entry roster.Entry) error {
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM roster`).Scan(&seq); err != nil {
		return fmt.Errorf("next roster seq: %w", err)
	}
	_, err := tx.ExecContext(ctx, rebind(s.handle.Driver(), `
		INSERT INTO roster (id, name, position, number, created_at, seq)
		VALUES ($1, $2, $3, $4, $5, $6)
	`), entry.ID, entry.Name, entry.Position, entry.Number, s.now(), seq)
	if err != nil {
		return fmt.Errorf("insert roster entry: %w", err)
	}
	return nil
}

func (s *RosterStore) query(ctx context.Context, op, query string, args ...any) ([]roster.Entry, error) {
	db, err := s.handle.DB(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, rebind(s.handle.Driver(), query), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	entries := []roster.Entry{}
	for rows.Next() {
		var entry roster.Entry
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Position, &entry.Number); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
