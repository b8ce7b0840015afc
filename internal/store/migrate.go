package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Direction selects which half of a migration pair to run.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

var migrationFilePattern = regexp.MustCompile(`^(\d+)_.*\.(up|down)\.sql$`)

// Migration is one versioned SQL file pair on disk.
type Migration struct {
	Version string
	Name    string
	Up      string
	Down    string
}

// LoadMigrations reads dir and returns its migrations ordered by version.
// A version without both an up and a down file is an error.
func LoadMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	byVersion := map[string]*Migration{}
	for _, entry := range entries {
		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil {
			continue
		}
		m := byVersion[match[1]]
		if m == nil {
			m = &Migration{Version: match[1]}
			byVersion[match[1]] = m
		}
		path := filepath.Join(dir, entry.Name())
		switch Direction(match[2]) {
		case Up:
			if m.Up != "" {
				return nil, fmt.Errorf("migration %s: duplicate up file", m.Version)
			}
			m.Up, m.Name = path, strings.TrimSuffix(entry.Name(), ".up.sql")
		case Down:
			if m.Down != "" {
				return nil, fmt.Errorf("migration %s: duplicate down file", m.Version)
			}
			m.Down = path
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("migration %s: needs both up and down files", m.Version)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// ApplyMigrations runs every pending up migration in version order and
// returns how many it applied.
func ApplyMigrations(ctx context.Context, db *sql.DB, driver, migrationsDir string) (int, error) {
	migrations, err := LoadMigrations(migrationsDir)
	if err != nil {
		return 0, err
	}
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		done, err := isMigrated(ctx, db, driver, m.Name)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}
		if err := runMigration(ctx, db, m.Up, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, rebind(driver, `INSERT INTO schema_migrations(version) VALUES($1)`), m.Name)
			return err
		}); err != nil {
			return applied, fmt.Errorf("migration %s: %w", m.Name, err)
		}
		log.Printf("store: applied migration %s", m.Name)
		applied++
	}
	return applied, nil
}

// RollbackMigrations runs the down file of every applied migration, newest
// first, and returns how many it reverted.
func RollbackMigrations(ctx context.Context, db *sql.DB, driver, migrationsDir string) (int, error) {
	migrations, err := LoadMigrations(migrationsDir)
	if err != nil {
		return 0, err
	}
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return 0, err
	}

	reverted := 0
	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		done, err := isMigrated(ctx, db, driver, m.Name)
		if err != nil {
			return reverted, err
		}
		if !done {
			continue
		}
		if err := runMigration(ctx, db, m.Down, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, rebind(driver, `DELETE FROM schema_migrations WHERE version=$1`), m.Name)
			return err
		}); err != nil {
			return reverted, fmt.Errorf("rollback %s: %w", m.Name, err)
		}
		log.Printf("store: reverted migration %s", m.Name)
		reverted++
	}
	return reverted, nil
}

func runMigration(ctx context.Context, db *sql.DB, path string, record func(*sql.Tx) error) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if text := strings.TrimSpace(string(contents)); text != "" {
		if _, err := tx.ExecContext(ctx, text); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("execute %s: %w", filepath.Base(path), err)
		}
	}
	if err := record(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

func isMigrated(ctx context.Context, db *sql.DB, driver, version string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, rebind(driver, `SELECT COUNT(*) FROM schema_migrations WHERE version=$1`), version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return count > 0, nil
}
