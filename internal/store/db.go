package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

var ErrClosed = errors.New("store: handle closed")

func Open(ctx context.Context, driver, databaseURL string) (*sql.DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("open db: unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	if driver == DriverSQLite {
		// A single connection keeps ":memory:" databases shared.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxIdleConns(10)
		db.SetMaxOpenConns(20)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// Handle owns a database pool that is opened on first use and released by
// Close. Migrations run once, right after the pool opens.
type Handle struct {
	driver        string
	databaseURL   string
	migrationsDir string

	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

func NewHandle(driver, databaseURL, migrationsDir string) *Handle {
	return &Handle{driver: driver, databaseURL: databaseURL, migrationsDir: migrationsDir}
}

func (h *Handle) Driver() string { return h.driver }

// DB returns the pool, opening and migrating it if this is the first call.
// A failed open is retried on the next call.
func (h *Handle) DB(ctx context.Context) (*sql.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	if h.db != nil {
		return h.db, nil
	}

	db, err := Open(ctx, h.driver, h.databaseURL)
	if err != nil {
		return nil, err
	}
	if h.migrationsDir != "" {
		if _, err := ApplyMigrations(ctx, db, h.driver, h.migrationsDir); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	h.db = db
	return db, nil
}

func (h *Handle) Ping(ctx context.Context) error {
	db, err := h.DB(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close releases the pool. Later DB calls fail with ErrClosed.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}

// rebind rewrites $N placeholders for drivers that only take "?". Queries
// must use each placeholder once, in order.
func rebind(driver, query string) string {
	if driver != DriverSQLite {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			j := i + 1
			for j < len(query) && query[j] >= '0' && query[j] <= '9' {
				j++
			}
			if _, err := strconv.Atoi(query[i+1 : j]); err == nil {
				b.WriteByte('?')
				i = j - 1
				continue
			}
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
