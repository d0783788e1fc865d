// Package dbopen opens the SQLite databases used by slidekit (the operation
// journal) on the pure-Go modernc driver. Pragmas go in the DSN so every
// pooled connection gets them, not only the first one.
//
// Default pragmas:
//
//	foreign_keys = ON
//	journal_mode = WAL
//	busy_timeout = 10000
//	synchronous  = NORMAL
//
// Usage:
//
//	db, err := dbopen.Open("journal.db", dbopen.WithMkdirAll())
package dbopen

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

type config struct {
	pragmas  []pragma
	mkdirAll bool
	schemas  []string
}

type pragma struct{ name, value string }

func defaults() config {
	return config{pragmas: []pragma{
		{"foreign_keys", "1"},
		{"journal_mode", "WAL"},
		{"busy_timeout", "10000"},
		{"synchronous", "NORMAL"},
	}}
}

func (c *config) set(name, value string) {
	for i := range c.pragmas {
		if c.pragmas[i].name == name {
			c.pragmas[i].value = value
			return
		}
	}
	c.pragmas = append(c.pragmas, pragma{name, value})
}

// Option customises Open behaviour.
type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds.
func WithBusyTimeout(ms int) Option {
	return func(c *config) { c.set("busy_timeout", strconv.Itoa(ms)) }
}

// WithMkdirAll creates the parent directory of the database first.
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// WithSchema queues DDL to run once the database is open.
func WithSchema(s string) Option { return func(c *config) { c.schemas = append(c.schemas, s) } }

// DSN returns the modernc data source name for path with the pragmas of
// opts.
func DSN(path string, opts ...Option) string {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}
	return dsn(path, cfg)
}

func dsn(path string, cfg config) string {
	q := url.Values{}
	for _, p := range cfg.pragmas {
		q.Add("_pragma", p.name+"("+p.value+")")
	}
	return path + "?" + q.Encode()
}

// Open opens the SQLite database at path and applies the queued schemas.
func Open(path string, opts ...Option) (*sql.DB, error) {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("dbopen: mkdir: %w", err)
		}
	}

	db, err := sql.Open(driverName, dsn(path, cfg))
	if err != nil {
		return nil, fmt.Errorf("dbopen: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbopen: ping %s: %w", path, err)
	}
	for _, s := range cfg.schemas {
		if _, err := db.Exec(s); err != nil {
			db.Close()
			return nil, fmt.Errorf("dbopen: exec schema: %w", err)
		}
	}
	return db, nil
}

// OpenMemory opens an in-memory database for tests. MaxOpenConns is pinned
// to 1 because every ":memory:" connection is a separate database.
func OpenMemory(t testing.TB, opts ...Option) *sql.DB {
	t.Helper()
	db, err := Open(":memory:", opts...)
	if err != nil {
		t.Fatalf("dbopen.OpenMemory: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
