package platform

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Platform is an open connection to a scenario database.
type Platform struct {
	name   string
	driver string
	db     *sql.DB
}

// Open connects to the platform registered under name.
//
// The connection is verified with a ping and the scenario schema is applied.
// Open is idempotent with respect to the schema - tables are only created if
// they do not exist.
func Open(name string) (*Platform, error) {
	cfg, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return OpenConfig(name, cfg)
}

// OpenConfig connects using an explicit configuration, bypassing the registry.
func OpenConfig(name string, cfg Config) (*Platform, error) {
	driver := cfg.Driver
	if driver == "sqlite" {
		// database/sql driver name registered by mattn/go-sqlite3
		driver = "sqlite3"
	}

	db, err := sql.Open(driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open platform %q: %w", name, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect platform %q: %w", name, err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite supports one writer at a time; a single connection also keeps
		// a shared in-memory database alive for the lifetime of the Platform.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure platform %q: %w", name, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema for platform %q: %w", name, err)
	}

	return &Platform{name: name, driver: cfg.Driver, db: db}, nil
}

// Name returns the name the platform was opened under.
func (p *Platform) Name() string {
	return p.name
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer Platform and Scenario methods when available.
func (p *Platform) DB() *sql.DB {
	return p.db
}

// Close closes the database connection. Safe to call more than once.
func (p *Platform) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}
