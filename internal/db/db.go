package db

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// FileName is the database file created inside the application data directory.
const FileName = "chrono_manager.db"

// InitError reports a failure to prepare the data directory, open the
// database or create the schema.
type InitError struct {
	Path string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize database at %s: %v", e.Path, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Init ensures dataDir exists (creating missing parents), opens or creates
// chrono_manager.db inside it and creates the tables if they are absent.
// Every failure is returned as *InitError; the caller decides whether to abort.
func Init(dataDir string) (*sqlx.DB, error) {
	if strings.TrimSpace(dataDir) == "" {
		return nil, &InitError{Path: dataDir, Err: errors.New("data directory is not set")}
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, &InitError{Path: dataDir, Err: err}
	}
	path := filepath.Join(dataDir, FileName)

	log.Printf("Initializing database at: %s", path)
	d, err := Open(path)
	if err != nil {
		return nil, &InitError{Path: path, Err: err}
	}
	log.Printf("Database initialized successfully")
	return d, nil
}

// Open opens (or creates) a SQLite database and applies the schema.
// path may be a plain file path or a "file:" URI such as
// "file:name?mode=memory&cache=shared".
//
// The pool is capped at one connection, so all statements are serialised by
// database/sql and an in-memory database stays a single database.
func Open(path string) (*sqlx.DB, error) {
	if path == "" {
		path = FileName
	}
	d, err := sqlx.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, err
	}
	d.SetMaxOpenConns(1)
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	// journal_mode may not be supported in some contexts (e.g., in-memory). Ignore errors.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	if err := ensureSchema(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// dsn appends the per-connection pragmas understood by go-sqlite3.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func ensureSchema(d *sqlx.DB) error {
	tx, err := d.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range Tables {
		if _, err := tx.Exec(t.CreateStatement()); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
		for _, stmt := range t.IndexStatements() {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("create index on %s: %w", t.Name, err)
			}
		}
	}
	return tx.Commit()
}
