package sqlite

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type DB struct {
	*sqlx.DB
	path string
}

// New connects to the database at dbPath and applies connection pragmas.
// The schema is not touched; see ApplyMigrations.
func New(dbPath string) (*DB, error) {
	if dbPath == "" {
		dbPath = MemoryPath
	}
	memory := dbPath == MemoryPath

	if !memory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", dsn(dbPath, memory))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if memory {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	return &DB{DB: db, path: dbPath}, nil
}

// dsn builds the driver DSN. Pragmas ride on the DSN so that every pooled
// connection gets them, not only the first one.
func dsn(path string, memory bool) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "foreign_keys(1)")
	if !memory {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	q.Set("_time_format", "sqlite")
	q.Set("_txlock", "immediate")
	return path + "?" + q.Encode()
}

func (db *DB) Path() string {
	return db.path
}

func (db *DB) Close() error {
	return db.DB.Close()
}
