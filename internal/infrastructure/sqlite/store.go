package sqlite

import (
	"context"

	"github.com/martijn/clientbook/internal/core/repository"
)

// Store is the SQLite implementation of repository.Store.
type Store struct {
	db *DB
}

// Open connects to dbPath and migrates the schema. An empty path or
// MemoryPath gives a throwaway in-memory database.
func Open(dbPath string) (*Store, error) {
	db, err := New(dbPath)
	if err != nil {
		return nil, repository.Fault("open", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, repository.Fault("migrate", err)
	}
	return &Store{db: db}, nil
}

// Opener adapts Open to repository.Opener.
func Opener(dbPath string) repository.Opener {
	return func(context.Context) (repository.Store, error) {
		return Open(dbPath)
	}
}

func (s *Store) Clients() repository.ClientRepository   { return NewClientRepository(s.db) }
func (s *Store) Settings() repository.SettingRepository { return NewSettingRepository(s.db) }
func (s *Store) Users() repository.UserRepository       { return NewUserRepository(s.db) }

func (s *Store) Ping(ctx context.Context) error {
	return classify("ping", s.db.PingContext(ctx))
}

func (s *Store) Close() error {
	return s.db.Close()
}
