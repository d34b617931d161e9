// Package memory is a process-local backend used by tests and by the
// "memory" backend setting. Nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/martijn/clientbook/internal/core/domain"
	"github.com/martijn/clientbook/internal/core/repository"
)

type Store struct {
	mu     sync.RWMutex
	closed bool
	now    func() time.Time

	clients  *clientRepository
	settings *settingRepository
	users    *userRepository
}

// New returns an empty store. Settings are optional seed data.
func New(settings ...domain.Setting) *Store {
	s := &Store{now: time.Now}
	s.clients = &clientRepository{store: s, byID: make(map[string]int)}
	s.settings = &settingRepository{store: s, items: append([]domain.Setting(nil), settings...)}
	s.users = &userRepository{store: s, items: make(map[string]domain.User)}
	return s
}

// Opener returns a repository.Opener that builds a fresh empty store.
func Opener(settings ...domain.Setting) repository.Opener {
	return func(context.Context) (repository.Store, error) {
		return New(settings...), nil
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Clients() repository.ClientRepository   { return s.clients }
func (s *Store) Settings() repository.SettingRepository { return s.settings }
func (s *Store) Users() repository.UserRepository       { return s.users }

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return repository.Fault("ping", repository.ErrHandleClosed)
	}
	return ctx.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// begin checks the store is usable. Callers hold s.mu.
func (s *Store) begin(ctx context.Context, op string) error {
	if s.closed {
		return repository.Fault(op, repository.ErrHandleClosed)
	}
	if err := ctx.Err(); err != nil {
		return repository.Fault(op, err)
	}
	return nil
}
