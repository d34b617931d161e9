package repository

import "context"

// Store is the root data-access object a backend provides. One instance is
// owned by a Handle for the life of the process.
type Store interface {
	Clients() ClientRepository
	Settings() SettingRepository
	Users() UserRepository

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
