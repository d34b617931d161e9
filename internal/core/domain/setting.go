package domain

import "time"

// Setting is an application key/value pair. Only listing is supported.
type Setting struct {
	ID        string    `db:"id"`
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
