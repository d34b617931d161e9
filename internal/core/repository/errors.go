package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("unique constraint violated")
	ErrInvalidKey   = errors.New("lookup key has no populated field")
	ErrInvalidData  = errors.New("invalid record data")
	ErrHandleClosed = errors.New("store handle is closed")
)

// StorageFault reports that a backend could not complete an operation.
type StorageFault struct {
	Op  string
	Err error
}

func (e *StorageFault) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageFault) Unwrap() error {
	return e.Err
}

// Fault wraps err as a StorageFault for op. Nil stays nil and an existing
// StorageFault is returned unchanged.
func Fault(op string, err error) error {
	if err == nil {
		return nil
	}
	var sf *StorageFault
	if errors.As(err, &sf) {
		return err
	}
	return &StorageFault{Op: op, Err: err}
}

// IsStorageFault reports whether err carries a StorageFault.
func IsStorageFault(err error) bool {
	var sf *StorageFault
	return errors.As(err, &sf)
}
