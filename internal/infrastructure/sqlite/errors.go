package sqlite

import (
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/martijn/clientbook/internal/core/repository"
)

// classify translates constraint violations into contract sentinels and wraps
// the result as a StorageFault for op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *msqlite.Error
	if errors.As(err, &se) {
		switch code := se.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return repository.Fault(op, fmt.Errorf("%w: %v", repository.ErrDuplicate, err))
		case code == sqlite3.SQLITE_CONSTRAINT_CHECK, code == sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return repository.Fault(op, fmt.Errorf("%w: %v", repository.ErrInvalidData, err))
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// Primary code only; fall back on the message.
			msg := se.Error()
			if strings.Contains(msg, "UNIQUE") {
				return repository.Fault(op, fmt.Errorf("%w: %v", repository.ErrDuplicate, err))
			}
			return repository.Fault(op, fmt.Errorf("%w: %v", repository.ErrInvalidData, err))
		}
	}
	return repository.Fault(op, err)
}
