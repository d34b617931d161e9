package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/martijn/clientbook/internal/core/repository"
)

// Kind tags an Error so callers can tell failures apart without parsing text.
type Kind string

const (
	KindStorageFault Kind = "storage_fault"
	KindNotFound     Kind = "not_found"
	KindUnknown      Kind = "unknown"
)

// Error is the structured failure every command returns. It is serialized as
// is across the bridge and the HTTP API.
type Error struct {
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail,omitempty"`
	Entity string `json:"entity,omitempty"`
	ID     string `json:"id,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// StorageFault reports a backend that could not complete the operation.
func StorageFault(err error) *Error {
	return &Error{Kind: KindStorageFault, Detail: err.Error(), cause: err}
}

// NotFound reports that no entity with id exists.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %s not found", entity, id),
		Entity: entity,
		ID:     id,
		cause:  repository.ErrNotFound,
	}
}

// Unknown is the last resort for failures that fit no other kind.
func Unknown(detail string) *Error {
	return &Error{Kind: KindUnknown, Detail: detail}
}

// Status maps e to the HTTP-style status code the bridge and the HTTP API
// both report. Duplicate tax IDs or emails are a conflict.
func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindStorageFault:
		if errors.Is(e, repository.ErrDuplicate) {
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// classify maps a contract error to the taxonomy. id names the record the
// caller addressed, if any.
func classify(err error, entity, id string) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, repository.ErrNotFound) {
		nf := NotFound(entity, id)
		nf.cause = err
		return nf
	}
	if errors.Is(err, repository.ErrHandleClosed) {
		return &Error{Kind: KindUnknown, Detail: err.Error(), cause: err}
	}
	if repository.IsStorageFault(err) {
		return StorageFault(err)
	}
	return &Error{Kind: KindUnknown, Detail: err.Error(), cause: err}
}
