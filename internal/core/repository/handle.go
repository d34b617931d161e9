package repository

import (
	"context"
	"sync"
	"sync/atomic"
)

// Opener constructs the backend store. It is called at most once per Handle.
type Opener func(ctx context.Context) (Store, error)

// Handle owns the single Store of the process and opens it lazily on first use.
//
// A failed open is permanent: the error is cached and every later Get returns
// it without calling the Opener again. Build a new Handle to retry.
type Handle struct {
	open Opener

	mu     sync.Mutex // held only while opening or closing
	done   atomic.Bool
	closed atomic.Bool
	store  Store
	err    error
}

func NewHandle(open Opener) *Handle {
	return &Handle{open: open}
}

// NewHandleFor wraps an already-open store.
func NewHandleFor(store Store) *Handle {
	return NewHandle(func(context.Context) (Store, error) { return store, nil })
}

// Get returns the shared store, opening it on the first call. Concurrent
// first callers wait for the one open to finish and see the same result.
// The open outlives the caller: cancelling ctx does not abort or poison it.
func (h *Handle) Get(ctx context.Context) (Store, error) {
	if h.done.Load() {
		return h.result()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Load() {
		return nil, ErrHandleClosed
	}
	if !h.done.Load() {
		store, err := h.open(context.WithoutCancel(ctx))
		if err == nil && store == nil {
			err = Fault("open", ErrInvalidData)
		}
		h.store, h.err = store, err
		h.done.Store(true)
	}
	return h.result()
}

func (h *Handle) result() (Store, error) {
	if h.closed.Load() {
		return nil, ErrHandleClosed
	}
	if h.err != nil {
		return nil, h.err
	}
	return h.store, nil
}

// Clients is a shorthand for Get followed by Store.Clients.
func (h *Handle) Clients(ctx context.Context) (ClientRepository, error) {
	s, err := h.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.Clients(), nil
}

// Opened reports whether the store has been opened successfully and is not
// closed. It never triggers an open.
func (h *Handle) Opened() bool {
	return h.done.Load() && !h.closed.Load() && h.err == nil
}

// Close closes the store if it was opened. It is safe to call more than once.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed.Swap(true) {
		return nil
	}
	if h.done.Load() && h.err == nil {
		return h.store.Close()
	}
	return nil
}
