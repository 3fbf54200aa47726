// Package credstore persists the portal's single (token, user) credential
// pair. Both halves are written and cleared together; a store holding only
// one of them reads as empty.
package credstore

import (
	"context"
	"errors"
)

const (
	// KeyToken is the key under which the bearer token is stored.
	KeyToken = "token"
	// KeyUser is the key under which the serialized user record is stored.
	KeyUser = "user"
)

var (
	// ErrNotFound is returned by Read when no complete credential pair is stored.
	ErrNotFound = errors.New("credentials not found")
	// ErrCorrupt is returned by Read when stored data exists but cannot be
	// decoded. Callers should Clear the store.
	ErrCorrupt = errors.New("credentials corrupt")
)

// Store is a durable area holding at most one credential pair.
type Store interface {
	// Read returns the stored token and raw user record, ErrNotFound or ErrCorrupt.
	Read(ctx context.Context) (token string, user []byte, err error)
	// Write replaces the stored pair with token and user as one unit.
	Write(ctx context.Context, token string, user []byte) error
	// Clear removes both keys. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

func validPair(token string, user []byte) error {
	if token == "" || len(user) == 0 {
		return errors.New("token and user must both be non-empty")
	}
	return nil
}
