package port

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound is returned by SessionStore.Get when no record exists.
	ErrSessionNotFound = errors.New("session not found")
	// ErrVersionConflict is returned by SessionStore.Put when the stored
	// version no longer matches the expected one.
	ErrVersionConflict = errors.New("session version conflict")
)

// SessionRecord is a stored session payload and its version. Version 0 means
// no record exists.
type SessionRecord struct {
	Payload []byte
	Version int64
}

//go:generate mockgen -destination=mock/session_store_mock.go -package=mock . SessionStore

// SessionStore keeps one serialized checkout session per owner and key.
type SessionStore interface {
	Get(ctx context.Context, ownerID, key string) (SessionRecord, error)
	// Put writes payload only if the stored version equals expectedVersion
	// and returns the new version.
	Put(ctx context.Context, ownerID, key string, payload []byte, expectedVersion int64) (int64, error)
	Delete(ctx context.Context, ownerID, key string) (bool, error)
}
