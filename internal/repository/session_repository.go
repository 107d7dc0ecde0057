package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-session/internal/db"
	"github.com/nikolayk812/checkout-session/internal/port"
)

type sessionRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewSession(pool *pgxpool.Pool) port.SessionStore {
	return &sessionRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewSessionWithTx(tx pgx.Tx) port.SessionStore {
	return &sessionRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *sessionRepository) Get(ctx context.Context, ownerID, key string) (port.SessionRecord, error) {
	if err := validateKey(ownerID, key); err != nil {
		return port.SessionRecord{}, err
	}

	row, err := r.q.GetSession(ctx, db.GetSessionParams{
		OwnerID:   ownerID,
		RecordKey: key,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return port.SessionRecord{}, port.ErrSessionNotFound
	}
	if err != nil {
		return port.SessionRecord{}, fmt.Errorf("q.GetSession: %w", err)
	}

	return port.SessionRecord{
		Payload: row.Payload,
		Version: row.Version,
	}, nil
}

func (r *sessionRepository) Put(ctx context.Context, ownerID, key string, payload []byte, expectedVersion int64) (int64, error) {
	if err := validateKey(ownerID, key); err != nil {
		return 0, err
	}
	if len(payload) == 0 {
		return 0, fmt.Errorf("payload is empty")
	}

	version, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (int64, error) {
		current, err := q.LockSession(ctx, db.LockSessionParams{
			OwnerID:   ownerID,
			RecordKey: key,
		})
		if errors.Is(err, pgx.ErrNoRows) {
			return insertSession(ctx, q, ownerID, key, payload, expectedVersion)
		}
		if err != nil {
			return 0, fmt.Errorf("q.LockSession: %w", err)
		}

		if current != expectedVersion {
			return 0, fmt.Errorf("stored[%d] expected[%d]: %w", current, expectedVersion, port.ErrVersionConflict)
		}

		version, err := q.UpdateSession(ctx, db.UpdateSessionParams{
			OwnerID:   ownerID,
			RecordKey: key,
			Payload:   payload,
		})
		if err != nil {
			return 0, fmt.Errorf("q.UpdateSession: %w", err)
		}

		return version, nil
	})
	if err != nil {
		return 0, fmt.Errorf("withTx: %w", err)
	}

	return version, nil
}

// insertSession creates the first record. A concurrent first write makes the
// insert a no-op, reported as a version conflict.
func insertSession(ctx context.Context, q *db.Queries, ownerID, key string, payload []byte, expectedVersion int64) (int64, error) {
	if expectedVersion != 0 {
		return 0, fmt.Errorf("record is gone, expected[%d]: %w", expectedVersion, port.ErrVersionConflict)
	}

	version, err := q.InsertSession(ctx, db.InsertSessionParams{
		OwnerID:   ownerID,
		RecordKey: key,
		Payload:   payload,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("record created concurrently: %w", port.ErrVersionConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("q.InsertSession: %w", err)
	}

	return version, nil
}

func (r *sessionRepository) Delete(ctx context.Context, ownerID, key string) (bool, error) {
	if err := validateKey(ownerID, key); err != nil {
		return false, err
	}

	rowsAffected, err := r.q.DeleteSession(ctx, db.DeleteSessionParams{
		OwnerID:   ownerID,
		RecordKey: key,
	})
	if err != nil {
		return false, fmt.Errorf("q.DeleteSession: %w", err)
	}

	return rowsAffected > 0, nil
}

func validateKey(ownerID, key string) error {
	if ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}
	if key == "" {
		return fmt.Errorf("key is empty")
	}
	return nil
}
