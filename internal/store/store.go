// Package store persists session snapshots between requests and restarts.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/park285/samarth-chess/internal/game"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrConcurrentUpdate = errors.New("concurrent session update")
)

// Record is one stored session. Version starts at 1 and increases by one on
// every successful Save. StartedAt marks the beginning of the current game
// and moves forward on reset.
type Record struct {
	ID        string        `json:"id"`
	Version   int64         `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Session   game.Snapshot `json:"session"`
}

// Store is implemented by RedisStore and MemoryStore.
//
// Save succeeds only when the stored version is rec.Version-1, or when
// nothing is stored under rec.ID (new or expired sessions). Otherwise it
// returns ErrConcurrentUpdate.
type Store interface {
	Load(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
	Close() error
}

func checkVersion(stored, next int64) error {
	if stored != next-1 {
		return ErrConcurrentUpdate
	}
	return nil
}
