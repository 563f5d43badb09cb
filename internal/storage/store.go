// Package storage provides abstractions for the roster snapshot.
package storage

import (
	"context"

	"github.com/amahle/discus-manager/internal/models"
)

// Store defines the interface for the durable roster snapshot. Snapshotting
// is best-effort mirroring of in-memory state, not a database: each Save
// replaces the whole snapshot, and Load is only ever called at startup.
type Store interface {
	// Save replaces the snapshot with the given athletes, in order.
	Save(ctx context.Context, athletes []models.Athlete) error

	// Load returns the snapshotted athletes in saved order.
	// A missing snapshot is not an error; it returns an empty roster.
	Load(ctx context.Context) ([]models.Athlete, error)

	// Clear discards the snapshot if present.
	Clear(ctx context.Context) error
}
