// Package store keeps the latest processing result per session.
package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

// ErrNotFound is returned by Load when a session has no stored result.
var ErrNotFound = errors.New("session not found")

// Entry is a stored result with the revision that produced it.
type Entry struct {
	Revision  int64         `json:"revision"`
	Result    models.Result `json:"result"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Store persists the most recent result for each session.
//
// Save only replaces the stored entry when revision is not older than the
// stored one, so a slow request cannot overwrite the outcome of a newer one.
// It reports whether the entry was written.
type Store interface {
	Save(ctx context.Context, session string, revision int64, res models.Result) (bool, error)
	Load(ctx context.Context, session string) (Entry, error)
	Delete(ctx context.Context, session string) error
	Close() error
}
