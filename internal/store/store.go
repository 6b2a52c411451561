// Package store persists engine runs for audit and recomputation
// diffing. Two backends implement the same interface: SQLite for
// single-machine use and Postgres for shared deployments.
package store

import (
	"context"

	"github.com/sells-group/munitax/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Filer  string          `json:"filer,omitempty"`
	Period string          `json:"period,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the run-audit persistence interface.
type Store interface {
	CreateRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	GetRunByDigest(ctx context.Context, digest string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
