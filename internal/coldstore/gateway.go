// Package coldstore is the archive for accounts that have left the primary store.
package coldstore

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// ListResult is one page of archived accounts. Items carry no transactions.
type ListResult struct {
	Items []*domain.Snapshot
	Total int
}

// Gateway is the cold store. Every operation is idempotent: upserting the same snapshot
// twice leaves the same state and deleting a missing id is a no-op.
//
//go:generate mockery --name Gateway --output mock_Gateway.go
type Gateway interface {
	// IsReachable is a liveness probe. false means "continue in local-only mode".
	IsReachable(ctx context.Context) bool
	// Find returns domain.ErrNotFound when the id is not archived.
	Find(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error)
	List(ctx context.Context, query sqlconfig.AccountQuery) (*ListResult, error)
	Upsert(ctx context.Context, snapshot *domain.Snapshot) error
	Delete(ctx context.Context, id uuid.UUID) error
}
