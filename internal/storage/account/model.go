package account

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// IReader defines read access to accounts. Every method takes an explicit scope.
//
//go:generate mockery --name IReader --output mock_IReader.go
type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID, scope sqlconfig.Scope) (*domain.Account, error)
	List(ctx context.Context, query sqlconfig.AccountQuery) ([]*domain.Account, int, error)
	ListExpiredBlocked(ctx context.Context, now time.Time, scope sqlconfig.Scope, savingsOnly bool) ([]*domain.Account, error)
}

// IWriter defines account mutations, only available inside a storage transaction.
//
//go:generate mockery --name IWriter --output mock_IWriter.go
type IWriter interface {
	IReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID, scope sqlconfig.Scope) (*domain.Account, error)
	Insert(ctx context.Context, account *domain.Account) error
	SaveState(ctx context.Context, account *domain.Account) error
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
	Restore(ctx context.Context, id uuid.UUID) error
}

var accountColumns = []string{
	"id", "number", "client_id", "type", "currency", "initial_balance", "status",
	"block_reason", "block_start", "block_end", "metadata", "cold_transferred_at",
	"created_at", "updated_at", "deleted_at",
}

type accountRow struct {
	ID                uuid.UUID       `db:"id"`
	Number            string          `db:"number"`
	ClientID          uuid.UUID       `db:"client_id"`
	Type              string          `db:"type"`
	Currency          string          `db:"currency"`
	InitialBalance    decimal.Decimal `db:"initial_balance"`
	Status            string          `db:"status"`
	BlockReason       *string         `db:"block_reason"`
	BlockStart        *time.Time      `db:"block_start"`
	BlockEnd          *time.Time      `db:"block_end"`
	Metadata          []byte          `db:"metadata"`
	ColdTransferredAt *time.Time      `db:"cold_transferred_at"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
	DeletedAt         *time.Time      `db:"deleted_at"`
}

func rowToAccount(row accountRow) (*domain.Account, error) {
	acc := &domain.Account{
		ID:                row.ID,
		Number:            row.Number,
		ClientID:          row.ClientID,
		Type:              domain.AccountType(row.Type),
		Currency:          row.Currency,
		InitialBalance:    row.InitialBalance,
		Status:            domain.AccountStatus(row.Status),
		BlockReason:       row.BlockReason,
		BlockStart:        row.BlockStart,
		BlockEnd:          row.BlockEnd,
		ColdTransferredAt: row.ColdTransferredAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
		DeletedAt:         row.DeletedAt,
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &acc.Metadata); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func encodeMetadata(m domain.Metadata) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func qualified(table string, cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = table + "." + c
	}
	return out
}
