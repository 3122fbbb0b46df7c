package transaction

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// IReader defines read access to transactions.
//
//go:generate mockery --name IReader --output mock_IReader.go
type IReader interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID, scope sqlconfig.Scope) ([]*domain.Transaction, error)
}

// IWriter defines transaction mutations. They always act on every transaction of an
// account so an account and its transactions move together.
//
//go:generate mockery --name IWriter --output mock_IWriter.go
type IWriter interface {
	IReader
	SoftDeleteByAccount(ctx context.Context, accountID uuid.UUID, at time.Time) (int64, error)
	RestoreByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
	Upsert(ctx context.Context, t *domain.Transaction) error
}

var transactionColumns = []string{
	"id", "account_id", "reference", "type", "amount", "currency", "status",
	"executed_at", "metadata", "created_at", "updated_at", "deleted_at",
}

type transactionRow struct {
	ID         uuid.UUID       `db:"id"`
	AccountID  uuid.UUID       `db:"account_id"`
	Reference  string          `db:"reference"`
	Type       string          `db:"type"`
	Amount     decimal.Decimal `db:"amount"`
	Currency   string          `db:"currency"`
	Status     string          `db:"status"`
	ExecutedAt *time.Time      `db:"executed_at"`
	Metadata   []byte          `db:"metadata"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
	DeletedAt  *time.Time      `db:"deleted_at"`
}

func rowToTransaction(row transactionRow) (*domain.Transaction, error) {
	t := &domain.Transaction{
		ID:         row.ID,
		AccountID:  row.AccountID,
		Reference:  row.Reference,
		Type:       domain.TransactionType(row.Type),
		Amount:     row.Amount,
		Currency:   row.Currency,
		Status:     domain.TransactionStatus(row.Status),
		ExecutedAt: row.ExecutedAt,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		DeletedAt:  row.DeletedAt,
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &t.Metadata); err != nil {
			return nil, err
		}
	}
	return t, nil
}
