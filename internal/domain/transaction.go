package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusValidated TransactionStatus = "VALIDATED"
	TransactionStatusRejected  TransactionStatus = "REJECTED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction belongs to exactly one account and is archived and restored with it.
type Transaction struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	Reference  string
	Type       TransactionType
	Amount     decimal.Decimal
	Currency   string
	Status     TransactionStatus
	ExecutedAt *time.Time
	Metadata   Metadata
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	c.ExecutedAt = cloneTime(t.ExecutedAt)
	c.DeletedAt = cloneTime(t.DeletedAt)
	return &c
}
