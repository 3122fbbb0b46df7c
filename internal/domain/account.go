package domain

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// AccountType is the product kind of an account. Only savings accounts can be blocked.
type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING"
	AccountTypeSavings  AccountType = "SAVINGS"
)

func (t AccountType) Valid() bool {
	return t == AccountTypeChecking || t == AccountTypeSavings
}

// AccountStatus is the lifecycle status of an account.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusBlocked AccountStatus = "BLOCKED"
	AccountStatusClosed  AccountStatus = "CLOSED"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusBlocked, AccountStatusClosed:
		return true
	}
	return false
}

// Metadata is bumped on every mutation of the owning record.
type Metadata struct {
	LastModified time.Time `json:"lastModified"`
	Version      int       `json:"version"`
}

// Touch increments the version and stamps the modification time.
func (m *Metadata) Touch(at time.Time) {
	m.Version++
	m.LastModified = at
}

// Account is a customer account ("compte") in either store.
type Account struct {
	ID             uuid.UUID
	Number         string
	ClientID       uuid.UUID
	Type           AccountType
	Currency       string
	InitialBalance decimal.Decimal
	Status         AccountStatus

	BlockReason *string
	BlockStart  *time.Time
	BlockEnd    *time.Time

	Metadata Metadata

	// ColdTransferredAt is set when the archival transfer to the cold store succeeded.
	ColdTransferredAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsArchived reports whether the account is soft-deleted in the primary store.
func (a *Account) IsArchived() bool {
	return a.DeletedAt != nil
}

// BlockExpired reports whether the account is blocked and its block end is at or before now.
func (a *Account) BlockExpired(now time.Time) bool {
	return a.Status == AccountStatusBlocked && a.BlockEnd != nil && !a.BlockEnd.After(now)
}

// CheckBlockInvariant verifies that BLOCKED status and the block timestamps agree.
func (a *Account) CheckBlockInvariant() bool {
	hasWindow := a.BlockStart != nil && a.BlockEnd != nil
	if a.Status == AccountStatusBlocked {
		return hasWindow
	}
	return a.BlockStart == nil && a.BlockEnd == nil
}

// Clone returns a deep copy so snapshots stay immutable while the live row changes.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.BlockReason = cloneString(a.BlockReason)
	c.BlockStart = cloneTime(a.BlockStart)
	c.BlockEnd = cloneTime(a.BlockEnd)
	c.ColdTransferredAt = cloneTime(a.ColdTransferredAt)
	c.DeletedAt = cloneTime(a.DeletedAt)
	return &c
}

// Balance derives the current balance from validated transactions. It is not a ledger.
func (a *Account) Balance(transactions []*Transaction) decimal.Decimal {
	balance := a.InitialBalance
	for _, t := range transactions {
		if t.Status != TransactionStatusValidated {
			continue
		}
		switch t.Type {
		case TransactionTypeDeposit:
			balance = balance.Add(t.Amount)
		case TransactionTypeWithdrawal, TransactionTypeTransfer:
			balance = balance.Sub(t.Amount)
		}
	}
	return balance
}

const accountNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewAccountNumber returns a human readable account number like CPT-7KQ2ZB1X.
func NewAccountNumber() (string, error) {
	buf := make([]byte, 8)
	max := big.NewInt(int64(len(accountNumberAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = accountNumberAlphabet[n.Int64()]
	}
	return "CPT-" + string(buf), nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
