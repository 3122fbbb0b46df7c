package storagetest

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
)

// NewOwner returns an owner with a fresh client id.
func NewOwner(firstName, lastName string) domain.Owner {
	return domain.Owner{
		ClientID:  uuid.Must(uuid.NewV4()),
		FirstName: firstName,
		LastName:  lastName,
		Email:     fmt.Sprintf("%s.%s@example.com", firstName, lastName),
		Phone:     "+221770000000",
	}
}

// NewAccount returns an ACTIVE account of the given type owned by owner.
func NewAccount(owner domain.Owner, accountType domain.AccountType, createdAt time.Time) *domain.Account {
	number, err := domain.NewAccountNumber()
	if err != nil {
		panic(err)
	}
	return &domain.Account{
		ID:             uuid.Must(uuid.NewV4()),
		Number:         number,
		ClientID:       owner.ClientID,
		Type:           accountType,
		Currency:       "XOF",
		InitialBalance: decimal.RequireFromString("1000.00"),
		Status:         domain.AccountStatusActive,
		Metadata:       domain.Metadata{Version: 1, LastModified: createdAt},
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
}

// Block puts a in the BLOCKED state with the given window, bypassing the state machine.
func Block(a *domain.Account, start, end time.Time) *domain.Account {
	reason := "suspicious activity"
	a.Status = domain.AccountStatusBlocked
	a.BlockReason = &reason
	a.BlockStart = &start
	a.BlockEnd = &end
	return a
}

// NewDeposit returns a validated deposit on the account.
func NewDeposit(a *domain.Account, amount string, at time.Time) *domain.Transaction {
	return &domain.Transaction{
		ID:         uuid.Must(uuid.NewV4()),
		AccountID:  a.ID,
		Reference:  "TX-" + uuid.Must(uuid.NewV4()).String()[:8],
		Type:       domain.TransactionTypeDeposit,
		Amount:     decimal.RequireFromString(amount),
		Currency:   a.Currency,
		Status:     domain.TransactionStatusValidated,
		ExecutedAt: &at,
		Metadata:   domain.Metadata{Version: 1, LastModified: at},
		CreatedAt:  at,
		UpdatedAt:  at,
	}
}

// Seed stores the owner, the account and txCount deposits of 10.00 each.
func (s *Store) Seed(owner domain.Owner, a *domain.Account, txCount int) []*domain.Transaction {
	s.AddOwner(owner)
	s.AddAccount(a)
	txs := make([]*domain.Transaction, txCount)
	for i := range txs {
		txs[i] = NewDeposit(a, "10.00", a.CreatedAt.Add(time.Duration(i+1)*time.Minute))
		s.AddTransaction(txs[i])
	}
	return txs
}
