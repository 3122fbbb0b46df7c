package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// Source tells which store answered a lookup.
type Source string

const (
	SourceLocal Source = "local"
	SourceCold  Source = "cold"
)

// AccountView is the normalized account shape returned whatever store it came from.
type AccountView struct {
	ID             uuid.UUID
	Number         string
	ClientID       uuid.UUID
	Type           domain.AccountType
	Currency       string
	InitialBalance decimal.Decimal
	// Balance is only derived for single account lookups.
	Balance     *decimal.Decimal
	Status      domain.AccountStatus
	BlockReason *string
	BlockStart  *time.Time
	BlockEnd    *time.Time
	Metadata    domain.Metadata
	Owner       domain.Owner
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ArchivedAt  *time.Time
	Source      Source
}

// AccountPage is one page of a listing.
type AccountPage struct {
	Items []AccountView
	Page  sqlconfig.PageInfo
}

// StatusChange is a requested status change.
type StatusChange struct {
	Status       domain.AccountStatus
	Reason       string
	DurationDays int
}

func newAccountView(a *domain.Account, owner domain.Owner, source Source) AccountView {
	a = a.Clone()
	return AccountView{
		ID:             a.ID,
		Number:         a.Number,
		ClientID:       a.ClientID,
		Type:           a.Type,
		Currency:       a.Currency,
		InitialBalance: a.InitialBalance,
		Status:         a.Status,
		BlockReason:    a.BlockReason,
		BlockStart:     a.BlockStart,
		BlockEnd:       a.BlockEnd,
		Metadata:       a.Metadata,
		Owner:          owner,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Source:         source,
	}
}

func newColdView(s *domain.Snapshot) AccountView {
	v := newAccountView(s.Account, s.Owner, SourceCold)
	archivedAt := s.ArchivedAt
	v.ArchivedAt = &archivedAt
	return v
}

func withBalance(v AccountView, a *domain.Account, txs []*domain.Transaction) AccountView {
	b := a.Balance(txs)
	v.Balance = &b
	return v
}
