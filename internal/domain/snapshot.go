package domain

import (
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Owner is the denormalized view of the client that owns an account.
type Owner struct {
	ClientID  uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (o Owner) FullName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// Snapshot is the immutable unit moved between the primary and the cold store.
type Snapshot struct {
	Account      *Account
	Owner        Owner
	Transactions []*Transaction
	ArchivedAt   time.Time
}

// NewSnapshot deep copies its inputs.
func NewSnapshot(account *Account, owner Owner, transactions []*Transaction, at time.Time) *Snapshot {
	txs := make([]*Transaction, len(transactions))
	for i, t := range transactions {
		txs[i] = t.Clone()
	}
	return &Snapshot{
		Account:      account.Clone(),
		Owner:        owner,
		Transactions: txs,
		ArchivedAt:   at,
	}
}
