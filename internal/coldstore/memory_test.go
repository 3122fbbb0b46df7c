package coldstore

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

func makeSnapshot(number, lastName string, createdAt time.Time) *domain.Snapshot {
	clientID := uuid.Must(uuid.NewV4())
	acc := &domain.Account{
		ID:             uuid.Must(uuid.NewV4()),
		Number:         number,
		ClientID:       clientID,
		Type:           domain.AccountTypeSavings,
		Currency:       "EUR",
		InitialBalance: decimal.RequireFromString("100.00"),
		Status:         domain.AccountStatusBlocked,
		CreatedAt:      createdAt,
	}
	tx := &domain.Transaction{
		ID:        uuid.Must(uuid.NewV4()),
		AccountID: acc.ID,
		Type:      domain.TransactionTypeDeposit,
		Amount:    decimal.RequireFromString("25.00"),
		Status:    domain.TransactionStatusValidated,
	}
	owner := domain.Owner{ClientID: clientID, FirstName: "Ada", LastName: lastName, Email: lastName + "@example.com"}
	return domain.NewSnapshot(acc, owner, []*domain.Transaction{tx}, createdAt.Add(time.Hour))
}

// -- MemoryGateway tests --

func TestMemoryGateway_UpsertFindDelete(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()
	s := makeSnapshot("CPT-AAAA0001", "Lovelace", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, g.Upsert(ctx, s))
	require.NoError(t, g.Upsert(ctx, s))
	assert.Equal(t, 1, g.Len())

	found, err := g.Find(ctx, s.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Account.Number, found.Account.Number)
	assert.Len(t, found.Transactions, 1)

	require.NoError(t, g.Delete(ctx, s.Account.ID))
	require.NoError(t, g.Delete(ctx, s.Account.ID))

	_, err = g.Find(ctx, s.Account.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryGateway_FindReturnsCopy(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()
	s := makeSnapshot("CPT-AAAA0001", "Lovelace", time.Now())
	require.NoError(t, g.Upsert(ctx, s))

	found, err := g.Find(ctx, s.Account.ID)
	require.NoError(t, err)
	found.Account.Status = domain.AccountStatusActive

	again, err := g.Find(ctx, s.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusBlocked, again.Account.Status)
}

func TestMemoryGateway_Unreachable(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()
	g.SetReachable(false)

	assert.False(t, g.IsReachable(ctx))
	assert.ErrorIs(t, g.Upsert(ctx, makeSnapshot("CPT-1", "X", time.Now())), domain.ErrColdStoreUnreachable)
	assert.ErrorIs(t, g.Delete(ctx, uuid.Must(uuid.NewV4())), domain.ErrColdStoreUnreachable)
	_, err := g.Find(ctx, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, domain.ErrColdStoreUnreachable)
	_, err = g.List(ctx, sqlconfig.AccountQuery{})
	assert.ErrorIs(t, err, domain.ErrColdStoreUnreachable)
}

func TestMemoryGateway_ListFiltersSortsAndPages(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGateway()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Hopper", "Lovelace", "Turing"} {
		require.NoError(t, g.Upsert(ctx, makeSnapshot("CPT-000"+string(rune('1'+i)), name, base.Add(time.Duration(i)*time.Hour))))
	}

	res, err := g.List(ctx, sqlconfig.AccountQuery{Sort: sqlconfig.SortCreatedAt, Order: sqlconfig.SortAsc, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Hopper", res.Items[0].Owner.LastName)
	assert.Equal(t, "Lovelace", res.Items[1].Owner.LastName)
	assert.Empty(t, res.Items[0].Transactions)

	res, err = g.List(ctx, sqlconfig.AccountQuery{Sort: sqlconfig.SortCreatedAt, Order: sqlconfig.SortAsc, Limit: 2, Page: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Turing", res.Items[0].Owner.LastName)

	res, err = g.List(ctx, sqlconfig.AccountQuery{Search: "turing"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}
