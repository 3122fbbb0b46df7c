package storagetest

import (
	"context"
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/account"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/client"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/transaction"
)

type accounts struct {
	acc   accessor
	store *Store
}

var _ account.IWriter = (*accounts)(nil)

func (a *accounts) FindByID(ctx context.Context, id uuid.UUID, scope sqlconfig.Scope) (*domain.Account, error) {
	if err := a.store.fault("accounts.FindByID", id); err != nil {
		return nil, err
	}
	var out *domain.Account
	err := a.acc.with(func(st *state) error {
		found, ok := st.accounts[id]
		if !ok || !scope.Includes(found.DeletedAt != nil) {
			return domain.ErrNotFound
		}
		out = found.Clone()
		return nil
	})
	return out, err
}

func (a *accounts) FindByIDForUpdate(ctx context.Context, id uuid.UUID, scope sqlconfig.Scope) (*domain.Account, error) {
	return a.FindByID(ctx, id, scope)
}

func (a *accounts) List(ctx context.Context, query sqlconfig.AccountQuery) ([]*domain.Account, int, error) {
	query = query.Normalize()
	var matched []*domain.Account
	owners := make(map[uuid.UUID]domain.Owner)
	_ = a.acc.with(func(st *state) error {
		for _, acc := range st.accounts {
			owner := st.owners[acc.ClientID]
			if query.Scope.Includes(acc.DeletedAt != nil) && query.Matches(acc, owner) {
				matched = append(matched, acc.Clone())
				owners[acc.ClientID] = owner
			}
		}
		return nil
	})

	sort.SliceStable(matched, func(i, j int) bool {
		return query.Less(matched[i], owners[matched[i].ClientID], matched[j], owners[matched[j].ClientID])
	})
	total := len(matched)
	start := query.Offset()
	if start > total {
		start = total
	}
	end := start + query.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (a *accounts) ListExpiredBlocked(ctx context.Context, now time.Time, scope sqlconfig.Scope, savingsOnly bool) ([]*domain.Account, error) {
	var out []*domain.Account
	_ = a.acc.with(func(st *state) error {
		for _, acc := range st.accounts {
			if !acc.BlockExpired(now) || !scope.Includes(acc.DeletedAt != nil) {
				continue
			}
			if savingsOnly && acc.Type != domain.AccountTypeSavings {
				continue
			}
			out = append(out, acc.Clone())
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].BlockEnd.Before(*out[j].BlockEnd) })
	return out, nil
}

func (a *accounts) Insert(ctx context.Context, acc *domain.Account) error {
	if err := a.store.fault("accounts.Insert", acc.ID); err != nil {
		return err
	}
	return a.acc.with(func(st *state) error {
		st.accounts[acc.ID] = acc.Clone()
		return nil
	})
}

func (a *accounts) SaveState(ctx context.Context, acc *domain.Account) error {
	if err := a.store.fault("accounts.SaveState", acc.ID); err != nil {
		return err
	}
	return a.acc.with(func(st *state) error {
		cur, ok := st.accounts[acc.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = acc.Status
		cur.BlockReason = acc.Clone().BlockReason
		cur.BlockStart = acc.Clone().BlockStart
		cur.BlockEnd = acc.Clone().BlockEnd
		cur.Metadata = acc.Metadata
		cur.ColdTransferredAt = acc.Clone().ColdTransferredAt
		cur.UpdatedAt = acc.UpdatedAt
		return nil
	})
}

func (a *accounts) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := a.store.fault("accounts.SoftDelete", id); err != nil {
		return err
	}
	return a.acc.with(func(st *state) error {
		cur, ok := st.accounts[id]
		if !ok || cur.DeletedAt != nil {
			return domain.ErrNotFound
		}
		deleted := at
		cur.DeletedAt = &deleted
		return nil
	})
}

func (a *accounts) Restore(ctx context.Context, id uuid.UUID) error {
	if err := a.store.fault("accounts.Restore", id); err != nil {
		return err
	}
	return a.acc.with(func(st *state) error {
		cur, ok := st.accounts[id]
		if !ok {
			return domain.ErrNotFound
		}
		cur.DeletedAt = nil
		return nil
	})
}

type transactions struct {
	acc   accessor
	store *Store
}

var _ transaction.IWriter = (*transactions)(nil)

func (t *transactions) ListByAccount(ctx context.Context, accountID uuid.UUID, scope sqlconfig.Scope) ([]*domain.Transaction, error) {
	if err := t.store.fault("transactions.ListByAccount", accountID); err != nil {
		return nil, err
	}
	var out []*domain.Transaction
	_ = t.acc.with(func(st *state) error {
		for _, tr := range st.transactions {
			if tr.AccountID == accountID && scope.Includes(tr.DeletedAt != nil) {
				out = append(out, tr.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (t *transactions) SoftDeleteByAccount(ctx context.Context, accountID uuid.UUID, at time.Time) (int64, error) {
	if err := t.store.fault("transactions.SoftDeleteByAccount", accountID); err != nil {
		return 0, err
	}
	var n int64
	err := t.acc.with(func(st *state) error {
		for _, tr := range st.transactions {
			if tr.AccountID == accountID && tr.DeletedAt == nil {
				deleted := at
				tr.DeletedAt = &deleted
				n++
			}
		}
		return nil
	})
	return n, err
}

func (t *transactions) RestoreByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	if err := t.store.fault("transactions.RestoreByAccount", accountID); err != nil {
		return 0, err
	}
	var n int64
	err := t.acc.with(func(st *state) error {
		for _, tr := range st.transactions {
			if tr.AccountID == accountID && tr.DeletedAt != nil {
				tr.DeletedAt = nil
				n++
			}
		}
		return nil
	})
	return n, err
}

func (t *transactions) Upsert(ctx context.Context, tr *domain.Transaction) error {
	if err := t.store.fault("transactions.Upsert", tr.ID); err != nil {
		return err
	}
	return t.acc.with(func(st *state) error {
		st.transactions[tr.ID] = tr.Clone()
		return nil
	})
}

type clients struct {
	acc accessor
}

var _ client.IReader = (*clients)(nil)

func (c *clients) FindOwner(ctx context.Context, clientID uuid.UUID) (domain.Owner, error) {
	var out domain.Owner
	err := c.acc.with(func(st *state) error {
		o, ok := st.owners[clientID]
		if !ok {
			return domain.ErrNotFound
		}
		out = o
		return nil
	})
	return out, err
}
