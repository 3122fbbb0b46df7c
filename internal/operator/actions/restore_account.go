package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/lifecycle"
	"github.com/carson-networks/account-lifecycle-server/internal/storage"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// RestoreAccount brings an archived account and its transactions back to the live
// scope as ACTIVE. With a Snapshot the local rows are first rewritten from it, which
// also recreates an account whose local rows are gone.
type RestoreAccount struct {
	AccountID uuid.UUID
	Snapshot  *domain.Snapshot
	Machine   *lifecycle.Machine

	Restored *domain.Account
}

var _ IAction = (*RestoreAccount)(nil)

func (r *RestoreAccount) Name() string {
	return "restore-account"
}

func (r *RestoreAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	if r.Snapshot != nil {
		if err := r.hydrate(ctx, writer); err != nil {
			return err
		}
	}

	acc, err := writer.Account.FindByIDForUpdate(ctx, r.AccountID, sqlconfig.ScopeArchived)
	if err != nil {
		return err
	}
	if err := writer.Account.Restore(ctx, r.AccountID); err != nil {
		return err
	}
	if _, err := writer.Transaction.RestoreByAccount(ctx, r.AccountID); err != nil {
		return err
	}

	acc.DeletedAt = nil
	r.Machine.Release(acc)
	if err := writer.Account.SaveState(ctx, acc); err != nil {
		return err
	}
	r.Restored = acc
	return nil
}

// hydrate makes the local rows match the snapshot while keeping them archived.
func (r *RestoreAccount) hydrate(ctx context.Context, writer *storage.Writer) error {
	if r.Snapshot.Account.ID != r.AccountID {
		return fmt.Errorf("snapshot %s does not belong to account %s", r.Snapshot.Account.ID, r.AccountID)
	}
	archivedAt := r.Snapshot.ArchivedAt
	snap := r.Snapshot.Account.Clone()
	if snap.DeletedAt == nil {
		snap.DeletedAt = &archivedAt
	}

	existing, err := writer.Account.FindByIDForUpdate(ctx, r.AccountID, sqlconfig.ScopeAll)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if err := writer.Account.Insert(ctx, snap); err != nil {
			return err
		}
	case err != nil:
		return err
	case !existing.IsArchived():
		return domain.InvalidTransition("restore", "the account is already live")
	default:
		if err := writer.Account.SaveState(ctx, snap); err != nil {
			return err
		}
	}

	for _, t := range r.Snapshot.Transactions {
		tx := t.Clone()
		if tx.DeletedAt == nil {
			tx.DeletedAt = snap.DeletedAt
		}
		if err := writer.Transaction.Upsert(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}
