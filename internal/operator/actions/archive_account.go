package actions

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// ArchiveAccount soft-deletes an expired blocked savings account and all of its
// transactions. Transferred records that the cold store already holds the snapshot.
type ArchiveAccount struct {
	AccountID   uuid.UUID
	At          time.Time
	Transferred bool

	// Skipped is set when the account was no longer eligible under the row lock.
	// Gone further tells that it was no longer live at all.
	Skipped      bool
	Gone         bool
	Transactions int64
}

var _ IAction = (*ArchiveAccount)(nil)

func (a *ArchiveAccount) Name() string {
	return "archive-account"
}

func (a *ArchiveAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	acc, err := writer.Account.FindByIDForUpdate(ctx, a.AccountID, sqlconfig.ScopeLive)
	if errors.Is(err, domain.ErrNotFound) {
		a.Skipped = true
		a.Gone = true
		return nil
	}
	if err != nil {
		return err
	}
	if acc.Type != domain.AccountTypeSavings || !acc.BlockExpired(a.At) {
		a.Skipped = true
		return nil
	}

	if a.Transferred {
		at := a.At
		acc.ColdTransferredAt = &at
		if err := writer.Account.SaveState(ctx, acc); err != nil {
			return err
		}
	}
	if err := writer.Account.SoftDelete(ctx, a.AccountID, a.At); err != nil {
		return err
	}
	n, err := writer.Transaction.SoftDeleteByAccount(ctx, a.AccountID, a.At)
	if err != nil {
		return err
	}
	a.Transactions = n
	return nil
}
