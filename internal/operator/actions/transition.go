package actions

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/lifecycle"
	"github.com/carson-networks/account-lifecycle-server/internal/storage"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// Transition applies a requested status change to a live account. Event is set once
// Perform succeeded; hooks are the caller's job after the commit.
type Transition struct {
	AccountID uuid.UUID
	Change    lifecycle.Change
	Machine   *lifecycle.Machine

	Event lifecycle.Event
}

var _ IAction = (*Transition)(nil)

func (t *Transition) Name() string {
	return "transition"
}

func (t *Transition) Perform(ctx context.Context, writer *storage.Writer) error {
	acc, err := writer.Account.FindByIDForUpdate(ctx, t.AccountID, sqlconfig.ScopeLive)
	if err != nil {
		return err
	}

	ev, err := t.Machine.Apply(acc, t.Change)
	if err != nil {
		return err
	}
	if err := writer.Account.SaveState(ctx, acc); err != nil {
		return err
	}

	owner, err := writer.Client.FindOwner(ctx, acc.ClientID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	ev.Owner = owner
	t.Event = ev
	return nil
}
