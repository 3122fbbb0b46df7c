package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/account-lifecycle-server/internal/coldstore"
	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/lifecycle"
	"github.com/carson-networks/account-lifecycle-server/internal/operator"
	"github.com/carson-networks/account-lifecycle-server/internal/operator/actions"
)

// Restorer brings archived accounts back to the live scope. Once a cold copy exists
// it is authoritative: the local rows are rewritten from it, and it is removed only
// after the local restore has committed.
type Restorer struct {
	gateway  coldstore.Gateway
	operator operator.IOperator
	machine  *lifecycle.Machine
	log      *logrus.Logger

	mu sync.Mutex
	// archivedAt of cold copies whose accounts are live again but could not be removed yet
	pendingDeletes map[uuid.UUID]time.Time
}

func NewRestorer(gateway coldstore.Gateway, op operator.IOperator, machine *lifecycle.Machine, log *logrus.Logger) *Restorer {
	return &Restorer{
		gateway:        gateway,
		operator:       op,
		machine:        machine,
		log:            log,
		pendingDeletes: make(map[uuid.UUID]time.Time),
	}
}

// RestoreLocal restores from the local soft-deleted rows only.
func (r *Restorer) RestoreLocal(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	action := &actions.RestoreAccount{AccountID: id, Machine: r.machine}
	if err := r.operator.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.Restored, nil
}

// RestoreFromCold restores the account from its cold snapshot and then removes the
// snapshot. A failed local step leaves the snapshot untouched. A failed removal does
// not fail the restore; the id is queued and retried by RetryPendingDeletes.
func (r *Restorer) RestoreFromCold(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	snapshot, err := r.gateway.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	action := &actions.RestoreAccount{AccountID: id, Snapshot: snapshot, Machine: r.machine}
	if err := r.operator.Process(ctx, action); err != nil {
		return nil, err
	}

	if err := r.gateway.Delete(context.WithoutCancel(ctx), id); err != nil {
		r.log.WithError(err).WithField("accountID", id.String()).Error("Restorer.ColdDelete.Reconcile")
		r.mu.Lock()
		r.pendingDeletes[id] = snapshot.ArchivedAt
		r.mu.Unlock()
	}
	return action.Restored, nil
}

// PendingDeletes returns the ids whose cold copy is still waiting to be removed.
func (r *Restorer) PendingDeletes() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.pendingDeletes))
	for id := range r.pendingDeletes {
		ids = append(ids, id)
	}
	return ids
}

// RetryPendingDeletes removes the cold copies left behind by earlier restores and
// returns how many are still pending. A cold copy archived again since the restore
// is newer than the one queued and is kept.
func (r *Restorer) RetryPendingDeletes(ctx context.Context) int {
	var remaining int
	for _, id := range r.PendingDeletes() {
		fields := logrus.Fields{"accountID": id.String()}
		if err := r.retryDelete(ctx, id); err != nil {
			r.log.WithError(err).WithFields(fields).Warn("Restorer.ColdDelete.Retry.Error")
			remaining++
			continue
		}
		r.mu.Lock()
		delete(r.pendingDeletes, id)
		r.mu.Unlock()
		r.log.WithFields(fields).Info("Restorer.ColdDelete.Reconciled")
	}
	return remaining
}

func (r *Restorer) retryDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	archivedAt := r.pendingDeletes[id]
	r.mu.Unlock()

	snapshot, err := r.gateway.Find(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !snapshot.ArchivedAt.Equal(archivedAt) {
		return nil
	}
	return r.gateway.Delete(ctx, id)
}
