package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/carson-networks/account-lifecycle-server/internal/coldstore"
	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/jobs"
	"github.com/carson-networks/account-lifecycle-server/internal/lifecycle"
	"github.com/carson-networks/account-lifecycle-server/internal/metrics"
	"github.com/carson-networks/account-lifecycle-server/internal/operator"
	"github.com/carson-networks/account-lifecycle-server/internal/operator/actions"
	"github.com/carson-networks/account-lifecycle-server/internal/storage"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

const (
	lookupMiss = "miss"

	// bounds a shared lookup, which outlives any single caller's context
	lookupTimeout = 10 * time.Second
)

// AccountService handles account business logic.
type AccountService struct {
	storage  storage.IStorage
	gateway  coldstore.Gateway
	operator operator.IOperator
	machine  *lifecycle.Machine
	restorer *jobs.Restorer
	metrics  metrics.Collector
	log      *logrus.Logger

	lookups singleflight.Group
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	store storage.IStorage,
	gateway coldstore.Gateway,
	op operator.IOperator,
	machine *lifecycle.Machine,
	restorer *jobs.Restorer,
	collector metrics.Collector,
	log *logrus.Logger,
) *AccountService {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &AccountService{
		storage:  store,
		gateway:  gateway,
		operator: op,
		machine:  machine,
		restorer: restorer,
		metrics:  collector,
		log:      log,
	}
}

// GetAccount resolves an account from the primary store, falling back to the cold
// store. Reachability is probed on every call. Concurrent lookups of one id share a
// single resolution; each caller still returns as soon as its own ctx is done.
func (s *AccountService) GetAccount(ctx context.Context, p domain.Principal, id uuid.UUID) (*AccountView, error) {
	if _, err := domain.MatchPrincipal(p,
		func(domain.AdminPrincipal) (struct{}, error) { return struct{}{}, nil },
		func(domain.ClientPrincipal) (struct{}, error) { return struct{}{}, nil },
	); err != nil {
		return nil, err
	}

	ch := s.lookups.DoChan(id.String(), func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return s.resolve(lookupCtx, id)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	view := *res.Val.(*AccountView)
	if !domain.CanRead(p, view.ClientID) {
		return nil, domain.ErrForbidden
	}
	return &view, nil
}

func (s *AccountService) resolve(ctx context.Context, id uuid.UUID) (*AccountView, error) {
	reader := s.storage.Read()
	acc, err := reader.Accounts.FindByID(ctx, id, sqlconfig.ScopeLive)
	if err == nil {
		owner, err := s.owner(ctx, reader, acc.ClientID)
		if err != nil {
			return nil, err
		}
		txs, err := reader.Transactions.ListByAccount(ctx, id, sqlconfig.ScopeLive)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordLookup(string(SourceLocal))
		view := withBalance(newAccountView(acc, owner, SourceLocal), acc, txs)
		return &view, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if !s.gateway.IsReachable(ctx) {
		s.metrics.RecordLookup(lookupMiss)
		s.log.WithField("accountID", id.String()).Warn("AccountService.Lookup.ColdStoreUnreachable")
		return nil, domain.ErrNotFound
	}
	snapshot, err := s.gateway.Find(ctx, id)
	if err != nil {
		s.metrics.RecordLookup(lookupMiss)
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WithError(err).WithField("accountID", id.String()).Warn("AccountService.Lookup.ColdStoreError")
		}
		return nil, domain.ErrNotFound
	}
	s.metrics.RecordLookup(string(SourceCold))
	view := withBalance(newColdView(snapshot), snapshot.Account, snapshot.Transactions)
	return &view, nil
}

// ChangeStatus applies a status change and runs the post-commit hooks.
func (s *AccountService) ChangeStatus(ctx context.Context, p domain.Principal, id uuid.UUID, change StatusChange) (*AccountView, error) {
	if err := domain.RequireAdmin(p); err != nil {
		return nil, err
	}

	action := &actions.Transition{
		AccountID: id,
		Change: lifecycle.Change{
			Target:       change.Status,
			Reason:       change.Reason,
			DurationDays: change.DurationDays,
		},
		Machine: s.machine,
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, err
	}

	s.machine.RunHooks(context.WithoutCancel(ctx), action.Event)

	view := newAccountView(action.Event.Account, action.Event.Owner, SourceLocal)
	return &view, nil
}

// ListAccounts lists live accounts. Clients only ever see their own.
func (s *AccountService) ListAccounts(ctx context.Context, p domain.Principal, query sqlconfig.AccountQuery) (*AccountPage, error) {
	query, err := domain.MatchPrincipal(p,
		func(domain.AdminPrincipal) (sqlconfig.AccountQuery, error) { return query, nil },
		func(c domain.ClientPrincipal) (sqlconfig.AccountQuery, error) {
			clientID := c.ClientID
			query.ClientID = &clientID
			return query, nil
		},
	)
	if err != nil {
		return nil, err
	}
	query = query.Normalize()
	query.Scope = sqlconfig.ScopeLive

	reader := s.storage.Read()
	accounts, total, err := reader.Accounts.List(ctx, query)
	if err != nil {
		return nil, err
	}

	owners := make(map[uuid.UUID]domain.Owner)
	items := make([]AccountView, len(accounts))
	for i, acc := range accounts {
		owner, ok := owners[acc.ClientID]
		if !ok {
			owner, err = s.owner(ctx, reader, acc.ClientID)
			if err != nil {
				return nil, err
			}
			owners[acc.ClientID] = owner
		}
		items[i] = newAccountView(acc, owner, SourceLocal)
	}
	return &AccountPage{Items: items, Page: sqlconfig.NewPageInfo(query, total)}, nil
}

// ListArchived lists the cold store. Admin only.
func (s *AccountService) ListArchived(ctx context.Context, p domain.Principal, query sqlconfig.AccountQuery) (*AccountPage, error) {
	if err := domain.RequireAdmin(p); err != nil {
		return nil, err
	}
	query = query.Normalize()

	res, err := s.gateway.List(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrColdStoreUnreachable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrColdStoreUnreachable, err)
	}

	items := make([]AccountView, len(res.Items))
	for i, snapshot := range res.Items {
		items[i] = newColdView(snapshot)
	}
	return &AccountPage{Items: items, Page: sqlconfig.NewPageInfo(query, res.Total)}, nil
}

// RestoreFromColdStore moves an archived account back to the primary store as ACTIVE. Admin only.
func (s *AccountService) RestoreFromColdStore(ctx context.Context, p domain.Principal, id uuid.UUID) (*AccountView, error) {
	if err := domain.RequireAdmin(p); err != nil {
		return nil, err
	}
	if !s.gateway.IsReachable(ctx) {
		return nil, domain.ErrColdStoreUnreachable
	}

	acc, err := s.restorer.RestoreFromCold(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.WithField("accountID", id.String()).Info("AccountService.Restore.Complete")

	owner, err := s.owner(ctx, s.storage.Read(), acc.ClientID)
	if err != nil {
		return nil, err
	}
	view := newAccountView(acc, owner, SourceLocal)
	return &view, nil
}

func (s *AccountService) owner(ctx context.Context, reader *storage.Reader, clientID uuid.UUID) (domain.Owner, error) {
	owner, err := reader.Clients.FindOwner(ctx, clientID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Owner{ClientID: clientID}, nil
	}
	return owner, err
}
