package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/account-lifecycle-server/internal/coldstore"
	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/jobs"
	"github.com/carson-networks/account-lifecycle-server/internal/lifecycle"
	"github.com/carson-networks/account-lifecycle-server/internal/operator"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/storagetest"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var admin = domain.AdminPrincipal{ID: uuid.Must(uuid.NewV4())}

type testEnv struct {
	svc     *AccountService
	store   *storagetest.Store
	gateway *coldstore.MemoryGateway
	machine *lifecycle.Machine
}

func newAccountTestService(t *testing.T, gateway coldstore.Gateway) *testEnv {
	t.Helper()
	log, _ := test.NewNullLogger()
	mem := coldstore.NewMemoryGateway()
	if gateway == nil {
		gateway = mem
	}
	store := storagetest.New()
	machine := lifecycle.NewMachine(log).WithClock(func() time.Time { return testNow })
	op := operator.NewOperatorDelegator(store, 2, log)
	op.Start()
	t.Cleanup(op.Stop)
	restorer := jobs.NewRestorer(gateway, op, machine, log)
	return &testEnv{
		svc:     NewAccountService(store, gateway, op, machine, restorer, nil, log),
		store:   store,
		gateway: mem,
		machine: machine,
	}
}

func (e *testEnv) seedActive(accountType domain.AccountType, deposits int) (*domain.Account, domain.Owner) {
	owner := storagetest.NewOwner("Awa", "Diop")
	acc := storagetest.NewAccount(owner, accountType, testNow.Add(-48*time.Hour))
	e.store.Seed(owner, acc, deposits)
	return acc, owner
}

func (e *testEnv) seedCold() (*domain.Account, domain.Owner) {
	owner := storagetest.NewOwner("Fatou", "Sow")
	acc := storagetest.NewAccount(owner, domain.AccountTypeSavings, testNow.Add(-90*24*time.Hour))
	storagetest.Block(acc, testNow.Add(-31*24*time.Hour), testNow.Add(-24*time.Hour))
	txs := []*domain.Transaction{storagetest.NewDeposit(acc, "40.00", testNow.Add(-80*24*time.Hour))}
	if err := e.gateway.Upsert(context.Background(), domain.NewSnapshot(acc, owner, txs, testNow.Add(-time.Hour))); err != nil {
		panic(err)
	}
	return acc, owner
}

// -- GetAccount tests --

func TestGetAccount_Local(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, owner := env.seedActive(domain.AccountTypeSavings, 2)

	view, err := env.svc.GetAccount(context.Background(), admin, acc.ID)

	require.NoError(t, err)
	assert.Equal(t, SourceLocal, view.Source)
	assert.Equal(t, acc.Number, view.Number)
	assert.Equal(t, owner.LastName, view.Owner.LastName)
	require.NotNil(t, view.Balance)
	assert.True(t, decimal.RequireFromString("1020.00").Equal(*view.Balance))
	assert.Nil(t, view.ArchivedAt)
}

func TestGetAccount_ColdOnly(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, owner := env.seedCold()

	view, err := env.svc.GetAccount(context.Background(), admin, acc.ID)

	require.NoError(t, err)
	assert.Equal(t, SourceCold, view.Source)
	assert.Equal(t, acc.ID, view.ID)
	assert.Equal(t, owner.FullName(), view.Owner.FullName())
	require.NotNil(t, view.ArchivedAt)
	assert.True(t, decimal.RequireFromString("1040.00").Equal(*view.Balance))
}

func TestGetAccount_NeitherStore(t *testing.T) {
	env := newAccountTestService(t, nil)

	_, err := env.svc.GetAccount(context.Background(), admin, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAccount_ColdUnreachableIsNotFound(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, _ := env.seedCold()
	env.gateway.SetReachable(false)

	_, err := env.svc.GetAccount(context.Background(), admin, acc.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrColdStoreUnreachable)
}

func TestGetAccount_ColdErrorIsNotFound(t *testing.T) {
	gateway := coldstore.NewMockGateway(t)
	env := newAccountTestService(t, gateway)
	id := uuid.Must(uuid.NewV4())

	gateway.EXPECT().IsReachable(mock.Anything).Return(true).Once()
	gateway.EXPECT().Find(mock.Anything, id).Return(nil, domain.ErrColdStoreUnreachable).Once()

	_, err := env.svc.GetAccount(context.Background(), admin, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAccount_ReachabilityProbedEveryCall(t *testing.T) {
	gateway := coldstore.NewMockGateway(t)
	env := newAccountTestService(t, gateway)
	id := uuid.Must(uuid.NewV4())

	gateway.EXPECT().IsReachable(mock.Anything).Return(false).Once()
	gateway.EXPECT().IsReachable(mock.Anything).Return(true).Once()
	gateway.EXPECT().Find(mock.Anything, id).Return(nil, domain.ErrNotFound).Once()

	_, err := env.svc.GetAccount(context.Background(), admin, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.svc.GetAccount(context.Background(), admin, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAccount_CanceledCallerDoesNotFailSharedLookup(t *testing.T) {
	gateway := coldstore.NewMockGateway(t)
	env := newAccountTestService(t, gateway)
	owner := storagetest.NewOwner("Fatou", "Sow")
	acc := storagetest.NewAccount(owner, domain.AccountTypeSavings, testNow.Add(-90*24*time.Hour))
	snapshot := domain.NewSnapshot(acc, owner, nil, testNow.Add(-time.Hour))

	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	gateway.EXPECT().IsReachable(mock.Anything).Return(true)
	gateway.EXPECT().Find(mock.Anything, acc.ID).RunAndReturn(func(ctx context.Context, _ uuid.UUID) (*domain.Snapshot, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		select {
		case <-release:
			return snapshot, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := env.svc.GetAccount(firstCtx, admin, acc.ID)
		firstErr <- err
	}()
	<-entered

	type result struct {
		view *AccountView
		err  error
	}
	second := make(chan result, 1)
	go func() {
		view, err := env.svc.GetAccount(context.Background(), admin, acc.ID)
		second <- result{view, err}
	}()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	time.Sleep(20 * time.Millisecond)
	close(release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, SourceCold, res.view.Source)
	assert.Equal(t, acc.ID, res.view.ID)
}

func TestGetAccount_ClientOwnership(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, owner := env.seedActive(domain.AccountTypeChecking, 0)

	_, err := env.svc.GetAccount(context.Background(), domain.ClientPrincipal{ClientID: owner.ClientID}, acc.ID)
	assert.NoError(t, err)

	_, err = env.svc.GetAccount(context.Background(), domain.ClientPrincipal{ClientID: uuid.Must(uuid.NewV4())}, acc.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.svc.GetAccount(context.Background(), nil, acc.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetAccount_ClientOwnsColdAccount(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, owner := env.seedCold()

	view, err := env.svc.GetAccount(context.Background(), &domain.ClientPrincipal{ClientID: owner.ClientID}, acc.ID)

	require.NoError(t, err)
	assert.Equal(t, SourceCold, view.Source)
}

// -- ChangeStatus tests --

func TestChangeStatus_BlockRunsHooksAfterCommit(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, owner := env.seedActive(domain.AccountTypeSavings, 0)

	var got lifecycle.Event
	var committedVersion int
	env.machine.AddHook(lifecycle.Hook{Name: "capture", Fn: func(ctx context.Context, ev lifecycle.Event) error {
		got = ev
		committedVersion = env.store.Account(acc.ID).Metadata.Version
		return nil
	}})

	view, err := env.svc.ChangeStatus(context.Background(), admin, acc.ID, StatusChange{
		Status: domain.AccountStatusBlocked, Reason: "fraud", DurationDays: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusBlocked, view.Status)
	assert.Equal(t, lifecycle.EventBlocked, got.Kind)
	assert.Equal(t, owner.Phone, got.Owner.Phone)
	assert.Equal(t, 2, committedVersion)
	assert.Equal(t, domain.AccountStatusBlocked, env.store.Account(acc.ID).Status)
}

func TestChangeStatus_HookFailureDoesNotUndoTransition(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, _ := env.seedActive(domain.AccountTypeSavings, 0)

	var secondRan atomic.Bool
	env.machine.AddHook(lifecycle.Hook{Name: "failing", Fn: func(ctx context.Context, ev lifecycle.Event) error {
		return errors.New("sms provider down")
	}})
	env.machine.AddHook(lifecycle.Hook{Name: "second", Fn: func(ctx context.Context, ev lifecycle.Event) error {
		secondRan.Store(true)
		return nil
	}})

	_, err := env.svc.ChangeStatus(context.Background(), admin, acc.ID, StatusChange{Status: domain.AccountStatusClosed})

	require.NoError(t, err)
	assert.True(t, secondRan.Load())
	assert.Equal(t, domain.AccountStatusClosed, env.store.Account(acc.ID).Status)
}

func TestChangeStatus_RefusedTransitionRunsNoHooks(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, _ := env.seedActive(domain.AccountTypeChecking, 0)

	var ran atomic.Bool
	env.machine.AddHook(lifecycle.Hook{Name: "capture", Fn: func(ctx context.Context, ev lifecycle.Event) error {
		ran.Store(true)
		return nil
	}})

	_, err := env.svc.ChangeStatus(context.Background(), admin, acc.ID, StatusChange{
		Status: domain.AccountStatusBlocked, Reason: "fraud", DurationDays: 10,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.False(t, ran.Load())
}

func TestChangeStatus_ClientForbidden(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, owner := env.seedActive(domain.AccountTypeSavings, 0)

	_, err := env.svc.ChangeStatus(context.Background(), domain.ClientPrincipal{ClientID: owner.ClientID}, acc.ID, StatusChange{Status: domain.AccountStatusClosed})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, domain.AccountStatusActive, env.store.Account(acc.ID).Status)
}

func TestChangeStatus_UnblockAfterGraceWindow(t *testing.T) {
	env := newAccountTestService(t, nil)
	owner := storagetest.NewOwner("Awa", "Diop")
	acc := storagetest.NewAccount(owner, domain.AccountTypeSavings, testNow.Add(-48*time.Hour))
	storagetest.Block(acc, testNow.Add(-3*time.Hour), testNow.Add(24*time.Hour))
	env.store.Seed(owner, acc, 0)

	_, err := env.svc.ChangeStatus(context.Background(), admin, acc.ID, StatusChange{Status: domain.AccountStatusActive})

	assert.ErrorIs(t, err, domain.ErrUnblockWindowExpired)
	assert.Equal(t, domain.AccountStatusBlocked, env.store.Account(acc.ID).Status)
}

// -- ListAccounts tests --

func TestListAccounts_ClientSeesOnlyOwnLiveAccounts(t *testing.T) {
	env := newAccountTestService(t, nil)
	mine, owner := env.seedActive(domain.AccountTypeSavings, 0)
	env.seedActive(domain.AccountTypeSavings, 0)

	archived := storagetest.NewAccount(owner, domain.AccountTypeSavings, testNow.Add(-time.Hour))
	deletedAt := testNow.Add(-time.Minute)
	archived.DeletedAt = &deletedAt
	env.store.AddAccount(archived)

	page, err := env.svc.ListAccounts(context.Background(), domain.ClientPrincipal{ClientID: owner.ClientID}, sqlconfig.AccountQuery{
		Scope: sqlconfig.ScopeAll,
	})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].ID)
	assert.Equal(t, owner.LastName, page.Items[0].Owner.LastName)
	assert.Equal(t, 1, page.Page.TotalItems)
}

func TestListAccounts_AdminPagination(t *testing.T) {
	env := newAccountTestService(t, nil)
	for i := 0; i < 5; i++ {
		env.seedActive(domain.AccountTypeChecking, 0)
	}

	page, err := env.svc.ListAccounts(context.Background(), admin, sqlconfig.AccountQuery{Page: 2, Limit: 2})

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, sqlconfig.PageInfo{
		CurrentPage: 2, TotalPages: 3, TotalItems: 5, ItemsPerPage: 2, HasNext: true, HasPrevious: true,
	}, page.Page)
}

// -- ListArchived tests --

func TestListArchived_Admin(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, _ := env.seedCold()

	page, err := env.svc.ListArchived(context.Background(), admin, sqlconfig.AccountQuery{})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, acc.ID, page.Items[0].ID)
	assert.Equal(t, SourceCold, page.Items[0].Source)
	assert.Equal(t, 10, page.Page.ItemsPerPage)
}

func TestListArchived_ClientForbidden(t *testing.T) {
	env := newAccountTestService(t, nil)

	_, err := env.svc.ListArchived(context.Background(), domain.ClientPrincipal{ClientID: uuid.Must(uuid.NewV4())}, sqlconfig.AccountQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListArchived_Unreachable(t *testing.T) {
	env := newAccountTestService(t, nil)
	env.gateway.SetReachable(false)

	_, err := env.svc.ListArchived(context.Background(), admin, sqlconfig.AccountQuery{})
	assert.ErrorIs(t, err, domain.ErrColdStoreUnreachable)
}

// -- RestoreFromColdStore tests --

func TestRestoreFromColdStore_Success(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, owner := env.seedCold()
	env.store.AddOwner(owner)

	view, err := env.svc.RestoreFromColdStore(context.Background(), admin, acc.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusActive, view.Status)
	assert.Equal(t, SourceLocal, view.Source)
	assert.Equal(t, owner.Email, view.Owner.Email)
	assert.Equal(t, 0, env.gateway.Len())

	local, err := env.svc.GetAccount(context.Background(), admin, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, local.Source)
	assert.Nil(t, local.BlockEnd)
}

func TestRestoreFromColdStore_Missing(t *testing.T) {
	env := newAccountTestService(t, nil)

	_, err := env.svc.RestoreFromColdStore(context.Background(), admin, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRestoreFromColdStore_Unreachable(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, _ := env.seedCold()
	env.gateway.SetReachable(false)

	_, err := env.svc.RestoreFromColdStore(context.Background(), admin, acc.ID)
	assert.ErrorIs(t, err, domain.ErrColdStoreUnreachable)
}

func TestRestoreFromColdStore_ClientForbidden(t *testing.T) {
	env := newAccountTestService(t, nil)
	acc, owner := env.seedCold()

	_, err := env.svc.RestoreFromColdStore(context.Background(), domain.ClientPrincipal{ClientID: owner.ClientID}, acc.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 1, env.gateway.Len())
}
