package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/carson-networks/account-lifecycle-server/internal/coldstore"
	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/lifecycle"
	"github.com/carson-networks/account-lifecycle-server/internal/operator"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/storagetest"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store       *storagetest.Store
	gateway     *coldstore.MemoryGateway
	machine     *lifecycle.Machine
	op          *operator.OperatorDelegator
	restorer    *Restorer
	archival    *ArchivalJob
	restoration *RestorationJob
	log         *logrus.Logger
	logs        *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithGateway(t, coldstore.NewMemoryGateway())
}

func newFixtureWithGateway(t *testing.T, mem *coldstore.MemoryGateway, wrap ...func(coldstore.Gateway) coldstore.Gateway) *fixture {
	t.Helper()
	log, logs := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	var gateway coldstore.Gateway = mem
	for _, w := range wrap {
		gateway = w(gateway)
	}

	store := storagetest.New()
	machine := lifecycle.NewMachine(log).WithClock(func() time.Time { return testNow })
	op := operator.NewOperatorDelegator(store, 2, log)
	op.Start()
	t.Cleanup(op.Stop)

	restorer := NewRestorer(gateway, op, machine, log)
	return &fixture{
		store:       store,
		gateway:     mem,
		machine:     machine,
		op:          op,
		restorer:    restorer,
		archival:    NewArchivalJob(store, gateway, op, nil, log).WithClock(func() time.Time { return testNow }),
		restoration: NewRestorationJob(store, gateway, restorer, nil, log).WithClock(func() time.Time { return testNow }),
		log:         log,
		logs:        logs,
	}
}

// seedExpired stores a savings account blocked for 30 days whose block ended a day ago.
func (f *fixture) seedExpired(txCount int) (*domain.Account, domain.Owner, []*domain.Transaction) {
	owner := storagetest.NewOwner("Awa", "Diop")
	acc := storagetest.NewAccount(owner, domain.AccountTypeSavings, testNow.Add(-90*24*time.Hour))
	storagetest.Block(acc, testNow.Add(-31*24*time.Hour), testNow.Add(-24*time.Hour))
	txs := f.store.Seed(owner, acc, txCount)
	return acc, owner, txs
}

func (f *fixture) hasLog(message string) bool {
	for _, e := range f.logs.AllEntries() {
		if e.Message == message {
			return true
		}
	}
	return false
}

// blockingGateway holds every Upsert until release is closed.
type blockingGateway struct {
	coldstore.Gateway
	entered chan struct{}
	release chan struct{}
	upserts atomic.Int32
}

func newBlockingGateway(inner coldstore.Gateway) *blockingGateway {
	return &blockingGateway{
		Gateway: inner,
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (g *blockingGateway) Upsert(ctx context.Context, s *domain.Snapshot) error {
	g.upserts.Add(1)
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
	return g.Gateway.Upsert(ctx, s)
}

// failingDeleteGateway fails every Delete until healed.
type failingDeleteGateway struct {
	coldstore.Gateway
	failing atomic.Bool
	deletes atomic.Int32
}

func newFailingDeleteGateway(inner coldstore.Gateway) *failingDeleteGateway {
	g := &failingDeleteGateway{Gateway: inner}
	g.failing.Store(true)
	return g
}

func (g *failingDeleteGateway) Delete(ctx context.Context, id uuid.UUID) error {
	g.deletes.Add(1)
	if g.failing.Load() {
		return domain.ErrColdStoreUnreachable
	}
	return g.Gateway.Delete(ctx, id)
}

// upsertHookGateway runs afterUpsert once a snapshot is stored and can fail Delete.
type upsertHookGateway struct {
	coldstore.Gateway
	afterUpsert func(*domain.Snapshot)
	deleteErr   error
}

func (g *upsertHookGateway) Upsert(ctx context.Context, s *domain.Snapshot) error {
	if err := g.Gateway.Upsert(ctx, s); err != nil {
		return err
	}
	if g.afterUpsert != nil {
		g.afterUpsert(s)
	}
	return nil
}

func (g *upsertHookGateway) Delete(ctx context.Context, id uuid.UUID) error {
	if g.deleteErr != nil {
		return g.deleteErr
	}
	return g.Gateway.Delete(ctx, id)
}
