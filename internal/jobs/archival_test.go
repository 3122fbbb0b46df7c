package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/account-lifecycle-server/internal/coldstore"
	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/storagetest"
)

// -- ArchivalJob tests --

func TestArchive_ReachableColdStore(t *testing.T) {
	f := newFixture(t)
	acc, owner, txs := f.seedExpired(3)

	report, err := f.archival.Archive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Selected)
	assert.Equal(t, 1, report.Archived)
	assert.Equal(t, 0, report.TransferErrors)
	assert.Empty(t, report.Degraded)

	local := f.store.Account(acc.ID)
	require.NotNil(t, local.DeletedAt)
	require.NotNil(t, local.ColdTransferredAt)
	for _, tx := range f.store.Transactions(acc.ID) {
		assert.NotNil(t, tx.DeletedAt)
	}

	cold, err := f.gateway.Find(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, cold.Account.ID)
	assert.Equal(t, acc.Number, cold.Account.Number)
	assert.Equal(t, domain.AccountStatusBlocked, cold.Account.Status)
	assert.True(t, cold.Account.BlockEnd.Equal(*acc.BlockEnd))
	assert.Equal(t, owner.FullName(), cold.Owner.FullName())
	assert.Equal(t, owner.Phone, cold.Owner.Phone)
	assert.Len(t, cold.Transactions, len(txs))
	assert.True(t, cold.ArchivedAt.Equal(testNow))
	assert.True(t, f.hasLog("ArchivalJob.Run.Complete"))
}

func TestArchive_UnreachableColdStoreDegrades(t *testing.T) {
	f := newFixture(t)
	acc, _, _ := f.seedExpired(2)
	f.gateway.SetReachable(false)

	report, err := f.archival.Archive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Archived)
	assert.Equal(t, 1, report.TransferErrors)
	assert.Equal(t, []uuid.UUID{acc.ID}, report.Degraded)

	local := f.store.Account(acc.ID)
	assert.NotNil(t, local.DeletedAt)
	assert.Nil(t, local.ColdTransferredAt)
	assert.Equal(t, 0, f.gateway.Len())
	assert.True(t, f.hasLog("ArchivalJob.Transfer.Degraded"))
}

func TestArchive_SelectsOnlyExpiredBlockedSavings(t *testing.T) {
	f := newFixture(t)
	expired, _, _ := f.seedExpired(0)

	owner := storagetest.NewOwner("Moussa", "Ndiaye")
	active := storagetest.NewAccount(owner, domain.AccountTypeSavings, testNow.Add(-48*time.Hour))
	f.store.Seed(owner, active, 0)

	stillBlocked := storagetest.NewAccount(owner, domain.AccountTypeSavings, testNow.Add(-48*time.Hour))
	storagetest.Block(stillBlocked, testNow.Add(-24*time.Hour), testNow.Add(24*time.Hour))
	f.store.AddAccount(stillBlocked)

	checking := storagetest.NewAccount(owner, domain.AccountTypeChecking, testNow.Add(-48*time.Hour))
	storagetest.Block(checking, testNow.Add(-48*time.Hour), testNow.Add(-time.Hour))
	f.store.AddAccount(checking)

	endsNow := storagetest.NewAccount(owner, domain.AccountTypeSavings, testNow.Add(-48*time.Hour))
	storagetest.Block(endsNow, testNow.Add(-24*time.Hour), testNow)
	f.store.AddAccount(endsNow)

	report, err := f.archival.Archive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Selected)
	assert.Equal(t, 2, report.Archived)
	assert.NotNil(t, f.store.Account(expired.ID).DeletedAt)
	assert.NotNil(t, f.store.Account(endsNow.ID).DeletedAt)
	assert.Nil(t, f.store.Account(active.ID).DeletedAt)
	assert.Nil(t, f.store.Account(stillBlocked.ID).DeletedAt)
	assert.Nil(t, f.store.Account(checking.ID).DeletedAt)
}

func TestArchive_AlreadyArchivedNotSelected(t *testing.T) {
	f := newFixture(t)
	f.seedExpired(1)

	_, err := f.archival.Archive(context.Background())
	require.NoError(t, err)

	report, err := f.archival.Archive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Selected)
	assert.Equal(t, 1, f.gateway.Len())
}

func TestArchive_OneFailureDoesNotAbortBatch(t *testing.T) {
	f := newFixture(t)
	failing, _, _ := f.seedExpired(2)
	healthy, _, _ := f.seedExpired(2)
	f.store.FailOn("transactions.SoftDeleteByAccount", failing.ID, assert.AnError)

	report, err := f.archival.Archive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Selected)
	assert.Equal(t, 1, report.Archived)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []uuid.UUID{failing.ID}, report.FailedIDs)

	// Account and transactions move together or not at all.
	assert.Nil(t, f.store.Account(failing.ID).DeletedAt)
	for _, tx := range f.store.Transactions(failing.ID) {
		assert.Nil(t, tx.DeletedAt)
	}
	assert.NotNil(t, f.store.Account(healthy.ID).DeletedAt)
	assert.True(t, f.hasLog("ArchivalJob.Archive.Error"))
}

func TestArchive_SnapshotFailureCounted(t *testing.T) {
	f := newFixture(t)
	acc, _, _ := f.seedExpired(1)
	f.store.FailOn("transactions.ListByAccount", acc.ID, assert.AnError)

	report, err := f.archival.Archive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Nil(t, f.store.Account(acc.ID).DeletedAt)
	assert.Equal(t, 0, f.gateway.Len())
}

func newHookedFixture(t *testing.T) (*fixture, *upsertHookGateway) {
	t.Helper()
	var hooked *upsertHookGateway
	f := newFixtureWithGateway(t, coldstore.NewMemoryGateway(), func(g coldstore.Gateway) coldstore.Gateway {
		hooked = &upsertHookGateway{Gateway: g}
		return hooked
	})
	return f, hooked
}

func TestArchive_SkippedAfterTransferWithdrawsColdCopy(t *testing.T) {
	f, hooked := newHookedFixture(t)
	acc, _, _ := f.seedExpired(2)
	hooked.afterUpsert = func(*domain.Snapshot) {
		unblocked := acc.Clone()
		unblocked.Status = domain.AccountStatusActive
		unblocked.BlockReason, unblocked.BlockStart, unblocked.BlockEnd = nil, nil, nil
		f.store.AddAccount(unblocked)
	}

	report, err := f.archival.Archive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Archived)
	assert.Nil(t, f.store.Account(acc.ID).DeletedAt)
	assert.Equal(t, 0, f.gateway.Len())
	assert.True(t, f.hasLog("ArchivalJob.Transfer.Withdrawn"))
}

func TestArchive_SkippedAfterTransferWithdrawFailureIsLogged(t *testing.T) {
	f, hooked := newHookedFixture(t)
	acc, _, _ := f.seedExpired(1)
	hooked.deleteErr = domain.ErrColdStoreUnreachable
	hooked.afterUpsert = func(*domain.Snapshot) {
		unblocked := acc.Clone()
		unblocked.Status = domain.AccountStatusActive
		unblocked.BlockReason, unblocked.BlockStart, unblocked.BlockEnd = nil, nil, nil
		f.store.AddAccount(unblocked)
	}

	report, err := f.archival.Archive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, f.gateway.Len())
	assert.True(t, f.hasLog("ArchivalJob.Archive.Reconcile"))
}

func TestArchive_SkippedAccountNoLongerLiveKeepsColdCopy(t *testing.T) {
	f, hooked := newHookedFixture(t)
	acc, _, _ := f.seedExpired(1)
	hooked.afterUpsert = func(*domain.Snapshot) {
		archived := acc.Clone()
		at := testNow.Add(-time.Minute)
		archived.DeletedAt = &at
		f.store.AddAccount(archived)
	}

	report, err := f.archival.Archive(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, f.gateway.Len())
	assert.True(t, f.hasLog("ArchivalJob.Archive.Reconcile"))
	assert.False(t, f.hasLog("ArchivalJob.Transfer.Withdrawn"))
}
