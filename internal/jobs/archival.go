package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/account-lifecycle-server/internal/coldstore"
	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/metrics"
	"github.com/carson-networks/account-lifecycle-server/internal/operator"
	"github.com/carson-networks/account-lifecycle-server/internal/operator/actions"
	"github.com/carson-networks/account-lifecycle-server/internal/storage"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// ArchivalReport summarizes one archival sweep.
type ArchivalReport struct {
	Selected       int
	Archived       int
	TransferErrors int
	Failed         int
	Skipped        int

	// Degraded lists accounts archived locally without a cold copy.
	Degraded  []uuid.UUID
	FailedIDs []uuid.UUID
}

// ArchivalJob moves expired blocked savings accounts out of the live scope, copying
// them to the cold store on a best-effort basis first.
type ArchivalJob struct {
	storage  storage.IStorage
	gateway  coldstore.Gateway
	operator operator.IOperator
	metrics  metrics.Collector
	log      *logrus.Logger
	now      clock
}

var _ Job = (*ArchivalJob)(nil)

func NewArchivalJob(s storage.IStorage, gateway coldstore.Gateway, op operator.IOperator, collector metrics.Collector, log *logrus.Logger) *ArchivalJob {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &ArchivalJob{
		storage:  s,
		gateway:  gateway,
		operator: op,
		metrics:  collector,
		log:      log,
		now:      utcNow,
	}
}

// WithClock replaces the time source.
func (j *ArchivalJob) WithClock(now func() time.Time) *ArchivalJob {
	j.now = now
	return j
}

func (j *ArchivalJob) Name() string {
	return ArchivalJobName
}

func (j *ArchivalJob) Run(ctx context.Context) error {
	_, err := j.Archive(ctx)
	return err
}

// Archive runs one sweep. Only a failure to select candidates fails the run; per
// account failures are counted and the batch continues.
func (j *ArchivalJob) Archive(ctx context.Context) (*ArchivalReport, error) {
	now := j.now()
	report := &ArchivalReport{}

	candidates, err := j.storage.Read().Accounts.ListExpiredBlocked(ctx, now, sqlconfig.ScopeLive, true)
	if err != nil {
		j.log.WithError(err).Error("ArchivalJob.Select.Error")
		return report, err
	}
	report.Selected = len(candidates)

	for _, acc := range candidates {
		if ctx.Err() != nil {
			j.log.WithError(ctx.Err()).Warn("ArchivalJob.Run.Interrupted")
			break
		}
		j.archiveOne(ctx, acc, now, report)
	}

	j.log.WithFields(logrus.Fields{
		"selected":       report.Selected,
		"archived":       report.Archived,
		"transferErrors": report.TransferErrors,
		"failed":         report.Failed,
		"skipped":        report.Skipped,
	}).Info("ArchivalJob.Run.Complete")
	return report, ctx.Err()
}

func (j *ArchivalJob) archiveOne(ctx context.Context, acc *domain.Account, now time.Time, report *ArchivalReport) {
	fields := logrus.Fields{"accountID": acc.ID.String()}

	snapshot, err := j.snapshot(ctx, acc, now)
	if err != nil {
		j.fail(report, acc.ID, err, fields, "ArchivalJob.Snapshot.Error")
		return
	}

	transferred := false
	if err := j.transfer(ctx, snapshot); err != nil {
		report.TransferErrors++
		report.Degraded = append(report.Degraded, acc.ID)
		j.metrics.RecordTransferDegraded()
		j.log.WithError(err).WithFields(fields).Warn("ArchivalJob.Transfer.Degraded")
	} else {
		transferred = true
	}

	action := &actions.ArchiveAccount{AccountID: acc.ID, At: now, Transferred: transferred}
	if err := j.operator.Process(ctx, action); err != nil {
		j.fail(report, acc.ID, err, fields, "ArchivalJob.Archive.Error")
		return
	}
	if action.Skipped {
		report.Skipped++
		j.metrics.RecordAccountProcessed(ArchivalJobName, resultSkipped)
		j.log.WithFields(fields).Info("ArchivalJob.Archive.Skipped")
		if transferred {
			j.withdrawTransfer(ctx, acc.ID, action.Gone, fields)
		}
		return
	}

	report.Archived++
	result := resultArchived
	if !transferred {
		result = resultDegraded
	}
	j.metrics.RecordAccountProcessed(ArchivalJobName, result)
	j.log.WithFields(fields).WithFields(logrus.Fields{
		"transferred":  transferred,
		"transactions": action.Transactions,
	}).Debug("ArchivalJob.Archive.Complete")
}

func (j *ArchivalJob) snapshot(ctx context.Context, acc *domain.Account, now time.Time) (*domain.Snapshot, error) {
	reader := j.storage.Read()
	owner, err := reader.Clients.FindOwner(ctx, acc.ClientID)
	if errors.Is(err, domain.ErrNotFound) {
		owner = domain.Owner{ClientID: acc.ClientID}
	} else if err != nil {
		return nil, err
	}
	txs, err := reader.Transactions.ListByAccount(ctx, acc.ID, sqlconfig.ScopeLive)
	if err != nil {
		return nil, err
	}
	return domain.NewSnapshot(acc, owner, txs, now), nil
}

func (j *ArchivalJob) transfer(ctx context.Context, snapshot *domain.Snapshot) error {
	if !j.gateway.IsReachable(ctx) {
		return domain.ErrColdStoreUnreachable
	}
	if err := j.gateway.Upsert(ctx, snapshot); err != nil {
		return errors.Join(domain.ErrTransferDegraded, err)
	}
	return nil
}

// withdrawTransfer removes the cold copy of an account that stayed live. When the
// account is no longer live locally the copy may be the only archive and is kept.
func (j *ArchivalJob) withdrawTransfer(ctx context.Context, id uuid.UUID, gone bool, fields logrus.Fields) {
	if gone {
		j.log.WithFields(fields).Warn("ArchivalJob.Archive.Reconcile")
		return
	}
	if err := j.gateway.Delete(context.WithoutCancel(ctx), id); err != nil {
		j.log.WithError(err).WithFields(fields).Error("ArchivalJob.Archive.Reconcile")
		return
	}
	j.log.WithFields(fields).Debug("ArchivalJob.Transfer.Withdrawn")
}

func (j *ArchivalJob) fail(report *ArchivalReport, id uuid.UUID, err error, fields logrus.Fields, event string) {
	report.Failed++
	report.FailedIDs = append(report.FailedIDs, id)
	j.metrics.RecordAccountProcessed(ArchivalJobName, resultFailed)
	j.log.WithError(err).WithFields(fields).Error(event)
}
