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
	"github.com/carson-networks/account-lifecycle-server/internal/storage"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// RestorationReport summarizes one restoration sweep.
type RestorationReport struct {
	Selected int
	Restored int
	Skipped  int
	Failed   int

	// cold copies of restored accounts still waiting to be removed
	PendingColdDeletes int

	SkippedIDs []uuid.UUID
	FailedIDs  []uuid.UUID
}

// RestorationJob brings archived accounts whose block has expired back as ACTIVE.
type RestorationJob struct {
	storage  storage.IStorage
	gateway  coldstore.Gateway
	restorer *Restorer
	metrics  metrics.Collector
	log      *logrus.Logger
	now      clock
}

var _ Job = (*RestorationJob)(nil)

func NewRestorationJob(s storage.IStorage, gateway coldstore.Gateway, restorer *Restorer, collector metrics.Collector, log *logrus.Logger) *RestorationJob {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	return &RestorationJob{
		storage:  s,
		gateway:  gateway,
		restorer: restorer,
		metrics:  collector,
		log:      log,
		now:      utcNow,
	}
}

func (j *RestorationJob) WithClock(now func() time.Time) *RestorationJob {
	j.now = now
	return j
}

func (j *RestorationJob) Name() string {
	return RestorationJobName
}

func (j *RestorationJob) Run(ctx context.Context) error {
	_, err := j.Restore(ctx)
	return err
}

func (j *RestorationJob) Restore(ctx context.Context) (*RestorationReport, error) {
	now := j.now()
	report := &RestorationReport{}

	if len(j.restorer.PendingDeletes()) > 0 {
		report.PendingColdDeletes = j.restorer.RetryPendingDeletes(ctx)
	}

	candidates, err := j.storage.Read().Accounts.ListExpiredBlocked(ctx, now, sqlconfig.ScopeArchived, false)
	if err != nil {
		j.log.WithError(err).Error("RestorationJob.Select.Error")
		return report, err
	}
	report.Selected = len(candidates)

	for _, acc := range candidates {
		if ctx.Err() != nil {
			j.log.WithError(ctx.Err()).Warn("RestorationJob.Run.Interrupted")
			break
		}
		j.restoreOne(ctx, acc, report)
	}

	j.log.WithFields(logrus.Fields{
		"selected": report.Selected,
		"restored": report.Restored,
		"skipped":  report.Skipped,
		"failed":   report.Failed,
		"pending":  report.PendingColdDeletes,
	}).Info("RestorationJob.Run.Complete")
	return report, ctx.Err()
}

func (j *RestorationJob) restoreOne(ctx context.Context, acc *domain.Account, report *RestorationReport) {
	fields := logrus.Fields{"accountID": acc.ID.String()}

	var err error
	switch {
	case acc.ColdTransferredAt == nil:
		_, err = j.restorer.RestoreLocal(ctx, acc.ID)
	case !j.gateway.IsReachable(ctx):
		report.Skipped++
		report.SkippedIDs = append(report.SkippedIDs, acc.ID)
		j.metrics.RecordAccountProcessed(RestorationJobName, resultSkipped)
		j.log.WithFields(fields).Warn("RestorationJob.ColdStore.Unreachable")
		return
	default:
		_, err = j.restorer.RestoreFromCold(ctx, acc.ID)
		if errors.Is(err, domain.ErrNotFound) {
			// The cold copy is already gone; the local rows are all that is left.
			_, err = j.restorer.RestoreLocal(ctx, acc.ID)
		}
	}

	if err != nil {
		report.Failed++
		report.FailedIDs = append(report.FailedIDs, acc.ID)
		j.metrics.RecordAccountProcessed(RestorationJobName, resultFailed)
		j.log.WithError(err).WithFields(fields).Error("RestorationJob.Restore.Error")
		return
	}
	report.Restored++
	j.metrics.RecordAccountProcessed(RestorationJobName, resultRestored)
	j.log.WithFields(fields).Debug("RestorationJob.Restore.Complete")
}
