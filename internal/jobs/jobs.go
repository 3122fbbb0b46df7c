// Package jobs holds the scheduled lifecycle sweeps and the machinery that keeps
// them from overlapping.
package jobs

import (
	"context"
	"time"
)

const (
	ArchivalJobName    = "archive-expired-blocked-savings-accounts"
	RestorationJobName = "restore-expired-blocked-accounts"
)

// Outcomes recorded per processed account.
const (
	resultArchived = "archived"
	resultRestored = "restored"
	resultSkipped  = "skipped"
	resultFailed   = "failed"
	resultDegraded = "degraded"
)

// Job is a named unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
