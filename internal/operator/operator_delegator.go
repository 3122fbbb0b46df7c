package operator

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/account-lifecycle-server/internal/operator/actions"
	"github.com/carson-networks/account-lifecycle-server/internal/storage"
)

var ErrStopped = errors.New("operator stopped")

// IOperator runs an action inside one primary-store transaction.
type IOperator interface {
	Process(ctx context.Context, action actions.IAction) error
}

// OperatorDelegator manages the queue, starts/stops Operators (workers), and enqueues items.
type OperatorDelegator struct {
	storage    storage.IStorage
	queue      chan ActionItem
	numWorkers int
	log        *logrus.Logger
	wg         sync.WaitGroup
	stopOnce   sync.Once

	mu      sync.RWMutex
	stopped bool
}

var _ IOperator = (*OperatorDelegator)(nil)

func NewOperatorDelegator(s storage.IStorage, numWorkers int, log *logrus.Logger) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &OperatorDelegator{
		storage:    s,
		queue:      make(chan ActionItem, 1000),
		numWorkers: numWorkers,
		log:        log,
	}
}

func (d *OperatorDelegator) Start() {
	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		op := NewOperator(d.storage, d.queue, d.log)
		go func() {
			defer d.wg.Done()
			op.Run()
		}()
	}
}

// Stop lets the workers drain the queue and waits for them. Later calls to Process fail.
func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *OperatorDelegator) Process(ctx context.Context, action actions.IAction) error {
	respCh := make(chan ActionItemResponse, 1)
	item := ActionItem{
		ctx:      ctx,
		action:   action,
		response: respCh,
	}

	d.mu.RLock()
	if d.stopped {
		d.mu.RUnlock()
		return ErrStopped
	}
	select {
	case d.queue <- item:
		d.mu.RUnlock()
	case <-ctx.Done():
		d.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case resp := <-respCh:
		return resp.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
