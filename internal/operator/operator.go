package operator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/account-lifecycle-server/internal/operator/actions"
	"github.com/carson-networks/account-lifecycle-server/internal/storage"
)

// Operator is the worker that processes items from the queue.
type Operator struct {
	storage storage.IStorage
	queue   chan ActionItem
	log     *logrus.Logger
}

func NewOperator(s storage.IStorage, queue chan ActionItem, log *logrus.Logger) *Operator {
	return &Operator{
		storage: s,
		queue:   queue,
		log:     log,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		item.response <- ActionItemResponse{err: o.processItem(item)}
	}
}

// processItem runs one action inside its own storage transaction.
func (o *Operator) processItem(item ActionItem) (err error) {
	if err := item.ctx.Err(); err != nil {
		return err
	}

	writer, err := o.storage.Write(item.ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action %s panicked: %v", item.action.Name(), r)
			o.rollback(writer, item.action, err)
		}
	}()

	if err = item.action.Perform(item.ctx, writer); err != nil {
		o.rollback(writer, item.action, err)
		return err
	}

	return writer.Commit()
}

func (o *Operator) rollback(writer *storage.Writer, action actions.IAction, cause error) {
	if rbErr := writer.Rollback(); rbErr != nil {
		o.log.WithError(rbErr).WithFields(logrus.Fields{
			"action": action.Name(),
			"cause":  cause.Error(),
		}).Error("Operator.Rollback.Error")
	}
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}
