// Package notify turns committed lifecycle events into customer notifications and
// status events.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Dispatcher delivers a text message to a phone number.
//
//go:generate mockery --name Dispatcher --output mock_Dispatcher.go
type Dispatcher interface {
	Send(ctx context.Context, phone, message string) error
}

// LogDispatcher writes messages to the log instead of an SMS provider.
type LogDispatcher struct {
	Log *logrus.Logger
}

var _ Dispatcher = (*LogDispatcher)(nil)

func NewLogDispatcher(log *logrus.Logger) *LogDispatcher {
	return &LogDispatcher{Log: log}
}

func (d *LogDispatcher) Send(ctx context.Context, phone, message string) error {
	d.Log.WithFields(logrus.Fields{
		"phone":   phone,
		"message": message,
	}).Info("Notify.SMS.Sent")
	return nil
}
