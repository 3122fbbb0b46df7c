package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/account-lifecycle-server/internal/lifecycle"
)

const blockEndLayout = "2006-01-02 15:04 MST"

// SMSMessage renders the customer text for a lifecycle event.
func SMSMessage(ev lifecycle.Event) (string, error) {
	a := ev.Account
	switch ev.Kind {
	case lifecycle.EventBlocked:
		reason := ""
		if a.BlockReason != nil {
			reason = *a.BlockReason
		}
		until := ""
		if a.BlockEnd != nil {
			until = a.BlockEnd.UTC().Format(blockEndLayout)
		}
		return fmt.Sprintf("Your account %s has been blocked. Reason: %s. Blocked until %s.", a.Number, reason, until), nil
	case lifecycle.EventUnblocked:
		return fmt.Sprintf("Your account %s has been unblocked.", a.Number), nil
	case lifecycle.EventClosed:
		return fmt.Sprintf("Your account %s has been closed.", a.Number), nil
	case lifecycle.EventReactivated:
		return fmt.Sprintf("Your account %s has been reactivated.", a.Number), nil
	}
	return "", fmt.Errorf("no sms template for event %q", ev.Kind)
}

// SMSHook sends the owner a text message for every committed transition.
func SMSHook(dispatcher Dispatcher, log *logrus.Logger) lifecycle.Hook {
	return lifecycle.Hook{
		Name: "sms",
		Fn: func(ctx context.Context, ev lifecycle.Event) error {
			if ev.Owner.Phone == "" {
				log.WithFields(logrus.Fields{
					"accountID": ev.Account.ID.String(),
					"event":     ev.Kind,
				}).Info("Notify.SMS.NoPhone")
				return nil
			}
			msg, err := SMSMessage(ev)
			if err != nil {
				return err
			}
			return dispatcher.Send(ctx, ev.Owner.Phone, msg)
		},
	}
}
