package lifecycle

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Hook runs after a transition has been committed. A failing hook is logged and
// never undoes the transition or stops the remaining hooks.
type Hook struct {
	Name string
	Fn   func(ctx context.Context, ev Event) error
}

// RunHooks invokes every hook in registration order.
func (m *Machine) RunHooks(ctx context.Context, ev Event) {
	for _, h := range m.hooks {
		if err := m.runHook(ctx, h, ev); err != nil {
			m.logger().WithError(err).WithFields(logrus.Fields{
				"hook":      h.Name,
				"event":     ev.Kind,
				"accountID": ev.Account.ID.String(),
			}).Error("Lifecycle.Hook.Error")
		}
	}
}

func (m *Machine) runHook(ctx context.Context, h Hook, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return h.Fn(ctx, ev)
}

func (m *Machine) logger() *logrus.Logger {
	if m.log == nil {
		return logrus.StandardLogger()
	}
	return m.log
}
