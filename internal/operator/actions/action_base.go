package actions

import (
	"context"

	"github.com/carson-networks/account-lifecycle-server/internal/storage"
)

type IAction interface {
	Name() string
	Perform(ctx context.Context, writer *storage.Writer) error
}
