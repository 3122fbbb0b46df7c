package storage

import (
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/account-lifecycle-server/internal/storage/account"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/client"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/transaction"
)

type Reader struct {
	Accounts     account.IReader
	Transactions transaction.IReader
	Clients      client.IReader
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{
		Accounts:     account.NewReader(exec),
		Transactions: transaction.NewReader(exec),
		Clients:      client.NewReader(exec),
	}
}
