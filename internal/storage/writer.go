package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/account-lifecycle-server/internal/storage/account"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/client"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/transaction"
)

// Tx is the transaction handle behind a Writer.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Writer groups the table writers of one storage transaction.
type Writer struct {
	tx          Tx
	Account     account.IWriter
	Transaction transaction.IWriter
	Client      client.IReader
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx:          tx,
		Account:     account.NewWriter(tx),
		Transaction: transaction.NewWriter(tx),
		Client:      client.NewReader(tx),
	}
}

// NewWriterWithTx assembles a Writer from arbitrary table writers. Used by
// alternative storage backends.
func NewWriterWithTx(tx Tx, accounts account.IWriter, transactions transaction.IWriter, clients client.IReader) *Writer {
	return &Writer{
		tx:          tx,
		Account:     accounts,
		Transaction: transactions,
		Client:      clients,
	}
}

func (w *Writer) Commit() error {
	return w.tx.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback(context.Background())
}
