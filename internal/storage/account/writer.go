package account

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

type Writer struct {
	tx bob.Tx
	Reader
}

var _ IWriter = (*Writer)(nil)

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

// FindByIDForUpdate reads the account and locks its row until the transaction ends.
func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID, scope sqlconfig.Scope) (*domain.Account, error) {
	return w.findOne(ctx, id, scope, sm.ForUpdate())
}

func (w *Writer) Insert(ctx context.Context, a *domain.Account) error {
	metadata, err := encodeMetadata(a.Metadata)
	if err != nil {
		return err
	}
	q := psql.Insert(
		im.Into(sqlconfig.AccountsTable, accountColumns...),
		im.Values(psql.Arg(
			a.ID, a.Number, a.ClientID, string(a.Type), a.Currency, a.InitialBalance, string(a.Status),
			a.BlockReason, a.BlockStart, a.BlockEnd, metadata, a.ColdTransferredAt,
			a.CreatedAt, a.UpdatedAt, a.DeletedAt,
		)),
	)
	_, err = bob.Exec(ctx, w.tx, q)
	return err
}

// SaveState persists the lifecycle fields of the account.
func (w *Writer) SaveState(ctx context.Context, a *domain.Account) error {
	metadata, err := encodeMetadata(a.Metadata)
	if err != nil {
		return err
	}
	q := psql.Update(
		um.Table(sqlconfig.AccountsTable),
		um.SetCol("status").ToArg(string(a.Status)),
		um.SetCol("block_reason").ToArg(a.BlockReason),
		um.SetCol("block_start").ToArg(a.BlockStart),
		um.SetCol("block_end").ToArg(a.BlockEnd),
		um.SetCol("metadata").ToArg(metadata),
		um.SetCol("cold_transferred_at").ToArg(a.ColdTransferredAt),
		um.SetCol("updated_at").ToArg(a.UpdatedAt),
		um.Where(psql.Quote("id").EQ(psql.Arg(a.ID))),
	)
	return w.execOne(ctx, q)
}

func (w *Writer) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	q := psql.Update(
		um.Table(sqlconfig.AccountsTable),
		um.SetCol("deleted_at").ToArg(at),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("deleted_at").IsNull()),
	)
	return w.execOne(ctx, q)
}

func (w *Writer) Restore(ctx context.Context, id uuid.UUID) error {
	q := psql.Update(
		um.Table(sqlconfig.AccountsTable),
		um.SetCol("deleted_at").ToArg(nil),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	return w.execOne(ctx, q)
}

func (w *Writer) execOne(ctx context.Context, q bob.Query) error {
	res, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
