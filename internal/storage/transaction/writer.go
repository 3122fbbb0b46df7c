package transaction

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
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

func (w *Writer) SoftDeleteByAccount(ctx context.Context, accountID uuid.UUID, at time.Time) (int64, error) {
	q := psql.Update(
		um.Table(sqlconfig.TransactionsTable),
		um.SetCol("deleted_at").ToArg(at),
		um.Where(psql.Quote("account_id").EQ(psql.Arg(accountID))),
		um.Where(psql.Quote("deleted_at").IsNull()),
	)
	return w.execCount(ctx, q)
}

func (w *Writer) RestoreByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	q := psql.Update(
		um.Table(sqlconfig.TransactionsTable),
		um.SetCol("deleted_at").ToArg(nil),
		um.Where(psql.Quote("account_id").EQ(psql.Arg(accountID))),
		um.Where(psql.Quote("deleted_at").IsNotNull()),
	)
	return w.execCount(ctx, q)
}

// Upsert writes the transaction by id, replacing any existing row.
func (w *Writer) Upsert(ctx context.Context, t *domain.Transaction) error {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return err
	}
	del := psql.Delete(
		dm.From(sqlconfig.TransactionsTable),
		dm.Where(psql.Quote("id").EQ(psql.Arg(t.ID))),
	)
	if _, err = bob.Exec(ctx, w.tx, del); err != nil {
		return err
	}
	ins := psql.Insert(
		im.Into(sqlconfig.TransactionsTable, transactionColumns...),
		im.Values(psql.Arg(
			t.ID, t.AccountID, t.Reference, string(t.Type), t.Amount, t.Currency, string(t.Status),
			t.ExecutedAt, string(metadata), t.CreatedAt, t.UpdatedAt, t.DeletedAt,
		)),
	)
	_, err = bob.Exec(ctx, w.tx, ins)
	return err
}

func (w *Writer) execCount(ctx context.Context, q bob.Query) (int64, error) {
	res, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
