package transaction

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

type Reader struct {
	exec bob.Executor
}

var _ IReader = (*Reader)(nil)

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) ListByAccount(ctx context.Context, accountID uuid.UUID, scope sqlconfig.Scope) ([]*domain.Transaction, error) {
	cols := make([]any, len(transactionColumns))
	for i, c := range transactionColumns {
		cols[i] = c
	}
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(cols...),
		sm.From(sqlconfig.TransactionsTable),
		sm.Where(psql.Quote("account_id").EQ(psql.Arg(accountID))),
		sm.OrderBy(psql.Quote("created_at")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	}
	if where := scope.Where(sqlconfig.TransactionsTable); where != nil {
		queryMods = append(queryMods, sm.Where(where))
	}

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Transaction, len(rows))
	for i, row := range rows {
		t, err := rowToTransaction(row)
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}
