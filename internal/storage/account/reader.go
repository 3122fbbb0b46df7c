package account

import (
	"context"
	"database/sql"
	"errors"
	"time"

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

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID, scope sqlconfig.Scope) (*domain.Account, error) {
	return r.findOne(ctx, id, scope)
}

func (r *Reader) findOne(ctx context.Context, id uuid.UUID, scope sqlconfig.Scope, extra ...bob.Mod[*dialect.SelectQuery]) (*domain.Account, error) {
	row, err := bob.One(ctx, r.exec, findQuery(id, scope, extra...), scan.StructMapper[accountRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowToAccount(row)
}

// List returns one page of accounts and the total number of matching rows.
func (r *Reader) List(ctx context.Context, query sqlconfig.AccountQuery) ([]*domain.Account, int, error) {
	countQuery, pageQuery := listQueries(query.Normalize())
	total, err := bob.One(ctx, r.exec, countQuery, scan.SingleColumnMapper[int64])
	if err != nil {
		return nil, 0, err
	}

	rows, err := bob.All(ctx, r.exec, pageQuery, scan.StructMapper[accountRow]())
	if err != nil {
		return nil, 0, err
	}
	accounts, err := rowsToAccounts(rows)
	if err != nil {
		return nil, 0, err
	}
	return accounts, int(total), nil
}

// ListExpiredBlocked returns every BLOCKED account whose block end is set and at or before now.
func (r *Reader) ListExpiredBlocked(ctx context.Context, now time.Time, scope sqlconfig.Scope, savingsOnly bool) ([]*domain.Account, error) {
	rows, err := bob.All(ctx, r.exec, expiredBlockedQuery(now, scope, savingsOnly), scan.StructMapper[accountRow]())
	if err != nil {
		return nil, err
	}
	return rowsToAccounts(rows)
}

func findQuery(id uuid.UUID, scope sqlconfig.Scope, extra ...bob.Mod[*dialect.SelectQuery]) bob.BaseQuery[*dialect.SelectQuery] {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(qualified(sqlconfig.AccountsTable, accountColumns)...),
		sm.From(sqlconfig.AccountsTable),
		sm.Where(psql.Quote(sqlconfig.AccountsTable, "id").EQ(psql.Arg(id))),
	}
	if where := scope.Where(sqlconfig.AccountsTable); where != nil {
		queryMods = append(queryMods, sm.Where(where))
	}
	queryMods = append(queryMods, extra...)
	return psql.Select(queryMods...)
}

// listQueries builds the total count and the page select for a normalized query.
func listQueries(query sqlconfig.AccountQuery) (count, page bob.BaseQuery[*dialect.SelectQuery]) {
	cols := sqlconfig.PrimaryAccountColumns
	join := sm.LeftJoin(sqlconfig.ClientsTable).On(
		psql.Quote(sqlconfig.ClientsTable, "id").EQ(psql.Quote(sqlconfig.AccountsTable, "client_id")),
	)

	countMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns("count(*)"),
		sm.From(sqlconfig.AccountsTable),
		join,
	}
	countMods = append(countMods, cols.WhereMods(query, true)...)

	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(qualified(sqlconfig.AccountsTable, accountColumns)...),
		sm.From(sqlconfig.AccountsTable),
		join,
	}
	queryMods = append(queryMods, cols.WhereMods(query, true)...)
	queryMods = append(queryMods, cols.OrderMods(query)...)
	queryMods = append(queryMods, cols.PageMods(query)...)
	return psql.Select(countMods...), psql.Select(queryMods...)
}

func expiredBlockedQuery(now time.Time, scope sqlconfig.Scope, savingsOnly bool) bob.BaseQuery[*dialect.SelectQuery] {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(qualified(sqlconfig.AccountsTable, accountColumns)...),
		sm.From(sqlconfig.AccountsTable),
		sm.Where(psql.Quote(sqlconfig.AccountsTable, "status").EQ(psql.Arg(string(domain.AccountStatusBlocked)))),
		sm.Where(psql.Quote(sqlconfig.AccountsTable, "block_end").IsNotNull()),
		sm.Where(psql.Quote(sqlconfig.AccountsTable, "block_end").LTE(psql.Arg(now))),
		sm.OrderBy(psql.Quote(sqlconfig.AccountsTable, "block_end")).Asc(),
	}
	if savingsOnly {
		queryMods = append(queryMods,
			sm.Where(psql.Quote(sqlconfig.AccountsTable, "type").EQ(psql.Arg(string(domain.AccountTypeSavings)))))
	}
	if where := scope.Where(sqlconfig.AccountsTable); where != nil {
		queryMods = append(queryMods, sm.Where(where))
	}
	return psql.Select(queryMods...)
}

func rowsToAccounts(rows []accountRow) ([]*domain.Account, error) {
	result := make([]*domain.Account, len(rows))
	for i, row := range rows {
		acc, err := rowToAccount(row)
		if err != nil {
			return nil, err
		}
		result[i] = acc
	}
	return result, nil
}
