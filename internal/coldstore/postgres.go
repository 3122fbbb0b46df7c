package coldstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

var archivedAccountColumns = []string{
	"id", "number", "client_id", "type", "currency", "initial_balance", "status",
	"block_reason", "block_start", "block_end", "metadata", "created_at", "updated_at",
	"deleted_at", "owner_first_name", "owner_last_name", "owner_email", "owner_phone", "archived_at",
}

var archivedTransactionColumns = []string{
	"id", "account_id", "reference", "type", "amount", "currency", "status",
	"executed_at", "metadata", "created_at", "updated_at",
}

type archivedAccountRow struct {
	ID             uuid.UUID       `db:"id"`
	Number         string          `db:"number"`
	ClientID       uuid.UUID       `db:"client_id"`
	Type           string          `db:"type"`
	Currency       string          `db:"currency"`
	InitialBalance decimal.Decimal `db:"initial_balance"`
	Status         string          `db:"status"`
	BlockReason    *string         `db:"block_reason"`
	BlockStart     *time.Time      `db:"block_start"`
	BlockEnd       *time.Time      `db:"block_end"`
	Metadata       []byte          `db:"metadata"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
	DeletedAt      *time.Time      `db:"deleted_at"`
	OwnerFirstName string          `db:"owner_first_name"`
	OwnerLastName  string          `db:"owner_last_name"`
	OwnerEmail     string          `db:"owner_email"`
	OwnerPhone     string          `db:"owner_phone"`
	ArchivedAt     time.Time       `db:"archived_at"`
}

type archivedTransactionRow struct {
	ID         uuid.UUID       `db:"id"`
	AccountID  uuid.UUID       `db:"account_id"`
	Reference  string          `db:"reference"`
	Type       string          `db:"type"`
	Amount     decimal.Decimal `db:"amount"`
	Currency   string          `db:"currency"`
	Status     string          `db:"status"`
	ExecutedAt *time.Time      `db:"executed_at"`
	Metadata   []byte          `db:"metadata"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// PostgresGateway stores snapshots in a dedicated Postgres database with the owner
// denormalized onto the account row.
type PostgresGateway struct {
	db  *sql.DB
	bob bob.DB
}

var _ Gateway = (*PostgresGateway)(nil)

func NewPostgresGateway(db *sql.DB) *PostgresGateway {
	return &PostgresGateway{db: db, bob: bob.NewDB(db)}
}

func (g *PostgresGateway) IsReachable(ctx context.Context) bool {
	return g.db.PingContext(ctx) == nil
}

func (g *PostgresGateway) Find(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error) {
	q := psql.Select(
		sm.Columns(anyColumns(archivedAccountColumns)...),
		sm.From(sqlconfig.ArchivedAccountsTable),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	row, err := bob.One(ctx, g.bob, q, scan.StructMapper[archivedAccountRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	snapshot, err := rowToSnapshot(row)
	if err != nil {
		return nil, err
	}

	txq := psql.Select(
		sm.Columns(anyColumns(archivedTransactionColumns)...),
		sm.From(sqlconfig.ArchivedTransactionsTable),
		sm.Where(psql.Quote("account_id").EQ(psql.Arg(id))),
		sm.OrderBy(psql.Quote("created_at")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)
	txRows, err := bob.All(ctx, g.bob, txq, scan.StructMapper[archivedTransactionRow]())
	if err != nil {
		return nil, err
	}
	snapshot.Transactions = make([]*domain.Transaction, len(txRows))
	for i, tr := range txRows {
		t, err := rowToTransaction(tr)
		if err != nil {
			return nil, err
		}
		t.DeletedAt = snapshot.Account.DeletedAt
		snapshot.Transactions[i] = t
	}
	return snapshot, nil
}

func (g *PostgresGateway) List(ctx context.Context, query sqlconfig.AccountQuery) (*ListResult, error) {
	query = query.Normalize()
	cols := sqlconfig.ColdAccountColumns

	countMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns("count(*)"),
		sm.From(sqlconfig.ArchivedAccountsTable),
	}
	countMods = append(countMods, cols.WhereMods(query, false)...)
	total, err := bob.One(ctx, g.bob, psql.Select(countMods...), scan.SingleColumnMapper[int64])
	if err != nil {
		return nil, err
	}

	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(anyColumns(archivedAccountColumns)...),
		sm.From(sqlconfig.ArchivedAccountsTable),
	}
	queryMods = append(queryMods, cols.WhereMods(query, false)...)
	queryMods = append(queryMods, cols.OrderMods(query)...)
	queryMods = append(queryMods, cols.PageMods(query)...)

	rows, err := bob.All(ctx, g.bob, psql.Select(queryMods...), scan.StructMapper[archivedAccountRow]())
	if err != nil {
		return nil, err
	}
	items := make([]*domain.Snapshot, len(rows))
	for i, row := range rows {
		s, err := rowToSnapshot(row)
		if err != nil {
			return nil, err
		}
		items[i] = s
	}
	return &ListResult{Items: items, Total: int(total)}, nil
}

// Upsert replaces the archived account and all of its transactions in one transaction.
func (g *PostgresGateway) Upsert(ctx context.Context, s *domain.Snapshot) error {
	stmts, err := upsertStatements(s)
	if err != nil {
		return err
	}
	return g.inTx(ctx, func(tx bob.Tx) error {
		return execAll(ctx, tx, stmts)
	})
}

func (g *PostgresGateway) Delete(ctx context.Context, id uuid.UUID) error {
	return g.inTx(ctx, func(tx bob.Tx) error {
		return execAll(ctx, tx, deleteStatements(id))
	})
}

func (g *PostgresGateway) inTx(ctx context.Context, fn func(tx bob.Tx) error) error {
	tx, err := g.bob.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type statement struct {
	what  string
	query bob.Query
}

func execAll(ctx context.Context, exec bob.Executor, stmts []statement) error {
	for _, st := range stmts {
		if _, err := bob.Exec(ctx, exec, st.query); err != nil {
			return fmt.Errorf("%s: %w", st.what, err)
		}
	}
	return nil
}

// deleteStatements removes the transactions before the account they reference.
func deleteStatements(id uuid.UUID) []statement {
	return []statement{
		{
			what: "delete archived transactions",
			query: psql.Delete(
				dm.From(sqlconfig.ArchivedTransactionsTable),
				dm.Where(psql.Quote("account_id").EQ(psql.Arg(id))),
			),
		},
		{
			what: "delete archived account",
			query: psql.Delete(
				dm.From(sqlconfig.ArchivedAccountsTable),
				dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
			),
		},
	}
}

// upsertStatements clears any previous copy of the account and then inserts the
// snapshot, account first.
func upsertStatements(s *domain.Snapshot) ([]statement, error) {
	a := s.Account
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return nil, err
	}
	stmts := deleteStatements(a.ID)
	stmts = append(stmts, statement{
		what: "insert archived account",
		query: psql.Insert(
			im.Into(sqlconfig.ArchivedAccountsTable, archivedAccountColumns...),
			im.Values(psql.Arg(
				a.ID, a.Number, a.ClientID, string(a.Type), a.Currency, a.InitialBalance, string(a.Status),
				a.BlockReason, a.BlockStart, a.BlockEnd, string(metadata), a.CreatedAt, a.UpdatedAt,
				a.DeletedAt, s.Owner.FirstName, s.Owner.LastName, s.Owner.Email, s.Owner.Phone, s.ArchivedAt,
			)),
		),
	})

	for _, t := range s.Transactions {
		txMetadata, err := json.Marshal(t.Metadata)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, statement{
			what: fmt.Sprintf("insert archived transaction %s", t.ID),
			query: psql.Insert(
				im.Into(sqlconfig.ArchivedTransactionsTable, archivedTransactionColumns...),
				im.Values(psql.Arg(
					t.ID, t.AccountID, t.Reference, string(t.Type), t.Amount, t.Currency, string(t.Status),
					t.ExecutedAt, string(txMetadata), t.CreatedAt, t.UpdatedAt,
				)),
			),
		})
	}
	return stmts, nil
}

func rowToSnapshot(row archivedAccountRow) (*domain.Snapshot, error) {
	acc := &domain.Account{
		ID:             row.ID,
		Number:         row.Number,
		ClientID:       row.ClientID,
		Type:           domain.AccountType(row.Type),
		Currency:       row.Currency,
		InitialBalance: row.InitialBalance,
		Status:         domain.AccountStatus(row.Status),
		BlockReason:    row.BlockReason,
		BlockStart:     row.BlockStart,
		BlockEnd:       row.BlockEnd,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		DeletedAt:      row.DeletedAt,
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &acc.Metadata); err != nil {
			return nil, err
		}
	}
	return &domain.Snapshot{
		Account: acc,
		Owner: domain.Owner{
			ClientID:  row.ClientID,
			FirstName: row.OwnerFirstName,
			LastName:  row.OwnerLastName,
			Email:     row.OwnerEmail,
			Phone:     row.OwnerPhone,
		},
		ArchivedAt: row.ArchivedAt,
	}, nil
}

func rowToTransaction(row archivedTransactionRow) (*domain.Transaction, error) {
	t := &domain.Transaction{
		ID:         row.ID,
		AccountID:  row.AccountID,
		Reference:  row.Reference,
		Type:       domain.TransactionType(row.Type),
		Amount:     row.Amount,
		Currency:   row.Currency,
		Status:     domain.TransactionStatus(row.Status),
		ExecutedAt: row.ExecutedAt,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &t.Metadata); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func anyColumns(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}
