package client

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
	"github.com/carson-networks/account-lifecycle-server/internal/storage/sqlconfig"
)

// IReader resolves account owners. Clients are managed elsewhere; this side only reads them.
//
//go:generate mockery --name IReader --output mock_IReader.go
type IReader interface {
	FindOwner(ctx context.Context, clientID uuid.UUID) (domain.Owner, error)
}

type ownerRow struct {
	ID        uuid.UUID `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
}

type Reader struct {
	exec bob.Executor
}

var _ IReader = (*Reader)(nil)

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindOwner(ctx context.Context, clientID uuid.UUID) (domain.Owner, error) {
	q := psql.Select(
		sm.Columns("id", "first_name", "last_name", "email", "phone"),
		sm.From(sqlconfig.ClientsTable),
		sm.Where(psql.Quote("id").EQ(psql.Arg(clientID))),
	)
	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[ownerRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Owner{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Owner{}, err
	}
	return domain.Owner{
		ClientID:  row.ID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Phone:     row.Phone,
	}, nil
}
