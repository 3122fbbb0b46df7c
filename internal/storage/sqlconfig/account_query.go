package sqlconfig

import (
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"

	"github.com/carson-networks/account-lifecycle-server/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortBalance   SortKey = "balance"
	SortOwner     SortKey = "owner"
	SortNumber    SortKey = "number"
	SortStatus    SortKey = "status"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// AccountQuery is the filter, sort and pagination vocabulary shared by the
// primary store and the cold store.
type AccountQuery struct {
	Type     domain.AccountType
	Status   domain.AccountStatus
	ClientID *uuid.UUID
	Search   string
	Sort     SortKey
	Order    SortOrder
	Page     int
	Limit    int
	// Scope only applies to the primary store.
	Scope Scope
}

// Normalize fills defaults and clamps the page size.
func (q AccountQuery) Normalize() AccountQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	switch q.Sort {
	case SortCreatedAt, SortBalance, SortOwner, SortNumber, SortStatus:
	default:
		q.Sort = SortCreatedAt
	}
	if q.Order != SortAsc {
		q.Order = SortDesc
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

func (q AccountQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// AccountColumns locates the account and owner columns of one store.
type AccountColumns struct {
	Table          string
	OwnerTable     string
	OwnerFirstName string
	OwnerLastName  string
	OwnerEmail     string
}

var PrimaryAccountColumns = AccountColumns{
	Table:          AccountsTable,
	OwnerTable:     ClientsTable,
	OwnerFirstName: "first_name",
	OwnerLastName:  "last_name",
	OwnerEmail:     "email",
}

var ColdAccountColumns = AccountColumns{
	Table:          ArchivedAccountsTable,
	OwnerTable:     ArchivedAccountsTable,
	OwnerFirstName: "owner_first_name",
	OwnerLastName:  "owner_last_name",
	OwnerEmail:     "owner_email",
}

func (c AccountColumns) col(name string) dialect.Expression {
	return psql.Quote(c.Table, name)
}

func (c AccountColumns) ownerCol(name string) dialect.Expression {
	return psql.Quote(c.OwnerTable, name)
}

// WhereMods translates the filter part of q. withScope adds the soft-delete predicate.
func (c AccountColumns) WhereMods(q AccountQuery, withScope bool) []bob.Mod[*dialect.SelectQuery] {
	var mods []bob.Mod[*dialect.SelectQuery]
	if withScope {
		if where := q.Scope.Where(c.Table); where != nil {
			mods = append(mods, sm.Where(where))
		}
	}
	if q.Type != "" {
		mods = append(mods, sm.Where(c.col("type").EQ(psql.Arg(string(q.Type)))))
	}
	if q.Status != "" {
		mods = append(mods, sm.Where(c.col("status").EQ(psql.Arg(string(q.Status)))))
	}
	if q.ClientID != nil {
		mods = append(mods, sm.Where(c.col("client_id").EQ(psql.Arg(*q.ClientID))))
	}
	if q.Search != "" {
		pattern := psql.Arg("%" + escapeLike(q.Search) + "%")
		mods = append(mods, sm.Where(psql.Or(
			c.col("number").ILike(pattern),
			c.ownerCol(c.OwnerFirstName).ILike(pattern),
			c.ownerCol(c.OwnerLastName).ILike(pattern),
			c.ownerCol(c.OwnerEmail).ILike(pattern),
		)))
	}
	return mods
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern. Backslash is the
// default LIKE escape character in Postgres.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// OrderMods translates the sort part of q, with id as the tie breaker.
func (c AccountColumns) OrderMods(q AccountQuery) []bob.Mod[*dialect.SelectQuery] {
	var sortCol dialect.Expression
	switch q.Sort {
	case SortBalance:
		sortCol = c.col("initial_balance")
	case SortOwner:
		sortCol = c.ownerCol(c.OwnerLastName)
	case SortNumber:
		sortCol = c.col("number")
	case SortStatus:
		sortCol = c.col("status")
	default:
		sortCol = c.col("created_at")
	}
	if q.Order == SortAsc {
		return []bob.Mod[*dialect.SelectQuery]{
			sm.OrderBy(sortCol).Asc(),
			sm.OrderBy(c.col("id")).Asc(),
		}
	}
	return []bob.Mod[*dialect.SelectQuery]{
		sm.OrderBy(sortCol).Desc(),
		sm.OrderBy(c.col("id")).Desc(),
	}
}

// PageMods translates the pagination part of q.
func (c AccountColumns) PageMods(q AccountQuery) []bob.Mod[*dialect.SelectQuery] {
	return []bob.Mod[*dialect.SelectQuery]{
		sm.Limit(q.Limit),
		sm.Offset(q.Offset()),
	}
}

// PageInfo describes one page of a listing.
type PageInfo struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int
	ItemsPerPage int
	HasNext      bool
	HasPrevious  bool
}

// NewPageInfo computes page info for a normalized query and a total row count.
func NewPageInfo(q AccountQuery, total int) PageInfo {
	totalPages := 0
	if q.Limit > 0 {
		totalPages = (total + q.Limit - 1) / q.Limit
	}
	return PageInfo{
		CurrentPage:  q.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: q.Limit,
		HasNext:      q.Page < totalPages,
		HasPrevious:  q.Page > 1,
	}
}

// Matches applies the filter part of q to an in-memory account. Scope is not checked.
func (q AccountQuery) Matches(a *domain.Account, owner domain.Owner) bool {
	if q.Type != "" && a.Type != q.Type {
		return false
	}
	if q.Status != "" && a.Status != q.Status {
		return false
	}
	if q.ClientID != nil && a.ClientID != *q.ClientID {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	for _, hay := range []string{a.Number, owner.FirstName, owner.LastName, owner.Email} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

// Less orders two in-memory accounts the way OrderMods orders rows.
func (q AccountQuery) Less(a *domain.Account, ao domain.Owner, b *domain.Account, bo domain.Owner) bool {
	var c int
	switch q.Sort {
	case SortBalance:
		c = a.InitialBalance.Cmp(b.InitialBalance)
	case SortOwner:
		c = strings.Compare(ao.LastName, bo.LastName)
	case SortNumber:
		c = strings.Compare(a.Number, b.Number)
	case SortStatus:
		c = strings.Compare(string(a.Status), string(b.Status))
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	if c == 0 {
		c = strings.Compare(a.ID.String(), b.ID.String())
	}
	if q.Order == SortAsc {
		return c < 0
	}
	return c > 0
}
