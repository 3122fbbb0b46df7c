package sqlconfig

import (
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
)

// Scope selects which rows a primary-store query sees with respect to soft deletion.
// Every query takes one explicitly; there is no implicit default.
type Scope int

const (
	// ScopeLive sees rows that are not soft-deleted.
	ScopeLive Scope = iota
	// ScopeArchived sees only soft-deleted rows.
	ScopeArchived
	// ScopeAll sees every row.
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeLive:
		return "live"
	case ScopeArchived:
		return "archived"
	case ScopeAll:
		return "all"
	}
	return "unknown"
}

// Where returns the deleted_at predicate for table, or nil for ScopeAll.
func (s Scope) Where(table string) bob.Expression {
	switch s {
	case ScopeLive:
		return psql.Quote(table, "deleted_at").IsNull()
	case ScopeArchived:
		return psql.Quote(table, "deleted_at").IsNotNull()
	}
	return nil
}

// Includes reports whether a row with the given deletion state is visible.
func (s Scope) Includes(deleted bool) bool {
	switch s {
	case ScopeLive:
		return !deleted
	case ScopeArchived:
		return deleted
	}
	return true
}
