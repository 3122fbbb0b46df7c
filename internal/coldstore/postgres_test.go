package coldstore

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStatements(t *testing.T, stmts []statement) ([]string, [][]any) {
	t.Helper()
	queries := make([]string, len(stmts))
	args := make([][]any, len(stmts))
	for i, st := range stmts {
		q, a, err := bob.Build(context.Background(), st.query)
		require.NoError(t, err, st.what)
		queries[i], args[i] = q, a
	}
	return queries, args
}

// -- deleteStatements tests --

func TestDeleteStatements_TransactionsFirst(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	queries, args := buildStatements(t, deleteStatements(id))

	require.Len(t, queries, 2)
	assert.Contains(t, queries[0], "DELETE FROM archived_transactions")
	assert.Contains(t, queries[0], `"account_id" = $1`)
	assert.Contains(t, queries[1], "DELETE FROM archived_accounts")
	assert.Contains(t, queries[1], `"id" = $1`)
	assert.Equal(t, []any{id}, args[0])
	assert.Equal(t, []any{id}, args[1])
}

// -- upsertStatements tests --

func TestUpsertStatements_DeleteThenInsert(t *testing.T) {
	s := makeSnapshot("SAV-0001", "Diop", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	stmts, err := upsertStatements(s)
	require.NoError(t, err)
	queries, args := buildStatements(t, stmts)

	require.Len(t, queries, 3+len(s.Transactions))
	assert.Contains(t, queries[0], "DELETE FROM archived_transactions")
	assert.Contains(t, queries[1], "DELETE FROM archived_accounts")
	assert.Contains(t, queries[2], "INSERT INTO archived_accounts")
	assert.Len(t, args[2], len(archivedAccountColumns))
	assert.Equal(t, s.Account.ID, args[2][0])
	assert.Equal(t, s.ArchivedAt, args[2][len(args[2])-1])
	for i, tx := range s.Transactions {
		q := queries[3+i]
		assert.Contains(t, q, "INSERT INTO archived_transactions")
		assert.Len(t, args[3+i], len(archivedTransactionColumns))
		assert.Equal(t, tx.ID, args[3+i][0])
	}
}
