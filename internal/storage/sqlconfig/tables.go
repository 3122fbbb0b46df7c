package sqlconfig

// Primary store tables.
const (
	ClientsTable      = "clients"
	AccountsTable     = "accounts"
	TransactionsTable = "transactions"
)

// Cold store tables.
const (
	ArchivedAccountsTable     = "archived_accounts"
	ArchivedTransactionsTable = "archived_transactions"
)
