package cqrs

import "github.com/eaglebank/mcp-banking/shared/models"

// ---------- Account queries ----------

// GetAccountQuery fetches a single account, subject to ownership check.
type GetAccountQuery struct {
	AccountID      string
	RequestingUser *models.User
}

// ListAccountsQuery fetches all active accounts belonging to a user.
type ListAccountsQuery struct {
	RequestingUser *models.User
}

// ---------- Transaction queries ----------

// ListTransactionsQuery fetches the newest Limit transactions touching an account.
type ListTransactionsQuery struct {
	AccountID      string
	RequestingUser *models.User
	Limit          int
}

// ---------- User queries ----------

type ListUsersQuery struct {
	RequestingUser *models.User
}
