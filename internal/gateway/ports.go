package gateway

import (
	"context"

	"fintrack/internal/core"
)

// Ports the store consumes; *Client implements all of them.
type (
	TransactionAPI interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		// ListTransactionsSorted delegates amount ordering to the backend.
		ListTransactionsSorted(ctx context.Context, order core.SortOrder) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, d core.Draft) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, id int64, d core.Draft) (core.Transaction, error)
		DeleteTransactions(ctx context.Context, ids []int64) error
	}

	TaxonomyAPI interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	SettingsAPI interface {
		GetSettings(ctx context.Context) (core.Settings, error)
		SaveSettings(ctx context.Context, s core.Settings) error
	}

	// API is the full backend surface.
	API interface {
		TransactionAPI
		TaxonomyAPI
		SettingsAPI
	}
)

// TokenSource supplies the bearer credential for outbound calls. A false
// return means the call goes out without a credential (guest or
// unauthenticated session).
type TokenSource interface {
	Token() (string, bool)
}
