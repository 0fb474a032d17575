/*
store.go - Persistence interface for the ledger engine

PURPOSE:
  Defines the contract between the engine and the durable relational store.
  Implementations exist for SQLite (production path) and in-memory
  (testing/dev). The same SQL shape applies to PostgreSQL.

ATOMICITY CONTRACT:
  Every mutating call is atomic at the single-row level but NOT
  transactional across rows. A wallet-balance write and a transaction
  insert are two separate calls that can fail independently. The engine's
  write orderings and PartialFailureError exist precisely because of this.

ATOMIC BALANCE MUTATIONS:
  AdjustWalletBalance and SetWalletBalance are evaluated store-side
  (balance = balance + delta, balance = target). The engine never does
  read-modify-write on a balance, which removes the lost-update race
  between concurrent operations against the same wallet.

USER SCOPING:
  All methods are scoped to a caller-supplied user id. The engine trusts
  the identity; authentication lives outside this module.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - store/memory: in-memory store for testing

SEE ALSO:
  - engine.go: write orderings over this interface
*/
package ledger

import (
	"context"
	"time"

	"github.com/Aldairz16/Deudaz0/money"
)

// TransactionFilter narrows a transaction listing. Zero values mean "no
// constraint".
type TransactionFilter struct {
	WalletID string
	Type     TransactionType
	From     *time.Time
	To       *time.Time
	Limit    int
}

// Repository is the durable-store contract, one method group per entity.
//
// Get* methods return (nil, nil) when the entity does not exist for the
// given user; the engine translates that into its not-found errors.
// Implementations wrap store-level failures in *StorageError.
type Repository interface {
	// Wallets
	ListWallets(ctx context.Context, userID string) ([]Wallet, error)
	GetWallet(ctx context.Context, userID, id string) (*Wallet, error)
	InsertWallet(ctx context.Context, w Wallet) error
	// UpdateWallet writes the non-financial fields only: name, color,
	// category, credit limit. Balance moves exclusively through the atomic
	// mutations below.
	UpdateWallet(ctx context.Context, w Wallet) error
	// DeleteWallet removes the wallet and cascades to its transactions.
	// Debts are balance-independent and are never touched.
	DeleteWallet(ctx context.Context, userID, id string) error

	// AdjustWalletBalance applies balance = balance + delta store-side and
	// returns the new balance.
	AdjustWalletBalance(ctx context.Context, userID, id string, delta money.Money) (money.Money, error)
	// SetWalletBalance applies balance = target store-side and returns the
	// prior balance.
	SetWalletBalance(ctx context.Context, userID, id string, target money.Money) (money.Money, error)

	// FindWalletByName resolves a wallet by case-insensitive name match;
	// (nil, nil) when nothing matches.
	FindWalletByName(ctx context.Context, userID, name string) (*Wallet, error)
	// OldestWallet returns the user's first-created wallet; (nil, nil) when
	// the user has none.
	OldestWallet(ctx context.Context, userID string) (*Wallet, error)

	// Transactions
	ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*Transaction, error)
	InsertTransaction(ctx context.Context, tx Transaction) error
	UpdateTransaction(ctx context.Context, tx Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error
	// IdempotencyKeyExists checks a key before any write.
	IdempotencyKeyExists(ctx context.Context, userID, key string) (bool, error)

	// Debts
	ListDebts(ctx context.Context, userID string) ([]Debt, error)
	GetDebt(ctx context.Context, userID, id string) (*Debt, error)
	InsertDebt(ctx context.Context, d Debt) error
	UpdateDebt(ctx context.Context, d Debt) error
	DeleteDebt(ctx context.Context, userID, id string) error

	// Debt categories
	ListDebtCategories(ctx context.Context, userID string) ([]DebtCategory, error)
	InsertDebtCategory(ctx context.Context, c DebtCategory) error
	// DeleteDebtCategory removes the category and un-sets the reference on
	// affected debts. Debts themselves survive.
	DeleteDebtCategory(ctx context.Context, userID, id string) error

	// Templates
	ListTemplates(ctx context.Context, userID string) ([]TransactionTemplate, error)
	GetTemplate(ctx context.Context, userID, id string) (*TransactionTemplate, error)
	InsertTemplate(ctx context.Context, t TransactionTemplate) error
	DeleteTemplate(ctx context.Context, userID, id string) error
}
