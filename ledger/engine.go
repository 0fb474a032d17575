/*
engine.go - Transaction engine: the ledger's write path

PURPOSE:
  Creates, edits, and deletes transactions while keeping wallet balances
  consistent with the transaction log. Every public method is a strictly
  ordered sequence of non-atomic remote writes; the orderings follow from
  the repository's single-row atomicity.

WRITE ORDERINGS:
  Create: validate -> insert transaction -> mutate wallet balance.
          A wallet failure after the insert is a PartialFailureError (the
          record exists with no balance effect).
  Delete: revert wallet balance -> delete record. The balance is reverted
          first so a transaction never disappears from history while its
          effect lingers unexplained.
  Update: reverse old effect on old wallet -> apply new effect on new
          wallet -> persist record. Moving a transaction between wallets
          mutates both.

BALANCE MUTATIONS:
  All mutations go through the repository's atomic increments; the engine
  never computes new = old + delta client-side. Two concurrent operations
  against the same wallet therefore compound instead of losing an update.

NO RETRIES:
  A failed step is reported as-is. Retrying a failed balance write could
  double-apply a delta whose write actually succeeded server-side.

SEE ALSO:
  - effect.go: the arithmetic applied here
  - debt.go, derived.go: operations built on CreateTransaction
*/
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aldairz16/Deudaz0/money"
)

// DefaultCurrency is the single supported currency today.
const DefaultCurrency = "PEN"

// Engine is the ledger consistency engine. It owns no ambient state: the
// repository and logger are injected, enabling test doubles.
type Engine struct {
	repo Repository
	log  *zap.Logger
}

// New creates an engine over the given repository.
func New(repo Repository, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{repo: repo, log: log}
}

// =============================================================================
// WALLETS
// =============================================================================

// CreateWalletInput carries the fields for a new wallet.
type CreateWalletInput struct {
	UserID         string
	Name           string
	Color          string
	Currency       string
	Kind           WalletKind
	InitialBalance money.Money
	CreditLimit    money.Money // credit wallets only
	Category       string
}

// CreateWallet creates a wallet with an explicit initial balance.
func (e *Engine) CreateWallet(ctx context.Context, in CreateWalletInput) (*Wallet, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("name", "wallet name is required")
	}
	kind := in.Kind
	if kind == "" {
		kind = WalletDebit
	}
	if kind != WalletDebit && kind != WalletCredit {
		return nil, validationf("kind", "unknown wallet kind %q", in.Kind)
	}
	if kind == WalletCredit && in.CreditLimit.IsNegative() {
		return nil, validationf("credit_limit", "credit limit must not be negative")
	}
	currency := in.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	w := Wallet{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Name:        strings.TrimSpace(in.Name),
		Color:       in.Color,
		Currency:    currency,
		Kind:        kind,
		Balance:     in.InitialBalance,
		Category:    in.Category,
		CreatedAt:   time.Now().UTC(),
	}
	if kind == WalletCredit {
		w.CreditLimit = in.CreditLimit
	}

	if err := e.repo.InsertWallet(ctx, w); err != nil {
		return nil, err
	}
	return &w, nil
}

// WalletUpdate selects the administrative fields to change. Nil means keep.
// Balance is deliberately absent: it moves only through transactions.
type WalletUpdate struct {
	Name        *string
	Color       *string
	Category    *string
	CreditLimit *money.Money
}

// UpdateWallet edits a wallet's non-financial fields.
func (e *Engine) UpdateWallet(ctx context.Context, userID, id string, up WalletUpdate) (*Wallet, error) {
	w, err := e.repo.GetWallet(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWalletNotFound
	}

	if up.Name != nil {
		if strings.TrimSpace(*up.Name) == "" {
			return nil, validationf("name", "wallet name is required")
		}
		w.Name = strings.TrimSpace(*up.Name)
	}
	if up.Color != nil {
		w.Color = *up.Color
	}
	if up.Category != nil {
		w.Category = *up.Category
	}
	if up.CreditLimit != nil {
		if w.Kind != WalletCredit {
			return nil, validationf("credit_limit", "only credit wallets have a credit limit")
		}
		if up.CreditLimit.IsNegative() {
			return nil, validationf("credit_limit", "credit limit must not be negative")
		}
		w.CreditLimit = *up.CreditLimit
	}

	if err := e.repo.UpdateWallet(ctx, *w); err != nil {
		return nil, err
	}
	return w, nil
}

// DeleteWallet removes a wallet and all its transactions. Debts survive.
func (e *Engine) DeleteWallet(ctx context.Context, userID, id string) error {
	w, err := e.repo.GetWallet(ctx, userID, id)
	if err != nil {
		return err
	}
	if w == nil {
		return ErrWalletNotFound
	}
	return e.repo.DeleteWallet(ctx, userID, id)
}

// Wallets lists the caller's wallets.
func (e *Engine) Wallets(ctx context.Context, userID string) ([]Wallet, error) {
	return e.repo.ListWallets(ctx, userID)
}

// Wallet fetches one wallet.
func (e *Engine) Wallet(ctx context.Context, userID, id string) (*Wallet, error) {
	w, err := e.repo.GetWallet(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWalletNotFound
	}
	return w, nil
}

// FindWalletByName resolves a wallet by case-insensitive name match.
// Returns (nil, nil) when no wallet matches.
func (e *Engine) FindWalletByName(ctx context.Context, userID, name string) (*Wallet, error) {
	return e.repo.FindWalletByName(ctx, userID, name)
}

// OldestWallet returns the caller's first-created wallet, the fallback
// target for quick capture. Returns (nil, nil) when the user has none.
func (e *Engine) OldestWallet(ctx context.Context, userID string) (*Wallet, error) {
	return e.repo.OldestWallet(ctx, userID)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// CreateTransactionInput carries the fields for a new transaction.
type CreateTransactionInput struct {
	UserID      string
	WalletID    string
	Amount      money.Money // non-negative magnitude; for ADJUSTMENT, the new balance
	Type        TransactionType
	Description string
	Date        time.Time
	Category    string

	// ReferenceID links the two legs of a transfer or card payment.
	ReferenceID string
	// IdempotencyKey, when set, rejects a duplicate create before any write.
	IdempotencyKey string
}

// CreateTransaction records a transaction and applies its balance effect.
//
// When the wallet write fails after the record insert, the returned
// PartialFailureError describes the inconsistency; callers surface it for
// reconciliation rather than retrying.
func (e *Engine) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*Transaction, error) {
	if err := validateTransactionInput(in.Type, in.Amount, in.WalletID); err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" {
		exists, err := e.repo.IdempotencyKeyExists(ctx, in.UserID, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDuplicateIdempotencyKey
		}
	}

	wallet, err := e.repo.GetWallet(ctx, in.UserID, in.WalletID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	tx := Transaction{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		WalletID:       in.WalletID,
		Amount:         in.Amount,
		Type:           in.Type,
		Description:    in.Description,
		Date:           date,
		Category:       in.Category,
		ReferenceID:    in.ReferenceID,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}
	if in.Type == TxAdjustment {
		tx.PriorBalance = wallet.Balance
	}

	if err := e.repo.InsertTransaction(ctx, tx); err != nil {
		return nil, err
	}

	if in.Type == TxAdjustment {
		prior, err := e.repo.SetWalletBalance(ctx, in.UserID, in.WalletID, in.Amount)
		if err != nil {
			return nil, e.partial(err, "create_transaction",
				"transaction record", "wallet balance override",
				zap.String("transaction_id", tx.ID), zap.String("wallet_id", in.WalletID))
		}
		// A concurrent delta may have landed between the read above and the
		// set; the store's prior is authoritative for reversal.
		if !prior.Equal(tx.PriorBalance) {
			tx.PriorBalance = prior
			if err := e.repo.UpdateTransaction(ctx, tx); err != nil {
				return nil, e.partial(err, "create_transaction",
					"transaction record and balance override", "prior-balance correction",
					zap.String("transaction_id", tx.ID))
			}
		}
	} else {
		effect := EffectOf(in.Type, in.Amount)
		if _, err := e.repo.AdjustWalletBalance(ctx, in.UserID, in.WalletID, effect.Delta()); err != nil {
			return nil, e.partial(err, "create_transaction",
				"transaction record", "wallet balance effect",
				zap.String("transaction_id", tx.ID), zap.String("wallet_id", in.WalletID))
		}
	}

	return &tx, nil
}

// DeleteTransaction reverses a transaction's balance effect and removes the
// record. A missing id is a no-op success. The wallet is reverted before
// the record is deleted.
func (e *Engine) DeleteTransaction(ctx context.Context, userID, id string) error {
	tx, err := e.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return err
	}
	if tx == nil {
		return nil
	}

	reversal := reversalOf(tx)
	if _, err := e.repo.AdjustWalletBalance(ctx, userID, tx.WalletID, reversal.Delta()); err != nil {
		return err
	}

	if err := e.repo.DeleteTransaction(ctx, userID, id); err != nil {
		return e.partial(err, "delete_transaction",
			"wallet balance reversal", "transaction record deletion",
			zap.String("transaction_id", id), zap.String("wallet_id", tx.WalletID))
	}
	return nil
}

// TransactionUpdate selects the fields to change. Nil means keep.
type TransactionUpdate struct {
	WalletID    *string
	Amount      *money.Money
	Type        *TransactionType
	Description *string
	Date        *time.Time
	Category    *string
}

// UpdateTransaction edits a transaction by reversing its old effect and
// applying the new one. Changing WalletID moves the transaction: the old
// wallet is reverted and the new wallet receives the new effect.
func (e *Engine) UpdateTransaction(ctx context.Context, userID, id string, up TransactionUpdate) (*Transaction, error) {
	old, err := e.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, ErrTransactionNotFound
	}

	// Effective values: updated fields override, others keep prior value.
	next := *old
	if up.WalletID != nil {
		next.WalletID = *up.WalletID
	}
	if up.Amount != nil {
		next.Amount = *up.Amount
	}
	if up.Type != nil {
		next.Type = *up.Type
	}
	if up.Description != nil {
		next.Description = *up.Description
	}
	if up.Date != nil {
		next.Date = *up.Date
	}
	if up.Category != nil {
		next.Category = *up.Category
	}

	if err := validateTransactionInput(next.Type, next.Amount, next.WalletID); err != nil {
		return nil, err
	}
	// Validate the target wallet before any write.
	if next.WalletID != old.WalletID {
		w, err := e.repo.GetWallet(ctx, userID, next.WalletID)
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, ErrWalletNotFound
		}
	}

	// Reverse the old effect on the old wallet.
	reversal := reversalOf(old)
	if _, err := e.repo.AdjustWalletBalance(ctx, userID, old.WalletID, reversal.Delta()); err != nil {
		return nil, err
	}

	// Apply the new effect on the (possibly different) new wallet.
	if next.Type == TxAdjustment {
		prior, err := e.repo.SetWalletBalance(ctx, userID, next.WalletID, next.Amount)
		if err != nil {
			return nil, e.partial(err, "update_transaction",
				"old wallet reversal", "new wallet balance override",
				zap.String("transaction_id", id))
		}
		next.PriorBalance = prior
	} else {
		next.PriorBalance = money.Money{}
		effect := EffectOf(next.Type, next.Amount)
		if _, err := e.repo.AdjustWalletBalance(ctx, userID, next.WalletID, effect.Delta()); err != nil {
			return nil, e.partial(err, "update_transaction",
				"old wallet reversal", "new wallet balance effect",
				zap.String("transaction_id", id))
		}
	}

	if err := e.repo.UpdateTransaction(ctx, next); err != nil {
		return nil, e.partial(err, "update_transaction",
			"wallet balance updates", "transaction record update",
			zap.String("transaction_id", id))
	}
	return &next, nil
}

// Transactions lists transactions matching the filter.
func (e *Engine) Transactions(ctx context.Context, userID string, f TransactionFilter) ([]Transaction, error) {
	return e.repo.ListTransactions(ctx, userID, f)
}

// Transaction fetches one transaction.
func (e *Engine) Transaction(ctx context.Context, userID, id string) (*Transaction, error) {
	tx, err := e.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func validateTransactionInput(t TransactionType, amount money.Money, walletID string) error {
	if !ValidTransactionType(t) {
		return validationf("type", "unknown transaction type %q", t)
	}
	if t == TxTransfer {
		return validationf("type", "transfers are created through the transfer operation, not as raw transactions")
	}
	if walletID == "" {
		return validationf("wallet_id", "wallet is required")
	}
	if t == TxAdjustment {
		if amount.IsNegative() {
			return validationf("amount", "adjustment target must not be negative")
		}
		return nil
	}
	if !amount.IsPositive() {
		return validationf("amount", "amount must be greater than zero")
	}
	return nil
}

// partial logs and wraps a mid-sequence storage failure.
func (e *Engine) partial(err error, op, completed, missing string, fields ...zap.Field) error {
	pf := &PartialFailureError{Op: op, Completed: completed, Missing: missing, Err: err}
	fields = append(fields,
		zap.String("op", op),
		zap.String("committed", completed),
		zap.String("missing", missing),
		zap.Error(err),
	)
	e.log.Error("ledger operation partially failed; manual reconciliation required", fields...)
	return pf
}
