/*
Package ledger provides the core ledger consistency engine.

PURPOSE:
  This package keeps wallet balances consistent with the transaction log and
  with debt lifecycle state, across creation, editing, deletion, and derived
  operations (debt payments, credit-card payments, transfers, balance
  adjustments).

KEY CONCEPTS IN THIS FILE (types.go):
  - Wallet: A money container (cash, bank account, credit card) with a
    running balance. For credit wallets the balance is available credit.
  - Transaction: A recorded money movement against one wallet, or a balance
    override (adjustment).
  - Debt: A tracked obligation independent of wallet balances until paid.
  - TransactionTemplate: A stateless quick-action transaction factory.

DESIGN PRINCIPLES:
  1. Single-sided: Each wallet carries a running balance mutated by signed
     deltas. This is not a double-entry system.
  2. Derived, never stored: Credit-card debt is creditLimit - balance.
  3. Explicit dependencies: The engine holds an injected Repository; there
     is no ambient store client.

SEE ALSO:
  - effect.go: Balance effect arithmetic
  - engine.go: Transaction engine
  - debt.go: Debt lifecycle
  - derived.go: Credit payments, transfers, adjustments, templates
*/
package ledger

import (
	"time"

	"github.com/Aldairz16/Deudaz0/money"
)

// =============================================================================
// WALLET
// =============================================================================

// WalletKind distinguishes debit wallets (cash, bank accounts) from credit
// cards.
type WalletKind string

const (
	WalletDebit  WalletKind = "DEBIT"
	WalletCredit WalletKind = "CREDIT"
)

// Wallet is a named money container with a running balance.
//
// For DEBIT wallets Balance is the literal balance and may go negative
// (overdraft is not blocked by this engine). For CREDIT wallets Balance is
// the available credit; the amount owed is derived, never stored.
type Wallet struct {
	ID          string
	UserID      string
	Name        string
	Color       string
	Currency    string
	Kind        WalletKind
	Balance     money.Money
	CreditLimit money.Money // meaningful iff Kind == WalletCredit
	Category    string
	CreatedAt   time.Time
}

// Owed returns the derived credit-card debt: creditLimit - balance.
// Zero for debit wallets.
func (w Wallet) Owed() money.Money {
	if w.Kind != WalletCredit {
		return money.Money{}
	}
	return w.CreditLimit.Sub(w.Balance)
}

// =============================================================================
// TRANSACTION
// =============================================================================

type TransactionType string

const (
	TxIncome     TransactionType = "INCOME"     // +amount delta
	TxExpense    TransactionType = "EXPENSE"    // -amount delta
	TxAdjustment TransactionType = "ADJUSTMENT" // sets balance to amount
	TxTransfer   TransactionType = "TRANSFER"   // reserved; transfers are a derived op
)

// ValidTransactionType reports whether t is a recognized enum value.
func ValidTransactionType(t TransactionType) bool {
	switch t {
	case TxIncome, TxExpense, TxAdjustment, TxTransfer:
		return true
	}
	return false
}

// Transaction is a recorded money movement against one wallet.
//
// Amount is always a non-negative magnitude; the sign comes from Type.
// For adjustments, Amount is the new balance and PriorBalance records the
// balance that was overridden, which is what makes an adjustment reversible
// (its implied delta is Amount - PriorBalance).
type Transaction struct {
	ID           string
	UserID       string
	WalletID     string
	Amount       money.Money
	Type         TransactionType
	Description  string
	Date         time.Time // user-supplied, independent of creation time
	Category     string
	PriorBalance money.Money // meaningful iff Type == TxAdjustment
	ReferenceID  string      // links the two legs of a transfer or card payment

	// IdempotencyKey guards against double-applying a create whose first
	// attempt failed on the communication layer. Optional.
	IdempotencyKey string

	CreatedAt time.Time // system timestamp, immutable
}

// =============================================================================
// DEBT
// =============================================================================

type DebtType string

const (
	DebtPayable    DebtType = "PAYABLE"    // the user owes
	DebtReceivable DebtType = "RECEIVABLE" // owed to the user
)

type DebtStatus string

const (
	DebtPending DebtStatus = "PENDING"
	DebtPaid    DebtStatus = "PAID"
)

// Debt is a tracked obligation. Amount is the remaining outstanding value;
// it only moves downward, via payments. Debts are independent of wallets
// except when a payment against them is recorded.
type Debt struct {
	ID          string
	UserID      string
	Type        DebtType
	Amount      money.Money
	Description string // counterparty or concept
	DueDate     *time.Time
	CategoryID  string // optional reference to a DebtCategory
	Status      DebtStatus
	CreatedAt   time.Time
}

// DebtCategory is a grouping label for debts. Deleting one un-sets the
// reference on affected debts; it never cascades.
type DebtCategory struct {
	ID     string
	UserID string
	Name   string
}

// =============================================================================
// TRANSACTION TEMPLATE - quick action
// =============================================================================

// TransactionTemplate is a stateless transaction factory. Executing it
// creates a transaction with its stored fields; WalletID may be empty, in
// which case the wallet is chosen at execution time.
type TransactionTemplate struct {
	ID          string
	UserID      string
	Name        string
	Amount      money.Money
	Description string
	Type        TransactionType // INCOME or EXPENSE only
	WalletID    string
	Category    string
	CreatedAt   time.Time
}
