/*
debt.go - Debt lifecycle

PURPOSE:
  Payable/receivable debt records with a pending -> paid lifecycle. A debt
  is independent of wallets until a payment against it is recorded: the
  payment both shrinks the outstanding amount and spawns a transaction
  through the transaction engine, which applies the wallet balance effect.

SETTLEMENT:
  A debt is PAID when payments drive the remaining amount to within the
  0.01 rounding epsilon of zero, or when the status is toggled manually.
  A manual toggle is a pure flag flip: it never moves money and never
  restores the amount.

OVERPAYMENT:
  Paying more than the remaining amount clamps the remainder to zero; the
  surplus is accepted without error and without a credit record.

ORDERING:
  The debt is reduced before the payment transaction is created. A failure
  creating the transaction leaves the debt reduced with no money movement
  recorded; that is reported as a PartialFailureError, never swallowed.
*/
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aldairz16/Deudaz0/money"
)

// =============================================================================
// DEBT CRUD
// =============================================================================

// CreateDebtInput carries the fields for a new debt.
type CreateDebtInput struct {
	UserID      string
	Type        DebtType
	Amount      money.Money
	Description string
	DueDate     *time.Time
	CategoryID  string
}

// CreateDebt records a debt with its full amount, PENDING. No wallet
// interaction.
func (e *Engine) CreateDebt(ctx context.Context, in CreateDebtInput) (*Debt, error) {
	if in.Type != DebtPayable && in.Type != DebtReceivable {
		return nil, validationf("type", "unknown debt type %q", in.Type)
	}
	if !in.Amount.IsPositive() {
		return nil, validationf("amount", "amount must be greater than zero")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, validationf("description", "description is required")
	}

	d := Debt{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
		CategoryID:  in.CategoryID,
		Status:      DebtPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.repo.InsertDebt(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DebtUpdate selects the fields to change. Nil means keep.
type DebtUpdate struct {
	Description *string
	DueDate     *time.Time
	CategoryID  *string
}

// UpdateDebt edits a debt's descriptive fields. Amount and status move only
// through payments and ToggleDebtStatus.
func (e *Engine) UpdateDebt(ctx context.Context, userID, id string, up DebtUpdate) (*Debt, error) {
	d, err := e.repo.GetDebt(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDebtNotFound
	}

	if up.Description != nil {
		if strings.TrimSpace(*up.Description) == "" {
			return nil, validationf("description", "description is required")
		}
		d.Description = strings.TrimSpace(*up.Description)
	}
	if up.DueDate != nil {
		d.DueDate = up.DueDate
	}
	if up.CategoryID != nil {
		d.CategoryID = *up.CategoryID
	}

	if err := e.repo.UpdateDebt(ctx, *d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDebt removes a debt unconditionally.
func (e *Engine) DeleteDebt(ctx context.Context, userID, id string) error {
	d, err := e.repo.GetDebt(ctx, userID, id)
	if err != nil {
		return err
	}
	if d == nil {
		return ErrDebtNotFound
	}
	return e.repo.DeleteDebt(ctx, userID, id)
}

// Debts lists the caller's debts.
func (e *Engine) Debts(ctx context.Context, userID string) ([]Debt, error) {
	return e.repo.ListDebts(ctx, userID)
}

// Debt fetches one debt.
func (e *Engine) Debt(ctx context.Context, userID, id string) (*Debt, error) {
	d, err := e.repo.GetDebt(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDebtNotFound
	}
	return d, nil
}

// =============================================================================
// STATUS TOGGLE
// =============================================================================

// ToggleDebtStatus flips PENDING <-> PAID without touching the amount and
// without creating or reversing any transaction. Re-toggling PAID back to
// PENDING does not un-pay money already moved through ProcessDebtPayment.
func (e *Engine) ToggleDebtStatus(ctx context.Context, userID, id string) (*Debt, error) {
	d, err := e.repo.GetDebt(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDebtNotFound
	}

	if d.Status == DebtPending {
		d.Status = DebtPaid
	} else {
		d.Status = DebtPending
	}
	if err := e.repo.UpdateDebt(ctx, *d); err != nil {
		return nil, err
	}
	return d, nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

// ProcessDebtPaymentInput carries the fields for a debt payment.
type ProcessDebtPaymentInput struct {
	UserID   string
	DebtID   string
	Amount   money.Money
	WalletID string
}

// ProcessDebtPayment reduces a debt and records the money movement.
//
// The remaining amount clamps at zero (overpayment is accepted) and the
// debt becomes PAID when the remainder is within the 0.01 epsilon. The
// payment is an EXPENSE for payable debts and an INCOME for receivable
// ones, created through the full transaction engine path.
func (e *Engine) ProcessDebtPayment(ctx context.Context, in ProcessDebtPaymentInput) (*Debt, *Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, validationf("amount", "payment must be greater than zero")
	}

	d, err := e.repo.GetDebt(ctx, in.UserID, in.DebtID)
	if err != nil {
		return nil, nil, err
	}
	if d == nil {
		return nil, nil, ErrDebtNotFound
	}
	wallet, err := e.repo.GetWallet(ctx, in.UserID, in.WalletID)
	if err != nil {
		return nil, nil, err
	}
	if wallet == nil {
		return nil, nil, ErrWalletNotFound
	}

	remaining := d.Amount.Sub(in.Amount).Max(money.Money{})
	d.Amount = remaining
	if remaining.IsEpsilonZero() {
		d.Status = DebtPaid
	} else {
		d.Status = DebtPending
	}

	// Debt first, transaction second. A failure below leaves the debt
	// reduced with no movement recorded; that is surfaced, not hidden.
	if err := e.repo.UpdateDebt(ctx, *d); err != nil {
		return nil, nil, err
	}

	txType := TxExpense
	if d.Type == DebtReceivable {
		txType = TxIncome
	}
	tx, err := e.CreateTransaction(ctx, CreateTransactionInput{
		UserID:      in.UserID,
		WalletID:    in.WalletID,
		Amount:      in.Amount,
		Type:        txType,
		Description: fmt.Sprintf("Pago deuda: %s", d.Description),
		Date:        time.Now().UTC(),
		Category:    "Deudas",
		ReferenceID: d.ID,
	})
	if err != nil {
		return d, nil, e.partial(err, "process_debt_payment",
			"debt reduction", "payment transaction",
			zap.String("debt_id", d.ID), zap.String("wallet_id", in.WalletID))
	}

	return d, tx, nil
}

// =============================================================================
// DEBT CATEGORIES
// =============================================================================

// CreateDebtCategory adds a grouping label for debts.
func (e *Engine) CreateDebtCategory(ctx context.Context, userID, name string) (*DebtCategory, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationf("name", "category name is required")
	}
	c := DebtCategory{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   strings.TrimSpace(name),
	}
	if err := e.repo.InsertDebtCategory(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteDebtCategory removes a category. Affected debts keep existing with
// the reference un-set; deletion never cascades to debts.
func (e *Engine) DeleteDebtCategory(ctx context.Context, userID, id string) error {
	return e.repo.DeleteDebtCategory(ctx, userID, id)
}

// DebtCategories lists the caller's debt categories.
func (e *Engine) DebtCategories(ctx context.Context, userID string) ([]DebtCategory, error) {
	return e.repo.ListDebtCategories(ctx, userID)
}
