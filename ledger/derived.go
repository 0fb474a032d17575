/*
derived.go - Compound operations built on the transaction engine

PURPOSE:
  Operations that are expressed as one or two ordinary transactions:

  Credit-card payment: an EXPENSE on the paying (debit) wallet and an
  INCOME on the card, equal amounts, linked by a shared reference id.
  The INCOME raises the card's available credit, which is what "paying
  the card" means in the available-credit balance model.

  Transfer: the same two-legged shape between any two wallets. TRANSFER
  stays a reserved transaction type; the operation itself is an
  EXPENSE/INCOME pair so the ledger arithmetic needs no new case.

  Balance adjustment: a single ADJUSTMENT transaction whose amount is the
  desired new balance.

  Template execution: resolves a wallet and feeds the template's stored
  fields into CreateTransaction.

ATOMICITY:
  The two-legged operations are not atomic across wallets. A failure after
  the first leg committed is a PartialFailureError naming the missing leg.
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
// CREDIT-CARD PAYMENT
// =============================================================================

// CreditPaymentInput names the paying wallet and the card.
type CreditPaymentInput struct {
	UserID         string
	SourceWalletID string // debit wallet the money leaves
	TargetWalletID string // credit wallet receiving the payment
	Amount         money.Money
}

// PayCreditCard records a card payment as two linked transactions.
// Returns the expense leg and the income leg.
func (e *Engine) PayCreditCard(ctx context.Context, in CreditPaymentInput) (*Transaction, *Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, validationf("amount", "amount must be greater than zero")
	}
	if in.SourceWalletID == in.TargetWalletID {
		return nil, nil, validationf("target_wallet_id", "source and target must differ")
	}

	source, err := e.Wallet(ctx, in.UserID, in.SourceWalletID)
	if err != nil {
		return nil, nil, err
	}
	target, err := e.Wallet(ctx, in.UserID, in.TargetWalletID)
	if err != nil {
		return nil, nil, err
	}
	if target.Kind != WalletCredit {
		return nil, nil, validationf("target_wallet_id", "target must be a credit wallet")
	}

	return e.pairedTransactions(ctx, in.UserID, source, target, in.Amount,
		fmt.Sprintf("Pago de Tarjeta: %s", target.Name), "Transferencia",
		fmt.Sprintf("Pago recibido desde: %s", source.Name), "Pago Tarjeta",
		"credit_card_payment")
}

// =============================================================================
// TRANSFER
// =============================================================================

// TransferInput names the two wallets of a wallet-to-wallet transfer.
type TransferInput struct {
	UserID         string
	SourceWalletID string
	TargetWalletID string
	Amount         money.Money
}

// Transfer moves money between two wallets as an EXPENSE/INCOME pair.
func (e *Engine) Transfer(ctx context.Context, in TransferInput) (*Transaction, *Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, validationf("amount", "amount must be greater than zero")
	}
	if in.SourceWalletID == in.TargetWalletID {
		return nil, nil, validationf("target_wallet_id", "source and target must differ")
	}

	source, err := e.Wallet(ctx, in.UserID, in.SourceWalletID)
	if err != nil {
		return nil, nil, err
	}
	target, err := e.Wallet(ctx, in.UserID, in.TargetWalletID)
	if err != nil {
		return nil, nil, err
	}

	return e.pairedTransactions(ctx, in.UserID, source, target, in.Amount,
		fmt.Sprintf("Transferencia a: %s", target.Name), "Transferencia",
		fmt.Sprintf("Transferencia desde: %s", source.Name), "Transferencia",
		"transfer")
}

// pairedTransactions writes the out-leg then the in-leg, sharing a
// reference id and timestamp. A second-leg failure is partial.
func (e *Engine) pairedTransactions(ctx context.Context, userID string, source, target *Wallet, amount money.Money,
	outDesc, outCategory, inDesc, inCategory, op string) (*Transaction, *Transaction, error) {

	ref := uuid.NewString()
	now := time.Now().UTC()

	outLeg, err := e.CreateTransaction(ctx, CreateTransactionInput{
		UserID:      userID,
		WalletID:    source.ID,
		Amount:      amount,
		Type:        TxExpense,
		Description: outDesc,
		Date:        now,
		Category:    outCategory,
		ReferenceID: ref,
	})
	if err != nil {
		return nil, nil, err
	}

	inLeg, err := e.CreateTransaction(ctx, CreateTransactionInput{
		UserID:      userID,
		WalletID:    target.ID,
		Amount:      amount,
		Type:        TxIncome,
		Description: inDesc,
		Date:        now,
		Category:    inCategory,
		ReferenceID: ref,
	})
	if err != nil {
		return outLeg, nil, e.partial(err, op,
			"source expense leg", "target income leg",
			zap.String("reference_id", ref),
			zap.String("source_wallet_id", source.ID),
			zap.String("target_wallet_id", target.ID))
	}

	return outLeg, inLeg, nil
}

// =============================================================================
// BALANCE ADJUSTMENT
// =============================================================================

// AdjustBalance sets a wallet's balance to the given value via a single
// ADJUSTMENT transaction.
func (e *Engine) AdjustBalance(ctx context.Context, userID, walletID string, newBalance money.Money) (*Transaction, error) {
	return e.CreateTransaction(ctx, CreateTransactionInput{
		UserID:      userID,
		WalletID:    walletID,
		Amount:      newBalance,
		Type:        TxAdjustment,
		Description: "Ajuste de saldo",
		Date:        time.Now().UTC(),
		Category:    "Ajuste",
	})
}

// =============================================================================
// QUICK-ACTION TEMPLATES
// =============================================================================

// CreateTemplateInput carries the fields for a new quick-action template.
type CreateTemplateInput struct {
	UserID      string
	Name        string
	Amount      money.Money
	Description string
	Type        TransactionType // INCOME or EXPENSE
	WalletID    string          // optional; resolved at execution time if empty
	Category    string
}

// CreateTemplate stores a quick-action transaction factory.
func (e *Engine) CreateTemplate(ctx context.Context, in CreateTemplateInput) (*TransactionTemplate, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("name", "template name is required")
	}
	if in.Type != TxIncome && in.Type != TxExpense {
		return nil, validationf("type", "template type must be INCOME or EXPENSE")
	}
	if !in.Amount.IsPositive() {
		return nil, validationf("amount", "amount must be greater than zero")
	}
	if in.WalletID != "" {
		if _, err := e.Wallet(ctx, in.UserID, in.WalletID); err != nil {
			return nil, err
		}
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = strings.TrimSpace(in.Name)
	}

	t := TransactionTemplate{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Name:        strings.TrimSpace(in.Name),
		Amount:      in.Amount,
		Description: description,
		Type:        in.Type,
		WalletID:    in.WalletID,
		Category:    in.Category,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.repo.InsertTemplate(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTemplate removes a template.
func (e *Engine) DeleteTemplate(ctx context.Context, userID, id string) error {
	t, err := e.repo.GetTemplate(ctx, userID, id)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTemplateNotFound
	}
	return e.repo.DeleteTemplate(ctx, userID, id)
}

// Templates lists the caller's templates.
func (e *Engine) Templates(ctx context.Context, userID string) ([]TransactionTemplate, error) {
	return e.repo.ListTemplates(ctx, userID)
}

// ExecuteTemplate creates a transaction from a template. walletID overrides
// the template's stored wallet; when both are empty the template cannot be
// executed.
func (e *Engine) ExecuteTemplate(ctx context.Context, userID, templateID, walletID string) (*Transaction, error) {
	t, err := e.repo.GetTemplate(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTemplateNotFound
	}

	target := walletID
	if target == "" {
		target = t.WalletID
	}
	if target == "" {
		return nil, validationf("wallet_id", "template has no wallet assigned; choose one to execute")
	}

	return e.CreateTransaction(ctx, CreateTransactionInput{
		UserID:      userID,
		WalletID:    target,
		Amount:      t.Amount,
		Type:        t.Type,
		Description: t.Description,
		Date:        time.Now().UTC(),
		Category:    t.Category,
	})
}
