/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY FIELDS:
  money.Money marshals as a plain decimal number with two fractional
  digits, so clients see 1500.50 rather than an object.

VALIDATION:
  Validation is done in the ledger engine, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - shortcut.go: Quick-capture and import request types
*/
package api

import (
	"time"

	"github.com/Aldairz16/Deudaz0/ledger"
	"github.com/Aldairz16/Deudaz0/money"
)

// =============================================================================
// WALLETS
// =============================================================================

// WalletDTO represents a wallet in API responses. For credit wallets the
// balance is available credit and owed carries the derived debt.
type WalletDTO struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Color       string      `json:"color,omitempty"`
	Currency    string      `json:"currency"`
	Kind        string      `json:"kind"`
	Balance     money.Money `json:"balance"`
	CreditLimit money.Money `json:"credit_limit"`
	Owed        money.Money `json:"owed"`
	Category    string      `json:"category,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
}

// CreateWalletRequest is the request to create a wallet.
type CreateWalletRequest struct {
	Name        string      `json:"name"`
	Color       string      `json:"color"`
	Currency    string      `json:"currency"`
	Kind        string      `json:"kind"`
	Balance     money.Money `json:"balance"`
	CreditLimit money.Money `json:"credit_limit"`
	Category    string      `json:"category"`
}

// UpdateWalletRequest carries the editable wallet fields. Absent fields are
// kept. Balance is absent on purpose: it moves only through transactions.
type UpdateWalletRequest struct {
	Name        *string      `json:"name"`
	Color       *string      `json:"color"`
	Category    *string      `json:"category"`
	CreditLimit *money.Money `json:"credit_limit"`
}

// AdjustBalanceRequest sets a wallet balance to an observed real value.
type AdjustBalanceRequest struct {
	Balance money.Money `json:"balance"`
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// TransactionDTO represents a transaction in API responses.
type TransactionDTO struct {
	ID          string      `json:"id"`
	WalletID    string      `json:"wallet_id"`
	Amount      money.Money `json:"amount"`
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Date        string      `json:"date"`
	Category    string      `json:"category,omitempty"`
	ReferenceID string      `json:"reference_id,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
}

// CreateTransactionRequest is the request to record a transaction.
type CreateTransactionRequest struct {
	WalletID       string      `json:"wallet_id"`
	Amount         money.Money `json:"amount"`
	Type           string      `json:"type"`
	Description    string      `json:"description"`
	Date           string      `json:"date"` // RFC 3339; empty means now
	Category       string      `json:"category"`
	IdempotencyKey string      `json:"idempotency_key"`
}

// UpdateTransactionRequest carries the editable transaction fields. Absent
// fields are kept.
type UpdateTransactionRequest struct {
	WalletID    *string      `json:"wallet_id"`
	Amount      *money.Money `json:"amount"`
	Type        *string      `json:"type"`
	Description *string      `json:"description"`
	Date        *string      `json:"date"`
	Category    *string      `json:"category"`
}

// =============================================================================
// DERIVED OPERATIONS
// =============================================================================

// TransferRequest moves money between two wallets.
type TransferRequest struct {
	SourceWalletID string      `json:"source_wallet_id"`
	TargetWalletID string      `json:"target_wallet_id"`
	Amount         money.Money `json:"amount"`
}

// CreditPaymentRequest pays a credit card from a debit wallet.
type CreditPaymentRequest struct {
	SourceWalletID string      `json:"source_wallet_id"`
	TargetWalletID string      `json:"target_wallet_id"`
	Amount         money.Money `json:"amount"`
}

// TransactionPairResponse carries the two legs of a transfer or card
// payment.
type TransactionPairResponse struct {
	Expense TransactionDTO `json:"expense"`
	Income  TransactionDTO `json:"income"`
}

// =============================================================================
// DEBTS
// =============================================================================

// DebtDTO represents a debt in API responses.
type DebtDTO struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Amount      money.Money `json:"amount"`
	Description string      `json:"description"`
	DueDate     string      `json:"due_date,omitempty"`
	CategoryID  string      `json:"category_id,omitempty"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"created_at,omitempty"`
}

// CreateDebtRequest is the request to record a debt.
type CreateDebtRequest struct {
	Type        string      `json:"type"`
	Amount      money.Money `json:"amount"`
	Description string      `json:"description"`
	DueDate     string      `json:"due_date"` // RFC 3339; empty means none
	CategoryID  string      `json:"category_id"`
}

// UpdateDebtRequest carries the editable debt fields. Amount and status
// move only through payments and the status toggle.
type UpdateDebtRequest struct {
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	CategoryID  *string `json:"category_id"`
}

// DebtPaymentRequest records a payment against a debt.
type DebtPaymentRequest struct {
	Amount   money.Money `json:"amount"`
	WalletID string      `json:"wallet_id"`
}

// DebtPaymentResponse returns the updated debt and the payment transaction.
type DebtPaymentResponse struct {
	Debt        DebtDTO        `json:"debt"`
	Transaction TransactionDTO `json:"transaction"`
}

// DebtCategoryDTO represents a debt category.
type DebtCategoryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateDebtCategoryRequest is the request to create a debt category.
type CreateDebtCategoryRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// TEMPLATES
// =============================================================================

// TemplateDTO represents a quick-action template.
type TemplateDTO struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Amount      money.Money `json:"amount"`
	Description string      `json:"description,omitempty"`
	Type        string      `json:"type"`
	WalletID    string      `json:"wallet_id,omitempty"`
	Category    string      `json:"category,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
}

// CreateTemplateRequest is the request to create a template.
type CreateTemplateRequest struct {
	Name        string      `json:"name"`
	Amount      money.Money `json:"amount"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	WalletID    string      `json:"wallet_id"`
	Category    string      `json:"category"`
}

// ExecuteTemplateRequest optionally overrides the template's wallet.
type ExecuteTemplateRequest struct {
	WalletID string `json:"wallet_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toWalletDTO(w ledger.Wallet) WalletDTO {
	return WalletDTO{
		ID:          w.ID,
		Name:        w.Name,
		Color:       w.Color,
		Currency:    w.Currency,
		Kind:        string(w.Kind),
		Balance:     w.Balance,
		CreditLimit: w.CreditLimit,
		Owed:        w.Owed(),
		Category:    w.Category,
		CreatedAt:   w.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          tx.ID,
		WalletID:    tx.WalletID,
		Amount:      tx.Amount,
		Type:        string(tx.Type),
		Description: tx.Description,
		Date:        tx.Date.Format(time.RFC3339),
		Category:    tx.Category,
		ReferenceID: tx.ReferenceID,
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
}

func toDebtDTO(d ledger.Debt) DebtDTO {
	dto := DebtDTO{
		ID:          d.ID,
		Type:        string(d.Type),
		Amount:      d.Amount,
		Description: d.Description,
		CategoryID:  d.CategoryID,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
	if d.DueDate != nil {
		dto.DueDate = d.DueDate.Format(time.RFC3339)
	}
	return dto
}

func toTemplateDTO(t ledger.TransactionTemplate) TemplateDTO {
	return TemplateDTO{
		ID:          t.ID,
		Name:        t.Name,
		Amount:      t.Amount,
		Description: t.Description,
		Type:        string(t.Type),
		WalletID:    t.WalletID,
		Category:    t.Category,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}
