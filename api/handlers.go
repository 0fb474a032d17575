/*
handlers.go - HTTP API handlers for the ledger engine

PURPOSE:
  Exposes the ledger consistency engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Wallets:
    GET    /api/wallets                    List wallets
    POST   /api/wallets                    Create wallet
    GET    /api/wallets/{id}               Get wallet details
    PUT    /api/wallets/{id}               Edit non-financial fields
    DELETE /api/wallets/{id}               Delete wallet (cascades history)
    POST   /api/wallets/{id}/adjust        Set balance to an observed value

  Transactions:
    GET    /api/transactions               List (wallet/type/date filters)
    POST   /api/transactions               Record transaction
    GET    /api/transactions/{id}          Get transaction
    PUT    /api/transactions/{id}          Edit (reverse old, apply new)
    DELETE /api/transactions/{id}          Delete (reverts balance effect)

  Derived operations:
    POST   /api/transfers                  Wallet-to-wallet transfer
    POST   /api/credit-payments            Pay a credit card

  Debts:
    GET    /api/debts                      List debts
    POST   /api/debts                      Record debt
    PUT    /api/debts/{id}                 Edit descriptive fields
    DELETE /api/debts/{id}                 Delete debt
    POST   /api/debts/{id}/payments        Record debt payment
    POST   /api/debts/{id}/toggle          Flip PENDING <-> PAID
    GET    /api/debt-categories            List categories
    POST   /api/debt-categories            Create category
    DELETE /api/debt-categories/{id}       Delete category (un-sets refs)

  Templates:
    GET    /api/templates                  List quick-action templates
    POST   /api/templates                  Create template
    DELETE /api/templates/{id}             Delete template
    POST   /api/templates/{id}/execute     Execute template

USER IDENTIFICATION:
  Every /api route requires an X-User-ID header; the handlers scope all
  engine calls to it. The quick-capture endpoint (shortcut.go) carries its
  user in the body instead, authenticated by a shared secret.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Quick-capture secret mismatch
  - 404: Entity not found
  - 409: Duplicate idempotency key
  - 500: Storage failures and partial failures

SEE ALSO:
  - dto.go: Request/response data structures
  - shortcut.go: Quick-capture and statement import endpoints
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Aldairz16/Deudaz0/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *ledger.Engine
	Log    *zap.Logger

	// ShortcutSecret guards the unauthenticated quick-capture endpoint.
	ShortcutSecret string

	currentScenario string
}

// NewHandler creates a new handler around the ledger engine.
func NewHandler(engine *ledger.Engine, log *zap.Logger, shortcutSecret string) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Engine: engine, Log: log, ShortcutSecret: shortcutSecret}
}

// userID extracts the caller identity. Empty means the request is rejected
// by the handler.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// =============================================================================
// WALLET HANDLERS
// =============================================================================

// ListWallets returns all wallets for the caller.
func (h *Handler) ListWallets(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	wallets, err := h.Engine.Wallets(r.Context(), uid)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]WalletDTO, len(wallets))
	for i, wal := range wallets {
		dtos[i] = toWalletDTO(wal)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWallet returns a single wallet.
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	wal, err := h.Engine.Wallet(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletDTO(*wal))
}

// CreateWallet creates a new wallet.
func (h *Handler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	wal, err := h.Engine.CreateWallet(r.Context(), ledger.CreateWalletInput{
		UserID:         uid,
		Name:           req.Name,
		Color:          req.Color,
		Currency:       req.Currency,
		Kind:           ledger.WalletKind(req.Kind),
		InitialBalance: req.Balance,
		CreditLimit:    req.CreditLimit,
		Category:       req.Category,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWalletDTO(*wal))
}

// UpdateWallet edits a wallet's non-financial fields.
func (h *Handler) UpdateWallet(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req UpdateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	wal, err := h.Engine.UpdateWallet(r.Context(), uid, chi.URLParam(r, "id"), ledger.WalletUpdate{
		Name:        req.Name,
		Color:       req.Color,
		Category:    req.Category,
		CreditLimit: req.CreditLimit,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWalletDTO(*wal))
}

// DeleteWallet removes a wallet and its transaction history.
func (h *Handler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	if err := h.Engine.DeleteWallet(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustBalance sets a wallet balance to an observed real-world value,
// recording an ADJUSTMENT transaction.
func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tx, err := h.Engine.AdjustBalance(r.Context(), uid, chi.URLParam(r, "id"), req.Balance)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(*tx))
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns the caller's history, newest first. Supports
// wallet_id, type, from, to, and limit query parameters.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	filter := ledger.TransactionFilter{
		WalletID: r.URL.Query().Get("wallet_id"),
		Type:     ledger.TransactionType(r.URL.Query().Get("type")),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use RFC 3339)", err)
			return
		}
		filter.From = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use RFC 3339)", err)
			return
		}
		filter.To = &t
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		filter.Limit = n
	}

	txs, err := h.Engine.Transactions(r.Context(), uid, filter)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTransaction returns a single transaction.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	tx, err := h.Engine.Transaction(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(*tx))
}

// CreateTransaction records a transaction and applies its balance effect.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use RFC 3339)", err)
			return
		}
		date = parsed
	}

	tx, err := h.Engine.CreateTransaction(r.Context(), ledger.CreateTransactionInput{
		UserID:         uid,
		WalletID:       req.WalletID,
		Amount:         req.Amount,
		Type:           ledger.TransactionType(req.Type),
		Description:    req.Description,
		Date:           date,
		Category:       req.Category,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(*tx))
}

// UpdateTransaction edits a transaction, reversing the old balance effect
// and applying the new one.
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	up := ledger.TransactionUpdate{
		WalletID:    req.WalletID,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Type != nil {
		t := ledger.TransactionType(*req.Type)
		up.Type = &t
	}
	if req.Date != nil {
		parsed, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use RFC 3339)", err)
			return
		}
		up.Date = &parsed
	}

	tx, err := h.Engine.UpdateTransaction(r.Context(), uid, chi.URLParam(r, "id"), up)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(*tx))
}

// DeleteTransaction removes a transaction and reverts its balance effect.
// Deleting an already-deleted transaction is a no-op.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	if err := h.Engine.DeleteTransaction(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DERIVED OPERATION HANDLERS
// =============================================================================

// Transfer moves money between two wallets as a linked EXPENSE/INCOME pair.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	expense, income, err := h.Engine.Transfer(r.Context(), ledger.TransferInput{
		UserID:         uid,
		SourceWalletID: req.SourceWalletID,
		TargetWalletID: req.TargetWalletID,
		Amount:         req.Amount,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, TransactionPairResponse{
		Expense: toTransactionDTO(*expense),
		Income:  toTransactionDTO(*income),
	})
}

// PayCreditCard pays a credit card from a debit wallet.
func (h *Handler) PayCreditCard(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req CreditPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	expense, income, err := h.Engine.PayCreditCard(r.Context(), ledger.CreditPaymentInput{
		UserID:         uid,
		SourceWalletID: req.SourceWalletID,
		TargetWalletID: req.TargetWalletID,
		Amount:         req.Amount,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, TransactionPairResponse{
		Expense: toTransactionDTO(*expense),
		Income:  toTransactionDTO(*income),
	})
}

// =============================================================================
// DEBT HANDLERS
// =============================================================================

// ListDebts returns all debts for the caller.
func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	debts, err := h.Engine.Debts(r.Context(), uid)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]DebtDTO, len(debts))
	for i, d := range debts {
		dtos[i] = toDebtDTO(d)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDebt records a new debt, PENDING, with its full amount.
func (h *Handler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req CreateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in := ledger.CreateDebtInput{
		UserID:      uid,
		Type:        ledger.DebtType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if req.DueDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid due_date (use RFC 3339)", err)
			return
		}
		in.DueDate = &parsed
	}

	d, err := h.Engine.CreateDebt(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDebtDTO(*d))
}

// UpdateDebt edits a debt's descriptive fields.
func (h *Handler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req UpdateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	up := ledger.DebtUpdate{
		Description: req.Description,
		CategoryID:  req.CategoryID,
	}
	if req.DueDate != nil {
		parsed, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid due_date (use RFC 3339)", err)
			return
		}
		up.DueDate = &parsed
	}

	d, err := h.Engine.UpdateDebt(r.Context(), uid, chi.URLParam(r, "id"), up)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtDTO(*d))
}

// DeleteDebt removes a debt. Wallet balances are untouched.
func (h *Handler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	if err := h.Engine.DeleteDebt(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProcessDebtPayment records a payment against a debt: the debt shrinks and
// the wallet movement is recorded through the transaction engine.
func (h *Handler) ProcessDebtPayment(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req DebtPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	d, tx, err := h.Engine.ProcessDebtPayment(r.Context(), ledger.ProcessDebtPaymentInput{
		UserID:   uid,
		DebtID:   chi.URLParam(r, "id"),
		Amount:   req.Amount,
		WalletID: req.WalletID,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DebtPaymentResponse{
		Debt:        toDebtDTO(*d),
		Transaction: toTransactionDTO(*tx),
	})
}

// ToggleDebtStatus flips a debt between PENDING and PAID without moving
// money.
func (h *Handler) ToggleDebtStatus(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	d, err := h.Engine.ToggleDebtStatus(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDebtDTO(*d))
}

// =============================================================================
// DEBT CATEGORY HANDLERS
// =============================================================================

// ListDebtCategories returns the caller's debt categories.
func (h *Handler) ListDebtCategories(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	categories, err := h.Engine.DebtCategories(r.Context(), uid)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]DebtCategoryDTO, len(categories))
	for i, c := range categories {
		dtos[i] = DebtCategoryDTO{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateDebtCategory adds a grouping label for debts.
func (h *Handler) CreateDebtCategory(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req CreateDebtCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Engine.CreateDebtCategory(r.Context(), uid, req.Name)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DebtCategoryDTO{ID: c.ID, Name: c.Name})
}

// DeleteDebtCategory removes a category; debts referencing it keep living
// with the reference un-set.
func (h *Handler) DeleteDebtCategory(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	if err := h.Engine.DeleteDebtCategory(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TEMPLATE HANDLERS
// =============================================================================

// ListTemplates returns the caller's quick-action templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	templates, err := h.Engine.Templates(r.Context(), uid)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]TemplateDTO, len(templates))
	for i, t := range templates {
		dtos[i] = toTemplateDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTemplate stores a quick-action transaction factory.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	t, err := h.Engine.CreateTemplate(r.Context(), ledger.CreateTemplateInput{
		UserID:      uid,
		Name:        req.Name,
		Amount:      req.Amount,
		Description: req.Description,
		Type:        ledger.TransactionType(req.Type),
		WalletID:    req.WalletID,
		Category:    req.Category,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateDTO(*t))
}

// DeleteTemplate removes a template. Past transactions are untouched.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	if err := h.Engine.DeleteTemplate(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExecuteTemplate materializes a template into a real transaction.
func (h *Handler) ExecuteTemplate(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	// Body is optional; an empty body means no wallet override.
	var req ExecuteTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = ExecuteTemplateRequest{}
	}

	tx, err := h.Engine.ExecuteTemplate(r.Context(), uid, chi.URLParam(r, "id"), req.WalletID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(*tx))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrDuplicateIdempotencyKey):
		writeError(w, http.StatusConflict, "Duplicate idempotency key", err)
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case ledger.IsPartialFailure(err):
		h.Log.Error("partial failure surfaced to client", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Operation partially applied; manual reconciliation needed", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
