/*
shortcut.go - Quick-capture and statement import endpoints

PURPOSE:
  Two ingestion paths that bypass the interactive API:

  Quick capture (POST /api/shortcut/transaction):
    Lets a phone automation (e.g. an iOS Shortcut) record a transaction
    with a single unauthenticated POST. A shared secret in the body stands
    in for a session; the caller names its user and optionally a wallet by
    name.

  Statement import (POST /api/import/transactions):
    Accepts a batch of transaction candidates extracted from a bank
    statement or receipt image and records them one by one. Each record
    succeeds or fails independently; the response reports both sets.

WALLET RESOLUTION (quick capture):
  1. wallet_name given: case-insensitive name match
  2. no match or no name: oldest wallet of the user
  3. user has no wallets: 404

TYPE NORMALIZATION (quick capture):
  Spoken-language tokens map onto the enum: "ingreso"/"income" -> INCOME,
  "gasto"/"expense" -> EXPENSE. Empty defaults to EXPENSE. Anything else
  is rejected rather than silently recorded as an expense.

SEE ALSO:
  - handlers.go: Handler context, response helpers
  - config: SHORTCUT_API_SECRET
*/
package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Aldairz16/Deudaz0/ledger"
	"github.com/Aldairz16/Deudaz0/money"
)

// =============================================================================
// QUICK CAPTURE
// =============================================================================

// ShortcutTransactionRequest is the quick-capture payload. The secret and
// user travel in the body because shortcut tools compose JSON more easily
// than headers.
type ShortcutTransactionRequest struct {
	Secret      string      `json:"secret"`
	UserID      string      `json:"user_id"`
	Amount      money.Money `json:"amount"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	WalletName  string      `json:"wallet_name"`
}

// ShortcutTransaction records a transaction from a phone automation.
func (h *Handler) ShortcutTransaction(w http.ResponseWriter, r *http.Request) {
	if h.ShortcutSecret == "" {
		writeError(w, http.StatusInternalServerError, "Server misconfiguration: shortcut secret not set", nil)
		return
	}

	var req ShortcutTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Secret)), []byte(h.ShortcutSecret)) != 1 {
		writeError(w, http.StatusUnauthorized, "Unauthorized: invalid secret", nil)
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required; check your shortcut settings", nil)
		return
	}

	txType, ok := normalizeShortcutType(req.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown transaction type "+strings.TrimSpace(req.Type), nil)
		return
	}

	wallet, err := h.resolveShortcutWallet(r, req.UserID, req.WalletName)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if wallet == nil {
		writeError(w, http.StatusNotFound, "No wallet found for this user", nil)
		return
	}

	description := req.Description
	if description == "" {
		description = "Movimiento rápido"
	}
	category := req.Category
	if category == "" {
		category = "General"
	}

	tx, err := h.Engine.CreateTransaction(r.Context(), ledger.CreateTransactionInput{
		UserID:      req.UserID,
		WalletID:    wallet.ID,
		Amount:      req.Amount,
		Type:        txType,
		Description: description,
		Date:        time.Now().UTC(),
		Category:    category,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.Log.Info("shortcut transaction recorded",
		zap.String("wallet_id", wallet.ID),
		zap.String("type", string(txType)))
	writeJSON(w, http.StatusCreated, toTransactionDTO(*tx))
}

// resolveShortcutWallet picks the target wallet: name match first, oldest
// wallet as fallback. Returns (nil, nil) when the user has no wallets.
func (h *Handler) resolveShortcutWallet(r *http.Request, uid, name string) (*ledger.Wallet, error) {
	if name != "" {
		wallet, err := h.Engine.FindWalletByName(r.Context(), uid, name)
		if err != nil {
			return nil, err
		}
		if wallet != nil {
			return wallet, nil
		}
	}
	return h.Engine.OldestWallet(r.Context(), uid)
}

// normalizeShortcutType maps spoken-language tokens onto the enum.
func normalizeShortcutType(raw string) (ledger.TransactionType, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "GASTO", "EXPENSE":
		return ledger.TxExpense, true
	case "INGRESO", "INCOME":
		return ledger.TxIncome, true
	}
	return "", false
}

// =============================================================================
// STATEMENT IMPORT
// =============================================================================

// ImportCandidate is one transaction extracted from a statement image.
type ImportCandidate struct {
	Description string      `json:"description"`
	Amount      money.Money `json:"amount"`
	Type        string      `json:"type"`
	Date        string      `json:"date"` // YYYY-MM-DD or RFC 3339
}

// ImportTransactionsRequest is a batch of candidates for one wallet.
type ImportTransactionsRequest struct {
	WalletID     string            `json:"wallet_id"`
	Transactions []ImportCandidate `json:"transactions"`
}

// ImportResultDTO reports the outcome of one candidate.
type ImportResultDTO struct {
	Index       int             `json:"index"`
	OK          bool            `json:"ok"`
	Error       string          `json:"error,omitempty"`
	Transaction *TransactionDTO `json:"transaction,omitempty"`
}

// ImportTransactionsResponse summarizes a batch import.
type ImportTransactionsResponse struct {
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
	Results  []ImportResultDTO `json:"results"`
}

// ImportTransactions records a batch of statement candidates. Records are
// independent: one bad row does not abort the rest.
func (h *Handler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "X-User-ID header is required", nil)
		return
	}

	var req ImportTransactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Transactions) == 0 {
		writeError(w, http.StatusBadRequest, "No transactions to import", nil)
		return
	}

	resp := ImportTransactionsResponse{Results: make([]ImportResultDTO, 0, len(req.Transactions))}
	for i, c := range req.Transactions {
		result := ImportResultDTO{Index: i}

		txType, ok := normalizeShortcutType(c.Type)
		if !ok {
			result.Error = "unknown transaction type " + c.Type
			resp.Failed++
			resp.Results = append(resp.Results, result)
			continue
		}

		tx, err := h.Engine.CreateTransaction(r.Context(), ledger.CreateTransactionInput{
			UserID:      uid,
			WalletID:    req.WalletID,
			Amount:      c.Amount,
			Type:        txType,
			Description: c.Description,
			Date:        parseImportDate(c.Date),
			Category:    "Escaneado",
		})
		if err != nil {
			result.Error = err.Error()
			resp.Failed++
			resp.Results = append(resp.Results, result)
			continue
		}

		dto := toTransactionDTO(*tx)
		result.OK = true
		result.Transaction = &dto
		resp.Imported++
		resp.Results = append(resp.Results, result)
	}

	h.Log.Info("statement import finished",
		zap.String("wallet_id", req.WalletID),
		zap.Int("imported", resp.Imported),
		zap.Int("failed", resp.Failed))

	status := http.StatusCreated
	if resp.Imported == 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

// parseImportDate accepts the date formats statement extractors produce.
// Unparseable dates fall back to now rather than dropping the record.
func parseImportDate(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
