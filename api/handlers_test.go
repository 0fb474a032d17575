/*
handlers_test.go - HTTP-level tests for the API

Exercises the full router with an in-memory repository: header auth,
status-code mapping for domain errors, the wallet/transaction happy path,
quick capture, and statement import.
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aldairz16/Deudaz0/api"
	"github.com/Aldairz16/Deudaz0/ledger"
	"github.com/Aldairz16/Deudaz0/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const (
	testUser   = "user-1"
	testSecret = "shortcut-secret"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine := ledger.New(memory.New(), nil)
	handler := api.NewHandler(engine, nil, testSecret)
	srv := httptest.NewServer(api.NewRouter(handler, nil))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON issues a request with the standard auth header and decodes the
// response body into out (when out is non-nil).
func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", testUser)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createWallet(t *testing.T, srv *httptest.Server, name string, balance float64) api.WalletDTO {
	t.Helper()
	var dto api.WalletDTO
	resp := doJSON(t, srv, http.MethodPost, "/api/wallets", map[string]any{
		"name":    name,
		"balance": balance,
	}, &dto)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return dto
}

// =============================================================================
// AUTH
// =============================================================================

func TestAPI_MissingUserHeader(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/wallets")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// WALLETS AND TRANSACTIONS
// =============================================================================

func TestAPI_WalletTransactionFlow(t *testing.T) {
	// GIVEN: A wallet created over the API with 500.00
	// WHEN: Recording an expense of 150.00 and listing wallets
	// THEN: The wallet shows 350.00

	srv := newTestServer(t)
	w := createWallet(t, srv, "Banco", 500)
	assert.Equal(t, "DEBIT", w.Kind)
	assert.Equal(t, "PEN", w.Currency)

	var tx api.TransactionDTO
	resp := doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]any{
		"wallet_id":   w.ID,
		"amount":      150.00,
		"type":        "EXPENSE",
		"description": "Supermercado",
	}, &tx)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, tx.ID)

	var wallets []api.WalletDTO
	resp = doJSON(t, srv, http.MethodGet, "/api/wallets", nil, &wallets)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, wallets, 1)
	assert.Equal(t, "350.00", wallets[0].Balance.String())
}

func TestAPI_ErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Banco", 500)

	t.Run("unknown wallet is 404", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]any{
			"wallet_id": "ghost", "amount": 10.0, "type": "EXPENSE",
		}, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid type is 400", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]any{
			"wallet_id": w.ID, "amount": 10.0, "type": "REFUND",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate idempotency key is 409", func(t *testing.T) {
		body := map[string]any{
			"wallet_id": w.ID, "amount": 10.0, "type": "EXPENSE",
			"idempotency_key": "key-1",
		}
		resp := doJSON(t, srv, http.MethodPost, "/api/transactions", body, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = doJSON(t, srv, http.MethodPost, "/api/transactions", body, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("missing wallet on GET is 404", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/api/wallets/ghost", nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAPI_AdjustBalance(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Banco", 500)

	var tx api.TransactionDTO
	resp := doJSON(t, srv, http.MethodPost, "/api/wallets/"+w.ID+"/adjust", map[string]any{
		"balance": 483.20,
	}, &tx)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ADJUSTMENT", tx.Type)

	var got api.WalletDTO
	resp = doJSON(t, srv, http.MethodGet, "/api/wallets/"+w.ID, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "483.20", got.Balance.String())
}

func TestAPI_Transfer(t *testing.T) {
	srv := newTestServer(t)
	a := createWallet(t, srv, "Banco A", 800)
	b := createWallet(t, srv, "Banco B", 200)

	var pair api.TransactionPairResponse
	resp := doJSON(t, srv, http.MethodPost, "/api/transfers", map[string]any{
		"source_wallet_id": a.ID,
		"target_wallet_id": b.ID,
		"amount":           300.0,
	}, &pair)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "EXPENSE", pair.Expense.Type)
	assert.Equal(t, "INCOME", pair.Income.Type)
	assert.Equal(t, pair.Expense.ReferenceID, pair.Income.ReferenceID)

	var got api.WalletDTO
	doJSON(t, srv, http.MethodGet, "/api/wallets/"+b.ID, nil, &got)
	assert.Equal(t, "500.00", got.Balance.String())
}

// =============================================================================
// QUICK CAPTURE
// =============================================================================

func shortcutBody(overrides map[string]any) map[string]any {
	body := map[string]any{
		"secret":  testSecret,
		"user_id": testUser,
		"amount":  25.50,
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}

func TestShortcut_RecordsWithDefaults(t *testing.T) {
	// GIVEN: A user with one wallet
	// WHEN: Quick capture posts only secret, user and amount
	// THEN: An expense lands on the oldest wallet with default labels

	srv := newTestServer(t)
	w := createWallet(t, srv, "Efectivo", 100)

	var tx api.TransactionDTO
	resp := doJSON(t, srv, http.MethodPost, "/api/shortcut/transaction", shortcutBody(nil), &tx)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, w.ID, tx.WalletID)
	assert.Equal(t, "EXPENSE", tx.Type)
	assert.Equal(t, "Movimiento rápido", tx.Description)
	assert.Equal(t, "General", tx.Category)
}

func TestShortcut_WalletNameResolution(t *testing.T) {
	srv := newTestServer(t)
	createWallet(t, srv, "Efectivo", 100)
	visa := createWallet(t, srv, "Tarjeta Visa", 50)

	var tx api.TransactionDTO
	resp := doJSON(t, srv, http.MethodPost, "/api/shortcut/transaction", shortcutBody(map[string]any{
		"wallet_name": "tarjeta visa",
		"type":        "ingreso",
	}), &tx)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, visa.ID, tx.WalletID)
	assert.Equal(t, "INCOME", tx.Type)
}

func TestShortcut_UnmatchedNameFallsBackToOldest(t *testing.T) {
	srv := newTestServer(t)
	first := createWallet(t, srv, "Efectivo", 100)
	createWallet(t, srv, "Banco", 500)

	var tx api.TransactionDTO
	resp := doJSON(t, srv, http.MethodPost, "/api/shortcut/transaction", shortcutBody(map[string]any{
		"wallet_name": "inexistente",
	}), &tx)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, first.ID, tx.WalletID)
}

func TestShortcut_Rejections(t *testing.T) {
	srv := newTestServer(t)
	createWallet(t, srv, "Efectivo", 100)

	cases := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"wrong secret", shortcutBody(map[string]any{"secret": "nope"}), http.StatusUnauthorized},
		{"missing user", shortcutBody(map[string]any{"user_id": ""}), http.StatusBadRequest},
		{"unknown type", shortcutBody(map[string]any{"type": "REEMBOLSO"}), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, srv, http.MethodPost, "/api/shortcut/transaction", tc.body, nil)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestShortcut_NoWalletIs404(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/shortcut/transaction", shortcutBody(nil), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestShortcut_EmptyServerSecretIs500(t *testing.T) {
	engine := ledger.New(memory.New(), nil)
	handler := api.NewHandler(engine, nil, "")
	srv := httptest.NewServer(api.NewRouter(handler, nil))
	t.Cleanup(srv.Close)

	resp := doJSON(t, srv, http.MethodPost, "/api/shortcut/transaction", shortcutBody(nil), nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

// =============================================================================
// STATEMENT IMPORT
// =============================================================================

func TestImport_MixedBatch(t *testing.T) {
	// GIVEN: A batch of three candidates, one with an unknown type
	// WHEN: Importing into a wallet
	// THEN: Two succeed with the scan category, one fails, status is 201

	srv := newTestServer(t)
	w := createWallet(t, srv, "Banco", 500)

	var resp api.ImportTransactionsResponse
	httpResp := doJSON(t, srv, http.MethodPost, "/api/import/transactions", map[string]any{
		"wallet_id": w.ID,
		"transactions": []map[string]any{
			{"description": "Luz", "amount": 80.0, "type": "gasto", "date": "2026-08-10"},
			{"description": "Sueldo", "amount": 2000.0, "type": "INGRESO", "date": "2026-08-15T09:00:00Z"},
			{"description": "Raro", "amount": 5.0, "type": "REEMBOLSO"},
		},
	}, &resp)
	require.Equal(t, http.StatusCreated, httpResp.StatusCode)

	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 3)
	assert.True(t, resp.Results[0].OK)
	assert.Equal(t, "Escaneado", resp.Results[0].Transaction.Category)
	assert.True(t, resp.Results[1].OK)
	assert.False(t, resp.Results[2].OK)
	assert.NotEmpty(t, resp.Results[2].Error)

	var got api.WalletDTO
	doJSON(t, srv, http.MethodGet, "/api/wallets/"+w.ID, nil, &got)
	assert.Equal(t, "2420.00", got.Balance.String(), "500 - 80 + 2000")
}

func TestImport_AllFailedIs400(t *testing.T) {
	srv := newTestServer(t)
	createWallet(t, srv, "Banco", 500)

	var resp api.ImportTransactionsResponse
	httpResp := doJSON(t, srv, http.MethodPost, "/api/import/transactions", map[string]any{
		"wallet_id": "ghost",
		"transactions": []map[string]any{
			{"description": "Luz", "amount": 80.0, "type": "gasto"},
		},
	}, &resp)
	assert.Equal(t, http.StatusBadRequest, httpResp.StatusCode)
	assert.Equal(t, 0, resp.Imported)
	assert.Equal(t, 1, resp.Failed)
}

func TestImport_EmptyBatchIs400(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/import/transactions", map[string]any{
		"wallet_id":    "any",
		"transactions": []map[string]any{},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// DEBTS
// =============================================================================

func TestAPI_DebtPaymentFlow(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Banco", 500)

	var debt api.DebtDTO
	resp := doJSON(t, srv, http.MethodPost, "/api/debts", map[string]any{
		"type":        "PAYABLE",
		"amount":      300.0,
		"description": "Juan",
	}, &debt)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "PENDING", debt.Status)

	var payment api.DebtPaymentResponse
	resp = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/debts/%s/payments", debt.ID), map[string]any{
		"amount":    100.0,
		"wallet_id": w.ID,
	}, &payment)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "200.00", payment.Debt.Amount.String())
	assert.Equal(t, "PENDING", payment.Debt.Status)
	assert.Equal(t, "EXPENSE", payment.Transaction.Type)

	var got api.WalletDTO
	doJSON(t, srv, http.MethodGet, "/api/wallets/"+w.ID, nil, &got)
	assert.Equal(t, "400.00", got.Balance.String())
}

// =============================================================================
// TEMPLATES
// =============================================================================

func TestAPI_TemplateExecute(t *testing.T) {
	srv := newTestServer(t)
	w := createWallet(t, srv, "Banco", 500)

	var tpl api.TemplateDTO
	resp := doJSON(t, srv, http.MethodPost, "/api/templates", map[string]any{
		"name":      "Café",
		"amount":    12.50,
		"type":      "EXPENSE",
		"wallet_id": w.ID,
	}, &tpl)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tx api.TransactionDTO
	resp = doJSON(t, srv, http.MethodPost, "/api/templates/"+tpl.ID+"/execute", nil, &tx)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, w.ID, tx.WalletID)
	assert.Equal(t, "Café", tx.Description)

	var got api.WalletDTO
	doJSON(t, srv, http.MethodGet, "/api/wallets/"+w.ID, nil, &got)
	assert.Equal(t, "487.50", got.Balance.String())
}
