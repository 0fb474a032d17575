/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the demo user with realistic
	data. Each scenario clears the demo user first and then seeds wallets,
	transactions, debts, and templates that demonstrate specific features.

AVAILABLE SCENARIOS:

	fresh-start:   One cash wallet with a handful of everyday movements
	credit-card:   Debit + credit wallet, card spending and a card payment
	debts:         Payable and receivable debts, categories, a partial payment
	quick-actions: Templates for recurring movements, one executed

HOW SCENARIOS WORK:
 1. Clear everything owned by the demo user (wallets cascade transactions)
 2. Create wallets via the engine
 3. Record transactions, debts, and templates through the same operations
    the interactive API uses

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "credit-card"}

	Seeded data belongs to user "demo"; send X-User-ID: demo to browse it.

NOTE:

	Loading a scenario wipes the demo user. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: Handler context, response helpers
  - ledger: the operations scenarios are built from
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Aldairz16/Deudaz0/ledger"
	"github.com/Aldairz16/Deudaz0/money"
)

// DemoUserID owns all scenario data.
const DemoUserID = "demo"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-start",
		Name:        "Fresh Start",
		Description: "One cash wallet with everyday income and expenses",
	},
	{
		ID:          "credit-card",
		Name:        "Credit Card",
		Description: "Debit + credit wallet, card spending and a card payment",
	},
	{
		ID:          "debts",
		Name:        "Debts",
		Description: "Payable and receivable debts with categories and a partial payment",
	},
	{
		ID:          "quick-actions",
		Name:        "Quick Actions",
		Description: "Transaction templates for recurring movements",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: h.currentScenario, Name: h.currentScenario})
}

// LoadScenario wipes the demo user and seeds the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.clearDemoUser(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear demo data", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "fresh-start":
		err = h.loadFreshStartScenario(ctx)
	case "credit-card":
		err = h.loadCreditCardScenario(ctx)
	case "debts":
		err = h.loadDebtsScenario(ctx)
	case "quick-actions":
		err = h.loadQuickActionsScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario %q", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{
		"scenario_id": req.ScenarioID,
		"user_id":     DemoUserID,
	})
}

// clearDemoUser removes everything the demo user owns. Deleting wallets
// cascades their transactions; debts, categories, and templates go one by
// one.
func (h *Handler) clearDemoUser(ctx context.Context) error {
	wallets, err := h.Engine.Wallets(ctx, DemoUserID)
	if err != nil {
		return err
	}
	for _, wal := range wallets {
		if err := h.Engine.DeleteWallet(ctx, DemoUserID, wal.ID); err != nil {
			return err
		}
	}

	debts, err := h.Engine.Debts(ctx, DemoUserID)
	if err != nil {
		return err
	}
	for _, d := range debts {
		if err := h.Engine.DeleteDebt(ctx, DemoUserID, d.ID); err != nil {
			return err
		}
	}

	categories, err := h.Engine.DebtCategories(ctx, DemoUserID)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if err := h.Engine.DeleteDebtCategory(ctx, DemoUserID, c.ID); err != nil {
			return err
		}
	}

	templates, err := h.Engine.Templates(ctx, DemoUserID)
	if err != nil {
		return err
	}
	for _, t := range templates {
		if err := h.Engine.DeleteTemplate(ctx, DemoUserID, t.ID); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFreshStartScenario(ctx context.Context) error {
	cash, err := h.Engine.CreateWallet(ctx, ledger.CreateWalletInput{
		UserID:         DemoUserID,
		Name:           "Efectivo",
		Color:          "#16a34a",
		InitialBalance: money.MustParse("1200.00"),
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	movements := []ledger.CreateTransactionInput{
		{Amount: money.MustParse("2500.00"), Type: ledger.TxIncome, Description: "Sueldo", Category: "Salario", Date: now.AddDate(0, 0, -14)},
		{Amount: money.MustParse("180.50"), Type: ledger.TxExpense, Description: "Supermercado", Category: "Comida", Date: now.AddDate(0, 0, -10)},
		{Amount: money.MustParse("45.00"), Type: ledger.TxExpense, Description: "Gasolina", Category: "Transporte", Date: now.AddDate(0, 0, -7)},
		{Amount: money.MustParse("89.90"), Type: ledger.TxExpense, Description: "Internet", Category: "Servicios", Date: now.AddDate(0, 0, -3)},
	}
	for _, m := range movements {
		m.UserID = DemoUserID
		m.WalletID = cash.ID
		if _, err := h.Engine.CreateTransaction(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadCreditCardScenario(ctx context.Context) error {
	bank, err := h.Engine.CreateWallet(ctx, ledger.CreateWalletInput{
		UserID:         DemoUserID,
		Name:           "Banco Principal",
		Color:          "#2563eb",
		InitialBalance: money.MustParse("3000.00"),
	})
	if err != nil {
		return err
	}
	card, err := h.Engine.CreateWallet(ctx, ledger.CreateWalletInput{
		UserID:         DemoUserID,
		Name:           "Tarjeta Visa",
		Color:          "#7c3aed",
		Kind:           ledger.WalletCredit,
		InitialBalance: money.MustParse("2000.00"),
		CreditLimit:    money.MustParse("2000.00"),
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	spending := []ledger.CreateTransactionInput{
		{Amount: money.MustParse("350.00"), Type: ledger.TxExpense, Description: "Vuelo a Lima", Category: "Viajes", Date: now.AddDate(0, 0, -20)},
		{Amount: money.MustParse("120.00"), Type: ledger.TxExpense, Description: "Restaurante", Category: "Comida", Date: now.AddDate(0, 0, -12)},
	}
	for _, m := range spending {
		m.UserID = DemoUserID
		m.WalletID = card.ID
		if _, err := h.Engine.CreateTransaction(ctx, m); err != nil {
			return err
		}
	}

	// Pay part of the card from the bank account.
	_, _, err = h.Engine.PayCreditCard(ctx, ledger.CreditPaymentInput{
		UserID:         DemoUserID,
		SourceWalletID: bank.ID,
		TargetWalletID: card.ID,
		Amount:         money.MustParse("300.00"),
	})
	return err
}

func (h *Handler) loadDebtsScenario(ctx context.Context) error {
	bank, err := h.Engine.CreateWallet(ctx, ledger.CreateWalletInput{
		UserID:         DemoUserID,
		Name:           "Banco Principal",
		Color:          "#2563eb",
		InitialBalance: money.MustParse("1500.00"),
	})
	if err != nil {
		return err
	}

	loans, err := h.Engine.CreateDebtCategory(ctx, DemoUserID, "Préstamos")
	if err != nil {
		return err
	}

	due := time.Now().UTC().AddDate(0, 1, 0)
	payable, err := h.Engine.CreateDebt(ctx, ledger.CreateDebtInput{
		UserID:      DemoUserID,
		Type:        ledger.DebtPayable,
		Amount:      money.MustParse("600.00"),
		Description: "Juan",
		DueDate:     &due,
		CategoryID:  loans.ID,
	})
	if err != nil {
		return err
	}
	if _, err := h.Engine.CreateDebt(ctx, ledger.CreateDebtInput{
		UserID:      DemoUserID,
		Type:        ledger.DebtReceivable,
		Amount:      money.MustParse("250.00"),
		Description: "María",
	}); err != nil {
		return err
	}

	// One partial payment already made against the payable.
	_, _, err = h.Engine.ProcessDebtPayment(ctx, ledger.ProcessDebtPaymentInput{
		UserID:   DemoUserID,
		DebtID:   payable.ID,
		Amount:   money.MustParse("200.00"),
		WalletID: bank.ID,
	})
	return err
}

func (h *Handler) loadQuickActionsScenario(ctx context.Context) error {
	cash, err := h.Engine.CreateWallet(ctx, ledger.CreateWalletInput{
		UserID:         DemoUserID,
		Name:           "Efectivo",
		Color:          "#16a34a",
		InitialBalance: money.MustParse("500.00"),
	})
	if err != nil {
		return err
	}

	templates := []ledger.CreateTemplateInput{
		{Name: "Café", Amount: money.MustParse("12.50"), Type: ledger.TxExpense, Category: "Comida"},
		{Name: "Pasaje", Amount: money.MustParse("3.50"), Type: ledger.TxExpense, Category: "Transporte", WalletID: cash.ID},
		{Name: "Propina", Amount: money.MustParse("50.00"), Type: ledger.TxIncome, Category: "Extra"},
	}
	var first *ledger.TransactionTemplate
	for _, in := range templates {
		in.UserID = DemoUserID
		tpl, err := h.Engine.CreateTemplate(ctx, in)
		if err != nil {
			return err
		}
		if first == nil {
			first = tpl
		}
	}

	// One template execution so the history is not empty.
	_, err = h.Engine.ExecuteTemplate(ctx, DemoUserID, first.ID, cash.ID)
	return err
}
