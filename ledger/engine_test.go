package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aldairz16/Deudaz0/ledger"
	"github.com/Aldairz16/Deudaz0/money"
	"github.com/Aldairz16/Deudaz0/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const testUser = "user-1"

func newTestEngine() *ledger.Engine {
	return ledger.New(memory.New(), nil)
}

func newDebitWallet(t *testing.T, e *ledger.Engine, name, balance string) *ledger.Wallet {
	t.Helper()
	w, err := e.CreateWallet(context.Background(), ledger.CreateWalletInput{
		UserID:         testUser,
		Name:           name,
		Kind:           ledger.WalletDebit,
		InitialBalance: money.MustParse(balance),
	})
	require.NoError(t, err)
	return w
}

func newCreditWallet(t *testing.T, e *ledger.Engine, name, available, limit string) *ledger.Wallet {
	t.Helper()
	w, err := e.CreateWallet(context.Background(), ledger.CreateWalletInput{
		UserID:         testUser,
		Name:           name,
		Kind:           ledger.WalletCredit,
		InitialBalance: money.MustParse(available),
		CreditLimit:    money.MustParse(limit),
	})
	require.NoError(t, err)
	return w
}

func walletBalance(t *testing.T, e *ledger.Engine, id string) money.Money {
	t.Helper()
	w, err := e.Wallet(context.Background(), testUser, id)
	require.NoError(t, err)
	return w.Balance
}

// failingRepo wraps the in-memory repository and fails selected methods, to
// exercise mid-sequence storage failures.
type failingRepo struct {
	ledger.Repository
	failAdjust bool
	failDelete bool
}

func (f *failingRepo) AdjustWalletBalance(ctx context.Context, userID, id string, delta money.Money) (money.Money, error) {
	if f.failAdjust {
		return money.Money{}, &ledger.StorageError{Op: "adjust wallet balance", Err: errors.New("disk full")}
	}
	return f.Repository.AdjustWalletBalance(ctx, userID, id, delta)
}

func (f *failingRepo) DeleteTransaction(ctx context.Context, userID, id string) error {
	if f.failDelete {
		return &ledger.StorageError{Op: "delete transaction", Err: errors.New("disk full")}
	}
	return f.Repository.DeleteTransaction(ctx, userID, id)
}

// =============================================================================
// WALLET CRUD
// =============================================================================

func TestCreateWallet_Defaults(t *testing.T) {
	e := newTestEngine()

	w, err := e.CreateWallet(context.Background(), ledger.CreateWalletInput{
		UserID:         testUser,
		Name:           "Efectivo",
		InitialBalance: money.MustParse("100.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.WalletDebit, w.Kind)
	assert.Equal(t, ledger.DefaultCurrency, w.Currency)
}

func TestCreateWallet_RequiresName(t *testing.T) {
	e := newTestEngine()

	_, err := e.CreateWallet(context.Background(), ledger.CreateWalletInput{
		UserID: testUser,
		Name:   "   ",
	})
	var ve *ledger.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateWallet_CannotTouchBalance(t *testing.T) {
	// GIVEN: A wallet with a 500.00 balance
	// WHEN: Renaming it through the administrative update
	// THEN: The name changes and the balance is untouched

	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")

	name := "Banco Principal"
	updated, err := e.UpdateWallet(context.Background(), testUser, w.ID, ledger.WalletUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Banco Principal", updated.Name)
	assert.Equal(t, "500.00", updated.Balance.String())
}

func TestDeleteWallet_CascadesTransactions(t *testing.T) {
	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")

	_, err := e.CreateTransaction(context.Background(), ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("50.00"), Type: ledger.TxExpense,
	})
	require.NoError(t, err)

	require.NoError(t, e.DeleteWallet(context.Background(), testUser, w.ID))

	txs, err := e.Transactions(context.Background(), testUser, ledger.TransactionFilter{WalletID: w.ID})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

// =============================================================================
// TRANSACTION CREATE
// =============================================================================

func TestCreateTransaction_ExpenseReducesBalance(t *testing.T) {
	// GIVEN: A debit wallet at 500.00
	// WHEN: Recording a 150.00 expense
	// THEN: The balance lands at 350.00

	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")

	_, err := e.CreateTransaction(context.Background(), ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("150.00"), Type: ledger.TxExpense,
		Description: "Supermercado",
	})
	require.NoError(t, err)
	assert.Equal(t, "350.00", walletBalance(t, e, w.ID).String())
}

func TestCreateTransaction_IncomeIncreasesBalance(t *testing.T) {
	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")

	_, err := e.CreateTransaction(context.Background(), ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("1200.00"), Type: ledger.TxIncome,
	})
	require.NoError(t, err)
	assert.Equal(t, "1700.00", walletBalance(t, e, w.ID).String())
}

func TestCreateTransaction_CreditWallet_ExpenseReducesAvailable(t *testing.T) {
	// GIVEN: A credit card with 1000.00 available on a 1000.00 limit
	// WHEN: Recording a 200.00 purchase
	// THEN: Available credit drops to 800.00 and derived debt is 200.00

	e := newTestEngine()
	card := newCreditWallet(t, e, "Tarjeta", "1000.00", "1000.00")

	_, err := e.CreateTransaction(context.Background(), ledger.CreateTransactionInput{
		UserID: testUser, WalletID: card.ID,
		Amount: money.MustParse("200.00"), Type: ledger.TxExpense,
	})
	require.NoError(t, err)

	w, err := e.Wallet(context.Background(), testUser, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "800.00", w.Balance.String())
	assert.Equal(t, "200.00", w.Owed().String())
}

func TestCreateTransaction_ValidationRejections(t *testing.T) {
	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")
	ctx := context.Background()

	cases := []struct {
		name string
		in   ledger.CreateTransactionInput
	}{
		{"zero amount", ledger.CreateTransactionInput{
			UserID: testUser, WalletID: w.ID, Type: ledger.TxExpense}},
		{"negative amount", ledger.CreateTransactionInput{
			UserID: testUser, WalletID: w.ID, Type: ledger.TxExpense,
			Amount: money.MustParse("-5.00")}},
		{"unknown type", ledger.CreateTransactionInput{
			UserID: testUser, WalletID: w.ID, Type: "REFUND",
			Amount: money.MustParse("5.00")}},
		{"raw transfer", ledger.CreateTransactionInput{
			UserID: testUser, WalletID: w.ID, Type: ledger.TxTransfer,
			Amount: money.MustParse("5.00")}},
		{"missing wallet id", ledger.CreateTransactionInput{
			UserID: testUser, Type: ledger.TxExpense,
			Amount: money.MustParse("5.00")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.CreateTransaction(ctx, tc.in)
			var ve *ledger.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}

	// Nothing was written and the balance never moved.
	assert.Equal(t, "500.00", walletBalance(t, e, w.ID).String())
}

func TestCreateTransaction_UnknownWallet(t *testing.T) {
	e := newTestEngine()

	_, err := e.CreateTransaction(context.Background(), ledger.CreateTransactionInput{
		UserID: testUser, WalletID: "nope",
		Amount: money.MustParse("5.00"), Type: ledger.TxExpense,
	})
	assert.ErrorIs(t, err, ledger.ErrWalletNotFound)
}

func TestCreateTransaction_IdempotencyKeyRejectsDuplicate(t *testing.T) {
	// GIVEN: A transaction created with an idempotency key
	// WHEN: Retrying the same create after a lost response
	// THEN: The retry is rejected and the balance moved exactly once

	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")
	ctx := context.Background()

	in := ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("150.00"), Type: ledger.TxExpense,
		IdempotencyKey: "shortcut-42",
	}

	_, err := e.CreateTransaction(ctx, in)
	require.NoError(t, err)

	_, err = e.CreateTransaction(ctx, in)
	assert.ErrorIs(t, err, ledger.ErrDuplicateIdempotencyKey)
	assert.Equal(t, "350.00", walletBalance(t, e, w.ID).String())
}

// =============================================================================
// TRANSACTION DELETE
// =============================================================================

func TestDeleteTransaction_RevertsBalance(t *testing.T) {
	// GIVEN: A 150.00 expense recorded against a 500.00 wallet
	// WHEN: Deleting the transaction
	// THEN: The balance returns to 500.00 and the record is gone

	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")
	ctx := context.Background()

	tx, err := e.CreateTransaction(ctx, ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("150.00"), Type: ledger.TxExpense,
	})
	require.NoError(t, err)

	require.NoError(t, e.DeleteTransaction(ctx, testUser, tx.ID))
	assert.Equal(t, "500.00", walletBalance(t, e, w.ID).String())

	_, err = e.Transaction(ctx, testUser, tx.ID)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestDeleteTransaction_MissingIsNoOp(t *testing.T) {
	e := newTestEngine()
	assert.NoError(t, e.DeleteTransaction(context.Background(), testUser, "ghost"))
}

// =============================================================================
// TRANSACTION UPDATE
// =============================================================================

func TestUpdateTransaction_AmountChangeRewritesEffect(t *testing.T) {
	// GIVEN: A 100.00 expense on a 500.00 wallet (balance 400.00)
	// WHEN: Editing the amount to 150.00
	// THEN: The old effect is reversed and the new one applied: 350.00

	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")
	ctx := context.Background()

	tx, err := e.CreateTransaction(ctx, ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("100.00"), Type: ledger.TxExpense,
	})
	require.NoError(t, err)

	amount := money.MustParse("150.00")
	updated, err := e.UpdateTransaction(ctx, testUser, tx.ID, ledger.TransactionUpdate{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "150.00", updated.Amount.String())
	assert.Equal(t, "350.00", walletBalance(t, e, w.ID).String())
}

func TestUpdateTransaction_TypeFlipRewritesEffect(t *testing.T) {
	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")
	ctx := context.Background()

	tx, err := e.CreateTransaction(ctx, ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("100.00"), Type: ledger.TxExpense,
	})
	require.NoError(t, err)

	income := ledger.TxIncome
	_, err = e.UpdateTransaction(ctx, testUser, tx.ID, ledger.TransactionUpdate{Type: &income})
	require.NoError(t, err)
	assert.Equal(t, "600.00", walletBalance(t, e, w.ID).String())
}

func TestUpdateTransaction_WalletMove(t *testing.T) {
	// GIVEN: An expense recorded against wallet A
	// WHEN: Moving the transaction to wallet B
	// THEN: A is reverted, B receives the effect

	e := newTestEngine()
	a := newDebitWallet(t, e, "Banco A", "500.00")
	b := newDebitWallet(t, e, "Banco B", "300.00")
	ctx := context.Background()

	tx, err := e.CreateTransaction(ctx, ledger.CreateTransactionInput{
		UserID: testUser, WalletID: a.ID,
		Amount: money.MustParse("100.00"), Type: ledger.TxExpense,
	})
	require.NoError(t, err)

	moved, err := e.UpdateTransaction(ctx, testUser, tx.ID, ledger.TransactionUpdate{WalletID: &b.ID})
	require.NoError(t, err)
	assert.Equal(t, b.ID, moved.WalletID)
	assert.Equal(t, "500.00", walletBalance(t, e, a.ID).String())
	assert.Equal(t, "200.00", walletBalance(t, e, b.ID).String())
}

func TestUpdateTransaction_UnknownTargetWallet_NoWrites(t *testing.T) {
	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")
	ctx := context.Background()

	tx, err := e.CreateTransaction(ctx, ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("100.00"), Type: ledger.TxExpense,
	})
	require.NoError(t, err)

	ghost := "ghost"
	_, err = e.UpdateTransaction(ctx, testUser, tx.ID, ledger.TransactionUpdate{WalletID: &ghost})
	assert.ErrorIs(t, err, ledger.ErrWalletNotFound)

	// Rejected before any write: the source wallet still carries the effect.
	assert.Equal(t, "400.00", walletBalance(t, e, w.ID).String())
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

func TestAdjustment_SetsBalanceAndRecordsPrior(t *testing.T) {
	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")

	tx, err := e.CreateTransaction(context.Background(), ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("350.00"), Type: ledger.TxAdjustment,
	})
	require.NoError(t, err)
	assert.Equal(t, "500.00", tx.PriorBalance.String())
	assert.Equal(t, "350.00", walletBalance(t, e, w.ID).String())
}

func TestAdjustment_ZeroTargetAllowed(t *testing.T) {
	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")

	_, err := e.CreateTransaction(context.Background(), ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.Money{}, Type: ledger.TxAdjustment,
	})
	require.NoError(t, err)
	assert.True(t, walletBalance(t, e, w.ID).IsZero())
}

func TestAdjustment_DeleteRevertsImpliedDelta(t *testing.T) {
	// GIVEN: Balance 500.00 adjusted to 350.00, then a 100.00 income
	// WHEN: The adjustment is deleted
	// THEN: Its implied -150.00 delta is reversed, landing at 600.00 as if
	//       the adjustment never happened

	e := newTestEngine()
	w := newDebitWallet(t, e, "Banco", "500.00")
	ctx := context.Background()

	adj, err := e.CreateTransaction(ctx, ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("350.00"), Type: ledger.TxAdjustment,
	})
	require.NoError(t, err)

	_, err = e.CreateTransaction(ctx, ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("100.00"), Type: ledger.TxIncome,
	})
	require.NoError(t, err)

	require.NoError(t, e.DeleteTransaction(ctx, testUser, adj.ID))
	assert.Equal(t, "600.00", walletBalance(t, e, w.ID).String())
}

// =============================================================================
// PARTIAL FAILURES
// =============================================================================

func TestCreateTransaction_WalletWriteFails_PartialFailure(t *testing.T) {
	// GIVEN: A store whose balance mutation fails after the record insert
	// WHEN: Creating an expense
	// THEN: The error is a PartialFailureError and the orphan record exists;
	//       nothing is rolled back or retried

	mem := memory.New()
	repo := &failingRepo{Repository: mem}
	e := ledger.New(repo, nil)

	w, err := e.CreateWallet(context.Background(), ledger.CreateWalletInput{
		UserID: testUser, Name: "Banco",
		InitialBalance: money.MustParse("500.00"),
	})
	require.NoError(t, err)

	repo.failAdjust = true
	_, err = e.CreateTransaction(context.Background(), ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("150.00"), Type: ledger.TxExpense,
	})

	var pf *ledger.PartialFailureError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, "create_transaction", pf.Op)

	repo.failAdjust = false
	txs, err := e.Transactions(context.Background(), testUser, ledger.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 1, "orphan record is kept for reconciliation")
	assert.Equal(t, "500.00", walletBalance(t, e, w.ID).String())
}

func TestDeleteTransaction_RecordDeleteFails_PartialFailure(t *testing.T) {
	// GIVEN: A store whose record deletion fails after the wallet reversal
	// WHEN: Deleting a transaction
	// THEN: A PartialFailureError reports the reverted-but-present state

	mem := memory.New()
	repo := &failingRepo{Repository: mem}
	e := ledger.New(repo, nil)
	ctx := context.Background()

	w, err := e.CreateWallet(ctx, ledger.CreateWalletInput{
		UserID: testUser, Name: "Banco",
		InitialBalance: money.MustParse("500.00"),
	})
	require.NoError(t, err)

	tx, err := e.CreateTransaction(ctx, ledger.CreateTransactionInput{
		UserID: testUser, WalletID: w.ID,
		Amount: money.MustParse("150.00"), Type: ledger.TxExpense,
	})
	require.NoError(t, err)

	repo.failDelete = true
	err = e.DeleteTransaction(ctx, testUser, tx.ID)

	var pf *ledger.PartialFailureError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, "delete_transaction", pf.Op)
	assert.Equal(t, "500.00", walletBalance(t, e, w.ID).String())
}
