/*
Package sqlite provides a SQLite-backed implementation of ledger.Repository.

PURPOSE:
  Implements the durable relational store behind the ledger engine. In
  production the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  wallets:          Money containers with the running balance
  transactions:     Recorded money movements and balance overrides
  debts:            Payable/receivable obligations
  debt_categories:  Grouping labels for debts
  templates:        Quick-action transaction factories

MONEY COLUMNS:
  All amounts are stored as integer cents (*_cents columns). No floating
  point ever touches a balance.

ATOMIC BALANCE MUTATIONS:
  AdjustWalletBalance runs UPDATE ... SET balance_cents = balance_cents + ?
  evaluated inside the database, so two concurrent operations against the
  same wallet compound instead of losing an update. SetWalletBalance reads
  the prior value and writes the target inside one database transaction.

CASCADE RULES:
  Deleting a wallet cascades to its transactions (foreign key). Deleting a
  debt category sets category_id NULL on affected debts. Debts never
  cascade from anything.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/finance.db")   // ":memory:" for tests
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := ledger.New(store, logger)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: Interface definition
  - store/memory: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Aldairz16/Deudaz0/ledger"
	"github.com/Aldairz16/Deudaz0/money"
)

// Store implements ledger.Repository using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent and avoids
	// SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		color TEXT,
		currency TEXT NOT NULL,
		kind TEXT NOT NULL,
		balance_cents INTEGER NOT NULL DEFAULT 0,
		credit_limit_cents INTEGER NOT NULL DEFAULT 0,
		category TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_wallets_user
		ON wallets(user_id, created_at);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		wallet_id TEXT NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
		amount_cents INTEGER NOT NULL,
		tx_type TEXT NOT NULL,
		description TEXT,
		date TEXT NOT NULL,
		category TEXT,
		prior_balance_cents INTEGER NOT NULL DEFAULT 0,
		reference_id TEXT,
		idempotency_key TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_date
		ON transactions(user_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_transactions_wallet
		ON transactions(wallet_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_reference
		ON transactions(reference_id) WHERE reference_id IS NOT NULL;

	-- Duplicate operation keys are rejected at the store level too.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_idempotency
		ON transactions(user_id, idempotency_key)
		WHERE idempotency_key IS NOT NULL;

	CREATE TABLE IF NOT EXISTS debt_categories (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS debts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		debt_type TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		description TEXT NOT NULL,
		due_date TEXT,
		category_id TEXT REFERENCES debt_categories(id) ON DELETE SET NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_debts_user
		ON debts(user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		description TEXT,
		tx_type TEXT NOT NULL,
		wallet_id TEXT,
		category TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_templates_user
		ON templates(user_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WALLETS
// =============================================================================

const walletColumns = `id, user_id, name, color, currency, kind, balance_cents, credit_limit_cents, category, created_at`

func (s *Store) ListWallets(ctx context.Context, userID string) ([]ledger.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = ? ORDER BY created_at ASC`
	return s.queryWallets(ctx, query, userID)
}

func (s *Store) GetWallet(ctx context.Context, userID, id string) (*ledger.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = ? AND user_id = ?`
	wallets, err := s.queryWallets(ctx, query, id, userID)
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return nil, nil
	}
	return &wallets[0], nil
}

func (s *Store) InsertWallet(ctx context.Context, w ledger.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		w.ID, w.UserID, w.Name, w.Color, w.Currency, string(w.Kind),
		w.Balance.Cents(), w.CreditLimit.Cents(), w.Category,
		w.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &ledger.StorageError{Op: "insert wallet", Err: err}
	}
	return nil
}

func (s *Store) UpdateWallet(ctx context.Context, w ledger.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Balance deliberately excluded: it moves only through the atomic
	// mutations below.
	query := `
		UPDATE wallets
		SET name = ?, color = ?, category = ?, credit_limit_cents = ?
		WHERE id = ? AND user_id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		w.Name, w.Color, w.Category, w.CreditLimit.Cents(), w.ID, w.UserID)
	if err != nil {
		return &ledger.StorageError{Op: "update wallet", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrWalletNotFound
	}
	return nil
}

func (s *Store) DeleteWallet(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// ON DELETE CASCADE removes the wallet's transactions.
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM wallets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return &ledger.StorageError{Op: "delete wallet", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrWalletNotFound
	}
	return nil
}

// AdjustWalletBalance evaluates balance_cents = balance_cents + delta inside
// the database and returns the new balance.
func (s *Store) AdjustWalletBalance(ctx context.Context, userID, id string, delta money.Money) (money.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newCents int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE wallets
		SET balance_cents = balance_cents + ?
		WHERE id = ? AND user_id = ?
		RETURNING balance_cents
	`, delta.Cents(), id, userID).Scan(&newCents)
	if err == sql.ErrNoRows {
		return money.Money{}, ledger.ErrWalletNotFound
	}
	if err != nil {
		return money.Money{}, &ledger.StorageError{Op: "adjust wallet balance", Err: err}
	}
	return money.FromCents(newCents), nil
}

// SetWalletBalance overrides the balance and returns the prior value. The
// read and write run in one database transaction.
func (s *Store) SetWalletBalance(ctx context.Context, userID, id string, target money.Money) (money.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return money.Money{}, &ledger.StorageError{Op: "set wallet balance", Err: err}
	}
	defer sqlTx.Rollback()

	var priorCents int64
	err = sqlTx.QueryRowContext(ctx,
		`SELECT balance_cents FROM wallets WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&priorCents)
	if err == sql.ErrNoRows {
		return money.Money{}, ledger.ErrWalletNotFound
	}
	if err != nil {
		return money.Money{}, &ledger.StorageError{Op: "set wallet balance", Err: err}
	}

	if _, err := sqlTx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents = ? WHERE id = ? AND user_id = ?`,
		target.Cents(), id, userID); err != nil {
		return money.Money{}, &ledger.StorageError{Op: "set wallet balance", Err: err}
	}
	if err := sqlTx.Commit(); err != nil {
		return money.Money{}, &ledger.StorageError{Op: "set wallet balance", Err: err}
	}
	return money.FromCents(priorCents), nil
}

func (s *Store) FindWalletByName(ctx context.Context, userID, name string) (*ledger.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + walletColumns + ` FROM wallets
		WHERE user_id = ? AND name = ? COLLATE NOCASE
		LIMIT 1
	`
	wallets, err := s.queryWallets(ctx, query, userID, name)
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return nil, nil
	}
	return &wallets[0], nil
}

func (s *Store) OldestWallet(ctx context.Context, userID string) (*ledger.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + walletColumns + ` FROM wallets
		WHERE user_id = ?
		ORDER BY created_at ASC
		LIMIT 1
	`
	wallets, err := s.queryWallets(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return nil, nil
	}
	return &wallets[0], nil
}

func (s *Store) queryWallets(ctx context.Context, query string, args ...any) ([]ledger.Wallet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query wallets", Err: err}
	}
	defer rows.Close()

	var wallets []ledger.Wallet
	for rows.Next() {
		var (
			w                ledger.Wallet
			kind             string
			balanceCents     int64
			creditLimitCents int64
			color, category  sql.NullString
			createdAt        string
		)
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &color, &w.Currency, &kind,
			&balanceCents, &creditLimitCents, &category, &createdAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan wallet", Err: err}
		}
		w.Kind = ledger.WalletKind(kind)
		w.Balance = money.FromCents(balanceCents)
		w.CreditLimit = money.FromCents(creditLimitCents)
		w.Color = color.String
		w.Category = category.String
		w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

const transactionColumns = `id, user_id, wallet_id, amount_cents, tx_type, description, date, category, prior_balance_cents, reference_id, idempotency_key, created_at`

// ListTransactions builds the history query dynamically from the filter.
func (s *Store) ListTransactions(ctx context.Context, userID string, f ledger.TransactionFilter) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	builder := sq.Select(strings.Split(transactionColumns, ", ")...).
		From("transactions").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date DESC", "created_at DESC")

	if f.WalletID != "" {
		builder = builder.Where(sq.Eq{"wallet_id": f.WalletID})
	}
	if f.Type != "" {
		builder = builder.Where(sq.Eq{"tx_type": string(f.Type)})
	}
	if f.From != nil {
		builder = builder.Where(sq.GtOrEq{"date": f.From.UTC().Format(time.RFC3339)})
	}
	if f.To != nil {
		builder = builder.Where(sq.LtOrEq{"date": f.To.UTC().Format(time.RFC3339)})
	}
	if f.Limit > 0 {
		builder = builder.Limit(uint64(f.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, &ledger.StorageError{Op: "build transaction query", Err: err}
	}
	return s.queryTransactions(ctx, query, args...)
}

func (s *Store) GetTransaction(ctx context.Context, userID, id string) (*ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND user_id = ?`
	txs, err := s.queryTransactions(ctx, query, id, userID)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, nil
	}
	return &txs[0], nil
}

func (s *Store) InsertTransaction(ctx context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		tx.ID, tx.UserID, tx.WalletID, tx.Amount.Cents(), string(tx.Type),
		tx.Description, tx.Date.UTC().Format(time.RFC3339), tx.Category,
		tx.PriorBalance.Cents(), nullString(tx.ReferenceID),
		nullString(tx.IdempotencyKey),
		tx.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.ErrDuplicateIdempotencyKey
		}
		return &ledger.StorageError{Op: "insert transaction", Err: err}
	}
	return nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE transactions
		SET wallet_id = ?, amount_cents = ?, tx_type = ?, description = ?,
		    date = ?, category = ?, prior_balance_cents = ?
		WHERE id = ? AND user_id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		tx.WalletID, tx.Amount.Cents(), string(tx.Type), tx.Description,
		tx.Date.UTC().Format(time.RFC3339), tx.Category,
		tx.PriorBalance.Cents(), tx.ID, tx.UserID)
	if err != nil {
		return &ledger.StorageError{Op: "update transaction", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return &ledger.StorageError{Op: "delete transaction", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}

func (s *Store) IdempotencyKeyExists(ctx context.Context, userID, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = ? AND idempotency_key = ?`,
		userID, key).Scan(&count)
	if err != nil {
		return false, &ledger.StorageError{Op: "idempotency lookup", Err: err}
	}
	return count > 0, nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query transactions", Err: err}
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var (
			tx                      ledger.Transaction
			txType                  string
			amountCents, priorCents int64
			description, category   sql.NullString
			referenceID, idemKey    sql.NullString
			date, createdAt         string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.WalletID, &amountCents, &txType,
			&description, &date, &category, &priorCents, &referenceID, &idemKey,
			&createdAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan transaction", Err: err}
		}
		tx.Type = ledger.TransactionType(txType)
		tx.Amount = money.FromCents(amountCents)
		tx.PriorBalance = money.FromCents(priorCents)
		tx.Description = description.String
		tx.Category = category.String
		tx.ReferenceID = referenceID.String
		tx.IdempotencyKey = idemKey.String
		tx.Date, _ = time.Parse(time.RFC3339, date)
		tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// =============================================================================
// DEBTS
// =============================================================================

const debtColumns = `id, user_id, debt_type, amount_cents, description, due_date, category_id, status, created_at`

func (s *Store) ListDebts(ctx context.Context, userID string) ([]ledger.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + debtColumns + ` FROM debts WHERE user_id = ? ORDER BY created_at DESC`
	return s.queryDebts(ctx, query, userID)
}

func (s *Store) GetDebt(ctx context.Context, userID, id string) (*ledger.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + debtColumns + ` FROM debts WHERE id = ? AND user_id = ?`
	debts, err := s.queryDebts(ctx, query, id, userID)
	if err != nil {
		return nil, err
	}
	if len(debts) == 0 {
		return nil, nil
	}
	return &debts[0], nil
}

func (s *Store) InsertDebt(ctx context.Context, d ledger.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO debts (` + debtColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.UserID, string(d.Type), d.Amount.Cents(), d.Description,
		nullTime(d.DueDate), nullString(d.CategoryID), string(d.Status),
		d.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &ledger.StorageError{Op: "insert debt", Err: err}
	}
	return nil
}

func (s *Store) UpdateDebt(ctx context.Context, d ledger.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE debts
		SET amount_cents = ?, description = ?, due_date = ?, category_id = ?, status = ?
		WHERE id = ? AND user_id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		d.Amount.Cents(), d.Description, nullTime(d.DueDate),
		nullString(d.CategoryID), string(d.Status), d.ID, d.UserID)
	if err != nil {
		return &ledger.StorageError{Op: "update debt", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrDebtNotFound
	}
	return nil
}

func (s *Store) DeleteDebt(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM debts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return &ledger.StorageError{Op: "delete debt", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrDebtNotFound
	}
	return nil
}

func (s *Store) queryDebts(ctx context.Context, query string, args ...any) ([]ledger.Debt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query debts", Err: err}
	}
	defer rows.Close()

	var debts []ledger.Debt
	for rows.Next() {
		var (
			d                   ledger.Debt
			debtType, status    string
			amountCents         int64
			dueDate, categoryID sql.NullString
			createdAt           string
		)
		if err := rows.Scan(&d.ID, &d.UserID, &debtType, &amountCents, &d.Description,
			&dueDate, &categoryID, &status, &createdAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan debt", Err: err}
		}
		d.Type = ledger.DebtType(debtType)
		d.Status = ledger.DebtStatus(status)
		d.Amount = money.FromCents(amountCents)
		d.CategoryID = categoryID.String
		if dueDate.Valid {
			t, _ := time.Parse(time.RFC3339, dueDate.String)
			d.DueDate = &t
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		debts = append(debts, d)
	}
	return debts, rows.Err()
}

// =============================================================================
// DEBT CATEGORIES
// =============================================================================

func (s *Store) ListDebtCategories(ctx context.Context, userID string) ([]ledger.DebtCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name FROM debt_categories WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query debt categories", Err: err}
	}
	defer rows.Close()

	var categories []ledger.DebtCategory
	for rows.Next() {
		var c ledger.DebtCategory
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
			return nil, &ledger.StorageError{Op: "scan debt category", Err: err}
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) InsertDebtCategory(ctx context.Context, c ledger.DebtCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO debt_categories (id, user_id, name) VALUES (?, ?, ?)`,
		c.ID, c.UserID, c.Name)
	if err != nil {
		return &ledger.StorageError{Op: "insert debt category", Err: err}
	}
	return nil
}

func (s *Store) DeleteDebtCategory(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// ON DELETE SET NULL un-sets category_id on affected debts.
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM debt_categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return &ledger.StorageError{Op: "delete debt category", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrCategoryNotFound
	}
	return nil
}

// =============================================================================
// TEMPLATES
// =============================================================================

const templateColumns = `id, user_id, name, amount_cents, description, tx_type, wallet_id, category, created_at`

func (s *Store) ListTemplates(ctx context.Context, userID string) ([]ledger.TransactionTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + templateColumns + ` FROM templates WHERE user_id = ? ORDER BY created_at ASC`
	return s.queryTemplates(ctx, query, userID)
}

func (s *Store) GetTemplate(ctx context.Context, userID, id string) (*ledger.TransactionTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = ? AND user_id = ?`
	templates, err := s.queryTemplates(ctx, query, id, userID)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, nil
	}
	return &templates[0], nil
}

func (s *Store) InsertTemplate(ctx context.Context, t ledger.TransactionTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO templates (` + templateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Name, t.Amount.Cents(), t.Description,
		string(t.Type), nullString(t.WalletID), t.Category,
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return &ledger.StorageError{Op: "insert template", Err: err}
	}
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM templates WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return &ledger.StorageError{Op: "delete template", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrTemplateNotFound
	}
	return nil
}

func (s *Store) queryTemplates(ctx context.Context, query string, args ...any) ([]ledger.TransactionTemplate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "query templates", Err: err}
	}
	defer rows.Close()

	var templates []ledger.TransactionTemplate
	for rows.Next() {
		var (
			t                  ledger.TransactionTemplate
			txType             string
			amountCents        int64
			description        sql.NullString
			walletID, category sql.NullString
			createdAt          string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &amountCents, &description,
			&txType, &walletID, &category, &createdAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan template", Err: err}
		}
		t.Type = ledger.TransactionType(txType)
		t.Amount = money.FromCents(amountCents)
		t.Description = description.String
		t.WalletID = walletID.String
		t.Category = category.String
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
