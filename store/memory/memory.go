// Package memory provides an in-memory Repository implementation
// (for testing/dev).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Aldairz16/Deudaz0/ledger"
	"github.com/Aldairz16/Deudaz0/money"
)

// =============================================================================
// MEMORY STORE - In-memory implementation of ledger.Repository
// =============================================================================

type Store struct {
	mu           sync.RWMutex
	wallets      map[string]ledger.Wallet
	transactions map[string]ledger.Transaction
	debts        map[string]ledger.Debt
	categories   map[string]ledger.DebtCategory
	templates    map[string]ledger.TransactionTemplate
}

func New() *Store {
	return &Store{
		wallets:      make(map[string]ledger.Wallet),
		transactions: make(map[string]ledger.Transaction),
		debts:        make(map[string]ledger.Debt),
		categories:   make(map[string]ledger.DebtCategory),
		templates:    make(map[string]ledger.TransactionTemplate),
	}
}

// =============================================================================
// WALLETS
// =============================================================================

func (s *Store) ListWallets(_ context.Context, userID string) ([]ledger.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ledger.Wallet
	for _, w := range s.wallets {
		if w.UserID == userID {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) GetWallet(_ context.Context, userID, id string) (*ledger.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wallets[id]
	if !ok || w.UserID != userID {
		return nil, nil
	}
	return &w, nil
}

func (s *Store) InsertWallet(_ context.Context, w ledger.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[w.ID] = w
	return nil
}

func (s *Store) UpdateWallet(_ context.Context, w ledger.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.wallets[w.ID]
	if !ok || existing.UserID != w.UserID {
		return ledger.ErrWalletNotFound
	}
	// Non-financial fields only; the balance stays whatever the atomic
	// mutations have made it.
	existing.Name = w.Name
	existing.Color = w.Color
	existing.Category = w.Category
	existing.CreditLimit = w.CreditLimit
	s.wallets[w.ID] = existing
	return nil
}

func (s *Store) DeleteWallet(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[id]
	if !ok || w.UserID != userID {
		return ledger.ErrWalletNotFound
	}
	delete(s.wallets, id)
	// Cascade to the wallet's transactions.
	for txID, tx := range s.transactions {
		if tx.WalletID == id {
			delete(s.transactions, txID)
		}
	}
	return nil
}

func (s *Store) AdjustWalletBalance(_ context.Context, userID, id string, delta money.Money) (money.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[id]
	if !ok || w.UserID != userID {
		return money.Money{}, ledger.ErrWalletNotFound
	}
	w.Balance = w.Balance.Add(delta)
	s.wallets[id] = w
	return w.Balance, nil
}

func (s *Store) SetWalletBalance(_ context.Context, userID, id string, target money.Money) (money.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[id]
	if !ok || w.UserID != userID {
		return money.Money{}, ledger.ErrWalletNotFound
	}
	prior := w.Balance
	w.Balance = target
	s.wallets[id] = w
	return prior, nil
}

func (s *Store) FindWalletByName(_ context.Context, userID, name string) (*ledger.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.wallets {
		if w.UserID == userID && strings.EqualFold(w.Name, name) {
			found := w
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) OldestWallet(ctx context.Context, userID string) (*ledger.Wallet, error) {
	wallets, err := s.ListWallets(ctx, userID)
	if err != nil || len(wallets) == 0 {
		return nil, err
	}
	return &wallets[0], nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (s *Store) ListTransactions(_ context.Context, userID string, f ledger.TransactionFilter) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ledger.Transaction
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if f.WalletID != "" && tx.WalletID != f.WalletID {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.From != nil && tx.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && tx.Date.After(*f.To) {
			continue
		}
		result = append(result, tx)
	}
	// Newest first, mirroring the history view.
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (*ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, nil
	}
	return &tx, nil
}

func (s *Store) InsertTransaction(_ context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.ID] = tx
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.transactions[tx.ID]
	if !ok || existing.UserID != tx.UserID {
		return ledger.ErrTransactionNotFound
	}
	s.transactions[tx.ID] = tx
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return ledger.ErrTransactionNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) IdempotencyKeyExists(_ context.Context, userID, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.transactions {
		if tx.UserID == userID && tx.IdempotencyKey == key {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// DEBTS
// =============================================================================

func (s *Store) ListDebts(_ context.Context, userID string) ([]ledger.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ledger.Debt
	for _, d := range s.debts {
		if d.UserID == userID {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) GetDebt(_ context.Context, userID, id string) (*ledger.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.debts[id]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	return &d, nil
}

func (s *Store) InsertDebt(_ context.Context, d ledger.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts[d.ID] = d
	return nil
}

func (s *Store) UpdateDebt(_ context.Context, d ledger.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.debts[d.ID]
	if !ok || existing.UserID != d.UserID {
		return ledger.ErrDebtNotFound
	}
	s.debts[d.ID] = d
	return nil
}

func (s *Store) DeleteDebt(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.debts[id]
	if !ok || d.UserID != userID {
		return ledger.ErrDebtNotFound
	}
	delete(s.debts, id)
	return nil
}

// =============================================================================
// DEBT CATEGORIES
// =============================================================================

func (s *Store) ListDebtCategories(_ context.Context, userID string) ([]ledger.DebtCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ledger.DebtCategory
	for _, c := range s.categories {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (s *Store) InsertDebtCategory(_ context.Context, c ledger.DebtCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *Store) DeleteDebtCategory(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return ledger.ErrCategoryNotFound
	}
	delete(s.categories, id)
	// Un-set the reference on affected debts; never cascade.
	for debtID, d := range s.debts {
		if d.CategoryID == id {
			d.CategoryID = ""
			s.debts[debtID] = d
		}
	}
	return nil
}

// =============================================================================
// TEMPLATES
// =============================================================================

func (s *Store) ListTemplates(_ context.Context, userID string) ([]ledger.TransactionTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ledger.TransactionTemplate
	for _, t := range s.templates {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) GetTemplate(_ context.Context, userID, id string) (*ledger.TransactionTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return &t, nil
}

func (s *Store) InsertTemplate(_ context.Context, t ledger.TransactionTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.ID] = t
	return nil
}

func (s *Store) DeleteTemplate(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok || t.UserID != userID {
		return ledger.ErrTemplateNotFound
	}
	delete(s.templates, id)
	return nil
}
