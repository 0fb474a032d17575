/*
effect.go - Balance effect arithmetic (the wallet ledger)

PURPOSE:
  Pure functions describing the effect of a transaction on a wallet balance.
  Everything that mutates a balance goes through an Effect, so the rules
  live in exactly one place.

EFFECT KINDS:
  Delta: a signed amount added to the balance (+amount for INCOME,
         -amount for EXPENSE).
  Set:   an absolute balance override (ADJUSTMENT only). A set effect has
         no inverse on its own; reversing one requires the recorded
         pre-adjustment balance, which turns it into the implied delta
         (target - prior).

CREDIT WALLETS:
  Credit wallets use the same arithmetic. Balance means available credit,
  so INCOME increases available credit (a payment toward the card) and
  EXPENSE decreases it (a purchase). Owed is always derived.

SEE ALSO:
  - engine.go: applies effects through atomic store-side mutations
*/
package ledger

import "github.com/Aldairz16/Deudaz0/money"

// =============================================================================
// EFFECT - delta vs. set
// =============================================================================

// Effect is the balance impact of one transaction: either a signed delta or
// an absolute set target.
type Effect struct {
	set    bool
	amount money.Money // delta when !set, target when set
}

// DeltaEffect builds a signed-delta effect.
func DeltaEffect(delta money.Money) Effect {
	return Effect{amount: delta}
}

// SetEffect builds an absolute-set effect.
func SetEffect(target money.Money) Effect {
	return Effect{set: true, amount: target}
}

// IsSet reports whether the effect overrides the balance rather than
// shifting it.
func (e Effect) IsSet() bool { return e.set }

// Delta returns the signed delta of a delta effect. Zero for set effects.
func (e Effect) Delta() money.Money {
	if e.set {
		return money.Money{}
	}
	return e.amount
}

// Target returns the set target of a set effect. Zero for delta effects.
func (e Effect) Target() money.Money {
	if !e.set {
		return money.Money{}
	}
	return e.amount
}

// =============================================================================
// EFFECT RULES
// =============================================================================

// EffectOf returns the balance effect of a transaction type and magnitude.
//
//	INCOME     -> +amount
//	EXPENSE    -> -amount
//	ADJUSTMENT -> set(amount)
//
// TRANSFER never reaches here: direct creation rejects it and the transfer
// derived operation is expressed as an EXPENSE/INCOME pair.
func EffectOf(t TransactionType, amount money.Money) Effect {
	switch t {
	case TxIncome:
		return DeltaEffect(amount)
	case TxExpense:
		return DeltaEffect(amount.Neg())
	case TxAdjustment:
		return SetEffect(amount)
	}
	return DeltaEffect(money.Money{})
}

// Apply returns the balance after the effect. No minimum is enforced;
// overdraft is allowed.
func Apply(balance money.Money, e Effect) money.Money {
	if e.set {
		return e.amount
	}
	return balance.Add(e.amount)
}

// Reverse inverts a delta effect. Set effects have no inverse without the
// recorded prior balance; use ReverseAdjustment for those.
func Reverse(e Effect) Effect {
	if e.set {
		return e
	}
	return DeltaEffect(e.amount.Neg())
}

// ReverseAdjustment returns the inverse of an adjustment that set the
// balance to target when it was prior: the negated implied delta
// -(target - prior). Applying it composes correctly with any deltas applied
// after the adjustment.
func ReverseAdjustment(target, prior money.Money) Effect {
	return DeltaEffect(target.Sub(prior).Neg())
}

// reversalOf picks the right inverse for a recorded transaction.
func reversalOf(tx *Transaction) Effect {
	if tx.Type == TxAdjustment {
		return ReverseAdjustment(tx.Amount, tx.PriorBalance)
	}
	return Reverse(EffectOf(tx.Type, tx.Amount))
}
