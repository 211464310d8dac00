package storage

import (
	"encoding/json"
	"fmt"

	"tracker/internal/core"
	"tracker/internal/store"
)

// Keys under which each part of the state is persisted as one blob.
const (
	KeyExpenses = "expenses"
	KeyLoans    = "loans"
	KeyBudget   = "monthlyBudget"
	KeyProfile  = "userProfile"
)

// Keys lists every persisted key in save order.
var Keys = []string{KeyExpenses, KeyLoans, KeyBudget, KeyProfile}

// EncodeSnapshot renders the snapshot as key/blob pairs: JSON for the
// record lists and the profile, a plain decimal string for the budget.
func EncodeSnapshot(snap store.Snapshot) (map[string]string, error) {
	expenses := snap.Expenses
	if expenses == nil {
		expenses = []core.Expense{}
	}
	loans := snap.Loans
	if loans == nil {
		loans = []core.Loan{}
	}

	out := make(map[string]string, len(Keys))
	for key, v := range map[string]any{
		KeyExpenses: expenses,
		KeyLoans:    loans,
		KeyProfile:  snap.Profile,
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = string(b)
	}
	out[KeyBudget] = snap.Budget.String()
	return out, nil
}

// DecodeSnapshot rebuilds a snapshot from key/blob pairs. Missing keys
// fall back to the state of a fresh installation.
func DecodeSnapshot(blobs map[string]string) (store.Snapshot, error) {
	snap := store.EmptySnapshot()

	if v, ok := blobs[KeyExpenses]; ok && v != "" {
		if err := json.Unmarshal([]byte(v), &snap.Expenses); err != nil {
			return store.Snapshot{}, fmt.Errorf("decode %s: %w", KeyExpenses, err)
		}
	}
	if v, ok := blobs[KeyLoans]; ok && v != "" {
		if err := json.Unmarshal([]byte(v), &snap.Loans); err != nil {
			return store.Snapshot{}, fmt.Errorf("decode %s: %w", KeyLoans, err)
		}
	}
	if v, ok := blobs[KeyBudget]; ok && v != "" {
		m, err := core.ParseMoney(v)
		if err != nil {
			return store.Snapshot{}, fmt.Errorf("decode %s %q: %w", KeyBudget, v, err)
		}
		snap.Budget = m
	}
	if v, ok := blobs[KeyProfile]; ok && v != "" {
		if err := json.Unmarshal([]byte(v), &snap.Profile); err != nil {
			return store.Snapshot{}, fmt.Errorf("decode %s: %w", KeyProfile, err)
		}
	}
	return snap, nil
}
