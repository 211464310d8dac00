// Package store holds the in-memory record lists: expenses, loans, the
// monthly budget and the user profile.
//
// A Store is created once per process and handed to whoever needs it. It
// validates records before mutating anything, so an invalid add or update
// leaves the state untouched.
package store

import (
	"errors"
	"slices"
	"sync"
	"time"

	"tracker/internal/core"
)

var ErrNotFound = errors.New("record not found")

// Snapshot is a point-in-time copy of everything the store holds. It is
// also the unit the persistence backends load and save.
type Snapshot struct {
	Expenses []core.Expense
	Loans    []core.Loan
	Budget   core.Money
	Profile  core.Profile
}

// EmptySnapshot is the state of a fresh installation.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Budget:  core.DefaultBudget,
		Profile: core.DefaultProfile(),
	}
}

type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	lastID   int64
	expenses []core.Expense
	loans    []core.Loan
	budget   core.Money
	profile  core.Profile
}

// New returns an empty store. now supplies record ids; nil means time.Now.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{now: now}
	s.restore(EmptySnapshot())
	return s
}

// nextID returns the current time in milliseconds, bumped past the last
// issued id when the clock has not moved.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) AddExpense(e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID()
	s.expenses = append(s.expenses, e)
	return e, nil
}

// UpdateExpense replaces every field of the expense with the given id. The
// bill image is kept when the replacement carries none.
func (s *Store) UpdateExpense(id int64, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.expenses, func(x core.Expense) bool { return x.ID == id })
	if i < 0 {
		return core.Expense{}, ErrNotFound
	}
	e.ID = id
	if e.BillImage == "" {
		e.BillImage = s.expenses[i].BillImage
	}
	s.expenses[i] = e
	return e, nil
}

func (s *Store) RemoveExpense(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.expenses, func(x core.Expense) bool { return x.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.expenses = slices.Delete(s.expenses, i, i+1)
	return nil
}

func (s *Store) Expense(id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, ErrNotFound
}

// Expenses returns a copy of all expenses in insertion order.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.expenses)
}

func (s *Store) AddLoan(l core.Loan) (core.Loan, error) {
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.nextID()
	s.loans = append(s.loans, l)
	return l, nil
}

func (s *Store) UpdateLoan(id int64, l core.Loan) (core.Loan, error) {
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.loans, func(x core.Loan) bool { return x.ID == id })
	if i < 0 {
		return core.Loan{}, ErrNotFound
	}
	l.ID = id
	s.loans[i] = l
	return l, nil
}

func (s *Store) RemoveLoan(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.loans, func(x core.Loan) bool { return x.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	s.loans = slices.Delete(s.loans, i, i+1)
	return nil
}

func (s *Store) Loan(id int64) (core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.loans {
		if l.ID == id {
			return l, nil
		}
	}
	return core.Loan{}, ErrNotFound
}

// Loans returns a copy of all loans in insertion order.
func (s *Store) Loans() []core.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.loans)
}

func (s *Store) Budget() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget
}

func (s *Store) SetBudget(m core.Money) error {
	if err := core.ValidateBudget(m); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = m
	return nil
}

func (s *Store) Profile() core.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// SetProfile replaces the profile. An existing photo survives when the new
// profile does not bring one.
func (s *Store) SetProfile(p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Photo == "" {
		p.Photo = s.profile.Photo
	}
	s.profile = p
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Expenses: slices.Clone(s.expenses),
		Loans:    slices.Clone(s.loans),
		Budget:   s.budget,
		Profile:  s.profile,
	}
}

// Restore replaces the whole state, typically with what a backend loaded.
// Records are taken as stored; validation only guards new entries.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restore(snap)
}

func (s *Store) restore(snap Snapshot) {
	s.expenses = slices.Clone(snap.Expenses)
	s.loans = slices.Clone(snap.Loans)
	s.budget = snap.Budget
	s.profile = snap.Profile
	s.lastID = 0
	for _, e := range s.expenses {
		s.lastID = max(s.lastID, e.ID)
	}
	for _, l := range s.loans {
		s.lastID = max(s.lastID, l.ID)
	}
}
