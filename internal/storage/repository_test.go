package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"tracker/internal/core"
	"tracker/internal/store"
)

type RepositorySuite struct {
	suite.Suite
	path string
	repo *SQLiteRepository
	ctx  context.Context
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.path = filepath.Join(s.T().TempDir(), "nested", "tracker.db")
	repo, err := NewSQLiteRepository(s.path)
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RepositorySuite) TearDownTest() {
	s.NoError(s.repo.Close())
}

func (s *RepositorySuite) sample() store.Snapshot {
	snap := store.EmptySnapshot()
	snap.Expenses = []core.Expense{
		{ID: 1704067200000, Date: core.NewDate(2024, 1, 1), Category: "Groceries", Description: "Milk", Amount: core.Money{Cents: 4550}, BillImage: "data:image/png;base64,AAAA"},
	}
	snap.Loans = []core.Loan{
		{ID: 1704067200001, Person: "Asha", Amount: core.Money{Cents: 50000}, Date: core.NewDate(2024, 1, 2), Type: core.LoanGiven, Status: core.StatusActive},
	}
	snap.Budget = core.Money{Cents: 2000050}
	snap.Profile = core.Profile{Name: "Meera", Phone: "123", SMSEnabled: core.ToggleNo, ExportEnabled: core.ToggleYes}
	return snap
}

func (s *RepositorySuite) TestEmptyDatabaseLoadsDefaults() {
	snap, err := s.repo.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(snap.Expenses)
	s.Empty(snap.Loans)
	s.Equal(core.DefaultBudget, snap.Budget)
	s.Equal(core.DefaultProfile(), snap.Profile)
}

func (s *RepositorySuite) TestSaveThenLoad() {
	want := s.sample()
	s.Require().NoError(s.repo.Save(s.ctx, want))

	got, err := s.repo.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(want.Expenses[0].ID, got.Expenses[0].ID)
	s.True(want.Expenses[0].Date.Equal(got.Expenses[0].Date.Time))
	s.Equal(want.Expenses[0].Amount, got.Expenses[0].Amount)
	s.Equal(want.Expenses[0].BillImage, got.Expenses[0].BillImage)
	s.Equal(want.Loans[0].Person, got.Loans[0].Person)
	s.True(got.Loans[0].ReturnDate.IsEmpty())
	s.Equal(want.Budget, got.Budget)
	s.Equal(want.Profile, got.Profile)
}

func (s *RepositorySuite) TestSaveOverwrites() {
	snap := s.sample()
	s.Require().NoError(s.repo.Save(s.ctx, snap))

	snap.Expenses = nil
	snap.Budget = core.Money{}
	s.Require().NoError(s.repo.Save(s.ctx, snap))

	got, err := s.repo.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(got.Expenses)
	s.True(got.Budget.IsZero())

	raw, err := s.repo.Get(s.ctx, KeyExpenses)
	s.Require().NoError(err)
	s.Equal("[]", raw)
}

func (s *RepositorySuite) TestBudgetStoredAsDecimalString() {
	s.Require().NoError(s.repo.Save(s.ctx, s.sample()))
	raw, err := s.repo.Get(s.ctx, KeyBudget)
	s.Require().NoError(err)
	s.Equal("20000.50", raw)

	raw, err = s.repo.Get(s.ctx, "missing")
	s.Require().NoError(err)
	s.Empty(raw)
}

func (s *RepositorySuite) TestReopenKeepsState() {
	s.Require().NoError(s.repo.Save(s.ctx, s.sample()))
	s.Require().NoError(s.repo.Close())

	repo, err := NewSQLiteRepository(s.path)
	s.Require().NoError(err)
	s.repo = repo

	got, err := s.repo.Load(s.ctx)
	s.Require().NoError(err)
	s.Len(got.Expenses, 1)
	s.Len(got.Loans, 1)
}
