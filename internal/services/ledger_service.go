// Package services orchestrates the record store with persistence, export
// sinks and notifications.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tracker/internal/amqp"
	"tracker/internal/backend"
	"tracker/internal/core"
	"tracker/internal/log"
	"tracker/internal/query"
	"tracker/internal/sheets"
	"tracker/internal/stats"
	"tracker/internal/store"
)

// Notifier publishes summary notifications. *amqp.Client implements it.
type Notifier interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// LedgerService applies mutations to the store and saves the whole state
// after each one. Writes are serialized so saves land in mutation order.
type LedgerService struct {
	store     *store.Store
	persister backend.Persister
	notifier  Notifier
	sheets    sheets.ReportWriter
	now       func() time.Time
	logger    *log.Logger
	events    *log.StructuredLogger

	writeMu sync.Mutex
}

type Option func(*LedgerService)

// WithNotifier enables export summaries.
func WithNotifier(n Notifier) Option {
	return func(s *LedgerService) { s.notifier = n }
}

// WithSheets enables the spreadsheet export format.
func WithSheets(w sheets.ReportWriter) Option {
	return func(s *LedgerService) { s.sheets = w }
}

// WithClock replaces time.Now for month defaults and summary dates.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) { s.logger = l.WithComponent(log.ComponentLedger) }
}

func NewLedgerService(st *store.Store, persister backend.Persister, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:     st,
		persister: persister,
		now:       time.Now,
		logger:    log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// Load replaces the store contents with the persisted state.
func (s *LedgerService) Load(ctx context.Context) error {
	snap, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	s.store.Restore(snap)
	s.logger.InfoContext(ctx, "State loaded",
		log.FieldExpenses, len(snap.Expenses),
		log.FieldLoans, len(snap.Loans))
	return nil
}

// mutate runs fn under the write lock and saves the resulting state.
func (s *LedgerService) mutate(ctx context.Context, fn func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := fn(); err != nil {
		return err
	}
	if err := s.persister.Save(ctx, s.store.Snapshot()); err != nil {
		s.events.LogError(ctx, "Failed to persist state", err, log.ComponentStorage, log.OpPersist, nil)
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var out core.Expense
	err := s.mutate(ctx, func() (err error) {
		out, err = s.store.AddExpense(e)
		return err
	})
	if err != nil {
		return out, err
	}
	s.events.LogExpenseChanged(ctx, log.OpCreate, out.ID, out.Category, out.Amount.Cents)
	return out, nil
}

func (s *LedgerService) UpdateExpense(ctx context.Context, id int64, e core.Expense) (core.Expense, error) {
	var out core.Expense
	err := s.mutate(ctx, func() (err error) {
		out, err = s.store.UpdateExpense(id, e)
		return err
	})
	if err != nil {
		return out, err
	}
	s.events.LogExpenseChanged(ctx, log.OpUpdate, out.ID, out.Category, out.Amount.Cents)
	return out, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.mutate(ctx, func() error { return s.store.RemoveExpense(id) }); err != nil {
		return err
	}
	s.events.LogExpenseChanged(ctx, log.OpDelete, id, "", 0)
	return nil
}

func (s *LedgerService) Expense(id int64) (core.Expense, error) {
	return s.store.Expense(id)
}

// Expenses returns the filtered expenses in the requested order.
func (s *LedgerService) Expenses(f query.ExpenseFilter, key query.SortKey) []core.Expense {
	return query.Expenses(s.store.Expenses(), f, key)
}

func (s *LedgerService) Categories() []string {
	return query.Categories(s.store.Expenses())
}

func (s *LedgerService) AddLoan(ctx context.Context, l core.Loan) (core.Loan, error) {
	var out core.Loan
	err := s.mutate(ctx, func() (err error) {
		out, err = s.store.AddLoan(l)
		return err
	})
	if err != nil {
		return out, err
	}
	s.events.LogLoanChanged(ctx, log.OpCreate, out.ID, out.Person, string(out.Type), out.Amount.Cents)
	return out, nil
}

func (s *LedgerService) UpdateLoan(ctx context.Context, id int64, l core.Loan) (core.Loan, error) {
	var out core.Loan
	err := s.mutate(ctx, func() (err error) {
		out, err = s.store.UpdateLoan(id, l)
		return err
	})
	if err != nil {
		return out, err
	}
	s.events.LogLoanChanged(ctx, log.OpUpdate, out.ID, out.Person, string(out.Type), out.Amount.Cents)
	return out, nil
}

func (s *LedgerService) DeleteLoan(ctx context.Context, id int64) error {
	if err := s.mutate(ctx, func() error { return s.store.RemoveLoan(id) }); err != nil {
		return err
	}
	s.events.LogLoanChanged(ctx, log.OpDelete, id, "", "", 0)
	return nil
}

func (s *LedgerService) Loan(id int64) (core.Loan, error) {
	return s.store.Loan(id)
}

// Loans returns the filtered loans, newest first.
func (s *LedgerService) Loans(f query.LoanFilter) []core.Loan {
	return query.FilterLoans(s.store.Loans(), f)
}

func (s *LedgerService) Budget() core.Money {
	return s.store.Budget()
}

func (s *LedgerService) SetBudget(ctx context.Context, m core.Money) error {
	if err := s.mutate(ctx, func() error { return s.store.SetBudget(m) }); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Budget updated", log.FieldAmountCents, m.Cents)
	return nil
}

func (s *LedgerService) Profile() core.Profile {
	return s.store.Profile()
}

// SaveProfile stores the profile; an empty photo keeps the current one.
func (s *LedgerService) SaveProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	if err := s.mutate(ctx, func() error { return s.store.SetProfile(p) }); err != nil {
		return core.Profile{}, err
	}
	s.logger.InfoContext(ctx, "Profile saved")
	return s.store.Profile(), nil
}

// monthOrNow fills a zero year or month from the clock.
func (s *LedgerService) monthOrNow(year, month int) (int, int) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	return year, month
}

func (s *LedgerService) Dashboard(year, month int) stats.Dashboard {
	year, month = s.monthOrNow(year, month)
	snap := s.store.Snapshot()
	return stats.BuildDashboard(snap.Expenses, snap.Loans, snap.Budget, year, month)
}

func (s *LedgerService) MonthReport(year, month int) stats.MonthReport {
	year, month = s.monthOrNow(year, month)
	snap := s.store.Snapshot()
	return stats.BuildMonthReport(snap.Expenses, snap.Budget, year, month)
}

// notify publishes a summary when SMS is enabled and a phone is on file.
// Failures are logged and never fail the export.
func (s *LedgerService) notify(ctx context.Context, kind string, profile core.Profile, text string) {
	if s.notifier == nil {
		return
	}
	if !profile.SMSEnabled.Enabled() || profile.Phone == "" {
		return
	}
	msg := amqp.NewNotificationMessage(kind, profile.Phone, profile.Name, text)
	if err := s.notifier.PublishNotification(ctx, msg); err != nil {
		s.events.LogError(ctx, "Failed to publish export summary", err, log.ComponentAMQP, log.OpNotify, nil)
	}
}
