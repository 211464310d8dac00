package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tracker/internal/amqp"
	"tracker/internal/backend"
	"tracker/internal/core"
	"tracker/internal/export"
	"tracker/internal/log"
	"tracker/internal/query"
	"tracker/internal/store"
)

var fixedNow = time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

type failingPersister struct {
	backend.MemoryPersister
	err error
}

func (f *failingPersister) Save(ctx context.Context, snap store.Snapshot) error {
	return f.err
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []*amqp.NotificationMessage
	err  error
}

func (n *recordingNotifier) PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return n.err
}

type recordingSheets struct {
	rows [][]string
	err  error
}

func (r *recordingSheets) AppendRows(ctx context.Context, rows [][]string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.rows = append(r.rows, rows...)
	return "Export!A1:F9", nil
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newService(t *testing.T, opts ...Option) (*LedgerService, *backend.MemoryPersister) {
	t.Helper()
	p := backend.NewMemoryPersister()
	clock := func() time.Time { return fixedNow }
	opts = append([]Option{WithClock(clock), WithLogger(quietLogger())}, opts...)
	return NewLedgerService(store.New(clock), p, opts...), p
}

func expense(date core.Date, category, desc string, cents int64) core.Expense {
	return core.Expense{Date: date, Category: category, Description: desc, Amount: core.Money{Cents: cents}}
}

func TestAddExpensePersists(t *testing.T) {
	ctx := context.Background()
	svc, p := newService(t)

	e, err := svc.AddExpense(ctx, expense(core.NewDate(2024, 1, 15), "Food", "Lunch", 12000))
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli(), e.ID)

	snap, err := p.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Expenses, 1)
	assert.Equal(t, e, snap.Expenses[0])
}

func TestInvalidExpenseIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	svc, p := newService(t)

	_, err := svc.AddExpense(ctx, expense(core.NewDate(2024, 1, 15), " ", "Lunch", 100))
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)

	snap, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Expenses)
}

func TestPersistFailureIsReturned(t *testing.T) {
	boom := errors.New("disk full")
	p := &failingPersister{err: boom}
	svc := NewLedgerService(store.New(nil), p, WithLogger(quietLogger()))

	_, err := svc.AddExpense(context.Background(), expense(core.NewDate(2024, 1, 15), "Food", "Lunch", 100))
	assert.ErrorIs(t, err, boom)
	// The in-memory mutation stands.
	assert.Len(t, svc.Expenses(query.ExpenseFilter{}, query.DefaultSort), 1)
}

func TestUpdateAndDeleteExpense(t *testing.T) {
	ctx := context.Background()
	svc, p := newService(t)

	e, err := svc.AddExpense(ctx, expense(core.NewDate(2024, 1, 15), "Food", "Lunch", 100))
	require.NoError(t, err)

	upd := expense(core.NewDate(2024, 1, 16), "Food", "Dinner", 250)
	got, err := svc.UpdateExpense(ctx, e.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "Dinner", got.Description)

	_, err = svc.UpdateExpense(ctx, 42, upd)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, svc.DeleteExpense(ctx, e.ID))
	assert.ErrorIs(t, svc.DeleteExpense(ctx, e.ID), store.ErrNotFound)

	snap, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Expenses)
}

func TestLoadRestoresState(t *testing.T) {
	ctx := context.Background()
	svc, p := newService(t)

	seed := store.EmptySnapshot()
	seed.Expenses = []core.Expense{{ID: 7, Date: core.NewDate(2024, 1, 2), Category: "Rent", Description: "Jan", Amount: core.Money{Cents: 500000}}}
	seed.Budget = core.Money{Cents: 1000000}
	require.NoError(t, p.Save(ctx, seed))

	require.NoError(t, svc.Load(ctx))
	assert.Equal(t, core.Money{Cents: 1000000}, svc.Budget())
	assert.Equal(t, []string{"Rent"}, svc.Categories())

	e, err := svc.Expense(7)
	require.NoError(t, err)
	assert.Equal(t, "Jan", e.Description)
}

func TestLoansAndBudget(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.AddLoan(ctx, core.Loan{Person: "Asha", Amount: core.Money{Cents: 50000}, Date: core.NewDate(2024, 1, 5), Type: core.LoanGiven, Status: core.StatusActive})
	require.NoError(t, err)
	_, err = svc.AddLoan(ctx, core.Loan{Person: "Ravi", Amount: core.Money{Cents: 80000}, Date: core.NewDate(2024, 1, 6), Type: core.LoanTaken, Status: core.StatusActive})
	require.NoError(t, err)

	taken := svc.Loans(query.LoanFilter{Type: core.LoanTaken})
	require.Len(t, taken, 1)
	assert.Equal(t, "Ravi", taken[0].Person)

	err = svc.SetBudget(ctx, core.Money{Cents: -1})
	assert.ErrorIs(t, err, core.ErrNegativeBudget)
	require.NoError(t, svc.SetBudget(ctx, core.Money{Cents: 10000}))

	d := svc.Dashboard(0, 0)
	assert.Equal(t, 2024, d.Year)
	assert.Equal(t, 1, d.Month)
	assert.Equal(t, core.Money{Cents: 30000}, d.Loans.Net)
}

func TestDashboardMonthScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.AddExpense(ctx, expense(core.NewDate(2024, 1, 3), "Food", "A", 10000))
	require.NoError(t, err)
	_, err = svc.AddExpense(ctx, expense(core.NewDate(2024, 1, 9), "Travel", "B", 5000))
	require.NoError(t, err)
	require.NoError(t, svc.SetBudget(ctx, core.Money{Cents: 10000}))

	r := svc.MonthReport(2024, 1)
	assert.Equal(t, core.Money{Cents: 15000}, r.Total)
	assert.True(t, r.OverBudget)
}

func TestSaveProfileKeepsPhoto(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	p := core.Profile{Name: "Meera", Phone: "123", SMSEnabled: core.ToggleYes, ExportEnabled: core.ToggleNo, Photo: "data:image/png;base64,AA"}
	_, err := svc.SaveProfile(ctx, p)
	require.NoError(t, err)

	p.Photo = ""
	p.Name = "Meera K"
	got, err := svc.SaveProfile(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AA", got.Photo)
	assert.Equal(t, "Meera K", svc.Profile().Name)

	_, err = svc.SaveProfile(ctx, core.Profile{Name: "x", Phone: "1", SMSEnabled: "maybe", ExportEnabled: core.ToggleYes})
	assert.ErrorIs(t, err, core.ErrInvalidToggle)
}

func seeded(t *testing.T, opts ...Option) (*LedgerService, core.Expense, core.Loan) {
	t.Helper()
	ctx := context.Background()
	svc, _ := newService(t, opts...)
	e, err := svc.AddExpense(ctx, expense(core.NewDate(2024, 1, 15), "Food", "Lunch", 12050))
	require.NoError(t, err)
	l, err := svc.AddLoan(ctx, core.Loan{Person: "Asha", Amount: core.Money{Cents: 50000}, Date: core.NewDate(2024, 1, 5), Type: core.LoanGiven, Status: core.StatusActive})
	require.NoError(t, err)
	_, err = svc.SaveProfile(ctx, core.Profile{Name: "Meera", Phone: "+91123", SMSEnabled: core.ToggleYes, ExportEnabled: core.ToggleYes})
	require.NoError(t, err)
	return svc, e, l
}

func TestExportAllNotifies(t *testing.T) {
	n := &recordingNotifier{}
	svc, _, _ := seeded(t, WithNotifier(n))

	f, err := svc.ExportAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "expenses_2024-01-20.csv", f.Name)
	assert.Equal(t, "text/csv", f.ContentType)
	assert.Contains(t, string(f.Content), `"Food","Lunch","120.50"`)

	require.Len(t, n.msgs, 1)
	assert.Equal(t, amqp.KindExportSummary, n.msgs[0].Kind)
	assert.Equal(t, "+91123", n.msgs[0].Phone)
	assert.Contains(t, n.msgs[0].Text, "Hi Meera! Your Expense Tracker Summary:")
}

func TestExportSkipsNotificationWhenSMSDisabled(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	svc, _, _ := seeded(t, WithNotifier(n))

	p := svc.Profile()
	p.SMSEnabled = core.ToggleNo
	_, err := svc.SaveProfile(ctx, p)
	require.NoError(t, err)

	_, err = svc.ExportAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, n.msgs)
}

func TestNotificationFailureDoesNotFailExport(t *testing.T) {
	n := &recordingNotifier{err: amqp.ErrCircuitOpen}
	svc, e, _ := seeded(t, WithNotifier(n))

	f, err := svc.ExportSelection(context.Background(), []int64{e.ID}, nil, FormatCSV)
	require.NoError(t, err)
	assert.NotEmpty(t, f.Content)
	assert.Len(t, n.msgs, 1)
}

func TestExportSelectionFormats(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	sink := &recordingSheets{}
	svc, e, l := seeded(t, WithNotifier(n), WithSheets(sink))

	f, err := svc.ExportSelection(ctx, []int64{e.ID}, []int64{l.ID}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "selected_data_2024-01-20.csv", f.Name)
	assert.True(t, bytes.HasPrefix(f.Content, []byte("EXPENSES\n")))

	f, err = svc.ExportSelection(ctx, nil, []int64{l.ID}, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "selected_data_2024-01-20.xlsx", f.Name)
	wb, err := excelize.OpenReader(bytes.NewReader(f.Content))
	require.NoError(t, err)
	assert.Equal(t, []string{export.LoansSheet}, wb.GetSheetList())
	require.NoError(t, wb.Close())

	f, err = svc.ExportSelection(ctx, []int64{e.ID}, nil, FormatSheets)
	require.NoError(t, err)
	assert.Equal(t, "Export!A1:F9", f.SheetsRange)
	assert.Empty(t, f.Content)
	require.Len(t, sink.rows, 3)
	assert.Equal(t, []string{export.ExpensesLabel}, sink.rows[0])

	require.Len(t, n.msgs, 3)
	for _, m := range n.msgs {
		assert.Equal(t, amqp.KindSelectionSummary, m.Kind)
	}
}

func TestExportSelectionErrors(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	svc, e, _ := seeded(t, WithNotifier(n))

	_, err := svc.ExportSelection(ctx, nil, nil, FormatCSV)
	assert.ErrorIs(t, err, export.ErrNothingSelected)

	_, err = svc.ExportSelection(ctx, []int64{999}, nil, FormatCSV)
	assert.ErrorIs(t, err, export.ErrNothingSelected)

	_, err = svc.ExportSelection(ctx, []int64{e.ID}, nil, FormatSheets)
	assert.ErrorIs(t, err, ErrSheetsDisabled)

	_, err = svc.ExportSelection(ctx, []int64{e.ID}, nil, Format("pdf"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.Empty(t, n.msgs)
}

func TestSheetsFailureIsWrapped(t *testing.T) {
	boom := errors.New("quota exceeded")
	svc, e, _ := seeded(t, WithSheets(&recordingSheets{err: boom}))

	_, err := svc.ExportSelection(context.Background(), []int64{e.ID}, nil, FormatSheets)
	assert.ErrorIs(t, err, boom)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("XLSX")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestConcurrentAddsAllPersisted(t *testing.T) {
	ctx := context.Background()
	svc, p := newService(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddExpense(ctx, expense(core.NewDate(2024, 1, 1), "Food", "Snack", 100))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Expenses, 20)
	ids := map[int64]bool{}
	for _, e := range snap.Expenses {
		ids[e.ID] = true
	}
	assert.Len(t, ids, 20)
}
