package http

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/backend"
	"tracker/internal/log"
	"tracker/internal/services"
	"tracker/internal/sheets/memory"
	"tracker/internal/store"
)

var fixedNow = time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts ...services.Option) *Server {
	t.Helper()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	clock := func() time.Time { return fixedNow }
	opts = append([]services.Option{services.WithClock(clock), services.WithLogger(logger)}, opts...)
	ledger := services.NewLedgerService(store.New(clock), backend.NewMemoryPersister(), opts...)
	srv := NewServer(":0", ledger, logger)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndHeaders(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "8f14e45f-ceea-467f-a0b6-2f1d6b9e2d3a")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, "8f14e45f-ceea-467f-a0b6-2f1d6b9e2d3a", rr.Header().Get(RequestIDHeader))
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2024-01-15","category":"Food","description":"Lunch","amount":120.5}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decodeBody[map[string]any](t, rr)
	assert.Equal(t, "Food", created["category"])
	assert.Equal(t, 120.5, created["amount"])
	id := int64(created["id"].(float64))

	path := "/api/expenses/" + jsonInt(id)
	rr = do(t, srv, http.MethodPut, path, `{"date":"2024-01-16","category":"Food","description":"Dinner","amount":"80"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Dinner", decodeBody[map[string]any](t, rr)["description"])

	rr = do(t, srv, http.MethodGet, path, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/categories", "")
	assert.Equal(t, []string{"Food"}, decodeBody[[]string](t, rr))

	rr = do(t, srv, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, srv, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func jsonInt(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestExpenseValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"missing category", `{"date":"2024-01-15","description":"x","amount":1}`, http.StatusUnprocessableEntity, "category"},
		{"blank category", `{"date":"2024-01-15","category":"  ","description":"x","amount":1}`, http.StatusUnprocessableEntity, "category"},
		{"zero amount", `{"date":"2024-01-15","category":"A","description":"x","amount":0}`, http.StatusUnprocessableEntity, "amount"},
		{"amount overflows cents", `{"date":"2024-01-15","category":"A","description":"x","amount":184467440737095516.17}`, http.StatusUnprocessableEntity, "amount"},
		{"negative amount", `{"date":"2024-01-15","category":"A","description":"x","amount":-3}`, http.StatusUnprocessableEntity, "amount"},
		{"bad date", `{"date":"15/01/2024","category":"A","description":"x","amount":1}`, http.StatusUnprocessableEntity, "date"},
		{"malformed json", `{"date":`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/expenses", tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			body := decodeBody[errorBody](t, rr)
			assert.Equal(t, tt.field, body.Field)
			assert.NotEmpty(t, body.Error)
		})
	}

	rr := do(t, srv, http.MethodGet, "/api/expenses", "")
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestListExpensesFilterAndSort(t *testing.T) {
	srv := newTestServer(t)
	for _, body := range []string{
		`{"date":"2024-01-10","category":"Food","description":"Pizza night","amount":30}`,
		`{"date":"2024-01-12","category":"Travel","description":"Bus","amount":5}`,
		`{"date":"2024-01-11","category":"Food","description":"Groceries","amount":60}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/expenses", body).Code)
	}

	rr := do(t, srv, http.MethodGet, "/api/expenses?category=Food&sort=amount-desc", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[[]map[string]any](t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, "Groceries", list[0]["description"])

	rr = do(t, srv, http.MethodGet, "/api/expenses?keyword=PIZZA", "")
	assert.Len(t, decodeBody[[]map[string]any](t, rr), 1)

	rr = do(t, srv, http.MethodGet, "/api/expenses?date=2024-01-12", "")
	assert.Len(t, decodeBody[[]map[string]any](t, rr), 1)

	rr = do(t, srv, http.MethodGet, "/api/expenses?sort=random", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/expenses/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoansAndDashboard(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/loans", `{"person":"Asha","amount":500,"date":"2024-01-05","type":"Given","status":"Active"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	loan := decodeBody[map[string]any](t, rr)
	assert.Equal(t, "warning", loan["statusClass"])

	rr = do(t, srv, http.MethodPost, "/api/loans", `{"person":"Ravi","amount":800,"date":"2024-01-06","type":"Taken","status":"Active"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, srv, http.MethodPost, "/api/loans", `{"person":"Ravi","amount":800,"date":"2024-01-06","type":"Lent","status":"Active"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "type", decodeBody[errorBody](t, rr).Field)

	rr = do(t, srv, http.MethodGet, "/api/loans?type=Taken", "")
	loans := decodeBody[[]map[string]any](t, rr)
	require.Len(t, loans, 1)
	assert.Equal(t, "Ravi", loans[0]["person"])

	rr = do(t, srv, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rr.Code)
	dash := decodeBody[map[string]any](t, rr)
	assert.Equal(t, float64(2024), dash["year"])
	assert.Equal(t, float64(1), dash["month"])
	assert.Equal(t, float64(300), dash["loans"].(map[string]any)["net"])
}

func TestBudgetAndReports(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/api/budget", "")
	assert.JSONEq(t, `{"amount":15000.00}`, rr.Body.String())

	rr = do(t, srv, http.MethodPut, "/api/budget", `{"amount":-5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, errorBody{Error: "budget cannot be negative", Field: "budget"}, decodeBody[errorBody](t, rr))

	rr = do(t, srv, http.MethodPut, "/api/budget", `{"amount":1e30}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "amount", decodeBody[errorBody](t, rr).Field)

	rr = do(t, srv, http.MethodPut, "/api/budget", `{"amount":100}`)
	require.Equal(t, http.StatusOK, rr.Code)

	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2024-01-03","category":"Food","description":"A","amount":100}`).Code)
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2024-01-09","category":"Fuel","description":"B","amount":50}`).Code)

	rr = do(t, srv, http.MethodGet, "/api/reports?year=2024&month=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	report := decodeBody[map[string]any](t, rr)
	assert.Equal(t, float64(150), report["total"])
	assert.Equal(t, true, report["overBudget"])

	rr = do(t, srv, http.MethodGet, "/api/dashboard?year=2024&month=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	budget := decodeBody[map[string]any](t, rr)["budget"].(map[string]any)
	assert.Equal(t, float64(100), budget["percent"])
	assert.Equal(t, "overBudget", budget["level"])
}

func TestProfile(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPut, "/api/profile", `{"name":"Meera","phone":"+91123","email":"not-an-email","smsEnabled":"yes","exportEnabled":"no"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "email", decodeBody[errorBody](t, rr).Field)

	rr = do(t, srv, http.MethodPut, "/api/profile", `{"name":"Meera","phone":"+91123","smsEnabled":"yes","exportEnabled":"no"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, srv, http.MethodGet, "/api/profile", "")
	p := decodeBody[map[string]any](t, rr)
	assert.Equal(t, "Meera", p["name"])
	assert.Equal(t, "no", p["exportEnabled"])
}

func TestExportEndpoints(t *testing.T) {
	sink := memory.New("Export")
	srv := newTestServer(t, services.WithSheets(sink))

	rr := do(t, srv, http.MethodPost, "/api/expenses", `{"date":"2024-01-15","category":"Food","description":"Rice \"basmati\"","amount":12.5}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := int64(decodeBody[map[string]any](t, rr)["id"].(float64))

	rr = do(t, srv, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "expenses_2024-01-20.csv")

	rr = do(t, srv, http.MethodPost, "/api/export", `{"expenseIds":[`+jsonInt(id)+`],"format":"csv"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "selected_data_2024-01-20.csv")
	r := csv.NewReader(bytes.NewReader(rr.Body.Bytes()))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, `Rice "basmati"`, records[2][2])

	rr = do(t, srv, http.MethodPost, "/api/export", `{"expenseIds":[`+jsonInt(id)+`],"format":"sheets"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"range":"Export!A1:D3"}`, rr.Body.String())
	assert.Len(t, sink.Rows(), 3)

	rr = do(t, srv, http.MethodPost, "/api/export", `{"expenseIds":[],"loanIds":[]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "nothing selected", decodeBody[errorBody](t, rr).Error)

	rr = do(t, srv, http.MethodPost, "/api/export", `{"expenseIds":[1],"format":"pdf"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "format", decodeBody[errorBody](t, rr).Field)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPatch, "/api/budget", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRateLimitOnMutations(t *testing.T) {
	srv := newTestServer(t)
	srv.rateLimiter.limit = 2

	body := `{"date":"2024-01-15","category":"Food","description":"x","amount":1}`
	assert.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/expenses", body).Code)
	assert.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/api/expenses", body).Code)
	rr := do(t, srv, http.MethodPost, "/api/expenses", body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	// Reads are not throttled.
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/expenses", "").Code)
}
