package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moneywise/internal/auth"
	"moneywise/internal/core"
	"moneywise/internal/services"
	"moneywise/internal/storage"
	"moneywise/internal/store"
)

type testEnvelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
	Error   string            `json:"error"`
	Warning string            `json:"warning"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.New(context.Background(), storage.NewMemory(), "transactions")
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	if err := st.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	service := services.NewTransactionService(st, nil)
	authenticator := auth.New("demo", "demo123")

	s := NewServer(Options{
		Addr:               ":0",
		RateLimitPerMinute: 1000,
		CacheSize:          100,
		CacheTTL:           time.Minute,
	}, service, authenticator)
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s
}

func loginToken(t *testing.T, s *Server) string {
	t.Helper()
	token, err := s.auth.Login("demo", "demo123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return token
}

func doRequest(t *testing.T, s *Server, method, path, token string, body any) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	var env testEnvelope
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func createTransaction(t *testing.T, s *Server, token, title string, amount float64, typ, category, date string) core.Transaction {
	t.Helper()

	rec, env := doRequest(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
		"title":       title,
		"description": title + " description",
		"amount":      amount,
		"type":        typ,
		"category":    category,
		"date":        date,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %q: status = %d, body = %s", title, rec.Code, rec.Body.String())
	}

	var txn core.Transaction
	if err := json.Unmarshal(env.Data, &txn); err != nil {
		t.Fatalf("decode created transaction: %v", err)
	}
	return txn
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec, env := doRequest(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"username": "demo", "password": "demo123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["token"] == "" {
		t.Error("login response should carry a token")
	}

	rec, _ = doRequest(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"username": "demo", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for bad credentials", rec.Code)
	}
}

func TestCreateRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	rec, _ := doRequest(t, s, http.MethodPost, "/api/transactions", "", map[string]any{
		"title": "x",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without token", rec.Code)
	}

	rec, _ = doRequest(t, s, http.MethodPost, "/api/transactions", "bogus", map[string]any{
		"title": "x",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 with bogus token", rec.Code)
	}
}

func TestCreateAndGetTransaction(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	txn := createTransaction(t, s, token, "Salary Payment", 5000000, "income", "Salary", "2024-06-01")
	if txn.ID == "" {
		t.Fatal("created transaction should have an ID")
	}

	rec, env := doRequest(t, s, http.MethodGet, "/api/transactions/"+txn.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got core.Transaction
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	if got.Title != "Salary Payment" {
		t.Errorf("Title = %v, want Salary Payment", got.Title)
	}
	if got.Amount.Cents != 500000000 {
		t.Errorf("Amount = %v cents, want 500000000", got.Amount.Cents)
	}
}

func TestCreateValidationErrors(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	rec, env := doRequest(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
		"title":       "",
		"description": "x",
		"amount":      100,
		"type":        "expense",
		"category":    "Salary",
		"date":        "2024-06-01",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if env.Success {
		t.Error("success = true, want false")
	}
	if env.Errors["title"] != "Title is required" {
		t.Errorf("title error = %q", env.Errors["title"])
	}
	if env.Errors["category"] != "Invalid category for expense transaction" {
		t.Errorf("category error = %q", env.Errors["category"])
	}
}

func TestListFilterAndPaginate(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	createTransaction(t, s, token, "Salary Payment", 5000000, "income", "Salary", "2024-06-01")
	createTransaction(t, s, token, "Grocery Shopping", 150000, "expense", "Food", "2024-06-05")
	createTransaction(t, s, token, "Dinner Out", 75000, "expense", "Food", "2024-06-10")

	rec, env := doRequest(t, s, http.MethodGet, "/api/transactions?type=expense&category=Food&size=1&page=2", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var page core.Page
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalItems != 2 {
		t.Errorf("TotalItems = %d, want 2", page.TotalItems)
	}
	if page.TotalPages != 2 {
		t.Errorf("TotalPages = %d, want 2", page.TotalPages)
	}
	if len(page.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(page.Items))
	}
	if page.HasNext {
		t.Error("HasNext = true on last page")
	}
	// date desc puts Grocery Shopping (June 5) on page 2
	if page.Items[0].Title != "Grocery Shopping" {
		t.Errorf("item = %v, want Grocery Shopping", page.Items[0].Title)
	}
}

func TestListRejectsUnknownParams(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/transactions?type=transfer",
		"/api/transactions?period=fortnight",
		"/api/transactions?sort=color",
		"/api/transactions?dir=sideways",
		"/api/transactions?date=junk",
	} {
		rec, _ := doRequest(t, s, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestListCacheInvalidatedByMutation(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	createTransaction(t, s, token, "Salary Payment", 5000000, "income", "Salary", "2024-06-01")

	_, env := doRequest(t, s, http.MethodGet, "/api/transactions", "", nil)
	var before core.Page
	if err := json.Unmarshal(env.Data, &before); err != nil {
		t.Fatalf("decode page: %v", err)
	}

	createTransaction(t, s, token, "Grocery Shopping", 150000, "expense", "Food", "2024-06-05")

	_, env = doRequest(t, s, http.MethodGet, "/api/transactions", "", nil)
	var after core.Page
	if err := json.Unmarshal(env.Data, &after); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if after.TotalItems != before.TotalItems+1 {
		t.Errorf("TotalItems = %d, want %d; stale cache served after mutation",
			after.TotalItems, before.TotalItems+1)
	}
}

func TestUpdateTransaction(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	txn := createTransaction(t, s, token, "Coffee", 25000, "expense", "Food", "2024-06-01")

	rec, env := doRequest(t, s, http.MethodPut, "/api/transactions/"+txn.ID, token, map[string]any{
		"title": "Espresso",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var got core.Transaction
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	if got.Title != "Espresso" {
		t.Errorf("Title = %v, want Espresso", got.Title)
	}
	if got.Category != "Food" {
		t.Errorf("Category = %v, untouched fields must survive", got.Category)
	}

	// a type flip that invalidates the category is rejected whole
	rec, env = doRequest(t, s, http.MethodPut, "/api/transactions/"+txn.ID, token, map[string]any{
		"type": "income",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if env.Errors["category"] == "" {
		t.Error("expected a category validation message")
	}
}

func TestUpdateUnknownTransaction(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	rec, _ := doRequest(t, s, http.MethodPut, "/api/transactions/missing", token, map[string]any{
		"title": "x",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	txn := createTransaction(t, s, token, "Coffee", 25000, "expense", "Food", "2024-06-01")

	rec, _ := doRequest(t, s, http.MethodDelete, "/api/transactions/"+txn.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec, _ = doRequest(t, s, http.MethodGet, "/api/transactions/"+txn.ID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 after delete", rec.Code)
	}

	rec, _ = doRequest(t, s, http.MethodDelete, "/api/transactions/"+txn.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for double delete", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	createTransaction(t, s, token, "Salary Payment", 5000000, "income", "Salary", "2024-06-01")
	createTransaction(t, s, token, "Grocery Shopping", 150000, "expense", "Food", "2024-06-05")

	rec, env := doRequest(t, s, http.MethodGet, "/api/dashboard?period=month&date=2024-06-15", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var report services.Report
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Summary.TotalIncome.Cents != 500000000 {
		t.Errorf("TotalIncome = %d cents, want 500000000", report.Summary.TotalIncome.Cents)
	}
	if report.Summary.Balance.Cents != 485000000 {
		t.Errorf("Balance = %d cents, want 485000000", report.Summary.Balance.Cents)
	}
	if len(report.Categories) != 2 {
		t.Errorf("Categories = %d, want 2", len(report.Categories))
	}

	rec, _ = doRequest(t, s, http.MethodGet, "/api/dashboard?period=fortnight", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown period", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	s := newTestServer(t)

	rec, env := doRequest(t, s, http.MethodGet, "/api/categories", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var cats map[string][]string
	if err := json.Unmarshal(env.Data, &cats); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(cats["income"]) != 6 {
		t.Errorf("income categories = %d, want 6", len(cats["income"]))
	}
	if len(cats["expense"]) != 8 {
		t.Errorf("expense categories = %d, want 8", len(cats["expense"]))
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	createTransaction(t, s, token, "Salary Payment", 5000000, "income", "Salary", "2024-06-01")

	req := httptest.NewRequest(http.MethodGet, "/api/export?format=csv", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "moneywise-export-") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "Date,Title,Description,Type,Category,Amount") {
		t.Errorf("body = %q, want CSV header first", rec.Body.String())
	}

	rec2, _ := doRequest(t, s, http.MethodGet, "/api/export?format=xml", "", nil)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown format", rec2.Code)
	}
}

func TestReset(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	rec, _ := doRequest(t, s, http.MethodPost, "/api/reset", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without token", rec.Code)
	}

	rec, env := doRequest(t, s, http.MethodPost, "/api/reset", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var data map[string]int
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["count"] == 0 {
		t.Error("reset should restore the demo dataset")
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	s := newTestServer(t)
	s.rateLimiter.stop()
	s.rateLimiter = newRateLimiter(2)
	token := loginToken(t, s)

	var lastCode int
	for i := 0; i < 3; i++ {
		rec, _ := doRequest(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
			"title":       fmt.Sprintf("txn %d", i),
			"description": "d",
			"amount":      100,
			"type":        "expense",
			"category":    "Food",
			"date":        "2024-06-01",
		})
		lastCode = rec.Code
	}
	if lastCode != http.StatusTooManyRequests {
		t.Errorf("third mutating request status = %d, want 429", lastCode)
	}

	// reads are never rate limited
	rec, _ := doRequest(t, s, http.MethodGet, "/api/transactions", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200 under rate limiting", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rec, _ := doRequest(t, s, http.MethodGet, "/api/categories", "", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if got := rec.Header().Get("X-Request-ID"); !strings.HasPrefix(got, "req_") {
		t.Errorf("X-Request-ID = %q, want a req_ identifier", got)
	}
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	token := loginToken(t, s)

	rec, _ := doRequest(t, s, http.MethodPost, "/api/logout", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without token", rec.Code)
	}

	rec, env := doRequest(t, s, http.MethodPost, "/api/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var data map[string]bool
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data["loggedOut"] {
		t.Error("loggedOut = false, want true")
	}

	rec, _ = doRequest(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
		"title": "x",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 after logout", rec.Code)
	}

	// logging out the same token again is harmless
	rec, _ = doRequest(t, s, http.MethodPost, "/api/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for repeated logout", rec.Code)
	}
}
