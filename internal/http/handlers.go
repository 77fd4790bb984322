package http

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"moneywise/internal/auth"
	"moneywise/internal/core"
	"moneywise/internal/services"
	"moneywise/internal/store"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	req, err := decodeLogin(r)
	if err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		UnauthorizedError("invalid credentials").Write(w)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Login failed", "error", err)
		InternalServerError("login failed").Write(w)
		return
	}

	NewJSONResponse().Data(map[string]string{"token": token}).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	token := bearerToken(r)
	if token == "" {
		UnauthorizedError("missing bearer token").Write(w)
		return
	}

	s.auth.Logout(token)
	NewJSONResponse().Data(map[string]bool{"loggedOut": true}).Write(w)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	cacheKey := r.URL.RawQuery
	if page, ok := s.listCache.Get(cacheKey); ok {
		NewJSONResponse().Data(page).Write(w)
		return
	}

	page := s.service.List(q)
	s.listCache.Set(cacheKey, page)
	NewJSONResponse().Data(page).Write(w)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}

	d, err := decodeDraft(r)
	if err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	txn, err := s.service.Create(r.Context(), d)
	if err != nil {
		var fieldErrs core.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			ValidationError(fieldErrs).Write(w)
			return
		case errors.Is(err, store.ErrPersist):
			slog.WarnContext(r.Context(), "Transaction stored in memory only",
				"id", txn.ID, "error", err)
			s.invalidateCaches()
			NewJSONResponse().Status(http.StatusCreated).Data(txn).
				Warning("transaction saved in memory but not persisted").Write(w)
			return
		default:
			slog.ErrorContext(r.Context(), "Create transaction failed", "error", err)
			InternalServerError("could not create transaction").Write(w)
			return
		}
	}

	s.invalidateCaches()
	NewJSONResponse().Status(http.StatusCreated).Data(txn).Write(w)
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		NotFoundError("transaction not found").Write(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getTransaction(w, r, id)
	case http.MethodPut, http.MethodPatch:
		s.updateTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	default:
		MethodNotAllowedError("GET, PUT, PATCH, DELETE").Write(w)
	}
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request, id string) {
	txn, err := s.service.Get(id)
	if errors.Is(err, core.ErrNotFound) {
		NotFoundError("transaction not found").Write(w)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Get transaction failed", "id", id, "error", err)
		InternalServerError("could not load transaction").Write(w)
		return
	}
	NewJSONResponse().Data(txn).Write(w)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if !s.authorized(w, r) {
		return
	}

	p, err := decodePatch(r)
	if err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}

	txn, err := s.service.Update(r.Context(), id, p)
	if err != nil {
		var fieldErrs core.FieldErrors
		switch {
		case errors.Is(err, core.ErrNotFound):
			NotFoundError("transaction not found").Write(w)
			return
		case errors.As(err, &fieldErrs):
			ValidationError(fieldErrs).Write(w)
			return
		case errors.Is(err, store.ErrPersist):
			slog.WarnContext(r.Context(), "Transaction updated in memory only",
				"id", id, "error", err)
			s.invalidateCaches()
			NewJSONResponse().Data(txn).
				Warning("transaction updated in memory but not persisted").Write(w)
			return
		default:
			slog.ErrorContext(r.Context(), "Update transaction failed", "id", id, "error", err)
			InternalServerError("could not update transaction").Write(w)
			return
		}
	}

	s.invalidateCaches()
	NewJSONResponse().Data(txn).Write(w)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if !s.authorized(w, r) {
		return
	}

	err := s.service.Delete(r.Context(), id)
	switch {
	case errors.Is(err, core.ErrNotFound):
		NotFoundError("transaction not found").Write(w)
		return
	case errors.Is(err, store.ErrPersist):
		slog.WarnContext(r.Context(), "Transaction deleted in memory only",
			"id", id, "error", err)
	case err != nil:
		slog.ErrorContext(r.Context(), "Delete transaction failed", "id", id, "error", err)
		InternalServerError("could not delete transaction").Write(w)
		return
	}

	s.invalidateCaches()
	NewJSONResponse().Data(map[string]string{"id": id}).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	period := core.Period(strings.TrimSpace(r.URL.Query().Get("period")))
	if !period.Valid() {
		BadRequestError("unknown period").Write(w)
		return
	}

	ref := core.DateOf(time.Now())
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		parsed, err := core.ParseDate(v)
		if err != nil {
			BadRequestError("invalid reference date").Write(w)
			return
		}
		ref = parsed
	}

	cacheKey := string(period) + "|" + ref.String()
	if report, ok := s.dashboardCache.Get(cacheKey); ok {
		NewJSONResponse().Data(report).Write(w)
		return
	}

	report, err := s.service.Dashboard(period, ref)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	s.dashboardCache.Set(cacheKey, report)
	NewJSONResponse().Data(report).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}
	NewJSONResponse().Data(s.service.Categories()).Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	format := strings.TrimSpace(r.URL.Query().Get("format"))
	if format == "" {
		format = services.FormatCSV
	}
	if format != services.FormatCSV && format != services.FormatJSON {
		BadRequestError("unknown export format").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := services.Export(&buf, s.service.All(), format); err != nil {
		slog.ErrorContext(r.Context(), "Export failed", "format", format, "error", err)
		InternalServerError("export failed").Write(w)
		return
	}

	filename := services.ExportFilename(format, time.Now())
	w.Header().Set("Content-Type", services.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if !s.authorized(w, r) {
		return
	}

	if err := s.service.Reset(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Reset failed", "error", err)
		InternalServerError("could not reset transactions").Write(w)
		return
	}

	s.invalidateCaches()
	NewJSONResponse().Data(map[string]int{"count": len(s.service.All())}).Write(w)
}
