package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"deudas/internal/attachments"
	"deudas/internal/core"
	applog "deudas/internal/log"
	"deudas/internal/middleware/trace"
	"deudas/internal/services"
)

const maxReceiptBytes = 10 << 20 // 10MB upload ceiling

type createDebtRequest struct {
	Motivo        string      `json:"motivo"`
	MontoTotal    json.Number `json:"montoTotal"`
	Frecuencia    string      `json:"frecuencia"`
	FechaInicio   string      `json:"fechaInicio"`
	IntervaloDias int         `json:"intervaloDias"`
	Repeticiones  int         `json:"repeticiones"`
	Meses         int         `json:"meses"`
	Fechas        []string    `json:"fechas"`
}

// handleDebts serves the collection endpoint: GET lists the month view,
// POST registers a new debt.
func (s *Server) handleDebts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleMonthView(w, r)
	case http.MethodPost:
		s.handleCreateDebt(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleMonthView(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	key := fmt.Sprintf("%04d-%02d", year, month)

	if views, ok := s.monthCache.Get(key); ok {
		writeJSON(w, http.StatusOK, map[string]any{"año": year, "mes": month, "deudas": views})
		return
	}

	views, err := s.svc.MonthView(r.Context(), year, month, today())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build month view",
			applog.FieldRequestID, trace.GetRequestID(r.Context()),
			applog.FieldError, err,
			applog.FieldYear, year,
			applog.FieldMonth, month)
		writeError(w, http.StatusInternalServerError, "error loading debts")
		return
	}

	s.monthCache.Set(key, views)
	writeJSON(w, http.StatusOK, map[string]any{"año": year, "mes": month, "deudas": views})
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req createDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	debt, err := debtFromRequest(req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.svc.CreateDebt(r.Context(), debt)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create debt",
			applog.FieldRequestID, trace.GetRequestID(r.Context()),
			applog.FieldError, err,
			applog.FieldReason, debt.Reason,
			applog.FieldFrequency, debt.Frequency)
		writeError(w, http.StatusInternalServerError, "error saving debt")
		return
	}

	s.monthCache.Clear()
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// handleDebtActions routes /api/deudas/{id}/pagos and
// /api/deudas/{id}/historial.
func (s *Server) handleDebtActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/deudas/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "invalid debt id")
		return
	}

	switch {
	case parts[1] == "pagos" && r.Method == http.MethodPost:
		s.handleMarkPaid(w, r, id)
	case parts[1] == "historial" && r.Method == http.MethodGet:
		s.handleHistory(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleMarkPaid settles the earliest pending occurrence of the requested
// month. The receipt is mandatory; without one the payment is rejected, just
// like the confirmation screen always required an attachment.
func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request, id int64) {
	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("comprobante")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "receipt attachment required")
		return
	}
	defer file.Close()

	year, month := parseYearMonth(r)

	uri, err := s.receipts.Save(r.Context(), header.Filename, file)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to store receipt",
			applog.FieldRequestID, trace.GetRequestID(r.Context()),
			applog.FieldError, err,
			applog.FieldDebtID, id)
		writeError(w, http.StatusInternalServerError, "error storing receipt")
		return
	}

	err = s.svc.MarkPaid(r.Context(), id, year, month, uri, time.Now())
	if err != nil {
		s.discardReceipt(r.Context(), uri)
	}
	switch {
	case errors.Is(err, services.ErrDebtNotFound):
		writeError(w, http.StatusNotFound, "debt not found")
		return
	case errors.Is(err, services.ErrNothingPending):
		writeError(w, http.StatusConflict, "no pending occurrence in month")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Failed to mark debt paid",
			applog.FieldRequestID, trace.GetRequestID(r.Context()),
			applog.FieldError, err,
			applog.FieldDebtID, id,
			applog.FieldYear, year,
			applog.FieldMonth, month)
		writeError(w, http.StatusInternalServerError, "error marking debt paid")
		return
	}

	s.monthCache.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"uri": uri})
}

// discardReceipt removes a receipt stored for a payment that was rejected.
func (s *Server) discardReceipt(ctx context.Context, uri string) {
	if err := s.receipts.Remove(uri); err != nil {
		slog.WarnContext(ctx, "Failed to remove receipt for rejected payment",
			applog.FieldError, err, applog.FieldReceiptURI, uri)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, id int64) {
	history, err := s.svc.History(r.Context(), id)
	if errors.Is(err, services.ErrDebtNotFound) {
		writeError(w, http.StatusNotFound, "debt not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load payment history",
			applog.FieldRequestID, trace.GetRequestID(r.Context()),
			applog.FieldError, err,
			applog.FieldDebtID, id)
		writeError(w, http.StatusInternalServerError, "error loading history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"historial": history})
}

// handleReceipt serves a stored receipt file by name.
func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/comprobantes/")
	path, err := s.receipts.Resolve(attachments.URI(name))
	if err != nil {
		writeError(w, http.StatusNotFound, "receipt not found")
		return
	}

	http.ServeFile(w, r, path)
}

// debtFromRequest maps the wire payload onto the matching debt variant.
func debtFromRequest(req createDebtRequest) (core.Debt, error) {
	cents, err := core.ParseAmountToCents(req.MontoTotal.String())
	if err != nil {
		return core.Debt{}, err
	}
	amount := core.Money{Cents: cents}
	reason := req.Motivo
	start := core.ParseDate(req.FechaInicio)

	switch core.Frequency(req.Frecuencia) {
	case core.OneOff:
		return core.NewOneOffDebt(reason, amount, start)
	case core.EveryNDays:
		return core.NewIntervalDebt(reason, amount, start, req.IntervaloDias, req.Repeticiones)
	case core.Weekly:
		return core.NewWeeklyDebt(reason, amount, start, req.Repeticiones)
	case core.Custom:
		dates := make([]core.Date, 0, len(req.Fechas))
		for _, f := range req.Fechas {
			if d := core.ParseDate(f); !d.IsZero() {
				dates = append(dates, d)
			}
		}
		return core.NewCustomDebt(reason, amount, dates)
	case core.FixedDay:
		return core.NewFixedDayDebt(reason, amount, start, req.Meses)
	case core.MonthStart:
		return core.NewMonthStartDebt(reason, amount, start, req.Meses)
	case core.MonthEnd:
		return core.NewMonthEndDebt(reason, amount, start, req.Meses)
	}
	return core.Debt{}, core.ErrInvalidFrequency
}
