package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Bryant1523/notasapp/internal/allocation"
	"github.com/Bryant1523/notasapp/internal/amount"
	"github.com/Bryant1523/notasapp/internal/ingest"
	"github.com/Bryant1523/notasapp/internal/ledger"
	"github.com/Bryant1523/notasapp/internal/models"
	"github.com/Bryant1523/notasapp/internal/session"
	"github.com/Bryant1523/notasapp/internal/storage"
)

const maxUploadBytes = 32 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type handler struct {
	svc    *session.Service
	logger *zap.Logger
}

func newRouter(svc *session.Service, logger *zap.Logger) *mux.Router {
	h := &handler{svc: svc, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/dataset", h.loadDataset).Methods(http.MethodPost)
	r.HandleFunc("/allocations", h.previewAllocation).Methods(http.MethodPost)
	r.HandleFunc("/invoices", h.availableInvoices).Methods(http.MethodGet)
	r.HandleFunc("/tickets", h.commitTicket).Methods(http.MethodPost)
	r.HandleFunc("/tickets", h.listTickets).Methods(http.MethodGet)
	r.HandleFunc("/tickets", h.clearTickets).Methods(http.MethodDelete)
	r.HandleFunc("/tickets/export", h.exportTickets).Methods(http.MethodGet)
	r.HandleFunc("/tickets/{position:[0-9]+}", h.removeTicket).Methods(http.MethodDelete)
	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) loadDataset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is a mandatory field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	summary, err := h.svc.LoadDataset(r.Context(), header.Filename, file, r.FormValue("portfolio"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) previewAllocation(w http.ResponseWriter, r *http.Request) {
	var req session.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	preview, err := h.svc.Allocate(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, preview)
}

func (h *handler) commitTicket(w http.ResponseWriter, r *http.Request) {
	var req session.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ticket, preview, err := h.svc.CommitAllocation(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response := struct {
		Ticket   models.Ticket          `json:"ticket"`
		Excluded []string               `json:"excluded_invoices,omitempty"`
		Issues   []allocation.LineIssue `json:"issues,omitempty"`
	}{
		Ticket:   ticket,
		Excluded: preview.Excluded,
		Issues:   preview.Issues,
	}
	h.writeJSON(w, http.StatusCreated, response)
}

func (h *handler) listTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.svc.Tickets(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tickets)
}

// removeTicket takes the 1-based position shown in the ticket list.
func (h *handler) removeTicket(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(mux.Vars(r)["position"])
	if err != nil || position < 1 {
		http.Error(w, "position must be a positive number", http.StatusBadRequest)
		return
	}

	ticket, err := h.svc.RemoveTicket(r.Context(), position-1)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ticket)
}

func (h *handler) clearTickets(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearTickets(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (h *handler) exportTickets(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	name, err := h.svc.ExportTickets(r.Context(), &buf)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Debug("failed to write export", zap.String("file", name), zap.Error(err))
	}
}

func (h *handler) availableInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	invoices, err := h.svc.Available(r.Context(), q.Get("clients"), q.Get("products"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	type invoice struct {
		InvoiceID   string          `json:"invoice_id"`
		ClientCode  string          `json:"client_code"`
		ProductCode string          `json:"product_code"`
		Unit        string          `json:"unit"`
		Available   decimal.Decimal `json:"available"`
		Display     string          `json:"display"`
	}
	out := make([]invoice, len(invoices))
	for i, a := range invoices {
		out[i] = invoice{
			InvoiceID:   a.InvoiceID,
			ClientCode:  a.ClientCode,
			ProductCode: a.ProductCode,
			Unit:        a.Unit,
			Available:   a.TotalAmount,
			Display:     amount.FormatLocal(a.TotalAmount),
		}
	}
	h.writeJSON(w, http.StatusOK, out)
}

type errorResponse struct {
	Error     string           `json:"error"`
	Values    []string         `json:"values,omitempty"`
	Target    *decimal.Decimal `json:"target,omitempty"`
	Available *decimal.Decimal `json:"available,omitempty"`
	Shortfall *decimal.Decimal `json:"shortfall,omitempty"`
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var filterErr *allocation.FilterError
	if errors.As(err, &filterErr) {
		resp.Values = filterErr.Values
	}
	var covErr *allocation.CoverageError
	if errors.As(err, &covErr) {
		resp.Target = &covErr.Target
		resp.Available = &covErr.Available
		resp.Shortfall = &covErr.Shortfall
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	} else {
		h.logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	h.writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, amount.ErrUnparsable),
		errors.Is(err, allocation.ErrNonPositiveTarget),
		errors.Is(err, allocation.ErrMissingClientFilter),
		errors.Is(err, allocation.ErrUnknownMode),
		errors.Is(err, session.ErrInvalidReason),
		errors.Is(err, ingest.ErrMissingColumn),
		errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, ingest.ErrEmptyTable),
		errors.Is(err, ledger.ErrEmptyTicket),
		errors.Is(err, ledger.ErrUnbalancedTicket):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrTicketNotFound),
		errors.Is(err, storage.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoDataset),
		errors.Is(err, session.ErrNoTickets):
		return http.StatusConflict
	case errors.Is(err, allocation.ErrInsufficientCoverage),
		errors.Is(err, allocation.ErrNoMatchingClass),
		errors.Is(err, allocation.ErrNoMatchingClient),
		errors.Is(err, allocation.ErrNoMatchingProduct),
		errors.Is(err, allocation.ErrZeroTotalSelected):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("failed to write response", zap.Int("status", status), zap.Error(err))
	}
}
