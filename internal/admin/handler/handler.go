// Package handler exposes the back-office surface over HTTP. Admin requests
// carry the X-Aptic-Admin header so the request log reflects the mode; the
// audit actor itself follows the wizard's panel state.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aptic/internal/admin"
	"aptic/internal/audit"
	"aptic/internal/customer"
	"aptic/internal/onboarding"
	"aptic/internal/platform/middleware"
	"aptic/internal/transport/http/shared"
	dErrors "aptic/pkg/domain-errors"
)

// CustomerService defines the registry operations the admin surface needs.
type CustomerService interface {
	List(ctx context.Context) ([]*customer.Record, error)
	Get(ctx context.Context, customerID string) (*customer.Record, error)
	ApproveDocument(ctx context.Context, customerID, docID string) (*customer.Record, error)
	Stats(ctx context.Context) (customer.Stats, error)
}

// Wizard is the slice of the onboarding service that opens and closes the
// panel side path.
type Wizard interface {
	EnterAdmin(ctx context.Context) (onboarding.Snapshot, error)
	ExitAdmin(ctx context.Context) (onboarding.Snapshot, error)
}

// Handler handles admin endpoints.
type Handler struct {
	logger    *slog.Logger
	wizard    Wizard
	customers CustomerService
	auditLog  *audit.Log
	exporter  *admin.Exporter
}

func New(wizard Wizard, customers CustomerService, auditLog *audit.Log, exporter *admin.Exporter, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		wizard:    wizard,
		customers: customers,
		auditLog:  auditLog,
		exporter:  exporter,
	}
}

// Register registers the admin routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/enter", h.handleEnterPanel)
		r.Post("/exit", h.handleExitPanel)
		r.Get("/customers", h.handleListCustomers)
		r.Get("/customers/export", h.handleExportCustomers)
		r.Get("/customers/{customerID}", h.handleGetCustomer)
		r.Post("/customers/{customerID}/documents/{docID}/approve", h.handleApproveDocument)
		r.Get("/stats", h.handleStats)
		r.Get("/audit", h.handleAuditTrail)
	})
}

func (h *Handler) handleEnterPanel(w http.ResponseWriter, r *http.Request) {
	snap, err := h.wizard.EnterAdmin(r.Context())
	if err != nil {
		h.writeFailure(w, r, "failed to enter admin panel", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleExitPanel(w http.ResponseWriter, r *http.Request) {
	snap, err := h.wizard.ExitAdmin(r.Context())
	if err != nil {
		h.writeFailure(w, r, "failed to exit admin panel", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	records, err := h.customers.List(r.Context())
	if err != nil {
		h.writeFailure(w, r, "failed to list customers", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	record, err := h.customers.Get(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		h.writeFailure(w, r, "failed to load customer", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleApproveDocument(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	docID := chi.URLParam(r, "docID")

	record, err := h.customers.ApproveDocument(r.Context(), customerID, docID)
	if err != nil {
		h.writeFailure(w, r, "failed to approve document", err)
		return
	}
	h.auditLog.Record(
		fmt.Sprintf("Document Approved: %s", docID),
		fmt.Sprintf("Customer %s", customerID),
		audit.StatusSuccess,
	)
	shared.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.customers.Stats(r.Context())
	if err != nil {
		h.writeFailure(w, r, "failed to compute stats", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.auditLog.Entries())
}

func (h *Handler) handleExportCustomers(w http.ResponseWriter, r *http.Request) {
	data, err := h.exporter.ExportCustomersXLSX(r.Context())
	if err != nil {
		h.writeFailure(w, r, "failed to export customers", err)
		return
	}
	filename := fmt.Sprintf("customers-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest, dErrors.CodeNotFound:
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	default:
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
