// Package handler exposes feedback submission over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aptic/internal/audit"
	"aptic/internal/feedback"
	"aptic/internal/platform/middleware"
	"aptic/internal/transport/http/shared"
	dErrors "aptic/pkg/domain-errors"
)

// Service defines the interface for feedback operations.
type Service interface {
	Submit(ctx context.Context, userName string, rating int, comment string) (*feedback.Entry, error)
	List(ctx context.Context) []feedback.Entry
}

// Handler handles feedback endpoints.
type Handler struct {
	logger   *slog.Logger
	feedback Service
	auditLog *audit.Log
}

func New(svc Service, auditLog *audit.Log, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, feedback: svc, auditLog: auditLog}
}

// Register registers the feedback routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/feedback", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/", h.handleSubmit)
		r.Get("/", h.handleList)
	})
}

type submitRequest struct {
	UserName string `json:"user_name"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	entry, err := h.feedback.Submit(ctx, req.UserName, req.Rating, req.Comment)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected feedback submission",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	h.auditLog.Record("Interaction Feedback Logged", "Feedback Hub", audit.StatusSuccess)
	shared.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.feedback.List(r.Context()))
}
