// Package handler exposes the onboarding wizard over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aptic/internal/onboarding"
	"aptic/internal/platform/middleware"
	"aptic/internal/review"
	"aptic/internal/transport/http/shared"
	dErrors "aptic/pkg/domain-errors"
)

// Service defines the interface for wizard operations.
type Service interface {
	Snapshot(ctx context.Context) onboarding.Snapshot
	Start(ctx context.Context) (onboarding.Snapshot, error)
	SelectEntity(ctx context.Context, entityType string) (onboarding.Snapshot, error)
	UploadDocument(ctx context.Context, docID string) (onboarding.Snapshot, error)
	RunExtraction(ctx context.Context) (onboarding.Snapshot, error)
	ReviewView(ctx context.Context) (review.View, error)
	SetReviewField(ctx context.Context, key, value string) (review.View, error)
	SetReviewDirectorField(ctx context.Context, index int, key, value string) (review.View, error)
	AdvanceReview(ctx context.Context) (onboarding.Snapshot, error)
	Activate(ctx context.Context, password string) (*onboarding.ActivationResult, error)
	Reset(ctx context.Context) (onboarding.Snapshot, error)
}

// Handler handles wizard endpoints.
type Handler struct {
	logger *slog.Logger
	wizard Service
}

func New(wizard Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, wizard: wizard}
}

// Register registers the onboarding routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/onboarding", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Get("/session", h.handleSnapshot)
		r.Get("/products", h.handleProducts)
		r.Post("/start", h.handleStart)
		r.Post("/entity", h.handleSelectEntity)
		r.Post("/documents/{docID}/upload", h.handleUpload)
		r.Post("/extract", h.handleExtract)
		r.Get("/review", h.handleReviewView)
		r.Put("/review/fields", h.handleSetField)
		r.Post("/review/advance", h.handleAdvance)
		r.Post("/activate", h.handleActivate)
		r.Post("/reset", h.handleReset)
	})
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.wizard.Snapshot(r.Context()))
}

func (h *Handler) handleProducts(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, onboarding.Products())
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.wizard.Start(r.Context())
	if err != nil {
		h.writeFailure(w, r, "failed to start onboarding", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

type selectEntityRequest struct {
	EntityType string `json:"entity_type"`
}

func (h *Handler) handleSelectEntity(w http.ResponseWriter, r *http.Request) {
	var req selectEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	snap, err := h.wizard.SelectEntity(r.Context(), req.EntityType)
	if err != nil {
		h.writeFailure(w, r, "failed to select entity type", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.wizard.UploadDocument(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		h.writeFailure(w, r, "failed to upload document", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	snap, err := h.wizard.RunExtraction(r.Context())
	if err != nil {
		h.writeFailure(w, r, "extraction failed", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleReviewView(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizard.ReviewView(r.Context())
	if err != nil {
		h.writeFailure(w, r, "failed to render review", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

type setFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
	// DirectorIndex targets an entry of the directors list instead of a
	// top-level field.
	DirectorIndex *int `json:"director_index,omitempty"`
}

func (h *Handler) handleSetField(w http.ResponseWriter, r *http.Request) {
	var req setFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	var (
		view review.View
		err  error
	)
	if req.DirectorIndex != nil {
		view, err = h.wizard.SetReviewDirectorField(r.Context(), *req.DirectorIndex, req.Field, req.Value)
	} else {
		view, err = h.wizard.SetReviewField(r.Context(), req.Field, req.Value)
	}
	if err != nil {
		h.writeFailure(w, r, "failed to set review field", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	snap, err := h.wizard.AdvanceReview(r.Context())
	if err != nil {
		h.writeFailure(w, r, "failed to advance review", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

type activateRequest struct {
	Password string `json:"password"`
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	result, err := h.wizard.Activate(r.Context(), req.Password)
	if err != nil {
		h.writeFailure(w, r, "failed to activate account", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.wizard.Reset(r.Context())
	if err != nil {
		h.writeFailure(w, r, "failed to reset session", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snap)
}

// writeFailure logs server-side failures and translates the error for the
// client. User-input rejections are logged at warn, everything else at error.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest, dErrors.CodePrecondition, dErrors.CodeInvariantViolation, dErrors.CodeConflict:
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
