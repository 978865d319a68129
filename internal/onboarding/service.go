// Package onboarding owns the wizard session and its step sequencing.
package onboarding

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"aptic/internal/audit"
	"aptic/internal/customer"
	"aptic/internal/document"
	"aptic/internal/extraction"
	"aptic/internal/platform/metrics"
	"aptic/internal/review"
	"aptic/internal/token"
	"aptic/pkg/domain"
	dErrors "aptic/pkg/domain-errors"
)

const (
	minPasswordLength = 8
	accessTokenTTL    = 24 * time.Hour
)

// Service is the sequencing controller. It owns the single live session and is
// the only writer of its state; every operation takes the service lock, except
// the extraction gateway call itself, which runs unlocked so the session stays
// responsive while the external service works.
type Service struct {
	mu      sync.Mutex
	session *Session

	gateway   extraction.Gateway
	customers *customer.Service
	tokens    *token.JWTService
	auditLog  *audit.Log
	logger    *slog.Logger
	metrics   *metrics.Metrics

	// flights collapses duplicate extraction triggers for the same session
	// generation into one outstanding gateway call.
	flights singleflight.Group

	adminMode atomic.Bool
}

func NewService(
	gateway extraction.Gateway,
	customers *customer.Service,
	tokens *token.JWTService,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	s := &Service{
		gateway:   gateway,
		customers: customers,
		tokens:    tokens,
		logger:    logger,
		metrics:   m,
	}
	s.auditLog = audit.NewLog(func() string {
		if s.adminMode.Load() {
			return audit.ActorAdmin
		}
		return audit.ActorAgent
	})
	s.session = newSession()
	return s
}

// AuditLog exposes the shared audit trail for the admin surface.
func (s *Service) AuditLog() *audit.Log {
	return s.auditLog
}

// Snapshot returns the current session state.
func (s *Service) Snapshot(_ context.Context) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.snapshot()
}

// Start moves WELCOME → ENTITY_SELECT.
func (s *Service) Start(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.transitionTo(StepEntitySelect); err != nil {
		return Snapshot{}, err
	}
	s.metrics.IncOnboardingsStarted()
	s.auditLog.Record("Onboarding Sequence Launched", "Session Core", audit.StatusInfo)
	return s.session.snapshot(), nil
}

// SelectEntity moves ENTITY_SELECT → DOC_UPLOAD and initializes the document
// registry with the required artifact list for the chosen type.
func (s *Service) SelectEntity(_ context.Context, rawType string) (Snapshot, error) {
	entityType, err := domain.ParseEntityType(rawType)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.transitionTo(StepDocUpload); err != nil {
		return Snapshot{}, err
	}
	s.session.EntityType = entityType
	s.session.Registry = document.NewRegistry(entityType, s.logger)
	s.session.Extraction = nil
	s.session.Review = nil
	// An extraction still in flight was keyed to the previous document set;
	// the new generation makes its result undeliverable.
	s.session.Generation++
	s.auditLog.Record(fmt.Sprintf("Path Determined: %s", entityType), "Onboarding Flow", audit.StatusInfo)
	return s.session.snapshot(), nil
}

// UploadDocument fills one registry slot from the artifact source. Unknown IDs
// and re-uploads are no-ops at the registry level and produce no audit entry.
func (s *Service) UploadDocument(_ context.Context, docID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Step != StepDocUpload {
		return Snapshot{}, dErrors.New(dErrors.CodeInvariantViolation,
			"documents can only be uploaded during "+StepDocUpload.String())
	}
	doc, uploaded := s.session.Registry.Upload(docID)
	if uploaded {
		s.auditLog.Record(fmt.Sprintf("Artifact Uploaded: %s", doc.Type), doc.ID, audit.StatusSuccess)
	}
	return s.session.snapshot(), nil
}

// RunExtraction moves DOC_UPLOAD → AI_PROCESSING, calls the gateway, and on
// success lands in REVIEW_VALIDATION with a fresh review workflow. On gateway
// failure the session reverts to DOC_UPLOAD and the failure is audited; the
// user's only recovery is to trigger extraction again.
//
// A trigger arriving while a call is already outstanding joins that call
// instead of starting a second one. A result arriving after the session was
// reset is discarded.
//
// Errors: returns CodePrecondition when not every document is uploaded,
// CodeInvariantViolation when called outside DOC_UPLOAD or AI_PROCESSING.
func (s *Service) RunExtraction(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	sess := s.session

	switch sess.Step {
	case StepDocUpload:
		if !sess.Registry.AllUploaded() {
			s.mu.Unlock()
			return Snapshot{}, dErrors.New(dErrors.CodePrecondition,
				"extraction requires every document to be uploaded")
		}
		if err := sess.transitionTo(StepAIProcessing); err != nil {
			s.mu.Unlock()
			return Snapshot{}, err
		}
		s.auditLog.Record("AI Extraction Node Engaged", "Gemini Node NBO", audit.StatusInfo)
	case StepAIProcessing:
		// Duplicate trigger, join the outstanding flight below.
	default:
		s.mu.Unlock()
		return Snapshot{}, dErrors.New(dErrors.CodeInvariantViolation,
			"extraction cannot run from "+sess.Step.String())
	}

	generation := sess.Generation
	entityType := sess.EntityType
	docs := sess.Registry.Documents()
	inputs := make([]extraction.DocumentInput, 0, len(docs))
	for _, d := range docs {
		inputs = append(inputs, extraction.DocumentInput{Type: d.Type, Content: d.Content})
	}
	s.mu.Unlock()

	key := fmt.Sprintf("%s/%d", sess.ID, generation)
	started := time.Now()
	v, err, _ := s.flights.Do(key, func() (interface{}, error) {
		return s.gateway.Extract(ctx, entityType, inputs)
	})
	s.metrics.ObserveExtraction(time.Since(started), err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != sess || sess.Generation != generation {
		s.logger.Warn("discarding extraction result for superseded session",
			"session_id", sess.ID,
			"generation", generation,
		)
		return Snapshot{}, dErrors.New(dErrors.CodeConflict, "session was reset during extraction")
	}

	if sess.Step == StepAIProcessing {
		if err != nil {
			if terr := sess.transitionTo(StepDocUpload); terr != nil {
				return Snapshot{}, terr
			}
			s.auditLog.Record("Extraction Layer Failed", "System Error", audit.StatusError)
			s.logger.Error("extraction gateway call failed",
				"session_id", sess.ID,
				"error", err,
			)
			return Snapshot{}, err
		}
		result := v.(*extraction.Result)
		sess.Extraction = result
		sess.Review = review.New(result, docs, s.reviewCompletion(sess))
		if terr := sess.transitionTo(StepReviewValidation); terr != nil {
			return Snapshot{}, terr
		}
		s.auditLog.Record("OCR Cycle Success", "Extraction Data", audit.StatusSuccess)
		return sess.snapshot(), nil
	}

	// Another caller already applied this flight's outcome.
	if err != nil {
		return Snapshot{}, err
	}
	return sess.snapshot(), nil
}

// reviewCompletion builds the workflow callback that feeds
// REVIEW_VALIDATION → PASSWORD_SETUP. It runs under the service lock, inside
// AdvanceReview.
func (s *Service) reviewCompletion(sess *Session) review.CompletionFunc {
	return func(final extraction.ExtractedFields, _ []*document.Document) error {
		sess.Extraction.ExtractedData = final
		if err := sess.transitionTo(StepPasswordSetup); err != nil {
			return err
		}
		s.auditLog.Record("Extraction Confirmed by Principal", "Compliance Log", audit.StatusSuccess)
		return nil
	}
}

// ReviewView renders the document under the review cursor.
func (s *Service) ReviewView(_ context.Context) (review.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Step != StepReviewValidation {
		return review.View{}, dErrors.New(dErrors.CodeInvariantViolation,
			"no review in progress")
	}
	return s.session.Review.View(), nil
}

// SetReviewField overwrites one extraction field from the review screen.
func (s *Service) SetReviewField(_ context.Context, key, value string) (review.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Step != StepReviewValidation {
		return review.View{}, dErrors.New(dErrors.CodeInvariantViolation,
			"no review in progress")
	}
	if err := s.session.Review.SetField(key, value); err != nil {
		return review.View{}, err
	}
	return s.session.Review.View(), nil
}

// SetReviewDirectorField overwrites one director field from the review screen.
func (s *Service) SetReviewDirectorField(_ context.Context, index int, key, value string) (review.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Step != StepReviewValidation {
		return review.View{}, dErrors.New(dErrors.CodeInvariantViolation,
			"no review in progress")
	}
	if err := s.session.Review.SetDirectorField(index, key, value); err != nil {
		return review.View{}, err
	}
	return s.session.Review.View(), nil
}

// AdvanceReview confirms the current document. On the final document the
// session moves to PASSWORD_SETUP.
func (s *Service) AdvanceReview(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Step != StepReviewValidation {
		return Snapshot{}, dErrors.New(dErrors.CodeInvariantViolation,
			"no review in progress")
	}
	if _, err := s.session.Review.Advance(); err != nil {
		return Snapshot{}, err
	}
	return s.session.snapshot(), nil
}

// ActivationResult is returned once the account is provisioned.
type ActivationResult struct {
	Customer    *customer.Record `json:"customer"`
	AccessToken string           `json:"access_token"`
}

// Activate commits the session to the customer registry and moves
// PASSWORD_SETUP → COMPLETE. The password itself is checked against the
// minimum-length policy and then dropped; it is never stored.
//
// Errors: returns CodePrecondition when the password is shorter than 8
// characters; the session stays in PASSWORD_SETUP.
func (s *Service) Activate(ctx context.Context, password string) (*ActivationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session
	if sess.Step != StepPasswordSetup {
		return nil, dErrors.New(dErrors.CodeInvariantViolation,
			"activation is only possible from "+StepPasswordSetup.String())
	}
	if len(password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodePrecondition,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	record, err := s.customers.Commit(ctx, sess.Extraction, sess.Registry.Snapshot())
	if err != nil {
		return nil, err
	}
	accessToken, err := s.tokens.GenerateAccessToken(record.ID, record.EntityType.String(), accessTokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue access token")
	}
	if err := sess.transitionTo(StepComplete); err != nil {
		return nil, err
	}
	sess.CustomerID = record.ID

	s.metrics.IncOnboardingsCompleted()
	s.auditLog.Record(fmt.Sprintf("Account Provisioned: %s", record.ID), record.DisplayName(), audit.StatusSuccess)
	return &ActivationResult{Customer: record, AccessToken: accessToken}, nil
}

// Reset clears the session and returns to WELCOME. Only legal from COMPLETE;
// this is the single transition that discards session state.
func (s *Service) Reset(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Step != StepComplete {
		return Snapshot{}, dErrors.New(dErrors.CodeInvariantViolation,
			"reset is only possible from "+StepComplete.String())
	}
	fresh := newSession()
	fresh.Generation = s.session.Generation + 1
	s.session = fresh
	return s.session.snapshot(), nil
}

// EnterAdmin flips into the ADMIN_PANEL side path. Session state is untouched.
func (s *Service) EnterAdmin(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.transitionTo(StepAdminPanel); err != nil {
		return Snapshot{}, err
	}
	s.adminMode.Store(true)
	return s.session.snapshot(), nil
}

// ExitAdmin leaves the panel back to WELCOME. The session's registry and
// extraction survive; only an explicit reset from COMPLETE clears them.
func (s *Service) ExitAdmin(_ context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.transitionTo(StepWelcome); err != nil {
		return Snapshot{}, err
	}
	s.adminMode.Store(false)
	return s.session.snapshot(), nil
}

// InAdminMode reports whether the wizard currently shows the admin panel.
func (s *Service) InAdminMode() bool {
	return s.adminMode.Load()
}
