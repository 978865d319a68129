package onboarding

import (
	"github.com/google/uuid"

	"aptic/internal/document"
	"aptic/internal/extraction"
	"aptic/internal/review"
	"aptic/pkg/domain"
	dErrors "aptic/pkg/domain-errors"
)

// Session is the single live onboarding. It is owned by the Service and only
// ever mutated under its lock.
type Session struct {
	ID         string
	Step       Step
	EntityType domain.EntityType
	Registry   *document.Registry
	Extraction *extraction.Result
	Review     *review.Workflow
	CustomerID string

	// Generation tags extraction requests so a response arriving after a
	// reset cannot corrupt the session that replaced it.
	Generation uint64
}

func newSession() *Session {
	return &Session{
		ID:   uuid.NewString(),
		Step: StepWelcome,
	}
}

// transitionTo moves the session to next, rejecting illegal transitions.
//
// Errors: returns CodeInvariantViolation when the transition is not in the
// step graph.
func (s *Session) transitionTo(next Step) error {
	if !s.Step.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"illegal step transition from "+s.Step.String()+" to "+next.String())
	}
	s.Step = next
	return nil
}

// Snapshot is the wire view of a session.
type Snapshot struct {
	SessionID  string              `json:"session_id"`
	Step       Step                `json:"step"`
	EntityType domain.EntityType   `json:"entity_type,omitempty"`
	Documents  []document.Document `json:"documents,omitempty"`
	Extraction *extraction.Result  `json:"extraction,omitempty"`
	CustomerID string              `json:"customer_id,omitempty"`
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		SessionID:  s.ID,
		Step:       s.Step,
		EntityType: s.EntityType,
		CustomerID: s.CustomerID,
	}
	if s.Registry != nil {
		snap.Documents = s.Registry.Snapshot()
	}
	if s.Review != nil {
		// Reviewed edits win over the raw gateway output.
		edited := *s.Extraction
		edited.ExtractedData = s.Review.Fields()
		snap.Extraction = &edited
	} else if s.Extraction != nil {
		snap.Extraction = s.Extraction
	}
	return snap
}
