package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"aptic/internal/document"
	"aptic/internal/extraction"
	"aptic/pkg/domain"
)

// Status is the registry-level standing of an onboarded customer.
//
// Invariants:
//   - Records are created Provisional
//   - Provisional → Verified happens exactly when every original document is
//     APPROVED (computed, never stored separately)
//   - No path demotes Verified back to Provisional
type Status string

const (
	StatusProvisional Status = "Provisional"
	StatusVerified    Status = "Verified"
	StatusFlagged     Status = "Flagged"
)

// Record is one completed onboarding. OriginalDocs is the snapshot taken at
// commit time; admin approval mutates only that snapshot.
type Record struct {
	ID              string                       `json:"id"`
	EntityType      domain.EntityType            `json:"entity_type"`
	ExtractedData   extraction.ExtractedFields   `json:"extracted_data"`
	Validation      extraction.ValidationSummary `json:"validation"`
	ConfidenceScore map[string]float64           `json:"confidence_score"`
	JoinedAt        time.Time                    `json:"joined_at"`
	Status          Status                       `json:"status"`
	OriginalDocs    []document.Document          `json:"original_docs"`
}

// DisplayName returns the customer's best available label.
func (r *Record) DisplayName() string {
	return r.ExtractedData.DisplayName()
}

// AllDocsApproved reports whether every snapshot document reached APPROVED.
func (r *Record) AllDocsApproved() bool {
	for _, d := range r.OriginalDocs {
		if d.Status != document.StatusApproved {
			return false
		}
	}
	return len(r.OriginalDocs) > 0
}

// NewRecordID returns a short customer identifier in the registry's
// APT- prefix convention.
func NewRecordID() string {
	return "APT-" + strings.ToUpper(uuid.NewString()[:4])
}
