package document

import (
	dErrors "aptic/pkg/domain-errors"
)

// Status tracks an artifact through the compliance pipeline.
//
// Invariants:
//   - Status only advances forward: PENDING → UPLOADED → VALIDATED → APPROVED
//   - A document cannot be approved before being validated, nor validated
//     before being uploaded
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusUploaded  Status = "UPLOADED"
	StatusValidated Status = "VALIDATED"
	StatusApproved  Status = "APPROVED"
)

var statusRank = map[Status]int{
	StatusPending:   0,
	StatusUploaded:  1,
	StatusValidated: 2,
	StatusApproved:  3,
}

// CanTransitionTo reports whether moving to next preserves the forward-only
// ordering. Skipping states is not allowed.
func (s Status) CanTransitionTo(next Status) bool {
	cur, ok := statusRank[s]
	if !ok {
		return false
	}
	nxt, ok := statusRank[next]
	if !ok {
		return false
	}
	return nxt == cur+1
}

// Document is a single required piece of evidence tracked through
// upload, validation and approval. Content is absent until uploaded.
type Document struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Status  Status `json:"status"`
	Content string `json:"content,omitempty"`
}

// Advance transitions the document to next, enforcing the forward-only order.
func (d *Document) Advance(next Status) error {
	if !d.Status.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"illegal document status transition "+string(d.Status)+" -> "+string(next))
	}
	d.Status = next
	return nil
}
