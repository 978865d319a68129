package document

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"aptic/pkg/domain"
)

// Registry holds the required artifact slots for one onboarding session. It is
// owned by the session controller and never accessed concurrently, matching
// the single-live-session model.
type Registry struct {
	entityType domain.EntityType
	docs       []*Document
	logger     *slog.Logger
}

// NewRegistry creates a registry with one PENDING slot per required artifact
// for the entity type. IDs are freshly generated and unique within the session.
func NewRegistry(entityType domain.EntityType, logger *slog.Logger) *Registry {
	types := RequiredTypes(entityType)
	docs := make([]*Document, 0, len(types))
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		id := newDocumentID()
		for seen[id] {
			id = newDocumentID()
		}
		seen[id] = true
		docs = append(docs, &Document{
			ID:     id,
			Type:   t,
			Status: StatusPending,
		})
	}
	return &Registry{entityType: entityType, docs: docs, logger: logger}
}

// Upload stores content for the named slot and moves it to UPLOADED. An
// unknown document ID is a no-op: the condition is unreachable with correct
// wiring, so it is logged rather than surfaced.
func (r *Registry) Upload(docID string) (*Document, bool) {
	doc := r.find(docID)
	if doc == nil {
		r.logger.Warn("upload for unknown document id ignored", "doc_id", docID)
		return nil, false
	}
	entry := Match(Bank(r.entityType), doc.Type)
	if err := doc.Advance(StatusUploaded); err != nil {
		// Re-uploading an already uploaded document keeps its content.
		r.logger.Warn("upload ignored", "doc_id", docID, "status", doc.Status)
		return doc, false
	}
	doc.Content = entry.Content
	return doc, true
}

// AllUploaded is the gate for leaving DOC_UPLOAD: true iff no slot is PENDING.
func (r *Registry) AllUploaded() bool {
	for _, d := range r.docs {
		if d.Status == StatusPending {
			return false
		}
	}
	return true
}

// MarkAllValidated advances every document to VALIDATED. Called once, when the
// review workflow completes.
func (r *Registry) MarkAllValidated() error {
	for _, d := range r.docs {
		if err := d.Advance(StatusValidated); err != nil {
			return err
		}
	}
	return nil
}

// Documents returns the registry's slots in their fixed order.
func (r *Registry) Documents() []*Document {
	return r.docs
}

// Snapshot copies the current document states, detaching them from the
// session so later registry mutations cannot leak into committed records.
func (r *Registry) Snapshot() []Document {
	out := make([]Document, 0, len(r.docs))
	for _, d := range r.docs {
		out = append(out, *d)
	}
	return out
}

func (r *Registry) find(docID string) *Document {
	for _, d := range r.docs {
		if d.ID == docID {
			return d
		}
	}
	return nil
}

// newDocumentID returns a short opaque token. Collision resistance against
// adversarial input is not a requirement here; uniqueness within a session is.
func newDocumentID() string {
	return strings.ToUpper(uuid.NewString()[:6])
}
