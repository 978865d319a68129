package customer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"aptic/internal/document"
	"aptic/internal/extraction"
	"aptic/internal/platform/metrics"
	"aptic/pkg/domain"
	"aptic/pkg/platform/sentinel"

	dErrors "aptic/pkg/domain-errors"
)

// Service owns the registry of completed onboardings and the admin actions
// over it.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(store Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m, now: time.Now}
}

// Commit creates a customer record from a finished onboarding session: the
// final (user-edited) extraction plus a snapshot of the documents at commit
// time. Called exactly once per session, from the password setup step.
func (s *Service) Commit(ctx context.Context, result *extraction.Result, docs []document.Document) (*Record, error) {
	if result == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "cannot commit a session without extraction data")
	}
	record := &Record{
		ID:              NewRecordID(),
		EntityType:      result.EntityType,
		ExtractedData:   result.ExtractedData,
		Validation:      result.Validation,
		ConfidenceScore: result.ConfidenceScore,
		JoinedAt:        s.now(),
		Status:          StatusProvisional,
		OriginalDocs:    docs,
	}
	if err := s.store.Save(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save customer record")
	}
	return record, nil
}

// ApproveDocument marks one snapshot document APPROVED and, when that was the
// last outstanding document, promotes the customer to Verified. An unknown
// document ID is a no-op: unreachable with correct wiring, logged only.
func (s *Service) ApproveDocument(ctx context.Context, customerID, docID string) (*Record, error) {
	record, err := s.store.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found: "+customerID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
	}

	found := false
	for i := range record.OriginalDocs {
		if record.OriginalDocs[i].ID != docID {
			continue
		}
		found = true
		if record.OriginalDocs[i].Status == document.StatusApproved {
			break
		}
		if err := record.OriginalDocs[i].Advance(document.StatusApproved); err != nil {
			return nil, err
		}
	}
	if !found {
		s.logger.Warn("approve for unknown document id ignored",
			"customer_id", customerID,
			"doc_id", docID,
		)
		return record, nil
	}

	if record.Status == StatusProvisional && record.AllDocsApproved() {
		record.Status = StatusVerified
		s.metrics.IncCustomersVerified()
	}

	if err := s.store.Save(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save customer record")
	}
	return record, nil
}

// Get loads one record.
func (s *Service) Get(ctx context.Context, customerID string) (*Record, error) {
	record, err := s.store.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "customer not found: "+customerID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load customer")
	}
	return record, nil
}

// List returns all records in registry order.
func (s *Service) List(ctx context.Context) ([]*Record, error) {
	return s.store.List(ctx)
}

// Stats is the admin dashboard aggregate. PendingDocs counts every snapshot
// document not yet APPROVED, across all customers.
type Stats struct {
	Total           int     `json:"total"`
	Verified        int     `json:"verified"`
	Provisional     int     `json:"provisional"`
	PendingDocs     int     `json:"pending_docs"`
	IndividualCount int     `json:"individual_count"`
	CompanyCount    int     `json:"company_count"`
	ApprovalRate    float64 `json:"approval_rate"`
}

// ComputeStats aggregates the given records. It is a pure function, recomputed
// on demand, and well defined for an empty registry.
func ComputeStats(records []*Record) Stats {
	var stats Stats
	stats.Total = len(records)
	for _, r := range records {
		switch r.Status {
		case StatusVerified:
			stats.Verified++
		case StatusProvisional:
			stats.Provisional++
		}
		switch r.EntityType {
		case domain.EntityIndividual:
			stats.IndividualCount++
		case domain.EntityCompany:
			stats.CompanyCount++
		}
		for _, d := range r.OriginalDocs {
			if d.Status != document.StatusApproved {
				stats.PendingDocs++
			}
		}
	}
	if stats.Total > 0 {
		stats.ApprovalRate = float64(stats.Verified) / float64(stats.Total)
	}
	return stats
}

// Stats aggregates the current registry contents.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(records), nil
}

// Navigate returns the next or previous customer ID relative to currentID,
// wrapping around the registry order. It is a no-op (returns currentID) when
// fewer than two customers exist, when there is no current selection, or when
// the selection is stale.
func Navigate(direction string, currentID string, records []*Record) string {
	if currentID == "" || len(records) < 2 {
		return currentID
	}
	current := -1
	for i, r := range records {
		if r.ID == currentID {
			current = i
			break
		}
	}
	if current == -1 {
		return currentID
	}
	if direction == "prev" {
		return records[(current-1+len(records))%len(records)].ID
	}
	return records[(current+1)%len(records)].ID
}
