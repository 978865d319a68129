package extraction

import (
	"context"

	"aptic/pkg/domain"
)

// DocumentInput is one document handed to the gateway: a type label and the
// raw text content.
type DocumentInput struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Director is one entry of a company's governance list. Fields absent from the
// source documents stay nil; the gateway never fabricates values.
type Director struct {
	Name     *string `json:"name"`
	IDNumber *string `json:"id_number"`
	KRAPin   *string `json:"kra_pin"`
}

// ExtractedFields is the structured payload derived from document content.
// All scalars are nullable on the wire.
type ExtractedFields struct {
	FullName            *string    `json:"full_name"`
	CompanyName         *string    `json:"company_name"`
	KRAPin              *string    `json:"kra_pin"`
	RegistrationNumber  *string    `json:"registration_number"`
	DateOfIncorporation *string    `json:"date_of_incorporation"`
	RegisteredAddress   *string    `json:"registered_address"`
	Directors           []Director `json:"directors"`
}

// DisplayName picks the best available label for the onboarding subject.
func (f ExtractedFields) DisplayName() string {
	if f.CompanyName != nil && *f.CompanyName != "" {
		return *f.CompanyName
	}
	if f.FullName != nil && *f.FullName != "" {
		return *f.FullName
	}
	return "Anonymous"
}

// ValidationSummary annotates the extraction with free-text field references.
// Entries are matched by substring against field names, so the classification
// derived from them is approximate.
type ValidationSummary struct {
	ConflictsDetected   []string `json:"conflicts_detected"`
	MissingFields       []string `json:"missing_fields"`
	LowConfidenceFields []string `json:"low_confidence_fields"`
}

// Result is the gateway's full response.
type Result struct {
	EntityType         domain.EntityType  `json:"entity_type"`
	DocumentsProcessed []string           `json:"documents_processed"`
	ExtractedData      ExtractedFields    `json:"extracted_data"`
	Validation         ValidationSummary  `json:"validation"`
	ConfidenceScore    map[string]float64 `json:"confidence_score"`
}

//go:generate mockgen -source=models.go -destination=mocks/gateway_mock.go -package=mocks

// Gateway is the single external boundary of the system. Implementations make
// one call per invocation; failure is all-or-nothing with no partial results.
type Gateway interface {
	Extract(ctx context.Context, entityType domain.EntityType, docs []DocumentInput) (*Result, error)
}
