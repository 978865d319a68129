package extraction

import (
	"context"

	"aptic/pkg/domain"
)

// StubGateway returns canned results without touching the network. It backs
// the demo harness and tests that exercise the onboarding flow end to end.
type StubGateway struct {
	// Err, when set, is returned instead of a result.
	Err error
	// Result overrides the canned payload when set.
	Result *Result
	// Calls counts invocations.
	Calls int
}

func (s *StubGateway) Extract(_ context.Context, entityType domain.EntityType, docs []DocumentInput) (*Result, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Result != nil {
		return s.Result, nil
	}
	return CannedResult(entityType, docs), nil
}

func str(v string) *string { return &v }

// CannedResult fabricates a plausible extraction for the mock document bank.
func CannedResult(entityType domain.EntityType, docs []DocumentInput) *Result {
	processed := make([]string, 0, len(docs))
	for _, d := range docs {
		processed = append(processed, d.Type)
	}

	if entityType == domain.EntityCompany {
		return &Result{
			EntityType:         entityType,
			DocumentsProcessed: processed,
			ExtractedData: ExtractedFields{
				CompanyName:         str("SIMSTEL TECHNOLOGIES LIMITED"),
				KRAPin:              str("P051234567Q"),
				RegistrationNumber:  str("PVT-7UQ4K9"),
				DateOfIncorporation: str("2021-03-14"),
				RegisteredAddress:   str("P.O. Box 45678 – 00100, Nairobi, Kenya"),
				Directors: []Director{
					{Name: str("James Epale"), IDNumber: str("31245678"), KRAPin: str("A012345678Z")},
					{Name: str("Alice Wambui"), IDNumber: str("29876543"), KRAPin: str("A098765432Y")},
				},
			},
			Validation: ValidationSummary{
				ConflictsDetected:   []string{},
				MissingFields:       []string{"full_name"},
				LowConfidenceFields: []string{},
			},
			ConfidenceScore: map[string]float64{
				"company_name":        0.98,
				"kra_pin":             0.97,
				"registration_number": 0.96,
			},
		}
	}

	return &Result{
		EntityType:         entityType,
		DocumentsProcessed: processed,
		ExtractedData: ExtractedFields{
			FullName: str("DAVID OTIENO NYONG'O"),
			KRAPin:   str("A001928374M"),
		},
		Validation: ValidationSummary{
			ConflictsDetected:   []string{},
			MissingFields:       []string{"registered_address"},
			LowConfidenceFields: []string{},
		},
		ConfidenceScore: map[string]float64{
			"full_name": 0.99,
			"kra_pin":   0.97,
		},
	}
}
