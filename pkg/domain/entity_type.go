// Package domain holds small value types shared across service boundaries.
package domain

import (
	dErrors "aptic/pkg/domain-errors"
)

// EntityType identifies whether the onboarding subject is a natural person or a
// registered company. It determines the required artifact list and which
// extraction fields matter.
type EntityType string

const (
	EntityIndividual EntityType = "individual"
	EntityCompany    EntityType = "company"
)

// ParseEntityType validates a wire-level entity type value.
//
// Errors: returns CodeBadRequest when the value is empty or unsupported.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityIndividual, EntityCompany:
		return EntityType(s), nil
	case "":
		return "", dErrors.New(dErrors.CodeBadRequest, "entity type cannot be empty")
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid entity type: "+s)
	}
}

func (e EntityType) IsValid() bool {
	return e == EntityIndividual || e == EntityCompany
}

func (e EntityType) String() string {
	return string(e)
}
