package onboarding

// Step is the wizard's position. The main path is strictly linear; ADMIN_PANEL
// is a side path reachable from anywhere that exits to WELCOME.
//
// Transitions:
//   - WELCOME → ENTITY_SELECT on start
//   - ENTITY_SELECT → DOC_UPLOAD on entity choice
//   - DOC_UPLOAD → AI_PROCESSING when every artifact is uploaded
//   - AI_PROCESSING → REVIEW_VALIDATION on extraction success
//   - AI_PROCESSING → DOC_UPLOAD on extraction failure
//   - REVIEW_VALIDATION → PASSWORD_SETUP when every document is reviewed
//   - PASSWORD_SETUP → COMPLETE on activation
//   - COMPLETE → WELCOME on reset, the only transition that clears the session
type Step string

const (
	StepWelcome          Step = "WELCOME"
	StepEntitySelect     Step = "ENTITY_SELECT"
	StepDocUpload        Step = "DOC_UPLOAD"
	StepAIProcessing     Step = "AI_PROCESSING"
	StepReviewValidation Step = "REVIEW_VALIDATION"
	StepPasswordSetup    Step = "PASSWORD_SETUP"
	StepComplete         Step = "COMPLETE"
	StepAdminPanel       Step = "ADMIN_PANEL"
)

// CanTransitionTo reports whether moving from s to next is legal.
func (s Step) CanTransitionTo(next Step) bool {
	if next == StepAdminPanel {
		return s != StepAdminPanel
	}
	switch s {
	case StepWelcome:
		return next == StepEntitySelect
	case StepEntitySelect:
		return next == StepDocUpload
	case StepDocUpload:
		return next == StepAIProcessing
	case StepAIProcessing:
		return next == StepReviewValidation || next == StepDocUpload
	case StepReviewValidation:
		return next == StepPasswordSetup
	case StepPasswordSetup:
		return next == StepComplete
	case StepComplete:
		return next == StepWelcome
	case StepAdminPanel:
		return next == StepWelcome
	default:
		return false
	}
}

func (s Step) String() string {
	return string(s)
}
