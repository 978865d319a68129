// Package review steps the user through each uploaded document, exposing the
// slice of extracted fields relevant to that document and collecting
// field-level corrections before the session can move on to account setup.
package review

import (
	"strings"

	"aptic/internal/document"
	"aptic/internal/extraction"
	dErrors "aptic/pkg/domain-errors"
	pstrings "aptic/pkg/platform/strings"
)

// FieldStatus is the three-way display classification of a field.
type FieldStatus string

const (
	FieldVerified FieldStatus = "verified"
	FieldConflict FieldStatus = "conflict"
	FieldMissing  FieldStatus = "missing"
)

// FieldView is one editable field as shown for the active document.
type FieldView struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Value  string      `json:"value"`
	Status FieldStatus `json:"status"`
}

// View is the workflow state for the document under the cursor.
type View struct {
	DocID     string                `json:"doc_id"`
	DocType   string                `json:"doc_type"`
	Position  int                   `json:"position"`
	Total     int                   `json:"total"`
	Fields    []FieldView           `json:"fields"`
	Directors []extraction.Director `json:"directors,omitempty"`
}

// CompletionFunc receives the final edited fields and the document list once
// every document has been reviewed. It is the workflow's sole exit.
type CompletionFunc func(final extraction.ExtractedFields, docs []*document.Document) error

// Workflow keeps a cursor over the session's documents. Edits overwrite the
// shared extraction fields directly, so a correction made while reviewing one
// document is immediately visible from every other document's view.
type Workflow struct {
	docs       []*document.Document
	fields     extraction.ExtractedFields
	summary    extraction.ValidationSummary
	active     int
	validated  map[int]bool
	onComplete CompletionFunc
}

// New builds a workflow over the session documents, starting at index 0. The
// validation lists are folded to lower case here so field classification can
// match without re-normalizing on every lookup.
func New(result *extraction.Result, docs []*document.Document, onComplete CompletionFunc) *Workflow {
	return &Workflow{
		docs:   docs,
		fields: result.ExtractedData,
		summary: extraction.ValidationSummary{
			ConflictsDetected:   pstrings.DedupeAndTrimLower(result.Validation.ConflictsDetected),
			MissingFields:       pstrings.DedupeAndTrimLower(result.Validation.MissingFields),
			LowConfidenceFields: pstrings.DedupeAndTrimLower(result.Validation.LowConfidenceFields),
		},
		validated:  make(map[int]bool, len(docs)),
		onComplete: onComplete,
	}
}

// ActiveIndex returns the cursor position.
func (w *Workflow) ActiveIndex() int {
	return w.active
}

// Fields returns the current (possibly edited) extraction fields.
func (w *Workflow) Fields() extraction.ExtractedFields {
	return w.fields
}

// View renders the document under the cursor with its relevant field subset.
func (w *Workflow) View() View {
	doc := w.docs[w.active]
	v := View{
		DocID:    doc.ID,
		DocType:  doc.Type,
		Position: w.active + 1,
		Total:    len(w.docs),
	}

	switch {
	case strings.Contains(doc.Type, "PIN"):
		v.Fields = []FieldView{w.fieldView("kra_pin", "KRA PIN")}
	case strings.Contains(doc.Type, "Incorporation"):
		v.Fields = []FieldView{
			w.fieldView("company_name", "Entity Name"),
			w.fieldView("registration_number", "Reg No"),
			w.fieldView("date_of_incorporation", "Date of Inc"),
		}
	default:
		v.Fields = []FieldView{
			w.fieldView("full_name", "Legal Name"),
			w.fieldView("registered_address", "Registered Address"),
		}
	}

	if strings.Contains(doc.Type, "CR12") && len(w.fields.Directors) > 0 {
		v.Directors = w.fields.Directors
	}
	return v
}

// SetField overwrites one extraction field. Fields are global to the
// extraction, not per-document; structural changes to the directors list are
// not part of the base flow.
func (w *Workflow) SetField(key, value string) error {
	target := w.fieldRef(key)
	if target == nil {
		return dErrors.New(dErrors.CodeBadRequest, "unknown review field: "+key)
	}
	*target = &value
	return nil
}

// SetDirectorField overwrites one field of the directors list. The list's
// shape is fixed by the extraction; only values can change.
func (w *Workflow) SetDirectorField(index int, key, value string) error {
	if index < 0 || index >= len(w.fields.Directors) {
		return dErrors.New(dErrors.CodeBadRequest, "director index out of range")
	}
	d := &w.fields.Directors[index]
	switch key {
	case "name":
		d.Name = &value
	case "id_number":
		d.IDNumber = &value
	case "kra_pin":
		d.KRAPin = &value
	default:
		return dErrors.New(dErrors.CodeBadRequest, "unknown director field: "+key)
	}
	return nil
}

// Advance marks the active document as reviewed. For every document but the
// last it moves the cursor forward; on the last it marks all documents
// VALIDATED and fires the completion callback. Returns true once complete.
func (w *Workflow) Advance() (bool, error) {
	w.validated[w.active] = true
	if w.active < len(w.docs)-1 {
		w.active++
		return false, nil
	}
	for _, d := range w.docs {
		if err := d.Advance(document.StatusValidated); err != nil {
			return false, err
		}
	}
	if err := w.onComplete(w.fields, w.docs); err != nil {
		return false, err
	}
	return true, nil
}

// ValidatedCount reports how many documents have been reviewed this session.
func (w *Workflow) ValidatedCount() int {
	return len(w.validated)
}

// FieldStatusOf classifies a field by case-insensitive substring match of its
// key against the validation summary lists, which are lowercased at
// construction. The match is approximate: it is a display aid only and never
// affects workflow progression. Conflicts win over missing entries.
func (w *Workflow) FieldStatusOf(key string) FieldStatus {
	needle := strings.ToLower(key)
	for _, c := range w.summary.ConflictsDetected {
		if strings.Contains(c, needle) {
			return FieldConflict
		}
	}
	for _, m := range w.summary.MissingFields {
		if strings.Contains(m, needle) {
			return FieldMissing
		}
	}
	return FieldVerified
}

func (w *Workflow) fieldView(key, label string) FieldView {
	value := ""
	if ref := w.fieldRef(key); ref != nil && *ref != nil {
		value = **ref
	}
	return FieldView{Key: key, Label: label, Value: value, Status: w.FieldStatusOf(key)}
}

func (w *Workflow) fieldRef(key string) **string {
	switch key {
	case "full_name":
		return &w.fields.FullName
	case "company_name":
		return &w.fields.CompanyName
	case "kra_pin":
		return &w.fields.KRAPin
	case "registration_number":
		return &w.fields.RegistrationNumber
	case "date_of_incorporation":
		return &w.fields.DateOfIncorporation
	case "registered_address":
		return &w.fields.RegisteredAddress
	default:
		return nil
	}
}
