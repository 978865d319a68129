package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"aptic/internal/admin"
	"aptic/internal/audit"
	"aptic/internal/customer"
	"aptic/internal/document"
	"aptic/internal/extraction"
	"aptic/internal/onboarding"
	"aptic/internal/token"
	httptransport "aptic/internal/transport/http"
	"aptic/pkg/domain"
)

type fixture struct {
	router    http.Handler
	customers *customer.Service
	wizard    *onboarding.Service
	auditLog  *audit.Log
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	customers := customer.NewService(customer.NewInMemoryStore(), logger, nil)
	wizard := onboarding.NewService(
		&extraction.StubGateway{},
		customers,
		token.NewJWTService("test-signing-key", "aptic", "aptic-clients"),
		logger,
		nil,
	)
	auditLog := audit.NewLog(nil)
	exporter := admin.NewExporter(customers, logger)
	router := httptransport.NewRouter(logger, New(wizard, customers, auditLog, exporter, logger))
	return &fixture{router: router, customers: customers, wizard: wizard, auditLog: auditLog}
}

func (f *fixture) commit(t *testing.T) *customer.Record {
	t.Helper()
	docs := []document.Document{
		{ID: "DOC-A", Type: "KRA PIN Certificate", Status: document.StatusValidated, Content: "pin"},
		{ID: "DOC-B", Type: "National ID (Front)", Status: document.StatusValidated, Content: "id"},
	}
	record, err := f.customers.Commit(context.Background(), extraction.CannedResult(domain.EntityIndividual, nil), docs)
	if err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}
	return record
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Aptic-Admin", "true")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func post(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(nil))
	req.Header.Set("X-Aptic-Admin", "true")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestEnterAndExitAdminPanel(t *testing.T) {
	f := newFixture(t)

	rec := post(t, f.router, "/admin/enter")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 entering panel, got %d", rec.Code)
	}
	var snap onboarding.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.Step != onboarding.StepAdminPanel {
		t.Fatalf("expected %s after enter, got %s", onboarding.StepAdminPanel, snap.Step)
	}
	if !f.wizard.InAdminMode() {
		t.Fatalf("expected wizard in admin mode after enter")
	}

	rec = post(t, f.router, "/admin/exit")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 exiting panel, got %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if snap.Step != onboarding.StepWelcome {
		t.Fatalf("expected %s after exit, got %s", onboarding.StepWelcome, snap.Step)
	}
	if f.wizard.InAdminMode() {
		t.Fatalf("expected admin mode cleared after exit")
	}
}

func TestListAndGetCustomers(t *testing.T) {
	f := newFixture(t)
	record := f.commit(t)

	rec := get(t, f.router, "/admin/customers")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing customers, got %d", rec.Code)
	}
	var records []*customer.Record
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("failed to decode customers: %v", err)
	}
	if len(records) != 1 || records[0].ID != record.ID {
		t.Fatalf("expected the committed customer in the list")
	}

	rec = get(t, f.router, "/admin/customers/"+record.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 getting customer, got %d", rec.Code)
	}

	rec = get(t, f.router, "/admin/customers/APT-NONE")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown customer, got %d", rec.Code)
	}
}

func TestApproveDocumentPromotesCustomer(t *testing.T) {
	f := newFixture(t)
	record := f.commit(t)

	rec := post(t, f.router, "/admin/customers/"+record.ID+"/documents/DOC-A/approve")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 approving, got %d", rec.Code)
	}
	var updated customer.Record
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode customer: %v", err)
	}
	if updated.Status != customer.StatusProvisional {
		t.Fatalf("expected Provisional after first approval, got %s", updated.Status)
	}

	rec = post(t, f.router, "/admin/customers/"+record.ID+"/documents/DOC-B/approve")
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode customer: %v", err)
	}
	if updated.Status != customer.StatusVerified {
		t.Fatalf("expected Verified after all approvals, got %s", updated.Status)
	}

	entries := f.auditLog.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Action != "Document Approved: DOC-B" {
		t.Fatalf("unexpected newest audit action %q", entries[0].Action)
	}
}

func TestStatsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.commit(t)

	rec := get(t, f.router, "/admin/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 getting stats, got %d", rec.Code)
	}
	var stats customer.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.Total != 1 || stats.Provisional != 1 || stats.PendingDocs != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestAuditTrailEndpoint(t *testing.T) {
	f := newFixture(t)
	f.auditLog.Record("OCR Cycle Success", "Extraction Data", audit.StatusSuccess)

	rec := get(t, f.router, "/admin/audit")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 getting audit trail, got %d", rec.Code)
	}
	var entries []audit.Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("failed to decode audit trail: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "OCR Cycle Success" {
		t.Fatalf("unexpected audit trail %+v", entries)
	}
}

func TestExportCustomersXLSX(t *testing.T) {
	f := newFixture(t)
	f.commit(t)

	rec := get(t, f.router, "/admin/customers/export")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 exporting, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("expected workbook bytes")
	}
	// XLSX is a zip container.
	if got := rec.Body.Bytes()[:2]; got[0] != 'P' || got[1] != 'K' {
		t.Fatalf("expected zip magic, got %v", got)
	}
}
