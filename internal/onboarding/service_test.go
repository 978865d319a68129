package onboarding

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"aptic/internal/audit"
	"aptic/internal/customer"
	"aptic/internal/extraction"
	"aptic/internal/extraction/mocks"
	"aptic/internal/token"
	"aptic/pkg/domain"
	dErrors "aptic/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	gateway   *extraction.StubGateway
	customers *customer.Service
	svc       *Service
	ctx       context.Context
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.gateway = &extraction.StubGateway{}
	s.customers = customer.NewService(customer.NewInMemoryStore(), logger, nil)
	s.svc = NewService(
		s.gateway,
		s.customers,
		token.NewJWTService("test-signing-key", "aptic", "aptic-clients"),
		logger,
		nil,
	)
	s.ctx = context.Background()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// uploadAll walks the registry and uploads every pending slot.
func (s *ServiceSuite) uploadAll() Snapshot {
	snap := s.svc.Snapshot(s.ctx)
	for _, doc := range snap.Documents {
		var err error
		snap, err = s.svc.UploadDocument(s.ctx, doc.ID)
		s.Require().NoError(err)
	}
	return snap
}

func (s *ServiceSuite) startCompanyUpload() Snapshot {
	_, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	snap, err := s.svc.SelectEntity(s.ctx, "company")
	s.Require().NoError(err)
	return snap
}

func (s *ServiceSuite) TestInitialStepIsWelcome() {
	s.Equal(StepWelcome, s.svc.Snapshot(s.ctx).Step)
}

func (s *ServiceSuite) TestStartThenSelectEntity() {
	snap, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(StepEntitySelect, snap.Step)

	snap, err = s.svc.SelectEntity(s.ctx, "individual")
	s.Require().NoError(err)
	s.Equal(StepDocUpload, snap.Step)
	s.Equal(domain.EntityIndividual, snap.EntityType)
	s.Len(snap.Documents, 2)
}

func (s *ServiceSuite) TestSelectEntityRejectsUnknownType() {
	_, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	_, err = s.svc.SelectEntity(s.ctx, "partnership")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestStartTwiceRejected() {
	_, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	_, err = s.svc.Start(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *ServiceSuite) TestExtractionGatedOnAllUploads() {
	snap := s.startCompanyUpload()

	_, err := s.svc.UploadDocument(s.ctx, snap.Documents[0].ID)
	s.Require().NoError(err)

	_, err = s.svc.RunExtraction(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
	s.Equal(StepDocUpload, s.svc.Snapshot(s.ctx).Step)
	s.Zero(s.gateway.Calls)
}

func (s *ServiceSuite) TestExtractionFailureRevertsToDocUpload() {
	s.startCompanyUpload()
	s.uploadAll()

	s.gateway.Err = errors.New("gateway unreachable")
	_, err := s.svc.RunExtraction(s.ctx)
	s.Require().Error(err)
	s.Equal(StepDocUpload, s.svc.Snapshot(s.ctx).Step)

	entries := s.svc.AuditLog().Entries()
	s.Require().NotEmpty(entries)
	s.Equal("Extraction Layer Failed", entries[0].Action)
	s.Equal(audit.StatusError, entries[0].Status)

	// Recoverable: retry with a healthy gateway succeeds.
	s.gateway.Err = nil
	snap, err := s.svc.RunExtraction(s.ctx)
	s.Require().NoError(err)
	s.Equal(StepReviewValidation, snap.Step)
}

func (s *ServiceSuite) TestCompanyEndToEnd() {
	s.startCompanyUpload()
	snap := s.uploadAll()
	s.Len(snap.Documents, 3)

	snap, err := s.svc.RunExtraction(s.ctx)
	s.Require().NoError(err)
	s.Equal(StepReviewValidation, snap.Step)

	for i := 0; i < 3; i++ {
		snap, err = s.svc.AdvanceReview(s.ctx)
		s.Require().NoError(err)
	}
	s.Equal(StepPasswordSetup, snap.Step)

	result, err := s.svc.Activate(s.ctx, "longenough1")
	s.Require().NoError(err)
	s.Equal(customer.StatusProvisional, result.Customer.Status)
	s.Equal("SIMSTEL TECHNOLOGIES LIMITED", *result.Customer.ExtractedData.CompanyName)
	s.Len(result.Customer.OriginalDocs, 3)
	s.NotEmpty(result.AccessToken)
	s.Equal(StepComplete, s.svc.Snapshot(s.ctx).Step)
}

func (s *ServiceSuite) TestShortPasswordRejectedWithoutCommit() {
	s.startCompanyUpload()
	s.uploadAll()
	_, err := s.svc.RunExtraction(s.ctx)
	s.Require().NoError(err)
	for i := 0; i < 3; i++ {
		_, err = s.svc.AdvanceReview(s.ctx)
		s.Require().NoError(err)
	}

	_, err = s.svc.Activate(s.ctx, "short")
	s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
	s.Equal(StepPasswordSetup, s.svc.Snapshot(s.ctx).Step)

	records, err := s.customers.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *ServiceSuite) TestReviewEditsReachCommittedRecord() {
	s.startCompanyUpload()
	s.uploadAll()
	_, err := s.svc.RunExtraction(s.ctx)
	s.Require().NoError(err)

	_, err = s.svc.SetReviewField(s.ctx, "company_name", "SIMSTEL TECHNOLOGIES (K) LIMITED")
	s.Require().NoError(err)
	for i := 0; i < 3; i++ {
		_, err = s.svc.AdvanceReview(s.ctx)
		s.Require().NoError(err)
	}

	result, err := s.svc.Activate(s.ctx, "longenough1")
	s.Require().NoError(err)
	s.Equal("SIMSTEL TECHNOLOGIES (K) LIMITED", *result.Customer.ExtractedData.CompanyName)
}

func (s *ServiceSuite) TestResetOnlyFromComplete() {
	_, err := s.svc.Reset(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	s.startCompanyUpload()
	_, err = s.svc.Reset(s.ctx)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *ServiceSuite) TestResetClearsSession() {
	s.startCompanyUpload()
	s.uploadAll()
	_, err := s.svc.RunExtraction(s.ctx)
	s.Require().NoError(err)
	for i := 0; i < 3; i++ {
		_, err = s.svc.AdvanceReview(s.ctx)
		s.Require().NoError(err)
	}
	_, err = s.svc.Activate(s.ctx, "longenough1")
	s.Require().NoError(err)

	before := s.svc.Snapshot(s.ctx)
	snap, err := s.svc.Reset(s.ctx)
	s.Require().NoError(err)
	s.Equal(StepWelcome, snap.Step)
	s.NotEqual(before.SessionID, snap.SessionID)
	s.Empty(snap.Documents)
	s.Nil(snap.Extraction)
}

func (s *ServiceSuite) TestAdminToggleKeepsSession() {
	s.startCompanyUpload()
	s.uploadAll()

	snap, err := s.svc.EnterAdmin(s.ctx)
	s.Require().NoError(err)
	s.Equal(StepAdminPanel, snap.Step)
	s.True(s.svc.InAdminMode())

	snap, err = s.svc.ExitAdmin(s.ctx)
	s.Require().NoError(err)
	s.Equal(StepWelcome, snap.Step)
	s.False(s.svc.InAdminMode())
	s.Len(snap.Documents, 3)
}

func (s *ServiceSuite) TestAuditActorFollowsAdminMode() {
	_, err := s.svc.Start(s.ctx)
	s.Require().NoError(err)
	entries := s.svc.AuditLog().Entries()
	s.Require().NotEmpty(entries)
	s.Equal(audit.ActorAgent, entries[0].Actor)

	_, err = s.svc.EnterAdmin(s.ctx)
	s.Require().NoError(err)
	s.svc.AuditLog().Record("Document Approved: DOC-A", "Customer APT-0001", audit.StatusSuccess)
	entries = s.svc.AuditLog().Entries()
	s.Equal(audit.ActorAdmin, entries[0].Actor)
}

func (s *ServiceSuite) TestExtractionReceivesUploadedContents() {
	ctrl := gomock.NewController(s.T())
	gateway := mocks.NewMockGateway(ctrl)
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(
		gateway,
		customer.NewService(customer.NewInMemoryStore(), logger, nil),
		token.NewJWTService("test-signing-key", "aptic", "aptic-clients"),
		logger,
		nil,
	)

	_, err := svc.Start(s.ctx)
	s.Require().NoError(err)
	_, err = svc.SelectEntity(s.ctx, "individual")
	s.Require().NoError(err)
	for _, doc := range svc.Snapshot(s.ctx).Documents {
		_, err = svc.UploadDocument(s.ctx, doc.ID)
		s.Require().NoError(err)
	}

	gateway.EXPECT().
		Extract(gomock.Any(), domain.EntityIndividual, gomock.Any()).
		DoAndReturn(func(_ context.Context, et domain.EntityType, docs []extraction.DocumentInput) (*extraction.Result, error) {
			s.Len(docs, 2)
			for _, d := range docs {
				s.NotEmpty(d.Type)
				s.NotEmpty(d.Content)
			}
			return extraction.CannedResult(et, docs), nil
		})

	snap, err := svc.RunExtraction(s.ctx)
	s.Require().NoError(err)
	s.Equal(StepReviewValidation, snap.Step)
	s.Equal("DAVID OTIENO NYONG'O", *snap.Extraction.ExtractedData.FullName)
}

// blockingGateway parks every Extract call until released.
type blockingGateway struct {
	enter   chan struct{}
	release chan struct{}
	mu      sync.Mutex
	inner   extraction.StubGateway
}

func (g *blockingGateway) Extract(ctx context.Context, entityType domain.EntityType, docs []extraction.DocumentInput) (*extraction.Result, error) {
	g.enter <- struct{}{}
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Extract(ctx, entityType, docs)
}

func (s *ServiceSuite) TestDuplicateExtractionTriggersShareOneCall() {
	gateway := &blockingGateway{
		enter:   make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(
		gateway,
		customer.NewService(customer.NewInMemoryStore(), logger, nil),
		token.NewJWTService("test-signing-key", "aptic", "aptic-clients"),
		logger,
		nil,
	)

	_, err := svc.Start(s.ctx)
	s.Require().NoError(err)
	_, err = svc.SelectEntity(s.ctx, "individual")
	s.Require().NoError(err)
	for _, doc := range svc.Snapshot(s.ctx).Documents {
		_, err = svc.UploadDocument(s.ctx, doc.ID)
		s.Require().NoError(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.RunExtraction(s.ctx)
	}()
	<-gateway.enter

	// Second trigger while the first call is parked joins the same flight.
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.RunExtraction(s.ctx)
	}()
	time.Sleep(100 * time.Millisecond)
	close(gateway.release)
	wg.Wait()

	s.Equal(1, gateway.inner.Calls)
	s.Equal(StepReviewValidation, svc.Snapshot(s.ctx).Step)
}

func (s *ServiceSuite) TestRestartThroughAdminPanelDiscardsParkedExtraction() {
	gateway := &blockingGateway{
		enter:   make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(
		gateway,
		customer.NewService(customer.NewInMemoryStore(), logger, nil),
		token.NewJWTService("test-signing-key", "aptic", "aptic-clients"),
		logger,
		nil,
	)

	_, err := svc.Start(s.ctx)
	s.Require().NoError(err)
	_, err = svc.SelectEntity(s.ctx, "company")
	s.Require().NoError(err)
	for _, doc := range svc.Snapshot(s.ctx).Documents {
		_, err = svc.UploadDocument(s.ctx, doc.ID)
		s.Require().NoError(err)
	}

	staleErr := make(chan error, 1)
	go func() {
		_, err := svc.RunExtraction(s.ctx)
		staleErr <- err
	}()
	<-gateway.enter

	// Restart the wizard through the admin side path while the first call
	// is still parked; the restarted flow must get its own gateway call.
	_, err = svc.EnterAdmin(s.ctx)
	s.Require().NoError(err)
	_, err = svc.ExitAdmin(s.ctx)
	s.Require().NoError(err)
	_, err = svc.Start(s.ctx)
	s.Require().NoError(err)
	_, err = svc.SelectEntity(s.ctx, "individual")
	s.Require().NoError(err)
	for _, doc := range svc.Snapshot(s.ctx).Documents {
		_, err = svc.UploadDocument(s.ctx, doc.ID)
		s.Require().NoError(err)
	}

	freshErr := make(chan error, 1)
	go func() {
		_, err := svc.RunExtraction(s.ctx)
		freshErr <- err
	}()
	<-gateway.enter
	close(gateway.release)

	s.Require().NoError(<-freshErr)
	s.True(dErrors.HasCode(<-staleErr, dErrors.CodeConflict))
	s.Equal(2, gateway.inner.Calls)

	snap := svc.Snapshot(s.ctx)
	s.Equal(StepReviewValidation, snap.Step)
	s.Require().NotNil(snap.Extraction)
	s.Equal(domain.EntityIndividual, snap.Extraction.EntityType)
	s.NotNil(snap.Extraction.ExtractedData.FullName)
}
