package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/option"

	"aptic/pkg/domain"
	dErrors "aptic/pkg/domain-errors"
)

const geminiModel = "gemini-2.5-flash-preview-09-2025"

const systemPrompt = `Role: Enterprise-grade document extraction AI for Kenyan compliance.
Objective: Extract structured data from the provided Kenyan legal documents.

Rules:
1. Extract data ONLY if explicitly present.
2. Do not infer or hallucinate.
3. Return null for missing values.
4. Detect conflicts (e.g., if Name on PIN doc differs from Name on ID or CR12).
5. Evaluate confidence for each field (0 to 1).
6. Respond ONLY with a single JSON object matching the provided schema. No markdown ticks, no conversational text.`

// GeminiGateway implements Gateway against the Gemini API. One instance is
// shared by all sessions; each Extract call is independent.
type GeminiGateway struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	logger  *slog.Logger
}

// NewGeminiGateway initializes the Gemini client. The API key is required;
// missing configuration is a startup failure, not a per-call condition.
func NewGeminiGateway(ctx context.Context, apiKey string, timeout time.Duration, logger *slog.Logger) (*GeminiGateway, error) {
	if apiKey == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "extraction gateway requires an API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := client.GenerativeModel(geminiModel)
	model.GenerationConfig.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	return &GeminiGateway{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Close releases underlying resources.
func (g *GeminiGateway) Close() {
	if g == nil || g.client == nil {
		return
	}
	if err := g.client.Close(); err != nil {
		g.logger.Warn("failed to close genai client", "error", err)
	}
}

// Extract performs the single external call of the system. Every failure mode
// (network, unexpected part type, schema violation) surfaces as a
// CodeExtractionFailed error; the caller's recovery is to return the user to
// the upload step.
func (g *GeminiGateway) Extract(ctx context.Context, entityType domain.EntityType, docs []DocumentInput) (*Result, error) {
	tracer := otel.Tracer("aptic/extraction")
	ctx, span := tracer.Start(ctx, "extraction.gemini")
	defer span.End()
	span.SetAttributes(
		attribute.String("entity_type", entityType.String()),
		attribute.Int("documents", len(docs)),
	)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, genai.Text(buildUserPrompt(entityType, docs)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		if ctx.Err() != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "extraction call exceeded deadline")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeExtractionFailed, "extraction call failed")
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		span.SetStatus(codes.Error, "empty response")
		return nil, dErrors.New(dErrors.CodeExtractionFailed, "empty response from extraction model")
	}

	part := resp.Candidates[0].Content.Parts[0]
	textPart, ok := part.(genai.Text)
	if !ok {
		span.SetStatus(codes.Error, "unexpected part type")
		return nil, dErrors.New(dErrors.CodeExtractionFailed, fmt.Sprintf("unexpected response part type %T", part))
	}

	result, err := ParseResult([]byte(strings.TrimSpace(string(textPart))))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema violation")
		return nil, dErrors.Wrap(err, dErrors.CodeExtractionFailed, "extraction response violates wire contract")
	}
	return result, nil
}

func buildUserPrompt(entityType domain.EntityType, docs []DocumentInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entity Type Being Registered: %s\n\n", entityType)
	b.WriteString("JSON response schema (draft 2020-12):\n")
	b.WriteString(renderSchema())
	b.WriteString("\n\nDocuments to process:\n\n")
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "Document Type: %s\nContent: %s\n", d.Type, d.Content)
	}
	return b.String()
}
