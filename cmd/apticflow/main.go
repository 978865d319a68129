// apticflow drives a scripted onboarding against the canned extraction
// gateway. It exists to exercise the full wizard without network access or a
// Gemini credential, and prints the resulting customer record and audit trail.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"aptic/internal/customer"
	"aptic/internal/extraction"
	"aptic/internal/onboarding"
	"aptic/internal/token"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		entityType string
		password   string
		approve    bool
	)

	cmd := &cobra.Command{
		Use:   "apticflow",
		Short: "Run a scripted onboarding against the canned extraction gateway",
		Long: `Run the full onboarding wizard end to end without touching the network.

The extraction step is served from the canned result set, so no Gemini
credential is required.

Examples:
  # Onboard the mock company and print the committed record
  ./apticflow --entity=company

  # Onboard the mock individual and approve all documents afterwards
  ./apticflow --entity=individual --approve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlow(cmd.Context(), entityType, password, approve)
		},
	}

	cmd.Flags().StringVar(&entityType, "entity", "company", "Entity type to onboard (company or individual)")
	cmd.Flags().StringVar(&password, "password", "longenough1", "Password used at the setup step")
	cmd.Flags().BoolVar(&approve, "approve", false, "Approve every document after activation")
	return cmd
}

func runFlow(ctx context.Context, entityType, password string, approve bool) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	customers := customer.NewService(customer.NewInMemoryStore(), logger, nil)
	tokens := token.NewJWTService("apticflow-demo-key", "aptic", "aptic-clients")
	wizard := onboarding.NewService(
		&extraction.StubGateway{},
		customers,
		tokens,
		logger,
		nil,
	)

	if _, err := wizard.Start(ctx); err != nil {
		return err
	}
	snap, err := wizard.SelectEntity(ctx, entityType)
	if err != nil {
		return err
	}
	for _, doc := range snap.Documents {
		if _, err := wizard.UploadDocument(ctx, doc.ID); err != nil {
			return err
		}
	}
	snap, err = wizard.RunExtraction(ctx)
	if err != nil {
		return err
	}
	for range snap.Documents {
		if _, err := wizard.AdvanceReview(ctx); err != nil {
			return err
		}
	}
	result, err := wizard.Activate(ctx, password)
	if err != nil {
		return err
	}
	// Round-trip the issued access token so the printed claims are the
	// validated ones, not just what Activate handed back.
	claims, err := tokens.ValidateToken(result.AccessToken)
	if err != nil {
		return err
	}

	if approve {
		for _, doc := range result.Customer.OriginalDocs {
			if _, err := customers.ApproveDocument(ctx, result.Customer.ID, doc.ID); err != nil {
				return err
			}
		}
	}

	record, err := customers.Get(ctx, result.Customer.ID)
	if err != nil {
		return err
	}
	stats, err := customers.Stats(ctx)
	if err != nil {
		return err
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	if err := out.Encode(map[string]any{
		"customer":     record,
		"token_claims": claims,
		"stats":        stats,
		"audit":        wizard.AuditLog().Entries(),
	}); err != nil {
		return err
	}
	return nil
}
