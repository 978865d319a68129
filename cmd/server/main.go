package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"aptic/internal/admin"
	adminhandler "aptic/internal/admin/handler"
	"aptic/internal/customer"
	"aptic/internal/extraction"
	"aptic/internal/feedback"
	feedbackhandler "aptic/internal/feedback/handler"
	"aptic/internal/onboarding"
	onboardinghandler "aptic/internal/onboarding/handler"
	"aptic/internal/platform/config"
	"aptic/internal/platform/httpserver"
	"aptic/internal/platform/logger"
	"aptic/internal/platform/metrics"
	"aptic/internal/token"
	httptransport "aptic/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	gateway, err := extraction.NewGeminiGateway(ctx, cfg.GeminiAPIKey, cfg.ExtractionTimeout, log)
	if err != nil {
		log.Error("failed to initialize extraction gateway", "error", err)
		os.Exit(1)
	}
	defer gateway.Close()

	m := metrics.New()
	customers := customer.NewService(customer.NewInMemoryStore(), log, m)
	tokens := token.NewJWTService(cfg.JWTSigningKey, "aptic", "aptic-clients")
	wizard := onboarding.NewService(gateway, customers, tokens, log, m)
	feedbackSvc := feedback.NewService()
	exporter := admin.NewExporter(customers, log)

	router := httptransport.NewRouter(log,
		onboardinghandler.New(wizard, log),
		adminhandler.New(wizard, customers, wizard.AuditLog(), exporter, log),
		feedbackhandler.New(feedbackSvc, wizard.AuditLog(), log),
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting aptic", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
