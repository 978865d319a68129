package config

import (
	"os"
	"time"

	dErrors "aptic/pkg/domain-errors"
)

// Server captures process-level configuration.
type Server struct {
	Addr              string
	GeminiAPIKey      string
	ExtractionTimeout time.Duration
	JWTSigningKey     string
}

// FromEnv builds a Server config from environment variables so main stays lean.
//
// The Gemini API credential is a startup-time requirement: the extraction
// gateway is the only external dependency and cannot operate without it.
func FromEnv() (Server, error) {
	addr := os.Getenv("APTIC_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return Server{}, dErrors.New(dErrors.CodeInternal, "GEMINI_API_KEY must be set")
	}

	timeout := 60 * time.Second
	if raw := os.Getenv("APTIC_EXTRACTION_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			timeout = parsed
		}
	}

	jwtSigningKey := os.Getenv("APTIC_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:              addr,
		GeminiAPIKey:      apiKey,
		ExtractionTimeout: timeout,
		JWTSigningKey:     jwtSigningKey,
	}, nil
}
