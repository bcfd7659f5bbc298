// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds the service configuration loaded from environment variables.
// Invocation-scoped inputs (the deployment prefix, log level) arrive as CLI
// flags instead; see the cli package.
type Config struct {
	Region            string
	UsernameParameter string
	PasswordParameter string
	TokenSuffix       string
	KMSAlias          string
	TopicMarker       string
	NotifySubject     string
	ProductionURL     string
	NonProductionURL  string
	HTTPTimeout       time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. Every variable is optional and defaults to the deployed PO.DAAC
// setup: TOKEN_CREATOR_REGION (us-west-2), TOKEN_CREATOR_USERNAME_PARAMETER
// (generate-edl-username), TOKEN_CREATOR_PASSWORD_PARAMETER
// (generate-edl-password), TOKEN_CREATOR_TOKEN_SUFFIX (-edl-token),
// TOKEN_CREATOR_KMS_ALIAS (alias/aws/ssm), TOKEN_CREATOR_TOPIC_MARKER
// (batch-job-failure), TOKEN_CREATOR_NOTIFY_SUBJECT, TOKEN_CREATOR_OPS_URL
// and TOKEN_CREATOR_UAT_URL (the Earthdata Login base URLs), and
// TOKEN_CREATOR_HTTP_TIMEOUT (30s).
func Load() (*Config, error) {
	cfg := &Config{
		Region:            envOr("TOKEN_CREATOR_REGION", "us-west-2"),
		UsernameParameter: envOr("TOKEN_CREATOR_USERNAME_PARAMETER", "generate-edl-username"),
		PasswordParameter: envOr("TOKEN_CREATOR_PASSWORD_PARAMETER", "generate-edl-password"),
		TokenSuffix:       envOr("TOKEN_CREATOR_TOKEN_SUFFIX", "-edl-token"),
		KMSAlias:          envOr("TOKEN_CREATOR_KMS_ALIAS", "alias/aws/ssm"),
		TopicMarker:       envOr("TOKEN_CREATOR_TOPIC_MARKER", "batch-job-failure"),
		NotifySubject:     envOr("TOKEN_CREATOR_NOTIFY_SUBJECT", "Generate Token Creator Failure"),
		ProductionURL:     envOr("TOKEN_CREATOR_OPS_URL", "https://urs.earthdata.nasa.gov"),
		NonProductionURL:  envOr("TOKEN_CREATOR_UAT_URL", "https://uat.urs.earthdata.nasa.gov"),
		HTTPTimeout:       30 * time.Second,
	}

	if v, ok := os.LookupEnv("TOKEN_CREATOR_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("TOKEN_CREATOR_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.HTTPTimeout = parsed
	}

	if _, err := url.ParseRequestURI(cfg.ProductionURL); err != nil {
		return nil, fmt.Errorf("TOKEN_CREATOR_OPS_URL has invalid URL %q: %w", cfg.ProductionURL, err)
	}
	if _, err := url.ParseRequestURI(cfg.NonProductionURL); err != nil {
		return nil, fmt.Errorf("TOKEN_CREATOR_UAT_URL has invalid URL %q: %w", cfg.NonProductionURL, err)
	}

	return cfg, nil
}

// envOr returns the value of the environment variable key, or fallback when
// the variable is unset or empty.
func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
