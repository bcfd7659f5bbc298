package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/spf13/viper"

	"github.com/podaac/generate-token-creator/internal/adapter/driven/awssns"
	"github.com/podaac/generate-token-creator/internal/adapter/driven/awsssm"
	"github.com/podaac/generate-token-creator/internal/adapter/driven/edl"
	"github.com/podaac/generate-token-creator/internal/application"
	"github.com/podaac/generate-token-creator/internal/config"
)

// ContextKey types values injected into the command context, primarily by
// tests.
type ContextKey string

const (
	// LoggerKey carries the invocation *slog.Logger.
	LoggerKey ContextKey = "logger"
	// EDLClientKey carries a *edl.Client replacing the configured one.
	EDLClientKey ContextKey = "edl-client"
	// SSMClientKey carries an awsssm.SSMAPI replacing the real SSM client.
	SSMClientKey ContextKey = "ssm-client"
	// KMSClientKey carries an awsssm.KMSAPI replacing the real KMS client.
	KMSClientKey ContextKey = "kms-client"
	// SNSClientKey carries an awssns.SNSAPI replacing the real SNS client.
	SNSClientKey ContextKey = "sns-client"
)

func loggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// invocationEvent mirrors the scheduled invocation document.
type invocationEvent struct {
	Prefix string `json:"prefix"`
}

// resolvePrefix returns the deployment prefix from exactly one of the two
// sources.
func resolvePrefix(prefixFlag, eventPath string) (string, error) {
	switch {
	case prefixFlag != "" && eventPath != "":
		return "", errors.New("--prefix and --event are mutually exclusive")
	case prefixFlag != "":
		return prefixFlag, nil
	case eventPath != "":
		return prefixFromEvent(eventPath)
	default:
		return "", errors.New("either --prefix or --event is required")
	}
}

func prefixFromEvent(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading event file: %w", err)
	}
	var event invocationEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return "", fmt.Errorf("parsing event file %s: %w", path, err)
	}
	if event.Prefix == "" {
		return "", fmt.Errorf("event file %s has no prefix", path)
	}
	return event.Prefix, nil
}

// buildRotationService wires the rotation service from configuration,
// honoring clients injected into ctx.
func buildRotationService(ctx context.Context, logger *slog.Logger) (*application.RotationService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if region := viper.GetString("region"); region != "" {
		cfg.Region = region
	}

	ssmClient, kmsClient, snsClient, err := awsClients(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}

	issuer, ok := ctx.Value(EDLClientKey).(*edl.Client)
	if !ok {
		issuer = edl.NewClient(edl.Endpoints{
			Production:    cfg.ProductionURL,
			NonProduction: cfg.NonProductionURL,
		}, cfg.HTTPTimeout, logger)
	}

	store := awsssm.NewParameterStore(ssmClient, kmsClient, awsssm.Settings{
		UsernameParameter: cfg.UsernameParameter,
		PasswordParameter: cfg.PasswordParameter,
		TokenSuffix:       cfg.TokenSuffix,
		KMSAlias:          cfg.KMSAlias,
	}, logger)
	notifier := awssns.NewNotifier(snsClient, cfg.TopicMarker, cfg.NotifySubject, logger)

	return application.NewRotationService(store, issuer, store, notifier, logger), nil
}

// awsClients returns the AWS service clients, preferring any injected into
// ctx; otherwise all three are built from one AWS config loaded for region.
func awsClients(ctx context.Context, region string) (awsssm.SSMAPI, awsssm.KMSAPI, awssns.SNSAPI, error) {
	ssmClient, ssmOK := ctx.Value(SSMClientKey).(awsssm.SSMAPI)
	kmsClient, kmsOK := ctx.Value(KMSClientKey).(awsssm.KMSAPI)
	snsClient, snsOK := ctx.Value(SNSClientKey).(awssns.SNSAPI)
	if ssmOK && kmsOK && snsOK {
		return ssmClient, kmsClient, snsClient, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return ssm.NewFromConfig(awsCfg), kms.NewFromConfig(awsCfg), sns.NewFromConfig(awsCfg), nil
}
