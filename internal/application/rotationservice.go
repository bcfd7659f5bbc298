package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/podaac/generate-token-creator/internal/domain/model"
	"github.com/podaac/generate-token-creator/internal/domain/port/driven"
)

// RotationService sequences a token rotation run: resolve the environment
// from the deployment prefix, fetch EDL credentials, issue a fresh bearer
// token, and store it. It depends only on port interfaces.
type RotationService struct {
	credentials driven.CredentialSource
	issuer      driven.TokenIssuer
	store       driven.TokenStore
	notifier    driven.Notifier
	logger      *slog.Logger
}

// NewRotationService creates a RotationService with the required collaborators.
func NewRotationService(credentials driven.CredentialSource, issuer driven.TokenIssuer, store driven.TokenStore, notifier driven.Notifier, logger *slog.Logger) *RotationService {
	return &RotationService{
		credentials: credentials,
		issuer:      issuer,
		store:       store,
		notifier:    notifier,
		logger:      logger,
	}
}

// Run rotates the token for one deployment prefix. The first failure is
// turned into a FailureEvent and handed to the notifier exactly once; the
// rotation error is returned either way, with a notification failure joined
// onto it rather than masking it.
func (s *RotationService) Run(ctx context.Context, prefix string) error {
	runID := uuid.NewString()
	env := model.EnvironmentForPrefix(prefix)
	logger := s.logger.With("run_id", runID, "prefix", prefix, "environment", string(env))
	logger.Info("starting token rotation")

	err := s.rotate(ctx, prefix, env)
	if err == nil {
		logger.Info("token rotation complete")
		return nil
	}
	logger.Error("token rotation failed", "error", err)

	event := model.FailureEvent{
		Kind:        model.KindOf(err),
		Description: err.Error(),
		Context:     fmt.Sprintf("prefix=%s environment=%s run_id=%s", prefix, env, runID),
	}
	if notifyErr := s.notifier.Notify(ctx, event); notifyErr != nil {
		wrapped := &model.NotificationError{Err: notifyErr}
		logger.Error("failure notification not delivered", "error", wrapped)
		return errors.Join(err, wrapped)
	}
	return err
}

func (s *RotationService) rotate(ctx context.Context, prefix string, env model.Environment) error {
	creds, err := s.credentials.EDLCredentials(ctx)
	if err != nil {
		return &model.CredentialError{Err: err}
	}

	token, err := s.issuer.Issue(ctx, creds, env)
	if err != nil {
		return &model.TokenGenerationError{Err: err}
	}

	if err := s.store.Store(ctx, prefix, token); err != nil {
		return &model.StorageError{Err: err}
	}
	return nil
}

// Preflight checks the collaborators a rotation needs without creating a
// token: credentials must be readable and accepted by the Earthdata Login
// token listing. It returns the number of tokens currently outstanding.
// Preflight never notifies; it is an interactive check, not a scheduled run.
func (s *RotationService) Preflight(ctx context.Context, prefix string) (int, error) {
	env := model.EnvironmentForPrefix(prefix)
	logger := s.logger.With("prefix", prefix, "environment", string(env))

	creds, err := s.credentials.EDLCredentials(ctx)
	if err != nil {
		return 0, &model.CredentialError{Err: err}
	}

	outstanding, err := s.issuer.OutstandingTokens(ctx, creds, env)
	if err != nil {
		return 0, &model.TokenGenerationError{Err: err}
	}

	logger.Info("preflight ok", "outstanding_tokens", outstanding)
	return outstanding, nil
}
