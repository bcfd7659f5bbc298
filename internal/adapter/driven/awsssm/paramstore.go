// Package awsssm implements the CredentialSource and TokenStore ports on AWS
// Systems Manager Parameter Store.
package awsssm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"

	"github.com/podaac/generate-token-creator/internal/domain/model"
	"github.com/podaac/generate-token-creator/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.CredentialSource = (*ParameterStore)(nil)
	_ driven.TokenStore       = (*ParameterStore)(nil)
)

// SSMAPI is the subset of the SSM client the store uses.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// KMSAPI is the subset of the KMS client the store uses.
type KMSAPI interface {
	DescribeKey(ctx context.Context, params *kms.DescribeKeyInput, optFns ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
}

// Settings names the parameters the store reads and writes.
type Settings struct {
	UsernameParameter string
	PasswordParameter string
	TokenSuffix       string
	KMSAlias          string
}

// tokenDescription is set on the stored token parameter.
const tokenDescription = "Temporary EDL bearer token"

// ParameterStore reads EDL credentials from and writes bearer tokens to
// Parameter Store. Tokens are stored as SecureString entries encrypted with
// the key behind the configured KMS alias.
type ParameterStore struct {
	ssm      SSMAPI
	kms      KMSAPI
	settings Settings
	logger   *slog.Logger
}

// NewParameterStore creates a ParameterStore on the given AWS clients.
func NewParameterStore(ssmClient SSMAPI, kmsClient KMSAPI, settings Settings, logger *slog.Logger) *ParameterStore {
	return &ParameterStore{
		ssm:      ssmClient,
		kms:      kmsClient,
		settings: settings,
		logger:   logger,
	}
}

// EDLCredentials returns the Earthdata Login username and password held in
// Parameter Store, decrypted.
func (p *ParameterStore) EDLCredentials(ctx context.Context) (model.Credentials, error) {
	username, err := p.parameterValue(ctx, p.settings.UsernameParameter)
	if err != nil {
		return model.Credentials{}, err
	}
	password, err := p.parameterValue(ctx, p.settings.PasswordParameter)
	if err != nil {
		return model.Credentials{}, err
	}

	p.logger.Info("retrieved EDL credentials", "username_parameter", p.settings.UsernameParameter)
	return model.Credentials{Username: username, Password: password}, nil
}

// TokenParameter returns the Parameter Store name holding the token for a
// deployment prefix.
func (p *ParameterStore) TokenParameter(prefix string) string {
	return prefix + p.settings.TokenSuffix
}

// Store writes the token as a SecureString parameter named {prefix}{suffix},
// overwriting any previous value. The encryption key is resolved through KMS
// on every call.
func (p *ParameterStore) Store(ctx context.Context, prefix string, token model.Token) error {
	keyID, err := p.encryptionKey(ctx)
	if err != nil {
		return err
	}

	name := p.TokenParameter(prefix)
	_, err = p.ssm.PutParameter(ctx, &ssm.PutParameterInput{
		Name:        aws.String(name),
		Description: aws.String(tokenDescription),
		Value:       aws.String(token.AccessToken),
		Type:        types.ParameterTypeSecureString,
		KeyId:       aws.String(keyID),
		Overwrite:   aws.Bool(true),
		Tier:        types.ParameterTierStandard,
	})
	if err != nil {
		return fmt.Errorf("putting parameter %s: %w", name, err)
	}

	p.logger.Info("stored bearer token", "parameter", name, "environment", string(token.Environment))
	return nil
}

func (p *ParameterStore) parameterValue(ctx context.Context, name string) (string, error) {
	out, err := p.ssm.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var nf *types.ParameterNotFound
		if errors.As(err, &nf) {
			return "", fmt.Errorf("parameter %s not found: %w", name, err)
		}
		return "", fmt.Errorf("getting parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", name)
	}
	return *out.Parameter.Value, nil
}

func (p *ParameterStore) encryptionKey(ctx context.Context) (string, error) {
	out, err := p.kms.DescribeKey(ctx, &kms.DescribeKeyInput{
		KeyId: aws.String(p.settings.KMSAlias),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFoundException" {
			return "", fmt.Errorf("KMS alias %s not found: %w", p.settings.KMSAlias, err)
		}
		return "", fmt.Errorf("describing KMS key %s: %w", p.settings.KMSAlias, err)
	}
	if out.KeyMetadata == nil || out.KeyMetadata.KeyId == nil {
		return "", fmt.Errorf("KMS key %s has no metadata", p.settings.KMSAlias)
	}
	return *out.KeyMetadata.KeyId, nil
}
