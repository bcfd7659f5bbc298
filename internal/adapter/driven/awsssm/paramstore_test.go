package awsssm

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podaac/generate-token-creator/internal/domain/model"
)

// fakeSSM implements SSMAPI with function fields and records every
// PutParameter input.
type fakeSSM struct {
	GetParameterFn      func(context.Context, *ssm.GetParameterInput, ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameterFn      func(context.Context, *ssm.PutParameterInput, ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	PutParameterCalledN int
	PutParameterInputs  []*ssm.PutParameterInput
}

func (f *fakeSSM) GetParameter(ctx context.Context, in *ssm.GetParameterInput, opts ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return f.GetParameterFn(ctx, in, opts...)
}

func (f *fakeSSM) PutParameter(ctx context.Context, in *ssm.PutParameterInput, opts ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	f.PutParameterCalledN++
	f.PutParameterInputs = append(f.PutParameterInputs, in)
	return f.PutParameterFn(ctx, in, opts...)
}

// fakeKMS implements KMSAPI with a function field.
type fakeKMS struct {
	DescribeKeyFn func(context.Context, *kms.DescribeKeyInput, ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
}

func (f *fakeKMS) DescribeKey(ctx context.Context, in *kms.DescribeKeyInput, opts ...func(*kms.Options)) (*kms.DescribeKeyOutput, error) {
	return f.DescribeKeyFn(ctx, in, opts...)
}

func testSettings() Settings {
	return Settings{
		UsernameParameter: "generate-edl-username",
		PasswordParameter: "generate-edl-password",
		TokenSuffix:       "-edl-token",
		KMSAlias:          "alias/aws/ssm",
	}
}

func paramOutput(value string) *ssm.GetParameterOutput {
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(value)}}
}

func newStore(ssmClient SSMAPI, kmsClient KMSAPI) *ParameterStore {
	return NewParameterStore(ssmClient, kmsClient, testSettings(), slog.New(slog.DiscardHandler))
}

func TestEDLCredentials_Success(t *testing.T) {
	ssmClient := &fakeSSM{
		GetParameterFn: func(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			require.NotNil(t, in.WithDecryption)
			assert.True(t, *in.WithDecryption)
			switch *in.Name {
			case "generate-edl-username":
				return paramOutput("edl-user"), nil
			case "generate-edl-password":
				return paramOutput("edl-pass"), nil
			default:
				return nil, &types.ParameterNotFound{}
			}
		},
	}

	creds, err := newStore(ssmClient, &fakeKMS{}).EDLCredentials(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.Credentials{Username: "edl-user", Password: "edl-pass"}, creds)
}

func TestEDLCredentials_MissingPassword(t *testing.T) {
	ssmClient := &fakeSSM{
		GetParameterFn: func(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			if *in.Name == "generate-edl-username" {
				return paramOutput("edl-user"), nil
			}
			return nil, &types.ParameterNotFound{}
		},
	}

	_, err := newStore(ssmClient, &fakeKMS{}).EDLCredentials(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate-edl-password")
	assert.Contains(t, err.Error(), "not found")
}

func TestEDLCredentials_NilValue(t *testing.T) {
	ssmClient := &fakeSSM{
		GetParameterFn: func(context.Context, *ssm.GetParameterInput, ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
			return &ssm.GetParameterOutput{Parameter: &types.Parameter{}}, nil
		},
	}

	_, err := newStore(ssmClient, &fakeKMS{}).EDLCredentials(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no value")
}

func TestStore_Success(t *testing.T) {
	kmsClient := &fakeKMS{
		DescribeKeyFn: func(_ context.Context, in *kms.DescribeKeyInput, _ ...func(*kms.Options)) (*kms.DescribeKeyOutput, error) {
			assert.Equal(t, "alias/aws/ssm", *in.KeyId)
			return &kms.DescribeKeyOutput{
				KeyMetadata: &kmstypes.KeyMetadata{KeyId: aws.String("key-123")},
			}, nil
		},
	}
	ssmClient := &fakeSSM{
		PutParameterFn: func(context.Context, *ssm.PutParameterInput, ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
			return &ssm.PutParameterOutput{}, nil
		},
	}

	token := model.Token{AccessToken: "abc123", Environment: model.EnvironmentNonProduction}
	err := newStore(ssmClient, kmsClient).Store(context.Background(), "podaac-sit", token)

	require.NoError(t, err)
	require.Equal(t, 1, ssmClient.PutParameterCalledN)
	in := ssmClient.PutParameterInputs[0]
	assert.Equal(t, "podaac-sit-edl-token", *in.Name)
	assert.Equal(t, "abc123", *in.Value)
	assert.Equal(t, "Temporary EDL bearer token", *in.Description)
	assert.Equal(t, types.ParameterTypeSecureString, in.Type)
	assert.Equal(t, "key-123", *in.KeyId)
	assert.True(t, *in.Overwrite)
	assert.Equal(t, types.ParameterTierStandard, in.Tier)
}

func TestStore_KMSFailure(t *testing.T) {
	kmsClient := &fakeKMS{
		DescribeKeyFn: func(context.Context, *kms.DescribeKeyInput, ...func(*kms.Options)) (*kms.DescribeKeyOutput, error) {
			return nil, errors.New("access denied")
		},
	}
	ssmClient := &fakeSSM{}

	err := newStore(ssmClient, kmsClient).Store(context.Background(), "podaac-sit", model.Token{AccessToken: "abc123"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "describing KMS key alias/aws/ssm")
	assert.Zero(t, ssmClient.PutParameterCalledN, "no write without an encryption key")
}

func TestStore_UnknownAlias(t *testing.T) {
	kmsClient := &fakeKMS{
		DescribeKeyFn: func(context.Context, *kms.DescribeKeyInput, ...func(*kms.Options)) (*kms.DescribeKeyOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "NotFoundException", Message: "alias does not exist"}
		},
	}
	ssmClient := &fakeSSM{}

	err := newStore(ssmClient, kmsClient).Store(context.Background(), "podaac-sit", model.Token{AccessToken: "abc123"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "KMS alias alias/aws/ssm not found")
	assert.Zero(t, ssmClient.PutParameterCalledN)
}

func TestStore_PutFailure(t *testing.T) {
	kmsClient := &fakeKMS{
		DescribeKeyFn: func(context.Context, *kms.DescribeKeyInput, ...func(*kms.Options)) (*kms.DescribeKeyOutput, error) {
			return &kms.DescribeKeyOutput{
				KeyMetadata: &kmstypes.KeyMetadata{KeyId: aws.String("key-123")},
			}, nil
		},
	}
	ssmClient := &fakeSSM{
		PutParameterFn: func(context.Context, *ssm.PutParameterInput, ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	err := newStore(ssmClient, kmsClient).Store(context.Background(), "podaac-ops", model.Token{AccessToken: "abc123"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "putting parameter podaac-ops-edl-token")
}

func TestTokenParameter(t *testing.T) {
	store := newStore(&fakeSSM{}, &fakeKMS{})

	assert.Equal(t, "podaac-sit-edl-token", store.TokenParameter("podaac-sit"))
}
