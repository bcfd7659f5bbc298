package cli_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/jarcoal/httpmock"
	"github.com/spf13/cobra"

	"github.com/podaac/generate-token-creator/internal/adapter/driven/edl"
	"github.com/podaac/generate-token-creator/internal/adapter/driving/cli"
)

// --- AWS client fakes injected through the command context ---

type fakeSSM struct {
	params map[string]string
	puts   []*ssm.PutParameterInput
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	value, ok := f.params[aws.ToString(in.Name)]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{}
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: aws.String(value)}}, nil
}

func (f *fakeSSM) PutParameter(_ context.Context, in *ssm.PutParameterInput, _ ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	f.puts = append(f.puts, in)
	return &ssm.PutParameterOutput{}, nil
}

type fakeKMS struct{}

func (fakeKMS) DescribeKey(context.Context, *kms.DescribeKeyInput, ...func(*kms.Options)) (*kms.DescribeKeyOutput, error) {
	return &kms.DescribeKeyOutput{
		KeyMetadata: &kmstypes.KeyMetadata{KeyId: aws.String("key-123")},
	}, nil
}

type fakeSNS struct {
	publishes []*sns.PublishInput
}

func (f *fakeSNS) ListTopics(context.Context, *sns.ListTopicsInput, ...func(*sns.Options)) (*sns.ListTopicsOutput, error) {
	return &sns.ListTopicsOutput{Topics: []snstypes.Topic{
		{TopicArn: aws.String("arn:aws:sns:us-west-2:123:podaac-batch-job-failure")},
	}}, nil
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.publishes = append(f.publishes, in)
	return &sns.PublishOutput{}, nil
}

func edlCredentials() map[string]string {
	return map[string]string{
		"generate-edl-username": "edl-user",
		"generate-edl-password": "edl-pass",
	}
}

// newMockedEDLClient returns an EDL client for the test hosts, with httpmock
// intercepting its transport.
func newMockedEDLClient(t *testing.T) *edl.Client {
	t.Helper()
	client := edl.NewClient(edl.Endpoints{
		Production:    "https://ops.example.test",
		NonProduction: "https://uat.example.test",
	}, 5*time.Second, slog.New(slog.DiscardHandler))
	httpmock.ActivateNonDefault(client.HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

// injectClients builds a command context carrying every collaborator.
func injectClients(ssmClient *fakeSSM, snsClient *fakeSNS, edlClient *edl.Client) context.Context {
	ctx := context.WithValue(context.Background(), cli.SSMClientKey, ssmClient)
	ctx = context.WithValue(ctx, cli.KMSClientKey, fakeKMS{})
	ctx = context.WithValue(ctx, cli.SNSClientKey, snsClient)
	return context.WithValue(ctx, cli.EDLClientKey, edlClient)
}

func newRotateCommand() *cobra.Command {
	command := &cobra.Command{Use: "rotate", PersistentPreRunE: cli.RootCmdPersistentPreRunE, RunE: cli.RotateCmdRunE}
	cli.SetupRootCmdFlags(command)
	cli.SetupRotateCmdFlags(command)
	return command
}

func newVerifyCommand() *cobra.Command {
	command := &cobra.Command{Use: "verify", PersistentPreRunE: cli.RootCmdPersistentPreRunE, RunE: cli.VerifyCmdRunE}
	cli.SetupRootCmdFlags(command)
	cli.SetupVerifyCmdFlags(command)
	return command
}

func executeCommand(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	command.SetOut(buf)
	command.SetErr(buf)
	command.SetArgs(args)
	err := command.Execute()
	return buf.String(), err
}
