package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rotateCmd represents the rotate command
var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Create a fresh EDL bearer token and store it in Parameter Store",
	Long: `The rotate command exchanges the EDL credentials held in Parameter Store
for a fresh bearer token and stores it as the SecureString parameter
{prefix}-edl-token.

EDL allows a limited number of outstanding tokens per account. When the
limit is hit, every existing token is revoked and the request is retried
once. Any failure publishes a message to the batch job failure SNS topic
and the command exits non-zero.

The deployment prefix comes from --prefix, or from a JSON invocation
document passed with --event (the same document the scheduler delivers).
A prefix ending in -sit or -uat targets the UAT Earthdata Login
environment; anything else targets OPS.`,
	RunE: RotateCmdRunE,
}

// RotateCmdRunE runs one token rotation.
func RotateCmdRunE(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	prefix, err := resolvePrefix(viper.GetString("rotate-prefix"), viper.GetString("rotate-event"))
	if err != nil {
		return err
	}

	service, err := buildRotationService(ctx, logger)
	if err != nil {
		return err
	}
	return service.Run(ctx, prefix)
}

func init() {
	SetupRotateCmdFlags(rotateCmd)
	rootCmd.AddCommand(rotateCmd)
}

// SetupRotateCmdFlags registers the rotate flags.
func SetupRotateCmdFlags(command *cobra.Command) {
	command.Flags().String("prefix", "", "deployment prefix naming the stored token (e.g. podaac-sit)")
	if err := viper.BindPFlag("rotate-prefix", command.Flags().Lookup("prefix")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}

	command.Flags().String("event", "", "path to a JSON invocation document containing the prefix")
	if err := viper.BindPFlag("rotate-event", command.Flags().Lookup("event")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}
}
