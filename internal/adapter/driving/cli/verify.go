package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that a rotation could run, without creating a token",
	Long: `The verify command checks the collaborators a rotation needs: the EDL
credential parameters must be readable from Parameter Store and Earthdata
Login must accept them on the token listing endpoint. No token is created
and no notification is sent.`,
	RunE: VerifyCmdRunE,
}

// VerifyCmdRunE runs the rotation preflight.
func VerifyCmdRunE(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	prefix := viper.GetString("verify-prefix")
	if prefix == "" {
		return errors.New("--prefix is required")
	}

	service, err := buildRotationService(ctx, logger)
	if err != nil {
		return err
	}

	outstanding, err := service.Preflight(ctx, prefix)
	if err != nil {
		return err
	}
	cmd.Printf("credentials ok, %d outstanding token(s)\n", outstanding)
	return nil
}

func init() {
	SetupVerifyCmdFlags(verifyCmd)
	rootCmd.AddCommand(verifyCmd)
}

// SetupVerifyCmdFlags registers the verify flags.
func SetupVerifyCmdFlags(command *cobra.Command) {
	command.Flags().String("prefix", "", "deployment prefix selecting the EDL environment")
	if err := viper.BindPFlag("verify-prefix", command.Flags().Lookup("prefix")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}
}
