// Package cli implements the driving adapter: the token-creator command
// tree, flag and environment binding, and invocation-scoped logger
// construction.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrorBindingFlag is logged when a flag cannot be bound to viper.
const ErrorBindingFlag = "unable to bind flag"

var rootCmd = &cobra.Command{
	Use:               "token-creator",
	Short:             "Create and store NASA Earthdata Login bearer tokens",
	PersistentPreRunE: RootCmdPersistentPreRunE,
	// Errors are logged exactly once, by main.
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the command tree and returns any error. The caller maps a
// non-nil error to exit code 1; no command calls os.Exit itself.
func Execute() error {
	return rootCmd.Execute()
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func logLevelNames() string {
	return strings.Join(slices.Sorted(maps.Keys(logLevels)), "|")
}

// RootCmdPersistentPreRunE builds the invocation logger from the logLevel
// flag, stores it in the command context, and sets it as the process
// default for stray library logging.
func RootCmdPersistentPreRunE(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(viper.GetString("logLevel"))
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	cmd.SetContext(context.WithValue(cmd.Context(), LoggerKey, logger))
	return nil
}

func newLogger(levelName string) (*slog.Logger, error) {
	level, ok := logLevels[levelName]
	if !ok {
		return nil, fmt.Errorf("invalid log level: %s (valid levels: %s)", levelName, logLevelNames())
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})), nil
}

// SetupRootCmdFlags registers the persistent flags. Exported so command
// tests can build an isolated command carrying the same flag set.
func SetupRootCmdFlags(command *cobra.Command) {
	command.PersistentFlags().StringP("logLevel", "l", "info", fmt.Sprintf("set log level (%s)", logLevelNames()))
	if err := viper.BindPFlag("logLevel", command.PersistentFlags().Lookup("logLevel")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}

	command.PersistentFlags().String("region", "", "override the AWS region from configuration")
	if err := viper.BindPFlag("region", command.PersistentFlags().Lookup("region")); err != nil {
		slog.Error(ErrorBindingFlag, "error", err)
	}
}

func init() {
	SetupRootCmdFlags(rootCmd)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
