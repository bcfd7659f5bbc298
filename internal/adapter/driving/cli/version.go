package cli

import (
	"github.com/spf13/cobra"
)

// Version is the application version. It can be set during build time using:
// go build -ldflags "-X github.com/podaac/generate-token-creator/internal/adapter/driving/cli.Version=x.y.z"
var Version = "dev"

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
