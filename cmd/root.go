package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docvault",
	Short: "Question answering over organization documents",
	Long: `docvault chunks document text, embeds the chunks into a vector index,
and answers questions grounded in the retrieved fragments.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	settingDefaultConfig()
}
