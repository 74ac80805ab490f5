package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "analyzer-be",
	Short: "Startup document analysis backend",
	Long: `analyzer-be ingests startup documents (pitch decks, business plans,
market research, financial models) as PDFs and produces structured
investment analyses with a retrieval-augmented LLM pipeline.

Run "analyzer-be start" to serve the HTTP API, or "analyzer-be analyze"
to analyze a single file from the command line.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config/config.yaml", "config file")
}
