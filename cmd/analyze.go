package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deckwise/analyzer-be/config"
	"github.com/deckwise/analyzer-be/database"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.pdf>",
	Short: "Analyze a single PDF from the command line",
	Long:  `Runs the full analysis pipeline on one local PDF and prints the sections`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		documentType, _ := cmd.Flags().GetString("type")

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", args[0], err)
		}

		history, err := database.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open history database: %v", err)
		}
		defer history.Close()

		analysisService, err := buildAnalysisService(cfg, history, nil)
		if err != nil {
			log.Fatalf("Failed to build pipeline: %v", err)
		}

		outcome, err := analysisService.Analyze(context.Background(), data, filepath.Base(args[0]), documentType, nil)
		if err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}

		result := outcome.Result
		fmt.Printf("Document type: %s\n", result.DocumentType)
		fmt.Printf("Run: %s\n\n", result.RunID)
		for _, section := range result.Sections {
			fmt.Printf("## %s\n\n%s\n\n", section.Name, section.Content)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("type", "t", "", "document type (detected when empty)")
}
