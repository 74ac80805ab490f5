package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/deckwise/analyzer-be/config"
	"github.com/deckwise/analyzer-be/database"
	"github.com/deckwise/analyzer-be/handler"
	"github.com/deckwise/analyzer-be/service"
	"github.com/deckwise/analyzer-be/types"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the analysis server",
	Long:  `Starts the HTTP server that accepts PDF uploads and serves analyses`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		history, err := database.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open history database: %v", err)
		}
		defer history.Close()

		var index database.ChunkIndex
		if cfg.Weaviate.Host != "" {
			weaviateIndex, err := database.NewWeaviateIndex(cfg.Weaviate)
			if err != nil {
				log.Fatalf("Failed to connect to Weaviate: %v", err)
			}
			index = weaviateIndex
		}

		analysisService, err := buildAnalysisService(cfg, history, index)
		if err != nil {
			log.Fatalf("Failed to build pipeline: %v", err)
		}

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		wsService := service.NewWebSocketService()
		uploadHandler := handler.NewUploadHandler(analysisService, wsService, cfg.UploadDir)
		historyHandler := handler.NewHistoryHandler(history)
		searchHandler := handler.NewSearchHandler(index)
		healthHandler := handler.NewHealthHandler(history)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		router.GET("/", healthHandler.RootHandler)
		router.GET("/health", healthHandler.HealthHandler)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/upload-pdf", uploadHandler.UploadPDFHandler)
			apiV1.GET("/history", historyHandler.HistoryHandler)
			apiV1.GET("/analytics", historyHandler.AnalyticsHandler)
			apiV1.POST("/documents/search", searchHandler.SearchHandler)
			apiV1.GET("/progress", func(c *gin.Context) {
				wsService.HandleProgress(c.Writer, c.Request)
			})
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

// buildAnalysisService wires the pipeline from config: provider-specific
// model client, retry wrapper, chunker, retriever and composer.
func buildAnalysisService(cfg *config.Config, history database.HistoryStore, index database.ChunkIndex) (*service.AnalysisService, error) {
	var (
		embedder  service.Embedder
		generator service.Generator
	)
	switch cfg.Provider {
	case "openai":
		ai := service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model, cfg.EmbedModel)
		embedder, generator = ai, ai
	case "gemini", "":
		ai, err := service.NewGeminiService(context.Background(), cfg.GoogleAPIKey, cfg.Model, cfg.EmbedModel)
		if err != nil {
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		embedder, generator = ai, ai
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	retrying, err := service.NewRetryingGenerator(generator, service.RetryPolicy{
		MaxAttempts: cfg.Pipeline.MaxAttempts,
		BackoffBase: cfg.Pipeline.BackoffBase,
	})
	if err != nil {
		return nil, err
	}

	chunker, err := service.NewChunkService(types.ChunkingConfig{
		MaxChunkSize: cfg.Pipeline.MaxChunkSize,
		OverlapSize:  cfg.Pipeline.OverlapSize,
	})
	if err != nil {
		return nil, err
	}
	retriever, err := service.NewRetriever(embedder, cfg.Pipeline.TopK)
	if err != nil {
		return nil, err
	}
	composer, err := service.NewPromptComposer(cfg.Pipeline.PromptTokenBudget)
	if err != nil {
		return nil, err
	}

	return service.NewAnalysisService(
		service.NewPDFService(),
		chunker,
		retriever,
		composer,
		retrying,
		service.NewKeywordClassifier(),
		cfg.Pipeline.RequestTimeout,
		history,
		index,
	), nil
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
