package main

import (
	"context"
	"log"
	"net/http"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"github.com/darukaearth/rag-server/config"
	"github.com/darukaearth/rag-server/controller"
	"github.com/darukaearth/rag-server/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}

	if err := services.InitPDFLicense(cfg.UnidocLicenseKey); err != nil {
		log.Printf("WARN: Failed to set Unidoc license key: %v. PDF processing will fail.", err)
	}

	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
	}

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v. Make sure GEMINI_API_KEY is set.", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	store := services.NewChromaStore(chromaClient)
	embedder := services.NewOllamaEmbedder(httpClient, cfg.OllamaURL, cfg.EmbeddingModel)
	llm := services.NewGeminiLLM(geminiClient, cfg.LLMModel, cfg.RequestTimeout)
	chunker := services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)

	manager := services.NewCollectionManager(store, embedder, chunker)
	retriever := services.NewRetriever(store, embedder)
	composer := services.NewAnswerComposer(llm)
	sessions := services.NewSessionStore(cfg.MaxSessionsPerSite, cfg.HistoryWindow)
	matcher := services.NewProjectMatcher(store, embedder, llm, cfg.ProjectsCollection, cfg.MatchThreshold)

	ragController := controller.NewRAGController(cfg, retriever, composer, sessions, matcher)
	ingestController := controller.NewIngestController(cfg, manager)
	adminController := controller.NewAdminController(manager)
	sessionController := controller.NewSessionController(sessions)

	// Optional local directory indexer.
	if cfg.WatchDir != "" {
		indexer := services.NewFileIndexingService(manager, store, cfg.WatchCollection)
		go func() {
			ctx := context.Background()
			indexer.ScanAndIndexDirectory(ctx, cfg.WatchDir)
			indexer.WatchDirectory(ctx, cfg.WatchDir)
		}()
	}

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Daruka RAG API",
			"version": "1.0.0",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/query", ragController.Query)
		apiV1.POST("/pitch", ragController.Pitch)
		apiV1.POST("/projects", ragController.SeedProject)

		apiV1.POST("/ingest/text", ingestController.IngestText)
		apiV1.POST("/upload", ingestController.Upload)

		apiV1.GET("/collections", adminController.ListCollections)
		apiV1.GET("/collections/:name", adminController.InspectCollection)
		apiV1.DELETE("/collections/:name", adminController.DeleteCollection)
		apiV1.GET("/stats", adminController.Stats)
		apiV1.DELETE("/admin/clear", adminController.ClearAll)

		apiV1.GET("/sessions", sessionController.List)
		apiV1.GET("/sessions/:id", sessionController.Get)
		apiV1.DELETE("/sessions/:id", sessionController.Clear)
		apiV1.DELETE("/sessions", sessionController.ClearAll)
	}

	log.Printf("Daruka RAG backend starting on http://localhost:%s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/health", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
