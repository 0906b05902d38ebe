package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"

	httpHdlr "docvault/handler/http"
	"docvault/src/core/rag"
	"docvault/src/infrastructure/job"
	"docvault/src/infrastructure/log"
	"docvault/src/infrastructure/providers"
	"docvault/src/storage/postgres/chunkctrl"
	"docvault/src/storage/weaviate"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the docvault HTTP server",
	Long:  `The serve command starts an HTTP server that answers questions and manages document chunks.`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	// Initialize PostgreSQL connection
	db, err := openDatabase()
	if err != nil {
		log.Error(err, "Failed to connect to database")
		return
	}

	// Resolve the configured provider backend
	selector := providers.NewSelector(selectorConfigFromViper())
	embedder := selector.EmbeddingProvider()
	generator := selector.GenerationProvider()

	// Initialize Weaviate client and chunk index
	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: "http",
	})
	index := weaviate.NewChunkIndex(wc, viper.GetString("weaviate.class"), embedder.Dimensions())
	if err := index.EnsureSchema(ctx); err != nil {
		log.Error(err, "Failed to ensure vector schema")
		return
	}

	// Initialize chunk metadata service
	chunkService, err := chunkctrl.NewChunkService(db)
	if err != nil {
		log.Error(err, "Failed to create chunk service")
		return
	}

	cfg := providerConfigFromViper()
	processor := rag.NewProcessor(embedder, index, chunkService, chunkerOptionsFromViper())
	service := rag.NewService(embedder, generator, index, cfg)

	// Initialize AMQP publisher for async processing. The server still
	// works without it; async requests are rejected instead.
	var enqueuer httpHdlr.JobEnqueuer
	amqpPublisher, err := amqp.NewPublisher(
		amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		log.Error(err, "Failed to connect to AMQP, async processing disabled")
	} else {
		defer amqpPublisher.Close()
		jobRepo := job.NewPostgresJobRepository(db)
		enqueuer = job.NewJobService(amqpPublisher, jobRepo, watermill.NewStdLogger(false, false), nil)
	}

	// Initialize HTTP handler
	handler := httpHdlr.NewHandler(service, processor, embedder, generator, enqueuer)

	// Setup gin router
	r := gin.Default()

	// Register routes
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Get underlying *sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		log.Error(err, "Failed to get underlying *sql.DB")
	} else {
		// Close database connection
		if err := sqlDB.Close(); err != nil {
			log.Error(err, "Error closing database connection")
		}
	}

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
