package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"docvault/src/infrastructure/job"
)

var (
	enqueueOrganizationID string
	enqueueDocumentID     string
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue [file]",
	Short: "Enqueue a document processing job",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnqueue,
}

func init() {
	rootCmd.AddCommand(enqueueCmd)

	enqueueCmd.Flags().StringVar(&enqueueOrganizationID, "organization", "", "organization the document belongs to")
	enqueueCmd.Flags().StringVar(&enqueueDocumentID, "document", "", "document ID (defaults to the file name)")
	enqueueCmd.MarkFlagRequired("organization")
}

func runEnqueue(cmd *cobra.Command, args []string) error {
	// Initialize logger
	logger := watermill.NewStdLogger(false, false)

	// Initialize PostgreSQL connection
	db, err := openDatabase()
	if err != nil {
		return err
	}

	// Get underlying *sql.DB for cleanup
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying *sql.DB: %v", err)
	}
	defer sqlDB.Close()

	// Initialize AMQP publisher
	amqpPublisher, err := amqp.NewPublisher(
		amqp.NewDurableQueueConfig(viper.GetString("amqp.url")),
		logger,
	)
	if err != nil {
		return err
	}
	defer amqpPublisher.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", args[0], err)
	}

	documentID := enqueueDocumentID
	if documentID == "" {
		base := filepath.Base(args[0])
		documentID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	// Enqueue side only; the worker owns the task handler.
	jobRepo := job.NewPostgresJobRepository(db)
	jobService := job.NewJobService(amqpPublisher, jobRepo, logger, nil)

	jobID, err := jobService.EnqueueProcessDocument(cmd.Context(), documentID, enqueueOrganizationID, string(data))
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %v", err)
	}

	fmt.Printf("enqueued job %d for document %s\n", jobID, documentID)
	return nil
}
