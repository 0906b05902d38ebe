package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"

	"docvault/src/core/rag"
	"docvault/src/infrastructure/integrations/unstructured"
	"docvault/src/infrastructure/providers"
	"docvault/src/storage/weaviate"
)

var (
	processOrganizationID string
	processDocumentID     string
	processExtract        bool
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Chunk and embed document text files into the vector index",
	Long: `The process command reads extracted document text from local files,
splits it into chunks, embeds them and replaces the documents' chunks in
the vector index. The document ID defaults to the file name without
extension.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processOrganizationID, "organization", "", "organization the documents belong to")
	processCmd.Flags().StringVar(&processDocumentID, "document", "", "document ID (single file only)")
	processCmd.Flags().BoolVar(&processExtract, "extract", false, "extract text through the Unstructured API first (for PDF and other binary formats)")
	processCmd.MarkFlagRequired("organization")
}

func runProcess(cmd *cobra.Command, args []string) error {
	if processDocumentID != "" && len(args) > 1 {
		return fmt.Errorf("--document can only be used with a single file")
	}

	// Resolve the configured provider backend
	selector := providers.NewSelector(selectorConfigFromViper())
	embedder := selector.EmbeddingProvider()

	// Initialize Weaviate chunk index
	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: "http",
	})
	index := weaviate.NewChunkIndex(wc, viper.GetString("weaviate.class"), embedder.Dimensions())
	if err := index.EnsureSchema(cmd.Context()); err != nil {
		return fmt.Errorf("failed to ensure vector schema: %v", err)
	}

	processor := rag.NewProcessor(embedder, index, nil, chunkerOptionsFromViper())

	var extractor *unstructured.Extractor
	if processExtract {
		extractor = unstructured.NewExtractor(viper.GetString("unstructured.url"), nil)
	}

	bar := progressbar.Default(int64(len(args)), "processing")
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %v", path, err)
		}

		text := string(data)
		if extractor != nil {
			text, err = extractor.ExtractText(cmd.Context(), filepath.Base(path), data)
			if err != nil {
				return fmt.Errorf("failed to extract %s: %v", path, err)
			}
		}

		documentID := processDocumentID
		if documentID == "" {
			base := filepath.Base(path)
			documentID = strings.TrimSuffix(base, filepath.Ext(base))
		}

		result, err := processor.Process(cmd.Context(), documentID, processOrganizationID, text)
		if err != nil {
			return fmt.Errorf("failed to process %s: %v", path, err)
		}

		bar.Add(1)
		fmt.Printf("%s: %d chunks (%d dims) in %s\n",
			documentID, result.ChunksCreated, result.Dimensions, result.Elapsed.Round(time.Millisecond))
	}

	return nil
}
