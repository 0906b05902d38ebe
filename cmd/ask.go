package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"

	"docvault/src/core/rag"
	"docvault/src/infrastructure/providers"
	"docvault/src/storage/weaviate"
)

var (
	askOrganizationID string
	askDocumentID     string
	askTopK           int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askOrganizationID, "organization", "", "organization to search in")
	askCmd.Flags().StringVar(&askDocumentID, "document", "", "restrict retrieval to one document")
	askCmd.Flags().IntVar(&askTopK, "topk", 0, "number of fragments to retrieve (0 uses the provider default)")
	askCmd.MarkFlagRequired("organization")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	// Resolve the configured provider backend
	selector := providers.NewSelector(selectorConfigFromViper())
	embedder := selector.EmbeddingProvider()
	generator := selector.GenerationProvider()

	// Initialize Weaviate chunk index
	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: "http",
	})
	index := weaviate.NewChunkIndex(wc, viper.GetString("weaviate.class"), embedder.Dimensions())

	service := rag.NewService(embedder, generator, index, providerConfigFromViper())

	var (
		answer *rag.Answer
		err    error
	)
	if askDocumentID != "" {
		answer, err = service.AnswerQuestionInDocument(cmd.Context(), question, askOrganizationID, askDocumentID, askTopK)
	} else {
		answer, err = service.AnswerQuestion(cmd.Context(), question, askOrganizationID, askTopK)
	}
	if err != nil {
		return err
	}

	fmt.Println(answer.Answer)
	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, source := range answer.Sources {
			fmt.Printf("  - %s\n", source)
		}
	}

	return nil
}
