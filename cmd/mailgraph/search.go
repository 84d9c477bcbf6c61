package mailgraph

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mailify/mailgraph/pkg/config"
	"github.com/mailify/mailgraph/pkg/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a hybrid search against the graph",
	Long: `Run a hybrid search: the query is embedded, matched against stored
emails by vector similarity, and the seed set is expanded over thread, case,
and person relationships. Results are printed with their provenance.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Int("top-k", 0, "Number of similarity seeds")
	searchCmd.Flags().Int("max-results", 0, "Result list cap")
	searchCmd.Flags().Bool("no-expand", false, "Disable graph expansion")
	searchCmd.Flags().Bool("expand-people", false, "Also traverse shared-participant relationships")
	searchCmd.Flags().String("category", "", "Filter by sender category")
	searchCmd.Flags().String("case", "", "Filter by case id")
	searchCmd.Flags().String("sender", "", "Filter by sender email")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := initializeClient(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Close(ctx)

	query := strings.Join(args, " ")

	topK, _ := cmd.Flags().GetInt("top-k")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	noExpand, _ := cmd.Flags().GetBool("no-expand")
	expandPeople, _ := cmd.Flags().GetBool("expand-people")

	opts := search.Options{
		TopK:        topK,
		MaxResults:  maxResults,
		ExpandGraph: !noExpand,
		Expand:      search.DefaultExpandOptions(),
	}
	opts.Expand.People = expandPeople

	filters := &search.Filters{}
	filters.Category, _ = cmd.Flags().GetString("category")
	filters.CaseID, _ = cmd.Flags().GetString("case")
	filters.SenderEmail, _ = cmd.Flags().GetString("sender")
	if !filters.Empty() {
		opts.Filters = filters
	}

	results, err := client.HybridSearch(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. [%s] %s\n", i+1, r.ContextType, r.Subject)
		fmt.Printf("    from %s <%s> on %s", r.SenderName, r.SenderEmail, r.Date.Format("2006-01-02"))
		if r.SimilarityScore > 0 {
			fmt.Printf("  score=%.3f", r.SimilarityScore)
		}
		fmt.Println()
	}
	return nil
}
