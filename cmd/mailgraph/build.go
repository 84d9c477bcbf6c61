package mailgraph

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailify/mailgraph/pkg/config"
)

var buildCmd = &cobra.Command{
	Use:   "build-graph",
	Short: "Build graph relationships over stored emails",
	Long: `Create typed relationships between stored emails and their resolved
Person and Case entities. The pass is idempotent: re-running it over the
same emails creates no duplicate relationships.`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringSlice("ids", nil, "Limit the pass to these document ids")
}

func runBuild(cmd *cobra.Command, args []string) error {
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

	ids, _ := cmd.Flags().GetStringSlice("ids")
	counts, err := client.BuildGraph(ctx, ids)
	if err != nil {
		return fmt.Errorf("graph construction failed: %w", err)
	}

	printEdgeCounts(counts)
	return nil
}
