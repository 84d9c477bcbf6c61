package mailgraph

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailify/mailgraph/pkg/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print graph statistics",
	RunE:  runStats,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create database constraints and indices",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(initCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	stats, err := client.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats query failed: %w", err)
	}

	fmt.Printf("Documents: %d\n", stats.Documents)
	fmt.Printf("Persons:   %d\n", stats.Persons)
	fmt.Printf("Cases:     %d\n", stats.Cases)
	for edgeType, n := range stats.Edges {
		fmt.Printf("Edges %s: %d\n", edgeType, n)
	}
	for category, n := range stats.Categories {
		fmt.Printf("Category %s: %d\n", category, n)
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
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

	if err := client.CreateIndices(ctx); err != nil {
		return fmt.Errorf("failed to create indices: %w", err)
	}
	fmt.Println("Constraints and indices created")
	return nil
}
