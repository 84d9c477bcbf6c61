package mailgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	"github.com/spf13/cobra"

	"github.com/mailify/mailgraph/pkg/config"
	"github.com/mailify/mailgraph/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.json>",
	Short: "Ingest emails from a JSON file",
	Long: `Ingest emails from a JSON file containing an array of email objects.
Each object carries subject, body, sender, recipients, date, and threading
headers. Emails already recorded in the ingest ledger are skipped.

Slightly malformed JSON (trailing commas, unquoted keys) is repaired before
parsing.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().Bool("build-graph", false, "Build graph relationships after ingestion")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	docs, err := loadEmailFile(args[0])
	if err != nil {
		return err
	}

	client, err := initializeClient(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Close(ctx)

	stats, err := client.IngestBatch(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingestion aborted: %w", err)
	}

	fmt.Printf("Ingested %d emails (%d duplicates, %d failed)\n",
		stats.Ingested, stats.Duplicates, stats.Failed)

	buildGraph, _ := cmd.Flags().GetBool("build-graph")
	if buildGraph && len(stats.DocumentIDs) > 0 {
		counts, err := client.BuildGraph(ctx, stats.DocumentIDs)
		if err != nil {
			return fmt.Errorf("graph construction failed: %w", err)
		}
		printEdgeCounts(counts)
	}
	return nil
}

// loadEmailFile parses a JSON array of emails, repairing malformed input
// before giving up.
func loadEmailFile(path string) ([]*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw []types.RawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s after repair: %w", path, err)
		}
	}

	docs := make([]*types.Document, len(raw))
	for i, r := range raw {
		docs[i] = &types.Document{
			Subject:        r.Subject,
			Body:           r.Body,
			SenderEmail:    r.SenderEmail,
			SenderName:     r.SenderName,
			Recipients:     r.Recipients,
			Cc:             r.Cc,
			Date:           r.Date,
			ThreadID:       r.ThreadID,
			MessageID:      r.MessageID,
			InReplyTo:      r.InReplyTo,
			HasAttachments: r.HasAttachments,
		}
	}
	return docs, nil
}

func printEdgeCounts(counts *types.EdgeCounts) {
	fmt.Printf("Created %d edges: %d thread, %d reply, %d involves, %d case (%d skipped)\n",
		counts.Total(), counts.Thread, counts.Reply, counts.Involve, counts.Case, counts.Skipped)
}
