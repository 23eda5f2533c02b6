package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/workflow"
)

var (
	ingestMatchID string
	ingestSource  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <feed.json>",
	Short: "Parse an event feed into the match store",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestMatchID, "match", "", "match id the feed belongs to")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "canonical", "feed source format (canonical, statsbomb, metrica)")
	_ = ingestCmd.MarkFlagRequired("match")
}

func runIngest(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	store, err := openStore()
	if err != nil {
		return err
	}

	res, err := runStage(workflow.Ingestion(localDeps(db, store)), jobs.KindIngestion, map[string]any{
		"match_id":  ingestMatchID,
		"source":    ingestSource,
		"feed_path": args[0],
	})
	if err != nil {
		return err
	}

	// Keep the raw feed around so job-fabric reprocessing can find it.
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if err := store.PutObject(context.Background(), artifact.FeedKey(ingestMatchID), raw, "application/json"); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "ingested match %s: %v events (source %v)\n",
		ingestMatchID, res["event_count"], res["source"])
	return nil
}
