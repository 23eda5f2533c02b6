package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/track"
	"github.com/pitchlab/tactics.report/internal/workflow"
)

var (
	stabilizeIn  string
	stabilizeFPS float64
)

var stabilizeCmd = &cobra.Command{
	Use:   "stabilize <match-id>",
	Short: "Clean a raw trajectory table and store the result",
	Long: `Run the trajectory stabilizer over a raw tracking table: drop short
tracks, merge fragmented ones, flag physically impossible speeds and
smooth positions. Reads the match's stored table unless --in names a
raw table file; the cleaned table replaces the stored one.`,
	Args: cobra.ExactArgs(1),
	RunE: runStabilize,
}

func init() {
	stabilizeCmd.Flags().StringVar(&stabilizeIn, "in", "", "raw trajectory table file (default: stored table)")
	stabilizeCmd.Flags().Float64Var(&stabilizeFPS, "fps", 0, "capture frame rate (default: tuning video_fps)")
}

func runStabilize(cmd *cobra.Command, args []string) error {
	matchID := args[0]
	ctx := context.Background()
	store, err := openStore()
	if err != nil {
		return err
	}

	var table *artifact.Table
	if stabilizeIn != "" {
		raw, err := os.ReadFile(stabilizeIn)
		if err != nil {
			return err
		}
		if table, err = artifact.DecodeTable(raw); err != nil {
			return err
		}
	} else {
		if table, err = store.GetTable(ctx, artifact.TrackingKey(matchID)); err != nil {
			return err
		}
	}

	fps := stabilizeFPS
	if fps <= 0 {
		fps = tuning.GetVideoFPS()
	}
	stab, err := track.NewStabilizer(track.StabilizerConfigFromTuning(tuning))
	if err != nil {
		return err
	}
	raw := workflow.TableToPoints(table)
	cleaned, err := stab.Process(raw, fps)
	if err != nil {
		return err
	}

	key := artifact.TrackingKey(matchID)
	if err := store.PutTable(ctx, key, workflow.PointsToTable(cleaned)); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "stabilized %s: %d points in, %d points out -> %s\n",
		matchID, len(raw), len(cleaned), key)
	return nil
}
