package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/workflow"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics <match-id>",
	Short: "Compute physical and PPDA metrics for a match",
	Long: `Compute per-player physical metrics (distance, speeds, sprints) from
the stored trajectory table and per-team PPDA from the stored events,
persist them, and print the results.`,
	Args: cobra.ExactArgs(1),
	RunE: runMetrics,
}

func runMetrics(cmd *cobra.Command, args []string) error {
	matchID := args[0]
	ctx := context.Background()
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	store, err := openStore()
	if err != nil {
		return err
	}

	res, err := runStage(workflow.Metrics(localDeps(db, store)), jobs.KindMetrics, map[string]any{
		"match_id": matchID,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "match %s: %v players, %v teams\n\n",
		matchID, res["player_count"], res["team_count"])

	stats, err := db.GetPhysicalStats(ctx, matchID)
	if err != nil {
		return err
	}
	pt := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	pt.Header("PLAYER", "DISTANCE KM", "MAX KM/H", "AVG KM/H", "SPRINTS")
	for _, s := range stats {
		pt.Append(
			s.PlayerID,
			fmt.Sprintf("%.2f", s.TotalDistanceKm),
			fmt.Sprintf("%.1f", s.MaxSpeedKmh),
			fmt.Sprintf("%.1f", s.AvgSpeedKmh),
			fmt.Sprintf("%d", s.SprintCount),
		)
	}
	pt.Render()

	m, err := db.LoadMatch(ctx, matchID)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout)
	dt := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	dt.Header("TEAM", "PPDA")
	for _, teamID := range []string{m.HomeTeamID, m.AwayTeamID} {
		ppda, err := db.GetPPDA(ctx, matchID, teamID)
		if fault.IsKind(err, fault.NotFound) {
			continue
		}
		if err != nil {
			return err
		}
		cell := "inf"
		if ppda.IsFinite() {
			cell = fmt.Sprintf("%.2f", ppda.Value())
		}
		dt.Append(teamID, cell)
	}
	dt.Render()
	return nil
}
