package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/security"
	"github.com/pitchlab/tactics.report/internal/workflow"
)

var (
	reportTeamID string
	reportTitle  string
	reportOut    string
	reportCharts bool
)

var reportCmd = &cobra.Command{
	Use:   "report <match-id>",
	Short: "Compose a tactical report and export it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportTeamID, "team", "", "team the report is about")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "report title")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "write the report JSON to this file (default: stdout)")
	reportCmd.Flags().BoolVar(&reportCharts, "charts", true, "include position charts")
	_ = reportCmd.MarkFlagRequired("team")
}

func runReport(cmd *cobra.Command, args []string) error {
	matchID := args[0]
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	store, err := openStore()
	if err != nil {
		return err
	}

	res, err := runStage(workflow.Report(localDeps(db, store)), jobs.KindReport, map[string]any{
		"match_id":       matchID,
		"team_id":        reportTeamID,
		"title":          reportTitle,
		"include_charts": reportCharts,
	})
	if err != nil {
		return err
	}

	data, err := store.GetObject(context.Background(), artifact.ReportKey(matchID))
	if err != nil {
		return err
	}
	if reportOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := security.ValidateExportPath(reportOut); err != nil {
		return fault.Wrap(fault.BadInput, err, "--out")
	}
	if err := os.WriteFile(reportOut, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "report for %s: %v sections -> %s\n", matchID, res["section_count"], reportOut)
	return nil
}
