// Package cmd wires the tactics CLI: feed ingestion, trajectory
// stabilization, metric computation, report composition, the job API
// server and job management commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/config"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/fsutil"
	"github.com/pitchlab/tactics.report/internal/ingest"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/metrics"
	"github.com/pitchlab/tactics.report/internal/phase"
	"github.com/pitchlab/tactics.report/internal/possession"
	"github.com/pitchlab/tactics.report/internal/report"
	"github.com/pitchlab/tactics.report/internal/storage/sqlite"
	"github.com/pitchlab/tactics.report/internal/track"
	"github.com/pitchlab/tactics.report/internal/version"
	"github.com/pitchlab/tactics.report/internal/workflow"
)

var (
	dbPath       string
	artifactsDir string
	tuningPath   string
	verbose      bool

	tuning *config.TuningConfig
)

var rootCmd = &cobra.Command{
	Use:   "tactics",
	Short: "Football tactical intelligence engine",
	Long: `Ingest event feeds and tracking data, stabilize trajectories,
compute physical and tactical metrics, and compose tactical reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if tuningPath != "" {
			var err error
			tuning, err = config.LoadTuningConfig(tuningPath)
			if err != nil {
				return err
			}
		} else {
			// Accessor defaults mirror config/tuning.defaults.json, so the
			// binary works outside a checkout.
			tuning = config.EmptyTuningConfig()
		}

		var diag io.Writer
		if verbose {
			diag = os.Stderr
		}
		for _, set := range []func(ops, diag io.Writer){
			ingest.SetLogWriters,
			func(ops, diag io.Writer) { track.SetLogWriters(ops, diag, nil) },
			func(ops, diag io.Writer) { metrics.SetLogWriters(ops, diag, nil) },
			possession.SetLogWriters,
			phase.SetLogWriters,
			jobs.SetLogWriters,
			report.SetLogWriters,
			workflow.SetLogWriters,
		} {
			set(os.Stderr, diag)
		}
		return nil
	},
}

// Execute runs the root command. Exit codes: 0 on success, 2 for bad
// input, 3 when a required artifact is missing, 1 for everything else.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		switch fault.KindOf(err) {
		case fault.BadInput:
			os.Exit(2)
		case fault.NotFound:
			os.Exit(3)
		default:
			os.Exit(1)
		}
	}
}

func init() {
	rootCmd.Version = version.String()
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "tactics.db", "path to the sqlite database")
	rootCmd.PersistentFlags().StringVar(&artifactsDir, "artifacts", "artifacts", "artifact store root directory")
	rootCmd.PersistentFlags().StringVar(&tuningPath, "tuning", "", "tuning config JSON (defaults baked in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable diagnostic logging")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(stabilizeCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(migrateCmd)
}

// openDB opens the sqlite database and brings the schema up to date.
func openDB() (*sqlite.DB, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// openStore opens the filesystem artifact store.
func openStore() (artifact.Store, error) {
	return artifact.NewFSStore(fsutil.OSFileSystem{}, artifactsDir)
}

// localDeps builds the workflow dependency record for commands that run
// pipeline stages in-process. External collaborators stay nil; stages
// that need one report the missing dependency on their own.
func localDeps(db *sqlite.DB, store artifact.Store) workflow.Deps {
	return workflow.Deps{DB: db, Store: store, Tuning: tuning}
}

// runStage executes one pipeline stage in-process, outside the job
// fabric. The synthetic job record only carries the payload.
func runStage(h jobs.Handler, kind jobs.Kind, payload map[string]any) (map[string]any, error) {
	job := jobs.Job{
		JobID:   uuid.NewString(),
		Kind:    kind,
		Queue:   jobs.QueueFor(kind),
		Status:  jobs.StatusRunning,
		Payload: payload,
	}
	return h(context.Background(), job, func(int) {})
}
