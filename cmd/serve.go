package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitchlab/tactics.report/internal/api"
	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/jobs"
	"github.com/pitchlab/tactics.report/internal/storage/sqlite"
	"github.com/pitchlab/tactics.report/internal/workflow"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the job API server",
	Long: `Start the dispatcher with every pipeline workflow registered and
serve the job API (enqueue, status, cancel) until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", ":8080", "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	store, err := openStore()
	if err != nil {
		return err
	}

	dispatcher := jobs.NewDispatcher(sqlite.NewJobStore(db), artifact.NewBus(), tuning)
	if err := workflow.RegisterAll(dispatcher, localDeps(db, store)); err != nil {
		return err
	}
	dispatcher.Start()
	defer dispatcher.Stop()

	server := &http.Server{
		Addr:    serveListen,
		Handler: api.NewServer(dispatcher).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "listening on %s\n", serveListen)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "server stopped")
	return nil
}
