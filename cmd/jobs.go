package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/httputil"
	"github.com/pitchlab/tactics.report/internal/jobs"
)

var jobsServer string

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage pipeline jobs over the job API",
}

var jobsEnqueueCmd = &cobra.Command{
	Use:   "enqueue <kind>",
	Short: "Enqueue a pipeline job",
	Long: `Enqueue a job of the given kind (ingestion, video_processing,
calibration, metrics, phase_classification, pattern_detection, analysis,
report) with a JSON payload.`,
	Args: cobra.ExactArgs(1),
	RunE: runJobsEnqueue,
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show a job's state",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsStatus,
}

var jobsCancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a queued or running job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsCancel,
}

var jobsPayload string

func init() {
	jobsCmd.PersistentFlags().StringVar(&jobsServer, "server", "http://localhost:8080", "job API base URL")
	jobsEnqueueCmd.Flags().StringVar(&jobsPayload, "payload", "{}", "job payload as JSON")
	jobsCmd.AddCommand(jobsEnqueueCmd)
	jobsCmd.AddCommand(jobsStatusCmd)
	jobsCmd.AddCommand(jobsCancelCmd)
}

var jobsClient httputil.HTTPClient = httputil.NewStandardClient(&http.Client{Timeout: 30 * time.Second})

func runJobsEnqueue(cmd *cobra.Command, args []string) error {
	kind := jobs.Kind(args[0])
	if !kind.Valid() {
		return fault.New(fault.BadInput, "unknown job kind %q", args[0])
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(jobsPayload), &payload); err != nil {
		return fault.Wrap(fault.BadInput, err, "parse --payload")
	}

	body, err := json.Marshal(map[string]any{"kind": kind, "payload": payload})
	if err != nil {
		return err
	}
	resp, err := jobsClient.Post(jobsServer+"/api/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "reach job API %s", jobsServer)
	}
	return printAPIResponse(resp)
}

func runJobsStatus(cmd *cobra.Command, args []string) error {
	resp, err := jobsClient.Get(jobsServer + "/api/jobs/" + args[0])
	if err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "reach job API %s", jobsServer)
	}
	return printAPIResponse(resp)
}

func runJobsCancel(cmd *cobra.Command, args []string) error {
	resp, err := jobsClient.Post(jobsServer+"/api/jobs/"+args[0]+"/cancel", "application/json", nil)
	if err != nil {
		return fault.Wrap(fault.UpstreamUnavailable, err, "reach job API %s", jobsServer)
	}
	return printAPIResponse(resp)
}

// printAPIResponse relays the API's JSON body to stdout and maps error
// statuses back onto CLI exit codes.
func printAPIResponse(resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		body = pretty.Bytes()
	}
	fmt.Fprintln(os.Stdout, string(body))

	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode == http.StatusBadRequest:
		return fault.New(fault.BadInput, "job API returned %s", resp.Status)
	case resp.StatusCode == http.StatusNotFound:
		return fault.New(fault.NotFound, "job API returned %s", resp.Status)
	default:
		return fault.New(fault.Internal, "job API returned %s", resp.Status)
	}
}
