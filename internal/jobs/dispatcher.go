package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pitchlab/tactics.report/internal/artifact"
	"github.com/pitchlab/tactics.report/internal/config"
	"github.com/pitchlab/tactics.report/internal/fault"
	"github.com/pitchlab/tactics.report/internal/timeutil"
)

// Handler executes one job kind. Implementations report progress through
// the callback and must honor ctx cancellation at batch boundaries. A nil
// error requires a non-nil result.
type Handler func(ctx context.Context, job Job, progress func(int)) (map[string]any, error)

// Dispatcher owns the two dispatch queues and their worker pools. Exactly
// one handler owns each kind; registering a second owner is rejected.
type Dispatcher struct {
	store       Store
	bus         *artifact.Bus
	clock       timeutil.Clock
	baseBackoff time.Duration
	deadline    time.Duration

	mu       sync.Mutex
	handlers map[Kind]Handler
	queues   map[string]chan string
	workers  map[string]int
	cancels  map[string]context.CancelFunc
	started  bool

	wg   sync.WaitGroup
	stop context.CancelFunc
	ctx  context.Context
}

// NewDispatcher wires the dispatcher from the tuning file: worker counts
// per queue, retry base backoff and the per-job deadline.
func NewDispatcher(store Store, bus *artifact.Bus, cfg *config.TuningConfig) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		store:       store,
		bus:         bus,
		clock:       timeutil.RealClock{},
		baseBackoff: cfg.GetRetryBaseBackoff(),
		deadline:    cfg.GetJobDeadline(),
		handlers:    map[Kind]Handler{},
		queues: map[string]chan string{
			QueueDefault: make(chan string, 256),
			QueueGPU:     make(chan string, 64),
		},
		workers: map[string]int{
			QueueDefault: cfg.GetDefaultQueueWorkers(),
			QueueGPU:     cfg.GetGPUQueueWorkers(),
		},
		cancels: map[string]context.CancelFunc{},
		ctx:     ctx,
		stop:    cancel,
	}
}

// Register binds the single workflow owner for a kind.
func (d *Dispatcher) Register(kind Kind, h Handler) error {
	if !kind.Valid() {
		return fault.New(fault.BadInput, "unknown job kind %q", kind)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handlers[kind]; ok {
		return fault.New(fault.BadInput, "kind %s already has an owner", kind)
	}
	d.handlers[kind] = h
	return nil
}

// Start launches the worker pools. Idempotent.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	for queue, n := range d.workers {
		for i := 0; i < n; i++ {
			d.wg.Add(1)
			go d.worker(queue)
		}
	}
}

// Stop drains nothing: it cancels running jobs and waits for workers to
// exit.
func (d *Dispatcher) Stop() {
	d.stop()
	d.wg.Wait()
}

// Dispatch validates and enqueues a job. Re-dispatching the same kind and
// idempotency key while a previous job is pending, running or completed
// returns that job instead of enqueueing.
func (d *Dispatcher) Dispatch(kind Kind, payload map[string]any) (Job, error) {
	if err := ValidatePayload(kind, payload); err != nil {
		return Job{}, err
	}
	d.mu.Lock()
	_, ok := d.handlers[kind]
	d.mu.Unlock()
	if !ok {
		return Job{}, fault.New(fault.BadInput, "no handler registered for kind %s", kind)
	}

	key := IdempotencyKey(kind, payload)
	if existing, ok := d.store.FindByIdempotency(kind, key); ok {
		diagf("dispatch %s key %s returns existing job %s (%s)", kind, key, existing.JobID, existing.Status)
		return existing, nil
	}

	job := Job{
		JobID:          uuid.NewString(),
		Kind:           kind,
		Queue:          QueueFor(kind),
		Status:         StatusPending,
		IdempotencyKey: key,
		CreatedAt:      d.clock.Now().UTC(),
		Deadline:       d.clock.Now().UTC().Add(d.deadline),
		Payload:        payload,
	}
	if err := d.store.Create(job); err != nil {
		return Job{}, err
	}

	select {
	case d.queues[job.Queue] <- job.JobID:
	default:
		_, _ = d.store.Fail(job.JobID, string(fault.UpstreamUnavailable), "queue "+job.Queue+" is full")
		return Job{}, fault.New(fault.UpstreamUnavailable, "queue %s is full", job.Queue)
	}
	opsf("enqueued %s job %s on %s", kind, job.JobID, job.Queue)
	return job, nil
}

// Cancel stops a pending or running job. Running handlers observe the
// cancellation through their context.
func (d *Dispatcher) Cancel(jobID string) (Job, error) {
	job, err := d.store.Cancel(jobID)
	if err != nil {
		return Job{}, err
	}
	d.mu.Lock()
	if cancel, ok := d.cancels[jobID]; ok {
		cancel()
	}
	d.mu.Unlock()
	return job, nil
}

// Status returns the current job record.
func (d *Dispatcher) Status(jobID string) (Job, error) {
	return d.store.Get(jobID)
}

func (d *Dispatcher) worker(queue string) {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case jobID := <-d.queues[queue]:
			d.run(jobID)
		}
	}
}

func (d *Dispatcher) run(jobID string) {
	job, err := d.store.Start(jobID)
	if err != nil {
		// Cancelled before a worker picked it up.
		diagf("job %s not started: %v", jobID, err)
		return
	}

	d.mu.Lock()
	handler := d.handlers[job.Kind]
	d.mu.Unlock()

	ctx, cancel := context.WithDeadline(d.ctx, job.Deadline)
	d.mu.Lock()
	d.cancels[jobID] = cancel
	d.mu.Unlock()
	defer func() {
		cancel()
		d.mu.Lock()
		delete(d.cancels, jobID)
		d.mu.Unlock()
	}()

	progress := func(pct int) { _ = d.store.SetProgress(jobID, pct) }

	var result map[string]any
	maxRetries := MaxRetries(job.Kind)
	for attempt := 0; ; attempt++ {
		result, err = handler(ctx, job, progress)
		if err == nil || !fault.Retryable(err) || attempt >= maxRetries {
			break
		}
		backoff := d.baseBackoff << attempt
		opsf("job %s attempt %d failed transiently, retrying in %s: %v", jobID, attempt+1, backoff, err)
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-d.clock.After(backoff):
			if _, rerr := d.store.RecordRetry(jobID); rerr != nil {
				return
			}
			continue
		}
		break
	}

	if err != nil {
		d.finishFailed(jobID, ctx, err)
		return
	}

	completed, cerr := d.store.Complete(jobID, result)
	if cerr != nil {
		diagf("job %s completion rejected: %v", jobID, cerr)
		return
	}
	opsf("job %s (%s) completed", jobID, completed.Kind)
	d.publish(completed)
	d.chain(completed)
}

func (d *Dispatcher) finishFailed(jobID string, ctx context.Context, err error) {
	kind := fault.KindOf(err)
	if ctx.Err() != nil {
		if ctx.Err() == context.DeadlineExceeded {
			kind = fault.Timeout
		} else {
			kind = fault.Cancelled
		}
	}
	if kind == fault.Cancelled {
		// The store already holds the cancelled record.
		diagf("job %s stopped by cancellation", jobID)
		return
	}
	if _, ferr := d.store.Fail(jobID, string(kind), err.Error()); ferr != nil {
		diagf("job %s failure not recorded: %v", jobID, ferr)
		return
	}
	opsf("job %s failed (%s): %v", jobID, kind, err)
}

func (d *Dispatcher) publish(job Job) {
	if d.bus == nil {
		return
	}
	matchID, _ := job.Payload["match_id"].(string)
	d.bus.Publish(artifact.DomainEvent{
		Kind:    "job." + string(job.Kind) + ".completed",
		MatchID: matchID,
		Fields:  map[string]any{"job_id": job.JobID},
	})
}

// chain enqueues follow-up work after a completion. Full-match video
// processing feeds the metrics stage; ingestion triggers best-effort
// semantic indexing whose failure never propagates.
func (d *Dispatcher) chain(job Job) {
	switch job.Kind {
	case KindVideoProcessing:
		if mode, _ := job.Payload["mode"].(string); mode != "full_match" {
			return
		}
		matchID := chainMatchID(job)
		if matchID == "" {
			opsf("video job %s completed without a match id, skipping metrics chain", job.JobID)
			return
		}
		if _, err := d.Dispatch(KindMetrics, map[string]any{"match_id": matchID}); err != nil {
			opsf("metrics chain for match %s failed: %v", matchID, err)
		}
	case KindIngestion:
		matchID, _ := job.Payload["match_id"].(string)
		if _, err := d.Dispatch(KindAnalysis, map[string]any{"match_id": matchID}); err != nil {
			// Best effort only.
			opsf("semantic index chain for match %s failed: %v", matchID, err)
		}
	}
}

func chainMatchID(job Job) string {
	if id, ok := job.Result["match_id"].(string); ok && id != "" {
		return id
	}
	if meta, ok := job.Payload["metadata"].(map[string]any); ok {
		if id, ok := meta["match_id"].(string); ok {
			return id
		}
	}
	return ""
}
