// Package tasks schedules the periodic maintenance jobs of the site
// backend and lets sitectl run them on demand.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownJob is returned by RunOnce for a name that was never registered.
var ErrUnknownJob = errors.New("unknown job")

// Job is a task run once at start and then every Interval.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds one run. Zero leaves the run bounded only by shutdown.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Runner owns the job goroutines.
type Runner struct {
	logger *zap.Logger
	jobs   []Job

	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu       sync.Mutex
	inFlight map[string]time.Time
}

func New(logger *zap.Logger) *Runner {
	return &Runner{logger: logger, inFlight: map[string]time.Time{}}
}

// Register adds job. Jobs registered after Start are not scheduled.
func (r *Runner) Register(job Job) {
	r.jobs = append(r.jobs, job)
}

// Start launches one goroutine per job.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}
	r.logger.Info("maintenance jobs scheduled", zap.Strings("jobs", r.Names()))
}

// Stop cancels the jobs and waits for them. If ctx ends first, the names
// of jobs still running are logged and ctx.Err() is returned.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("maintenance jobs stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("maintenance jobs still running at shutdown", zap.Strings("jobs", r.running()))
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	r.execute(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.execute(ctx, job)
		}
	}
}

func (r *Runner) execute(ctx context.Context, job Job) {
	start := time.Now()
	r.mu.Lock()
	r.inFlight[job.Name] = start
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.inFlight, job.Name)
		r.mu.Unlock()
	}()

	err := runBounded(ctx, job)
	log := r.logger.With(zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
	switch {
	case err == nil:
		log.Debug("job done")
	case ctx.Err() != nil:
		log.Debug("job interrupted by shutdown")
	default:
		log.Error("job failed", zap.Error(err))
	}
}

func runBounded(ctx context.Context, job Job) error {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	return job.Run(ctx)
}

// running lists in-flight jobs with how long each has been going.
func (r *Runner) running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.inFlight))
	for name, since := range r.inFlight {
		out = append(out, fmt.Sprintf("%s (%s)", name, time.Since(since).Round(time.Millisecond)))
	}
	sort.Strings(out)
	return out
}

// RunOnce runs the named job immediately, outside its schedule.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.Name == name {
			return runBounded(ctx, job)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownJob, name)
}

// RunAll runs every job once in registration order. A failing job does not
// stop the others; all failures are joined into the returned error.
func (r *Runner) RunAll(ctx context.Context) error {
	var errs []error
	for _, job := range r.jobs {
		if err := runBounded(ctx, job); err != nil {
			r.logger.Error("job failed", zap.String("job", job.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", job.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Names returns the registered job names in registration order.
func (r *Runner) Names() []string {
	names := make([]string, len(r.jobs))
	for i, job := range r.jobs {
		names[i] = job.Name
	}
	return names
}
