package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/specialistvlad/radgo/internal/ctxlog"
	"github.com/specialistvlad/radgo/internal/reportstore"
	"github.com/specialistvlad/radgo/internal/request"
	"github.com/specialistvlad/radgo/internal/witness"
)

// Runner runs one request. *witness.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, req *request.Compiled, opts ...witness.RunOption) *witness.Outcome
}

// Config controls the pace and width of serve mode.
type Config struct {
	Interval time.Duration
	Workers  int
}

// Scheduler runs requests periodically.
type Scheduler struct {
	runner   Runner
	store    reportstore.Store
	requests []*request.Compiled
	cfg      Config
	busy     sync.Map // request name -> struct{}
}

// New creates a scheduler over a fixed set of requests.
func New(runner Runner, store reportstore.Store, requests []*request.Compiled, cfg Config) (*Scheduler, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("scheduler interval must be positive")
	}
	if cfg.Workers < 1 {
		return nil, errors.New("scheduler needs at least one worker")
	}
	return &Scheduler{runner: runner, store: store, requests: requests, cfg: cfg}, nil
}

// Run dispatches every request immediately and then once per interval until
// ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, logger := ctxlog.With(ctx, "component", "scheduler")
	logger.Info("Scheduler started.", "requests", len(s.requests), "interval", s.cfg.Interval, "workers", s.cfg.Workers)

	jobs := make(chan *request.Compiled, len(s.requests))
	wg := s.startWorkers(ctx, jobs)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.dispatch(ctx, jobs)
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			logger.Info("Scheduler stopped.")
			return nil
		case <-ticker.C:
			s.dispatch(ctx, jobs)
		}
	}
}

// RunOnce runs every request a single time and waits for all of them.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, _ = ctxlog.With(ctx, "component", "scheduler")
	jobs := make(chan *request.Compiled, len(s.requests))
	wg := s.startWorkers(ctx, jobs)
	s.dispatch(ctx, jobs)
	close(jobs)
	wg.Wait()
}

func (s *Scheduler) startWorkers(ctx context.Context, jobs <-chan *request.Compiled) *sync.WaitGroup {
	var wg sync.WaitGroup
	for id := range s.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, jobs, id)
		}()
	}
	return &wg
}

func (s *Scheduler) dispatch(ctx context.Context, jobs chan<- *request.Compiled) {
	logger := ctxlog.FromContext(ctx)
	for _, req := range s.requests {
		if _, running := s.busy.LoadOrStore(req.Name, struct{}{}); running {
			logger.Warn("Previous run still in progress, skipping tick.", "request", req.Name)
			continue
		}
		select {
		case jobs <- req:
		case <-ctx.Done():
			s.busy.Delete(req.Name)
			return
		}
	}
}

// worker is the processing loop of a single worker.
func (s *Scheduler) worker(ctx context.Context, jobs <-chan *request.Compiled, workerID int) {
	logger := ctxlog.FromContext(ctx).With("worker_id", workerID)
	logger.Debug("Worker started.")

	for req := range jobs {
		if ctx.Err() != nil {
			s.busy.Delete(req.Name)
			continue
		}
		out := s.runner.Run(ctx, req)
		if err := s.store.Put(ctx, out); err != nil {
			logger.Error("Failed to store outcome.", "request", req.Name, "error", err)
		}
		s.busy.Delete(req.Name)
	}
	logger.Debug("Worker finished.")
}
