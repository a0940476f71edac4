package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Func runs one pass of a job and reports how many items it handled.
type Func func(ctx context.Context) (int, error)

type Job struct {
	Name     string
	Interval time.Duration
	Run      Func
}

// Scheduler runs each job once at start and then on its interval until the context is cancelled.
type Scheduler struct {
	jobs []Job
	wg   sync.WaitGroup
}

func NewScheduler(jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs}
}

func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			slog.Warn("job disabled: non-positive interval", "job", job.Name)
			continue
		}

		s.wg.Add(1)

		go func() {
			defer s.wg.Done()
			s.loop(ctx, job)
		}()
	}
}

// Wait blocks until every job loop has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		runOnce(ctx, job)

		select {
		case <-ctx.Done():
			slog.Info("job stopped", "job", job.Name)
			return
		case <-ticker.C:
		}
	}
}

func runOnce(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "job", job.Name, "panic", r)
		}
	}()

	start := time.Now()

	n, err := job.Run(ctx)
	if err != nil {
		slog.Error("job failed", "job", job.Name, "error", err, "duration", time.Since(start))
		return
	}

	slog.Info("job finished", "job", job.Name, "processed", n, "duration", time.Since(start))
}
