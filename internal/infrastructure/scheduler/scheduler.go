package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
)

// Job is one unit of periodic work. The context is cancelled when the
// scheduler shuts down or the run exceeds its timeout.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	cron   gocron.Scheduler
	logger *logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron,
		logger: logger.Named("scheduler"),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Register adds a job that runs every Interval. Overlapping runs of the same
// job are skipped.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("register job: name and run func are required")
	}
	if job.Interval <= 0 {
		return fmt.Errorf("register job %s: interval must be positive", job.Name)
	}
	if job.Timeout <= 0 {
		job.Timeout = job.Interval
	}

	_, err := s.cron.NewJob(
		gocron.DurationJob(job.Interval),
		gocron.NewTask(s.runner(job)),
		gocron.WithName(job.Name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", job.Name, err)
	}
	return nil
}

func (s *Scheduler) runner(job Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(s.ctx, job.Timeout)
		defer cancel()

		started := time.Now()
		if err := job.Run(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduled job failed", "job", job.Name, "error", err)
			return
		}
		s.logger.DebugContext(ctx, "scheduled job finished", "job", job.Name, "duration", time.Since(started).String())
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Jobs()))
}

func (s *Scheduler) Shutdown() error {
	s.cancel()
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}
