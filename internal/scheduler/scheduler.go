package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/abhisek/fequiz/internal/logger"
	"github.com/abhisek/fequiz/internal/store"
)

// pruneTimeout bounds a single prune run.
const pruneTimeout = 30 * time.Second

// Scheduler runs periodic store maintenance.
type Scheduler struct {
	scheduler *gocron.Scheduler
	pruner    store.Pruner
	keep      int
	interval  time.Duration
	log       *logger.Logger
}

// New creates a scheduler that prunes snapshots down to keep every interval.
func New(pruner store.Pruner, keep int, interval time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		pruner:    pruner,
		keep:      keep,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the prune job and starts the scheduler without blocking.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.prune); err != nil {
		return fmt.Errorf("schedule prune: %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()
	s.RunOnce(ctx)
}

// RunOnce prunes immediately and returns the number of removed snapshots.
func (s *Scheduler) RunOnce(ctx context.Context) int64 {
	removed, err := s.pruner.Prune(ctx, s.keep)
	if err != nil {
		s.log.Error("prune snapshots failed", "error", err)
		return 0
	}
	if removed > 0 {
		s.log.Info("pruned snapshots", "removed", removed, "keep", s.keep)
	}
	return removed
}
