package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/jobs"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/icron"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

// ErrRunInProgress is returned when a queue run is already active in this
// or another process.
var ErrRunInProgress = errors.New("a queue run is already in progress")

// RunRecord describes the most recent queue run.
type RunRecord struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at,omitempty"`
	Summary    jobs.Summary `json:"summary"`
	Error      string       `json:"error,omitempty"`
}

type QueueStatus struct {
	Running  bool                `json:"running"`
	Counts   map[jobs.Status]int `json:"counts"`
	LastRun  *RunRecord          `json:"last_run,omitempty"`
	Schedule *icron.TriggerInfo  `json:"schedule,omitempty"`
}

type QueueServiceOption func(*QueueService)

// WithLockPath guards runs with a file lock shared by every process using
// the same data directory.
func WithLockPath(path string) QueueServiceOption {
	return func(s *QueueService) {
		if strings.TrimSpace(path) != "" {
			s.lock = flock.New(path)
		}
	}
}

func WithQueueReporter(reporter jobs.ProgressReporter) QueueServiceOption {
	return func(s *QueueService) {
		s.reporter = reporter
	}
}

func WithQueuePairFinder(finder jobs.PairFinder) QueueServiceOption {
	return func(s *QueueService) {
		s.pairFinder = finder
	}
}

// QueueService owns queue runs: at most one at a time, cancellable, with
// events fanned out to subscribers and optional cron scheduling.
type QueueService struct {
	queue      *jobs.Queue
	processor  jobs.EpisodeProcessor
	reporter   jobs.ProgressReporter
	pairFinder jobs.PairFinder
	lock       *flock.Flock
	hub        *EventHub

	running atomic.Bool
	group   singleflight.Group

	mu      sync.Mutex
	runner  *jobs.Runner
	lastRun *RunRecord

	scheduleMu  sync.Mutex
	cron        *cron.Cron
	cronCtx     context.Context
	cronExpr    string
	cronEntryID cron.EntryID
}

func NewQueueService(queue *jobs.Queue, processor jobs.EpisodeProcessor, opts ...QueueServiceOption) *QueueService {
	s := &QueueService{
		queue:     queue,
		processor: processor,
		reporter:  jobs.NopReporter(),
		hub:       NewEventHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *QueueService) Queue() *jobs.Queue {
	return s.queue
}

func (s *QueueService) Events() *EventHub {
	return s.hub
}

func (s *QueueService) Running() bool {
	return s.running.Load()
}

// Run processes the queue and blocks until the run ends.
func (s *QueueService) Run(ctx context.Context) (jobs.Summary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return jobs.Summary{}, ErrRunInProgress
	}
	defer s.running.Store(false)

	if s.lock != nil {
		ok, err := s.lock.TryLock()
		if err != nil {
			return jobs.Summary{}, fmt.Errorf("acquire queue lock: %w", err)
		}
		if !ok {
			return jobs.Summary{}, ErrRunInProgress
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				log.Warn("Failed to release queue lock: %v", err)
			}
		}()
	}

	events := make(chan jobs.Event, 16)
	opts := []jobs.RunnerOption{
		jobs.WithReporter(s.reporter),
		jobs.WithEvents(events),
	}
	if s.pairFinder != nil {
		opts = append(opts, jobs.WithPairFinder(s.pairFinder))
	}
	runner := jobs.NewRunner(s.queue, s.processor, opts...)

	record := &RunRecord{StartedAt: time.Now()}
	s.mu.Lock()
	s.runner = runner
	s.lastRun = record
	s.mu.Unlock()

	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for event := range events {
			s.hub.Publish(event)
		}
	}()

	summary, err := runner.Run(ctx)
	close(events)
	<-forwarded

	s.mu.Lock()
	s.runner = nil
	record.FinishedAt = time.Now()
	record.Summary = summary
	if err != nil {
		record.Error = err.Error()
	}
	s.mu.Unlock()

	return summary, err
}

// Start runs the queue in the background. The run outlives the request that
// started it, so ctx only carries values, never cancellation.
func (s *QueueService) Start(ctx context.Context) error {
	if s.Running() {
		return ErrRunInProgress
	}
	go func() {
		summary, err := s.Run(context.WithoutCancel(ctx))
		switch {
		case errors.Is(err, ErrRunInProgress):
		case errors.Is(err, jobs.ErrCancelled):
			log.Info("Queue run cancelled after %d completed items", summary.Completed)
		case err != nil:
			log.Error("Queue run failed: %v", err)
		}
	}()
	return nil
}

// Cancel asks the active run to stop and reports whether one was active.
func (s *QueueService) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runner == nil {
		return false
	}
	s.runner.Cancel()
	return true
}

func (s *QueueService) Status() QueueStatus {
	status := QueueStatus{
		Running: s.Running(),
		Counts:  s.queue.Counts(),
	}

	s.mu.Lock()
	if s.lastRun != nil {
		record := *s.lastRun
		status.LastRun = &record
	}
	s.mu.Unlock()

	s.scheduleMu.Lock()
	expr := s.cronExpr
	s.scheduleMu.Unlock()
	if expr != "" {
		if info, err := icron.GetTriggerInfo(expr, time.Now()); err == nil {
			status.Schedule = info
		}
	}
	return status
}

// Schedule registers a cron entry that runs the queue when it has pending
// items. Overlapping triggers collapse into one run.
func (s *QueueService) Schedule(ctx context.Context, c *cron.Cron, expr string) error {
	s.scheduleMu.Lock()
	s.cron = c
	s.cronCtx = ctx
	s.scheduleMu.Unlock()
	return s.Reschedule(expr)
}

// Reschedule replaces the cron expression. An empty expression disables
// scheduled runs.
func (s *QueueService) Reschedule(expr string) error {
	expr = strings.TrimSpace(expr)

	s.scheduleMu.Lock()
	defer s.scheduleMu.Unlock()

	if s.cron == nil {
		return errors.New("scheduler is not configured")
	}
	if expr == s.cronExpr {
		return nil
	}
	if s.cronEntryID != 0 {
		s.cron.Remove(s.cronEntryID)
		s.cronEntryID = 0
	}
	s.cronExpr = ""
	if expr == "" {
		log.Info("Scheduled queue runs disabled")
		return nil
	}

	ctx := s.cronCtx
	id, err := s.cron.AddFunc(expr, func() {
		_, _, _ = s.group.Do("run", func() (any, error) {
			s.scheduledRun(ctx)
			return nil, nil
		})
	})
	if err != nil {
		return fmt.Errorf("schedule queue runs: %w", err)
	}
	s.cronEntryID = id
	s.cronExpr = expr

	if info, err := icron.GetTriggerInfo(expr, time.Now()); err == nil {
		log.Info("Queue runs scheduled with %q, next at %s", expr, info.Next.Format(time.RFC3339))
	}
	return nil
}

func (s *QueueService) scheduledRun(ctx context.Context) {
	if s.queue.Counts()[jobs.StatusPending] == 0 {
		log.Debug("Scheduled run skipped: no pending items")
		return
	}
	summary, err := s.Run(ctx)
	switch {
	case errors.Is(err, ErrRunInProgress):
		log.Info("Scheduled run skipped: %v", err)
	case err != nil:
		log.Error("Scheduled run ended: %v", err)
	default:
		log.Info("Scheduled run finished: %d completed, %d failed, %d cards",
			summary.Completed, summary.Failed, summary.TotalCards)
	}
}
