package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/library"
	"github.com/MimeLyc/subtitle-vocab-miner/pkg/log"
)

// ErrCancelled ends a run that was stopped by Cancel or its context.
var ErrCancelled = errors.New("queue run cancelled")

// EpisodeResult is the outcome of mining one video/subtitle pair.
type EpisodeResult struct {
	TotalWords   int           `json:"total_words"`
	NewWords     int           `json:"new_words"`
	CardsCreated int           `json:"cards_created"`
	Elapsed      time.Duration `json:"elapsed"`
}

// EpisodeProcessor mines one pair with the given subtitle offset.
type EpisodeProcessor interface {
	ProcessEpisode(ctx context.Context, pair library.FilePair, offset time.Duration) (EpisodeResult, error)
}

// PairFinder resolves the pairs of one queue item.
type PairFinder func(videoDir, subtitleDir string) ([]library.FilePair, error)

func findPairsByEpisode(videoDir, subtitleDir string) ([]library.FilePair, error) {
	pairs, _, err := library.FindPairs(videoDir, subtitleDir, library.StrategyEpisode)
	return pairs, err
}

type RunnerOption func(*Runner)

func WithReporter(reporter ProgressReporter) RunnerOption {
	return func(r *Runner) {
		if reporter != nil {
			r.reporter = reporter
		}
	}
}

// WithEvents makes the runner send events to ch. Sends block, so the
// consumer must keep reading until the run returns.
func WithEvents(ch chan<- Event) RunnerOption {
	return func(r *Runner) {
		r.events = ch
	}
}

func WithPairFinder(finder PairFinder) RunnerOption {
	return func(r *Runner) {
		if finder != nil {
			r.findPairs = finder
		}
	}
}

// Summary is the outcome of one run.
type Summary struct {
	Completed  int          `json:"completed"`
	Failed     int          `json:"failed"`
	TotalCards int          `json:"total_cards"`
	Cancelled  bool         `json:"cancelled"`
	Items      []*QueueItem `json:"items"`
}

// Runner drives the pending items of a queue through the episode processor,
// one item and one pair at a time.
type Runner struct {
	queue     *Queue
	processor EpisodeProcessor
	findPairs PairFinder
	reporter  ProgressReporter
	events    chan<- Event

	cancelled atomic.Bool
}

func NewRunner(queue *Queue, processor EpisodeProcessor, opts ...RunnerOption) *Runner {
	r := &Runner{
		queue:     queue,
		processor: processor,
		findPairs: findPairsByEpisode,
		reporter:  NopReporter(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cancel asks the current run to stop at its next checkpoint.
func (r *Runner) Cancel() {
	r.cancelled.Store(true)
}

func (r *Runner) stopRequested(ctx context.Context) bool {
	return r.cancelled.Load() || ctx.Err() != nil
}

// Run processes pending items in insertion order until none are left.
// A failing item is marked as error and the run moves on. When cancelled,
// Run returns ErrCancelled along with the summary so far; the interrupted
// item keeps its processing status.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{Items: make([]*QueueItem, 0)}
	total := r.queue.Counts()[StatusPending]
	r.reporter.OnStart(total, "Processing queue")
	log.Info("Queue run started with %d pending items", total)

	current := 0
	for {
		if r.stopRequested(ctx) {
			return r.cancel(summary)
		}
		next, ok := r.queue.NextPending()
		if !ok {
			break
		}
		item, err := r.queue.start(next.ID)
		if err != nil {
			// Removed or changed since NextPending.
			log.Warn("Skipping queue item %s: %v", next.ID, err)
			continue
		}

		current++
		r.emit(Event{Type: EventItemStarted, ItemID: item.ID, DisplayName: item.DisplayName})
		r.reporter.OnProgress(current, fmt.Sprintf("Processing %s", item.DisplayName))

		cards, err := r.processItem(ctx, item)
		summary.TotalCards += cards
		if errors.Is(err, ErrCancelled) {
			log.Info("Queue run cancelled during %s", item.DisplayName)
			return r.cancel(summary)
		}

		if err != nil {
			message := err.Error()
			final, ferr := r.queue.fail(item.ID, cards, message)
			if ferr != nil {
				log.Error("Failed to mark queue item %s as error: %v", item.ID, ferr)
				final = item
			}
			summary.Failed++
			summary.Items = append(summary.Items, final)
			log.Error("Queue item %s failed: %s", item.DisplayName, message)
			r.reporter.OnError(item.DisplayName, message)
			r.emit(Event{
				Type:         EventItemFailed,
				ItemID:       item.ID,
				DisplayName:  item.DisplayName,
				CardsCreated: cards,
				Error:        message,
			})
			continue
		}

		final, cerr := r.queue.complete(item.ID, cards)
		if cerr != nil {
			log.Error("Failed to mark queue item %s as completed: %v", item.ID, cerr)
			final = item
		}
		summary.Completed++
		summary.Items = append(summary.Items, final)
		log.Info("Queue item %s completed: %d cards", item.DisplayName, cards)
		r.emit(Event{
			Type:         EventItemCompleted,
			ItemID:       item.ID,
			DisplayName:  item.DisplayName,
			CardsCreated: cards,
		})
	}

	r.reporter.OnComplete()
	r.emit(Event{
		Type:       EventQueueFinished,
		Completed:  summary.Completed,
		Failed:     summary.Failed,
		TotalCards: summary.TotalCards,
	})
	log.Info("Queue run finished: %d completed, %d failed, %d cards",
		summary.Completed, summary.Failed, summary.TotalCards)
	return summary, nil
}

func (r *Runner) cancel(summary Summary) (Summary, error) {
	summary.Cancelled = true
	r.emit(Event{
		Type:       EventQueueCancelled,
		Completed:  summary.Completed,
		Failed:     summary.Failed,
		TotalCards: summary.TotalCards,
	})
	return summary, ErrCancelled
}

// processItem returns the cards created before any failure or cancellation.
func (r *Runner) processItem(ctx context.Context, item *QueueItem) (int, error) {
	pairs, err := r.findPairs(item.AnimeFolder, item.SubtitleFolder)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrNoPairsFound, "cannot list folders").
			WithContext("anime_folder", item.AnimeFolder).
			WithContext("subtitle_folder", item.SubtitleFolder)
	}
	if len(pairs) == 0 {
		return 0, apperror.New(apperror.ErrNoPairsFound, "no matching video/subtitle pairs found").
			WithContext("anime_folder", item.AnimeFolder).
			WithContext("subtitle_folder", item.SubtitleFolder)
	}
	log.Info("Queue item %s: %d pairs", item.DisplayName, len(pairs))

	cards := 0
	offset := item.Offset()
	for _, pair := range pairs {
		if r.stopRequested(ctx) {
			return cards, ErrCancelled
		}

		var result EpisodeResult
		err := apperror.SafeExecute(func() error {
			var perr error
			result, perr = r.processor.ProcessEpisode(ctx, pair, offset)
			return perr
		})
		cards += result.CardsCreated
		if err != nil {
			if r.stopRequested(ctx) && errors.Is(err, context.Canceled) {
				return cards, ErrCancelled
			}
			return cards, fmt.Errorf("%s: %w", pair.VideoName(), err)
		}
	}
	return cards, nil
}

func (r *Runner) emit(event Event) {
	if r.events == nil {
		return
	}
	event.At = time.Now()
	r.events <- event
}
