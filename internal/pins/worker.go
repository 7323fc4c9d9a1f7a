package pins

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pawshearts/internal/domain"
)

// Worker drains due pins from the queue and publishes them.
type Worker struct {
	queue       domain.PinQueue
	publisher   Publisher
	logger      zerolog.Logger
	interval    time.Duration
	batchSize   int
	concurrency int
	now         func() time.Time
}

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	PollInterval time.Duration
	BatchSize    int
	Concurrency  int
	Logger       zerolog.Logger
	Now          func() time.Time
}

// NewWorker returns a worker reading from queue and posting through publisher.
func NewWorker(queue domain.PinQueue, publisher Publisher, opts WorkerOptions) *Worker {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Worker{
		queue:       queue,
		publisher:   publisher,
		logger:      opts.Logger,
		interval:    opts.PollInterval,
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
		now:         opts.Now,
	}
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// another poll; otherwise the worker sleeps for the poll interval.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.interval).Int("concurrency", w.concurrency).Msg("worker: started")
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("worker: stopped")
			return nil
		case <-timer.C:
		}

		n, err := w.RunOnce(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error().Err(err).Msg("worker: failed to claim pins")
		}
		next := w.interval
		if err == nil && n >= w.batchSize {
			next = 0
		}
		timer.Reset(next)
	}
}

// RunOnce claims one batch of due pins and publishes it. It returns the number
// of pins claimed.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	claimed, err := w.queue.ClaimDuePins(ctx, w.now().UTC(), w.batchSize)
	if err != nil {
		return 0, err
	}
	if len(claimed) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, pin := range claimed {
		g.Go(func() error {
			w.publish(gctx, pin)
			return nil
		})
	}
	_ = g.Wait()
	return len(claimed), nil
}

func (w *Worker) publish(ctx context.Context, pin domain.ScheduledPin) {
	log := w.logger.With().Str("pin_id", pin.ID).Logger()
	log.Info().Str("product", pin.ProductTitle).Msg("worker: picked pin")

	remoteID, url, err := w.publisher.Publish(ctx, pin)
	// Status updates must land even when the poll context is being cancelled.
	markCtx := context.WithoutCancel(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		log.Warn().Msg("worker: publish interrupted, returning pin to queue")
		if markErr := w.queue.RequeuePin(markCtx, pin.ID); markErr != nil {
			log.Error().Err(markErr).Msg("worker: requeue failed")
		}
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("worker: pin failed")
		if markErr := w.queue.MarkPinFailed(markCtx, pin.ID, err.Error()); markErr != nil {
			log.Error().Err(markErr).Msg("worker: update status failed")
		}
		return
	}
	if markErr := w.queue.MarkPinPublished(markCtx, pin.ID, remoteID, url, w.now().UTC()); markErr != nil {
		log.Error().Err(markErr).Msg("worker: update status failed")
		return
	}
	log.Info().Str("remote_id", remoteID).Msg("worker: pin published")
}
