package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/career-profile/internal/common"
)

// ProcessorQueue is an in-process worker pool in front of the document processor.
// After successful jobs it schedules a single profile rebuild once the queue has been
// quiet for the rebuild delay.
type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	rebuilder    Rebuilder
	profileID    uuid.UUID
	rebuildDelay time.Duration

	ch   chan Job
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
	stop sync.Once

	// senders hold sendMu for reading; Shutdown takes it for writing before closing ch
	sendMu sync.RWMutex
	closed bool

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithRebuild enables the debounced profile rebuild.
func WithRebuild(r Rebuilder, profileID uuid.UUID, delay time.Duration) Option {
	return func(q *ProcessorQueue) {
		q.rebuilder = r
		q.profileID = profileID
		if delay > 0 {
			q.rebuildDelay = delay
		}
	}
}

func NewProcessorQueue(proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:         proc,
		logger:       logger,
		workers:      2,
		timeout:      3 * time.Minute,
		rebuildDelay: 2 * time.Second,
		ch:           make(chan Job, 256),
		quit:         make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithDocumentID(common.WithTraceID(ctx, job.TraceID), job.DocumentID.String())
	log := common.LoggerFrom(ctx, q.logger).With("worker_id", workerID)

	process := q.proc.Process
	if job.Force {
		process = q.proc.Reprocess
	}
	out, err := process(ctx, job.DocumentID)
	switch {
	case errors.Is(err, common.ErrNotPending):
		log.Info("document already handled; job dropped")
	case err != nil:
		log.Error("processing failed", "status", out.Status, "error", err)
	default:
		log.Info("processed document", "status", out.Status, "characters", out.Characters)
		q.scheduleRebuild()
	}
}

func (q *ProcessorQueue) scheduleRebuild() {
	if q.rebuilder == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = true
	if q.timer != nil {
		q.timer.Reset(q.rebuildDelay)
		return
	}
	q.timer = time.AfterFunc(q.rebuildDelay, q.flushRebuild)
}

func (q *ProcessorQueue) flushRebuild() {
	q.mu.Lock()
	if !q.pending {
		q.mu.Unlock()
		return
	}
	q.pending = false
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	sum, err := q.rebuilder.Rebuild(ctx, q.profileID)
	if err != nil {
		q.logger.Error("profile rebuild failed", "profile_id", q.profileID, "error", err)
		return
	}
	q.logger.Info("profile rebuilt", "profile_id", q.profileID, "documents_used", sum.DocumentsUsed)
}

// Enqueue blocks while the buffer is full, until ctx is done or Shutdown starts.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.sendMu.RLock()
	defer q.sendMu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "document_id", job.DocumentID)
		return ErrClosed
	}

	select {
	case q.ch <- job:
		q.logger.Debug("queued document for processing", "document_id", job.DocumentID, "force", job.Force)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "document_id", job.DocumentID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.quit:
		return ErrClosed
	}
}

// Shutdown stops accepting jobs, drains the workers, then runs any rebuild still waiting.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.stop.Do(func() {
		close(q.quit)
		q.sendMu.Lock()
		q.closed = true
		close(q.ch)
		q.sendMu.Unlock()
	})

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
		return
	case <-done:
	}

	q.mu.Lock()
	if q.timer != nil {
		q.timer.Stop()
	}
	q.mu.Unlock()
	if q.rebuilder != nil {
		q.flushRebuild()
	}
	q.logger.Info("queue drained, shutdown complete")
}
