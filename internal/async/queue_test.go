package async

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/career-profile/constants"
	"github.com/joseph-ayodele/career-profile/internal/common"
	"github.com/joseph-ayodele/career-profile/internal/pipeline"
	"github.com/joseph-ayodele/career-profile/internal/profiles"
)

type fakeProcessor struct {
	mu          sync.Mutex
	processed   []uuid.UUID
	reprocessed []uuid.UUID
	notPending  map[uuid.UUID]bool
	release     chan struct{}
}

func (f *fakeProcessor) wait() {
	if f.release != nil {
		<-f.release
	}
}

func (f *fakeProcessor) Process(_ context.Context, id uuid.UUID) (pipeline.Outcome, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notPending[id] {
		return pipeline.Outcome{DocumentID: id}, common.ErrNotPending
	}
	f.processed = append(f.processed, id)
	return pipeline.Outcome{DocumentID: id, Status: constants.StatusCompleted}, nil
}

func (f *fakeProcessor) Reprocess(_ context.Context, id uuid.UUID) (pipeline.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reprocessed = append(f.reprocessed, id)
	return pipeline.Outcome{DocumentID: id, Status: constants.StatusCompleted}, nil
}

func (f *fakeProcessor) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.processed), len(f.reprocessed)
}

type fakeRebuilder struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeRebuilder) Rebuild(_ context.Context, id uuid.UUID) (profiles.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return profiles.Summary{ProfileID: id}, nil
}

func (f *fakeRebuilder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestProcessorQueue_ProcessesAndRebuildsOnce(t *testing.T) {
	proc := &fakeProcessor{}
	rb := &fakeRebuilder{}
	q := NewProcessorQueue(proc, nil, WithWorkers(3), WithRebuild(rb, uuid.New(), time.Hour))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(ctx, NewJob(uuid.New(), false)))
	}
	require.NoError(t, q.Enqueue(ctx, NewJob(uuid.New(), true)))

	q.Shutdown(ctx)

	processed, reprocessed := proc.counts()
	assert.Equal(t, 5, processed)
	assert.Equal(t, 1, reprocessed)
	// the hour-long debounce never fired; Shutdown flushed it exactly once
	assert.Equal(t, 1, rb.count())
}

func TestProcessorQueue_DebouncedRebuild(t *testing.T) {
	proc := &fakeProcessor{}
	rb := &fakeRebuilder{}
	q := NewProcessorQueue(proc, nil, WithRebuild(rb, uuid.New(), 20*time.Millisecond))
	defer q.Shutdown(context.Background())

	require.NoError(t, q.Enqueue(context.Background(), NewJob(uuid.New(), false)))
	require.Eventually(t, func() bool { return rb.count() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestProcessorQueue_NoRebuildWithoutSuccess(t *testing.T) {
	id := uuid.New()
	proc := &fakeProcessor{notPending: map[uuid.UUID]bool{id: true}}
	rb := &fakeRebuilder{}
	q := NewProcessorQueue(proc, nil, WithRebuild(rb, uuid.New(), time.Hour))

	require.NoError(t, q.Enqueue(context.Background(), NewJob(id, false)))
	q.Shutdown(context.Background())
	assert.Zero(t, rb.count())
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())
	assert.ErrorIs(t, q.Enqueue(context.Background(), NewJob(uuid.New(), false)), ErrClosed)
}

func TestProcessorQueue_BackpressureHonoursContext(t *testing.T) {
	proc := &fakeProcessor{release: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(1))

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, NewJob(uuid.New(), false))) // picked up by the worker, which blocks
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(ctx, NewJob(uuid.New(), false))) // fills the buffer

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(short, NewJob(uuid.New(), false)), context.DeadlineExceeded)

	close(proc.release)
	q.Shutdown(ctx)
	processed, _ := proc.counts()
	assert.Equal(t, 2, processed)
}

func TestRedisQueue_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	key := "career:test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), key, key+":processing") })
	q := NewRedisQueue(client, key, nil)
	q.block = 100 * time.Millisecond

	// a job stranded by a crashed consumer is picked up again
	stranded := NewJob(uuid.New(), false)
	require.NoError(t, q.Enqueue(ctx, stranded))
	require.NoError(t, client.LMove(ctx, key, key+":processing", "RIGHT", "LEFT").Err())

	fresh := NewJob(uuid.New(), true)
	require.NoError(t, q.Enqueue(ctx, fresh))

	var mu sync.Mutex
	var got []Job
	attempts := 0
	cctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- q.Consume(cctx, func(_ context.Context, j Job) error {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			if attempts == 1 {
				return assert.AnError
			}
			got = append(got, j)
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 5*time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	ids := []uuid.UUID{got[0].DocumentID, got[1].DocumentID}
	assert.ElementsMatch(t, []uuid.UUID{stranded.DocumentID, fresh.DocumentID}, ids)

	pending, inFlight, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
	assert.Zero(t, inFlight)

	q.Shutdown(ctx)
	assert.ErrorIs(t, q.Enqueue(ctx, fresh), ErrClosed)
}
