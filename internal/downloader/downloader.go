package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gocloud.dev/blob"

	"github.com/akitsu/pixget/internal/pixiv"
	"github.com/akitsu/pixget/internal/planner"
	"github.com/akitsu/pixget/internal/progress"
	"github.com/akitsu/pixget/internal/queue"
)

// Options configures a download run.
type Options struct {
	// Workers is the number of parallel download workers.
	// Default: 10
	Workers int

	// MaxRetries is the per-URL retry budget. A URL that fails this many
	// times is retired: counted finished, logged, never fetched again.
	// Default: 5
	MaxRetries int

	// Timeout for individual image requests, used when Images is nil.
	// Default: 10s
	Timeout time.Duration

	// Images is the image transfer client. Built from Timeout when nil.
	Images *pixiv.ImageClient

	// Layout controls destination keys; see planner.Layout.
	Layout planner.Layout

	// Output is where diagnostics and the status line go.
	// Default: os.Stdout
	Output io.Writer

	// UpdateInterval is the reporter's sampling interval.
	// Default: 1s
	UpdateInterval time.Duration
}

// run carries the shared state of one Download call.
type run struct {
	queue      *queue.Queue
	bucket     *blob.Bucket
	images     *pixiv.ImageClient
	budget     *retryBudget
	counters   *progress.Counters
	maxRetries int
	out        io.Writer
}

// Download plans and transfers every outstanding image of illusts into
// bucket, blocking until the queue is fully drained. Transient transfer
// failures are retried and never returned; the only errors are planning
// failures before any worker starts.
func Download(ctx context.Context, bucket *blob.Bucket, illusts []*pixiv.Illustration, opts Options) error {
	if opts.Workers <= 0 {
		opts.Workers = 10
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Images == nil {
		opts.Images = pixiv.NewImageClient(opts.Timeout)
	}

	q, count, err := planner.Plan(ctx, bucket, illusts, opts.Layout)
	if err != nil {
		return fmt.Errorf("downloader: plan: %w", err)
	}
	if count == 0 {
		fmt.Fprintln(opts.Output, "[pixget] There is no new illustration need to download")
		return nil
	}

	fmt.Fprintf(opts.Output, "[pixget] Start download, total illustrations %d\n", count)

	counters := progress.NewCounters(count)
	reporter := progress.NewReporter(counters, progress.Options{
		Output:         opts.Output,
		UpdateInterval: opts.UpdateInterval,
	})
	reporter.Start()

	r := &run{
		queue:      q,
		bucket:     bucket,
		images:     opts.Images,
		budget:     newRetryBudget(),
		counters:   counters,
		maxRetries: opts.MaxRetries,
		out:        opts.Output,
	}

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx)
		}()
	}

	q.Join()
	wg.Wait()
	reporter.Wait()
	fmt.Fprintln(opts.Output)

	return nil
}

// worker drains the queue until every task, retries included, is terminal.
func (r *run) worker(ctx context.Context) {
	for {
		task, ok := r.queue.Pop()
		if !ok {
			return
		}
		r.process(ctx, task)
		r.queue.Done()
	}
}

// process runs one task attempt: retire at the retry cap, skip
// already-present destinations, otherwise fetch. A failed fetch requeues
// the task; the requeue happens before Done so the queue stays live.
func (r *run) process(ctx context.Context, task queue.Task) {
	if r.budget.count(task.URL) >= r.maxRetries {
		fmt.Fprintf(r.out, "\r[pixget] %s reach max retries, canceled\n", task.URL)
		r.counters.TaskFinished()
		return
	}

	// Re-checked defensively: a prior partial run or a colliding task may
	// have produced the file after planning.
	if exists, err := r.bucket.Exists(ctx, task.Dest); err == nil && exists {
		r.counters.TaskFinished()
		return
	}

	if err := fetch(ctx, r.images, r.bucket, task, r.counters); err != nil {
		r.budget.record(task.URL)
		fmt.Fprintf(r.out, "\r[pixget] %s => %s download error, retry\n", err, task.Name)
		r.queue.Push(task)
		return
	}

	r.counters.TaskFinished()
}
