package downloader

import (
	"context"
	"fmt"
	"io"

	"gocloud.dev/blob"

	"github.com/akitsu/pixget/internal/pixiv"
	"github.com/akitsu/pixget/internal/progress"
	"github.com/akitsu/pixget/internal/queue"
)

// fetch transfers one task from its URL into the bucket, crediting every
// received chunk to the throughput counter as it arrives. The body is
// written whether or not the response carries a Content-Length; a known
// length is only used to reject short transfers before they are committed.
func fetch(ctx context.Context, images *pixiv.ImageClient, bucket *blob.Bucket, task queue.Task, counters *progress.Counters) error {
	resp, err := images.Get(ctx, task.URL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// The writer context is cancelled on failure so Close discards the
	// partial object instead of committing it.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := bucket.NewWriter(wctx, task.Dest, nil)
	if err != nil {
		return fmt.Errorf("open destination %s: %w", task.Dest, err)
	}

	n, err := io.Copy(w, &countingReader{r: resp.Body, counters: counters})
	if err != nil {
		cancel()
		w.Close()
		return fmt.Errorf("transfer %s: %w", task.Name, err)
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		cancel()
		w.Close()
		return fmt.Errorf("short transfer %s: got %d bytes, want %d", task.Name, n, resp.ContentLength)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("commit %s: %w", task.Name, err)
	}
	return nil
}

// countingReader credits every read chunk to the shared byte counter.
type countingReader struct {
	r        io.Reader
	counters *progress.Counters
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.counters.AddBytes(int64(n))
	}
	return n, err
}
