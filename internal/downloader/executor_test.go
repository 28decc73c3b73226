package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akitsu/pixget/internal/pixiv"
	"github.com/akitsu/pixget/internal/progress"
	"github.com/akitsu/pixget/internal/queue"
)

func TestFetchCountsBytes(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	body := strings.Repeat("x", 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	counters := progress.NewCounters(1)
	task := queue.Task{URL: server.URL + "/1_p0.jpg", Dest: "1_p0.jpg", Name: "1_p0.jpg"}

	if err := fetch(ctx, pixiv.NewImageClient(0), bucket, task, counters); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if got := counters.DrainBytes(); got != int64(len(body)) {
		t.Errorf("counted %d bytes, want %d", got, len(body))
	}

	data, err := bucket.ReadAll(ctx, "1_p0.jpg")
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != body {
		t.Errorf("destination has %d bytes, want %d", len(data), len(body))
	}
}

func TestFetchShortTransfer(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		w.(http.Flusher).Flush()
		// Hijack and close early so fewer bytes than promised arrive.
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		conn.Write([]byte("only-a-few-bytes"))
		conn.Close()
	}))
	defer server.Close()

	counters := progress.NewCounters(1)
	task := queue.Task{URL: server.URL + "/1_p0.jpg", Dest: "1_p0.jpg", Name: "1_p0.jpg"}

	if err := fetch(ctx, pixiv.NewImageClient(0), bucket, task, counters); err == nil {
		t.Fatal("fetch succeeded on truncated response")
	}

	if exists, _ := bucket.Exists(ctx, "1_p0.jpg"); exists {
		t.Error("partial object committed after failed transfer")
	}
}

func TestFetchNoContentLength(t *testing.T) {
	ctx := context.Background()
	bucket := openTestBucket(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Chunked response: no Content-Length header.
		w.(http.Flusher).Flush()
		w.Write([]byte("chunk-one"))
		w.(http.Flusher).Flush()
		w.Write([]byte("chunk-two"))
	}))
	defer server.Close()

	counters := progress.NewCounters(1)
	task := queue.Task{URL: server.URL + "/1_p0.jpg", Dest: "1_p0.jpg", Name: "1_p0.jpg"}

	if err := fetch(ctx, pixiv.NewImageClient(0), bucket, task, counters); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	data, err := bucket.ReadAll(ctx, "1_p0.jpg")
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != "chunk-onechunk-two" {
		t.Errorf("destination = %q, want both chunks", data)
	}
}

func TestFetchCancelledContext(t *testing.T) {
	bucket := openTestBucket(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("never-read"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	counters := progress.NewCounters(1)
	task := queue.Task{URL: server.URL + "/1_p0.jpg", Dest: "1_p0.jpg", Name: "1_p0.jpg"}

	if err := fetch(ctx, pixiv.NewImageClient(0), bucket, task, counters); err == nil {
		t.Fatal("fetch succeeded with cancelled context")
	}

	if exists, _ := bucket.Exists(context.Background(), "1_p0.jpg"); exists {
		t.Error("object committed despite cancelled context")
	}
}
