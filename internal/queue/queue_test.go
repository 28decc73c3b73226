package queue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPushPop(t *testing.T) {
	q := New()
	q.Push(Task{URL: "http://example.com/a.jpg", Dest: "a.jpg", Name: "a.jpg"})
	q.Push(Task{URL: "http://example.com/b.jpg", Dest: "b.jpg", Name: "b.jpg"})

	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}

	seen := make(map[string]bool)
	for i := 0; i < 2; i++ {
		task, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d: queue reported drained with work pending", i)
		}
		seen[task.Dest] = true
		q.Done()
	}

	if !seen["a.jpg"] || !seen["b.jpg"] {
		t.Errorf("popped tasks = %v, want both a.jpg and b.jpg", seen)
	}

	if _, ok := q.Pop(); ok {
		t.Error("Pop on drained queue returned a task")
	}
}

func TestPopBlocksUntilRetryOrDone(t *testing.T) {
	q := New()
	q.Push(Task{Dest: "a.jpg"})

	task, ok := q.Pop()
	if !ok {
		t.Fatal("Pop returned drained")
	}

	// Second consumer must not observe the queue as drained while a.jpg
	// is in flight: it could still come back as a retry.
	popped := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		popped <- ok
	}()

	select {
	case <-popped:
		t.Fatal("Pop returned while a task was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	// Requeue the task: the blocked consumer should receive it.
	q.Push(task)
	q.Done()

	select {
	case ok := <-popped:
		if !ok {
			t.Fatal("Pop returned drained instead of the retried task")
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after requeue")
	}
	q.Done()

	if _, ok := q.Pop(); ok {
		t.Error("queue not drained after all tasks done")
	}
}

func TestJoinWaitsForRetries(t *testing.T) {
	q := New()
	q.Push(Task{Dest: "a.jpg"})

	joined := make(chan struct{})
	go func() {
		q.Join()
		close(joined)
	}()

	task, _ := q.Pop()

	// Simulate a failed attempt: requeue before Done.
	q.Push(task)
	q.Done()

	select {
	case <-joined:
		t.Fatal("Join returned while a retry was pending")
	case <-time.After(50 * time.Millisecond):
	}

	if _, ok := q.Pop(); !ok {
		t.Fatal("retried task not available")
	}
	q.Done()

	select {
	case <-joined:
	case <-time.After(time.Second):
		t.Fatal("Join did not return after final Done")
	}
}

func TestConcurrentDrain(t *testing.T) {
	const tasks = 200
	const workers = 10

	q := New()
	for i := 0; i < tasks; i++ {
		q.Push(Task{Dest: "file"})
	}

	var processed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, ok := q.Pop()
				if !ok {
					return
				}
				processed.Add(1)
				q.Done()
			}
		}()
	}

	q.Join()
	wg.Wait()

	if got := processed.Load(); got != tasks {
		t.Errorf("processed %d tasks, want %d", got, tasks)
	}
}
