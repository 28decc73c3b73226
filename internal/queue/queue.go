package queue

import "sync"

// Task is one pending transfer: a remote URL bound to a destination key.
// Tasks are immutable and re-enqueued by value on retry.
type Task struct {
	// URL is the remote image URL.
	URL string

	// Dest is the destination key in the target bucket.
	Dest string

	// Name is the destination filename, used in diagnostics.
	Name string
}

// Queue is an unordered work queue with join semantics.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	pending []Task

	// outstanding counts pending plus in-flight tasks. It is incremented
	// by Push and decremented by Done; Pop moves a task from pending to
	// in-flight without changing it.
	outstanding int
}

// New creates an empty queue.
func New() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues a task. A re-enqueued retry counts as new outstanding work.
func (q *Queue) Push(t Task) {
	q.mu.Lock()
	q.pending = append(q.pending, t)
	q.outstanding++
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Pop removes one task. It blocks while the queue is empty but tasks are
// still in flight (they may be pushed back as retries), and returns
// ok=false once all outstanding work has reached a terminal state.
func (q *Queue) Pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.pending) == 0 && q.outstanding > 0 {
		q.cond.Wait()
	}
	if len(q.pending) == 0 {
		return Task{}, false
	}

	t := q.pending[len(q.pending)-1]
	q.pending = q.pending[:len(q.pending)-1]
	return t, true
}

// Done marks one previously popped task as terminal, whether it completed
// or was retired. Each Pop must be balanced by exactly one Done.
func (q *Queue) Done() {
	q.mu.Lock()
	if q.outstanding <= 0 {
		q.mu.Unlock()
		panic("queue: Done called more times than Push")
	}
	q.outstanding--
	done := q.outstanding == 0
	q.mu.Unlock()

	if done {
		q.cond.Broadcast()
	}
}

// Join blocks until every pushed task has been marked done.
func (q *Queue) Join() {
	q.mu.Lock()
	for q.outstanding > 0 {
		q.cond.Wait()
	}
	q.mu.Unlock()
}

// Len reports the number of tasks waiting to be popped.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
