// Package queue provides the task queue feeding the download workers.
//
// The queue is unordered and safe for concurrent producers and consumers.
// It tracks outstanding work as pending + in-flight tasks: Pop hands a task
// to a worker, Done marks it terminal, and a retry pushed back onto the
// queue counts as new outstanding work. Join (and Pop returning false)
// therefore only release once every task has reached a terminal state,
// retries included.
//
// # Usage
//
//	q := queue.New()
//	q.Push(queue.Task{URL: url, Dest: dest, Name: name})
//
//	// worker loop
//	for {
//	    task, ok := q.Pop()
//	    if !ok {
//	        return // fully drained
//	    }
//	    if transferFailed(task) {
//	        q.Push(task) // retry; push before Done keeps the queue live
//	    }
//	    q.Done()
//	}
package queue
