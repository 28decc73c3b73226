package progress

import "sync"

// Counters holds the shared mutable state of one download run.
//
// The task counts and the byte counter are guarded by separate mutexes:
// workers touch the byte counter on every received chunk, while task counts
// change only once per task, and the two must not contend.
type Counters struct {
	progressMu sync.Mutex
	total      int
	finished   int

	speedMu sync.Mutex
	bytes   int64
}

// NewCounters creates counters for a run of total tasks.
func NewCounters(total int) *Counters {
	return &Counters{total: total}
}

// Reset rearms the counters for a new run of total tasks.
func (c *Counters) Reset(total int) {
	c.progressMu.Lock()
	c.total = total
	c.finished = 0
	c.progressMu.Unlock()

	c.speedMu.Lock()
	c.bytes = 0
	c.speedMu.Unlock()
}

// TaskFinished records one task reaching a terminal state, whether it
// completed or was retired after exhausting its retries.
func (c *Counters) TaskFinished() {
	c.progressMu.Lock()
	c.finished++
	c.progressMu.Unlock()
}

// Snapshot returns the current finished and total task counts.
func (c *Counters) Snapshot() (finished, total int) {
	c.progressMu.Lock()
	defer c.progressMu.Unlock()
	return c.finished, c.total
}

// Complete reports whether every task has reached a terminal state.
func (c *Counters) Complete() bool {
	c.progressMu.Lock()
	defer c.progressMu.Unlock()
	return c.finished == c.total
}

// AddBytes credits n received bytes to the throughput counter.
func (c *Counters) AddBytes(n int64) {
	c.speedMu.Lock()
	c.bytes += n
	c.speedMu.Unlock()
}

// DrainBytes returns the bytes received since the previous drain and
// resets the counter. Only the reporter calls this.
func (c *Counters) DrainBytes() int64 {
	c.speedMu.Lock()
	defer c.speedMu.Unlock()
	n := c.bytes
	c.bytes = 0
	return n
}
