package downloader

import "sync"

// retryBudget tracks per-URL retry attempts, shared across all workers.
// Counts only grow; a URL at the cap is retired by the worker loop.
type retryBudget struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRetryBudget() *retryBudget {
	return &retryBudget{counts: make(map[string]int)}
}

// count returns the attempts recorded for url.
func (b *retryBudget) count(url string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[url]
}

// record charges one failed attempt to url and returns the new count.
func (b *retryBudget) record(url string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts[url]++
	return b.counts[url]
}
