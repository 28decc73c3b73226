package progress

import (
	"sync"
	"testing"
)

func TestCountersTaskFinished(t *testing.T) {
	c := NewCounters(3)

	finished, total := c.Snapshot()
	if finished != 0 || total != 3 {
		t.Fatalf("Snapshot = (%d, %d), want (0, 3)", finished, total)
	}

	c.TaskFinished()
	c.TaskFinished()
	if finished, _ := c.Snapshot(); finished != 2 {
		t.Errorf("finished = %d, want 2", finished)
	}
	if c.Complete() {
		t.Error("Complete before all tasks finished")
	}

	c.TaskFinished()
	if !c.Complete() {
		t.Error("not Complete after all tasks finished")
	}
}

func TestCountersDrainResets(t *testing.T) {
	c := NewCounters(1)
	c.AddBytes(1024)
	c.AddBytes(512)

	if got := c.DrainBytes(); got != 1536 {
		t.Errorf("DrainBytes = %d, want 1536", got)
	}
	if got := c.DrainBytes(); got != 0 {
		t.Errorf("second DrainBytes = %d, want 0", got)
	}
}

func TestCountersReset(t *testing.T) {
	c := NewCounters(2)
	c.TaskFinished()
	c.AddBytes(100)

	c.Reset(5)

	finished, total := c.Snapshot()
	if finished != 0 || total != 5 {
		t.Errorf("Snapshot after Reset = (%d, %d), want (0, 5)", finished, total)
	}
	if got := c.DrainBytes(); got != 0 {
		t.Errorf("DrainBytes after Reset = %d, want 0", got)
	}
}

func TestCountersConcurrent(t *testing.T) {
	const workers = 10
	const perWorker = 100

	c := NewCounters(workers * perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				c.AddBytes(16)
				c.TaskFinished()
			}
		}()
	}
	wg.Wait()

	if !c.Complete() {
		finished, total := c.Snapshot()
		t.Errorf("finished = %d, want %d", finished, total)
	}
	if got := c.DrainBytes(); got != workers*perWorker*16 {
		t.Errorf("DrainBytes = %d, want %d", got, workers*perWorker*16)
	}
}
