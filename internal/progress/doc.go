// Package progress provides the shared counters and the live status line
// for one download run.
//
// Counters is the run-scoped shared state: total and finished task counts
// under one mutex, and the bytes received since the last sample under a
// separate mutex so per-chunk byte updates never contend with task updates.
//
// Reporter samples the counters about once per second and renders a single
// overwritten status line with a fixed-width bar, the completion
// percentage, the finished/total counts, and the instantaneous throughput.
//
// # Usage
//
//	counters := progress.NewCounters(total)
//	reporter := progress.NewReporter(counters, progress.Options{})
//	reporter.Start()
//
//	// workers call counters.TaskFinished() and counters.AddBytes(n)
//
//	reporter.Wait() // returns once finished == total
//
// # Output Format
//
//	[#################### 45.20%                      ] (113/250)[  2.38 MB/s]
package progress
