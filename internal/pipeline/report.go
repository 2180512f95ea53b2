package pipeline

import "sync/atomic"

// Report accumulates run counters. All increments are atomic so entity
// workers can share one report.
type Report struct {
	Processed int64
	Succeeded int64
	Skipped   int64
	Failed    int64

	ValuesWritten    int64
	ValuesSkipped    int64
	ValuesFailed     int64
	SnapshotsWritten int64
}

func (r *Report) incProcessed() { atomic.AddInt64(&r.Processed, 1) }
func (r *Report) incSucceeded() { atomic.AddInt64(&r.Succeeded, 1) }
func (r *Report) incSkipped()   { atomic.AddInt64(&r.Skipped, 1) }
func (r *Report) incFailed()    { atomic.AddInt64(&r.Failed, 1) }

func (r *Report) incValuesWritten()    { atomic.AddInt64(&r.ValuesWritten, 1) }
func (r *Report) incValuesSkipped()    { atomic.AddInt64(&r.ValuesSkipped, 1) }
func (r *Report) incValuesFailed()     { atomic.AddInt64(&r.ValuesFailed, 1) }
func (r *Report) incSnapshotsWritten() { atomic.AddInt64(&r.SnapshotsWritten, 1) }
