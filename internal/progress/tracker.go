// Package progress aggregates run counters for the coyote passes and
// reports them on a cron heartbeat while a long pipe is being consumed.
package progress

import "sync/atomic"

// Tracker counts pass activity. Safe for concurrent use; the formatter and
// detector sides of a piped run update it from separate goroutines.
type Tracker struct {
	lines     atomic.Uint64
	records   atomic.Uint64
	creations atomic.Uint64
	switches  atomic.Uint64
	resets    atomic.Uint64
	anomalies atomic.Uint64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Lines     uint64
	Records   uint64
	Creations uint64
	Switches  uint64
	Resets    uint64
	Anomalies uint64
}

// Line counts one consumed input line.
func (t *Tracker) Line() { t.lines.Add(1) }

// Record counts one emitted normalized record.
func (t *Tracker) Record() { t.records.Add(1) }

// Creation counts one task creation seen by either pass.
func (t *Tracker) Creation() { t.creations.Add(1) }

// Switch counts one scheduling event.
func (t *Tracker) Switch() { t.switches.Add(1) }

// Reset counts one registry reset on the detector side.
func (t *Tracker) Reset() { t.resets.Add(1) }

// Anomaly counts one flagged parent reschedule.
func (t *Tracker) Anomaly() { t.anomalies.Add(1) }

func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		Lines:     t.lines.Load(),
		Records:   t.records.Load(),
		Creations: t.creations.Load(),
		Switches:  t.switches.Load(),
		Resets:    t.resets.Load(),
		Anomalies: t.anomalies.Load(),
	}
}
