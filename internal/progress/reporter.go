package progress

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/oleg-peresada/coyote/pkg/logx"
)

// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
var specParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks a heartbeat cron spec without starting anything.
func ValidateSchedule(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return fmt.Errorf("progress: empty schedule")
	}
	if _, err := specParser.Parse(spec); err != nil {
		return fmt.Errorf("progress: bad schedule %q: %w", spec, err)
	}
	return nil
}

// Reporter emits a heartbeat log line with the tracker's counters on a cron
// schedule. Heartbeats log at debug so default runs stay quiet.
type Reporter struct {
	log logx.Logger
	tr  *Tracker

	mu sync.Mutex
	c  *cron.Cron
}

func NewReporter(tr *Tracker, log logx.Logger) *Reporter {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Reporter{log: log, tr: tr}
}

// Start begins the heartbeat. Start is idempotent; a second call while
// running is a no-op.
func (r *Reporter) Start(schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.c != nil {
		return nil
	}
	c := cron.New(cron.WithParser(specParser))
	if _, err := c.AddFunc(schedule, r.beat); err != nil {
		return fmt.Errorf("progress: bad schedule %q: %w", schedule, err)
	}
	c.Start()
	r.c = c
	r.log.Debug("heartbeat started", logx.String("schedule", schedule))
	return nil
}

// Stop halts the heartbeat and waits for an in-flight beat, or for ctx.
func (r *Reporter) Stop(ctx context.Context) {
	r.mu.Lock()
	c := r.c
	r.c = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

func (r *Reporter) beat() {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("panic in heartbeat",
				logx.Any("panic", rec),
				logx.Stack(string(debug.Stack())))
		}
	}()
	if r.tr == nil {
		return
	}
	s := r.tr.Snapshot()
	r.log.Debug("progress",
		logx.Uint64("lines", s.Lines),
		logx.Uint64("records", s.Records),
		logx.Uint64("creations", s.Creations),
		logx.Uint64("switches", s.Switches),
		logx.Uint64("resets", s.Resets),
		logx.Uint64("anomalies", s.Anomalies))
}
