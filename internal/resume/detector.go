package resume

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oleg-peresada/coyote/internal/progress"
	"github.com/oleg-peresada/coyote/internal/schedtrace"
	"github.com/oleg-peresada/coyote/internal/stream"
	"github.com/oleg-peresada/coyote/pkg/logx"
)

// Diagnostic literals. The two verdicts are grepped for by trace reviewers
// and must not drift.
const (
	parentPrefix    = "parent_task: "
	registryPrefix  = "registry: "
	scheduledPrefix = "scheduled_task: "

	verdictUnexpected = "UNEXPECTED: parent got scheduled after last creation of a spawn and/or continuation task."
	verdictNormal     = "NORMAL: scheduled task is not a previous parent task of an await point"
)

// Config selects detector behavior that is not part of the core contract.
type Config struct {
	// Echo reprints every input line and its token split ahead of the
	// diagnostics, which is occasionally useful when a trace misbehaves.
	Echo bool
}

// Detector consumes normalized records. Not safe for concurrent use; run
// one pass per input.
type Detector struct {
	out io.Writer
	cfg Config
	log logx.Logger
	tr  *progress.Tracker
	reg *Registry
}

func New(out io.Writer, cfg Config, log logx.Logger, tr *progress.Tracker) *Detector {
	if log.IsZero() {
		log = logx.Nop()
	}
	if tr == nil {
		tr = &progress.Tracker{}
	}
	return &Detector{out: out, cfg: cfg, log: log, tr: tr, reg: NewRegistry()}
}

// Registry exposes the live registry, mainly for the end-of-run report and
// for pipeline results. Callers must not touch it while Run is active.
func (d *Detector) Registry() *Registry { return d.reg }

// Run consumes normalized records from in until end of input, then writes
// the final report. A record that no longer fits the normalized layout ends
// the consuming loop quietly, the same contract the formatter applies to
// raw input; the report still covers everything seen up to that point.
func (d *Detector) Run(ctx context.Context, in io.Reader) error {
	sc := stream.New(ctx, in, d.log)
	for sc.Scan() {
		d.tr.Line()
		line := sc.Line()
		tokens := schedtrace.Split(line)
		if d.cfg.Echo {
			if err := d.echo(line, tokens); err != nil {
				return err
			}
		}
		if err := d.consume(tokens); err != nil {
			if errors.Is(err, schedtrace.ErrTruncatedLine) {
				d.log.Warn("record drifted from the normalized layout, stopping",
					logx.Err(err),
					logx.Uint64("line", sc.Lines()))
				break
			}
			return err
		}
	}
	readErr := sc.Err()
	if err := d.report(); err != nil {
		return err
	}
	if readErr != nil {
		if ctx.Err() != nil {
			return readErr
		}
		// Input that dies mid-stream ends the pass like end of input; the
		// report above already covers everything seen.
		d.log.Warn("input failed mid-stream", logx.Err(readErr), logx.Uint64("lines", sc.Lines()))
		return nil
	}
	d.log.Debug("pass complete",
		logx.Uint64("lines", sc.Lines()),
		logx.Int("parents", d.reg.Len()))
	return nil
}

// consume applies one record to the registry and writes its diagnostics.
func (d *Detector) consume(tokens []string) error {
	switch schedtrace.KindOfNormalized(tokens) {
	case schedtrace.NormSummary:
		tag, err := schedtrace.SummaryTag(tokens)
		if err != nil {
			return err
		}
		if !schedtrace.IsCreationTag(tag) {
			return nil
		}
		parent, err := schedtrace.ParentFromSummary(tokens)
		if err != nil {
			return err
		}
		d.reg.Reset(parent)
		d.tr.Reset()
		return d.writeLines(parentPrefix+parent, registryPrefix+d.reg.String())
	case schedtrace.NormSwitch:
		task, err := schedtrace.ScheduledFromSwitch(tokens)
		if err != nil {
			return err
		}
		d.tr.Switch()
		if err := d.writeLines(scheduledPrefix + task); err != nil {
			return err
		}
		if count, ok := d.reg.Bump(task); ok {
			d.tr.Anomaly()
			d.log.Info("parent rescheduled after creation",
				logx.String("task", task),
				logx.Int("count", count))
			return d.writeLines(redText(verdictUnexpected))
		}
		return d.writeLines(greenText(verdictNormal))
	default:
		return nil
	}
}

func (d *Detector) echo(line string, tokens []string) error {
	if _, err := fmt.Fprintln(d.out, line); err != nil {
		return fmt.Errorf("resume: write echo: %w", err)
	}
	if _, err := fmt.Fprintf(d.out, "%q\n", tokens); err != nil {
		return fmt.Errorf("resume: write echo: %w", err)
	}
	return nil
}

func (d *Detector) writeLines(lines ...string) error {
	for _, ln := range lines {
		if _, err := fmt.Fprintln(d.out, ln); err != nil {
			return fmt.Errorf("resume: write diagnostic: %w", err)
		}
	}
	return nil
}
