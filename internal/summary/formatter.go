// Package summary implements the formatter pass: raw scheduler traces in,
// normalized one-line records out.
//
// Output is a strict contract. Downstream tooling, the resume detector
// included, matches on exact prefixes and token positions, so every literal
// below is load-bearing. Each record is followed by one blank line.
package summary

import (
	"context"
	"fmt"
	"io"

	"github.com/oleg-peresada/coyote/internal/progress"
	"github.com/oleg-peresada/coyote/internal/schedtrace"
	"github.com/oleg-peresada/coyote/internal/stream"
	"github.com/oleg-peresada/coyote/pkg/logx"
)

const (
	// seedRecord stands in for the first recognized line, whatever it says.
	// The scheduler's opening entry describes the implicit root task, which
	// carries no usable fields, so the pass emits this fixed seed instead.
	seedRecord = "Scheduled: Task(0)"

	// summaryPrefix is exactly five spaces, the marker and one space.
	summaryPrefix = "     SUMMARY: "

	switchPrefix  = "CONTEXT_SWITCH: "
	noNewTaskText = "No new task added."

	// Legacy diagnostic markers. Consumers grep for these exact strings, so
	// they are part of the output contract.
	markUnknownCreation = "error1"
	markUnknownLine     = "error2"
)

// Formatter normalizes a raw trace. Not safe for concurrent use; run one
// pass per input.
type Formatter struct {
	out io.Writer
	log logx.Logger
	tr  *progress.Tracker

	recognized uint64
}

func New(out io.Writer, log logx.Logger, tr *progress.Tracker) *Formatter {
	if log.IsZero() {
		log = logx.Nop()
	}
	if tr == nil {
		tr = &progress.Tracker{}
	}
	return &Formatter{out: out, log: log, tr: tr}
}

// Run consumes raw trace lines from in until end of input. A recognized
// line that no longer fits the fixed layout ends the pass quietly, with a
// warning on the log side only; historically trace consumers treat format
// drift as "the interesting part is over", not as a failure. Write errors
// on the record side do fail the run.
func (f *Formatter) Run(ctx context.Context, in io.Reader) error {
	sc := stream.New(ctx, in, f.log)
	for sc.Scan() {
		f.tr.Line()
		rec, err := f.normalize(sc.Line())
		if err != nil {
			f.log.Warn("trace drifted from the summary log layout, stopping",
				logx.Err(err),
				logx.Uint64("line", sc.Lines()))
			return nil
		}
		if rec == nil {
			continue
		}
		if err := f.emit(rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		if ctx.Err() != nil {
			return err
		}
		// Input that dies mid-stream ends the pass like end of input.
		f.log.Warn("input failed mid-stream", logx.Err(err), logx.Uint64("lines", sc.Lines()))
		return nil
	}
	f.log.Debug("pass complete", logx.Uint64("lines", sc.Lines()))
	return nil
}

// normalize maps one raw line to the record lines to emit. nil means the
// line is noise; an error means the layout contract broke and the pass
// should stop.
func (f *Formatter) normalize(line string) ([]string, error) {
	tokens := schedtrace.Split(line)
	if !schedtrace.IsMarked(tokens) {
		return nil, nil
	}
	f.recognized++
	if f.recognized == 1 {
		return []string{seedRecord}, nil
	}

	kind, err := schedtrace.KindOfRaw(tokens)
	if err != nil {
		return nil, err
	}
	switch kind {
	case schedtrace.RawCase:
		tag, err := schedtrace.CaseTag(tokens)
		if err != nil {
			return nil, err
		}
		if tag == schedtrace.NoNewTaskTag {
			return []string{summaryPrefix + noNewTaskText}, nil
		}
		c, err := schedtrace.CreationFromCase(tokens)
		if err != nil {
			return nil, err
		}
		f.tr.Creation()
		return renderCreation(c), nil
	case schedtrace.RawScheduled:
		task, err := schedtrace.ScheduledFromRaw(tokens)
		if err != nil {
			return nil, err
		}
		f.tr.Switch()
		return []string{switchPrefix + schedtrace.RawScheduledToken + " " + task}, nil
	default:
		return []string{markUnknownLine}, nil
	}
}

// renderCreation spells a creation record. A creation whose type tag was
// not recognized keeps its record but gets the unknown-creation marker
// spliced onto the prefix line, with the record body following bare; the
// lowercase fallback label keeps such records invisible to consumers that
// match the capitalized tags.
func renderCreation(c schedtrace.Creation) []string {
	body := fmt.Sprintf("%s %s (ID = %d) created by %s (ID = %d)",
		c.Kind.Label(), c.Child, c.ChildID, c.Parent, c.ParentID)
	if c.Kind == schedtrace.KindUnknown {
		return []string{summaryPrefix + markUnknownCreation, body}
	}
	return []string{summaryPrefix + body}
}

// emit writes the record lines plus the separating blank line.
func (f *Formatter) emit(rec []string) error {
	for _, ln := range rec {
		if _, err := fmt.Fprintln(f.out, ln); err != nil {
			return fmt.Errorf("summary: write record: %w", err)
		}
	}
	if _, err := fmt.Fprintln(f.out); err != nil {
		return fmt.Errorf("summary: write record: %w", err)
	}
	f.tr.Record()
	return nil
}
