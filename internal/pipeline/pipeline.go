// Package pipeline chains the formatter and detector into one in-process
// run: raw trace in, detector diagnostics out, no intermediate file.
package pipeline

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/oleg-peresada/coyote/internal/progress"
	"github.com/oleg-peresada/coyote/internal/resume"
	"github.com/oleg-peresada/coyote/internal/summary"
	"github.com/oleg-peresada/coyote/pkg/logx"
)

// Result carries what a run produced beyond its printed output.
type Result struct {
	// Registry holds the final parent reschedule counts.
	Registry map[string]int
	// Stats is the tracker snapshot at the end of the run.
	Stats progress.Snapshot
}

type Pipeline struct {
	detCfg resume.Config
	log    logx.Logger
	tr     *progress.Tracker
}

func New(detCfg resume.Config, log logx.Logger, tr *progress.Tracker) *Pipeline {
	if log.IsZero() {
		log = logx.Nop()
	}
	if tr == nil {
		tr = &progress.Tracker{}
	}
	return &Pipeline{detCfg: detCfg, log: log, tr: tr}
}

// Run formats the raw trace from in and detects over the records, writing
// detector output to out. Both passes share one tracker, so heartbeats
// cover the whole pipe.
func (p *Pipeline) Run(ctx context.Context, in io.Reader, out io.Writer) (Result, error) {
	pr, pw := io.Pipe()
	det := resume.New(out, p.detCfg, p.log.With(logx.String("pass", "detect")), p.tr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f := summary.New(pw, p.log.With(logx.String("pass", "format")), p.tr)
		err := f.Run(gctx, in)
		if errors.Is(err, io.ErrClosedPipe) {
			// The detector stopped reading first. That ends the formatter
			// the same way a closed stdout ends a shell pipeline.
			err = nil
		}
		pw.CloseWithError(err)
		return err
	})
	g.Go(func() error {
		// Closing the read side unblocks a formatter still writing once
		// detection stops early.
		defer pr.Close()
		return det.Run(gctx, pr)
	})
	err := g.Wait()

	res := Result{
		Registry: det.Registry().Snapshot(),
		Stats:    p.tr.Snapshot(),
	}
	return res, err
}
