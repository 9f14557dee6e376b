// Package stream reads line-oriented trace input for the coyote passes.
//
// It is a thin wrapper over bufio.Scanner that raises the maximum line
// length to tracer proportions, counts consumed lines, and stops between
// lines when the context is canceled. A read blocked on an interactive stdin returns
// only when the input closes; cancellation is honored at the next line
// boundary, which is the usual contract for pipeline filters.
package stream

import (
	"bufio"
	"context"
	"io"

	"golang.org/x/time/rate"

	"github.com/oleg-peresada/coyote/pkg/logx"
)

// maxLineBytes caps a single trace line. Tracer output is wide but not
// pathological; one MiB leaves generous headroom over bufio's default.
const maxLineBytes = 1 << 20

// debugSampleRate caps per-line debug logging at a few lines per second so
// a debug-level run over a large trace still terminates in bounded log
// volume.
const debugSampleRate = 4

// Scanner yields trace lines one at a time.
type Scanner struct {
	ctx context.Context
	s   *bufio.Scanner
	log logx.Logger
	lim *rate.Limiter

	lines uint64
}

// New wraps r. The logger is only consulted at debug level.
func New(ctx context.Context, r io.Reader, log logx.Logger) *Scanner {
	if ctx == nil {
		ctx = context.Background()
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Scanner{
		ctx: ctx,
		s:   s,
		log: log,
		lim: rate.NewLimiter(rate.Limit(debugSampleRate), debugSampleRate),
	}
}

// Scan advances to the next line. It returns false at end of input, on a
// read error, or once the context is canceled; Err tells those apart.
func (s *Scanner) Scan() bool {
	if s.ctx.Err() != nil {
		return false
	}
	if !s.s.Scan() {
		return false
	}
	s.lines++
	if s.log.Enabled(logx.LevelDebug) && s.lim.Allow() {
		s.log.Debug("input line", logx.Uint64("line", s.lines))
	}
	return true
}

// Line returns the current line without its terminator.
func (s *Scanner) Line() string { return s.s.Text() }

// Lines returns how many lines Scan has yielded so far.
func (s *Scanner) Lines() uint64 { return s.lines }

// Err returns the reason Scan stopped early: the context error when the run
// was canceled, otherwise the underlying read error. Plain end of input
// returns nil.
func (s *Scanner) Err() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	return s.s.Err()
}
