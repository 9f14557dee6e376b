package resume

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
)

const reportHeader = "=== Parent reschedule report ==="

var (
	boldText  = color.New(color.Bold).SprintFunc()
	redText   = color.New(color.FgRed).SprintFunc()
	greenText = color.New(color.FgGreen).SprintFunc()
)

// report writes the end-of-run registry dump: every tracked parent with its
// reschedule count, rescheduled parents highlighted. Color obeys the
// package-global fatih/color switch, so piped output stays plain.
func (d *Detector) report() error {
	counts := d.reg.Snapshot()

	if err := d.writeLines("", boldText(reportHeader)); err != nil {
		return err
	}
	if len(counts) == 0 {
		return d.writeLines("(none)")
	}

	names := make([]string, 0, len(counts))
	width := 0
	rescheduled := 0
	for name, n := range counts {
		names = append(names, name)
		if len(name) > width {
			width = len(name)
		}
		if n > 0 {
			rescheduled++
		}
	}
	sort.Strings(names)

	if err := d.writeLines(fmt.Sprintf("parents: %d  rescheduled: %d", len(counts), rescheduled)); err != nil {
		return err
	}
	for _, name := range names {
		// Pad before coloring so escape codes do not skew the column.
		row := fmt.Sprintf("  %-*s  %d", width, name, counts[name])
		if counts[name] > 0 {
			row = redText(row)
		}
		if err := d.writeLines(row); err != nil {
			return err
		}
	}
	return nil
}
