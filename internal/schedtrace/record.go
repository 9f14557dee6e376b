package schedtrace

import "strings"

// Markers and tags shared by both schemas.
const (
	// RawMarker opens every line the raw pass cares about.
	RawMarker = "<TaskSummaryLog>"

	// RawCaseToken and RawScheduledToken discriminate recognized raw lines.
	RawCaseToken      = "T-case"
	RawScheduledToken = "Scheduled:"

	// NoNewTaskTag is the case tag of the "nothing was created" summary.
	NoNewTaskTag = "1.):"

	// SummaryMarker and SwitchMarker open normalized records.
	SummaryMarker = "SUMMARY:"
	SwitchMarker  = "CONTEXT_SWITCH:"

	// TagSpawn and TagContinuation are the creation tags carried by both
	// raw case lines and normalized summary records.
	TagSpawn        = "Spawn"
	TagContinuation = "Continuation"
)

// Split tokenizes a trace line. Runs of whitespace collapse and leading or
// trailing whitespace never yields empty tokens, so token positions stay
// stable however the tracer pads its columns.
func Split(line string) []string {
	return strings.Fields(line)
}

// CreationKind classifies a task creation.
type CreationKind int

const (
	// KindUnknown marks a creation whose type tag was not recognized. The
	// record is still emitted, with the legacy lowercase label.
	KindUnknown CreationKind = iota
	KindSpawn
	KindContinuation
)

// KindOfTag maps a creation type tag to its kind. Anything but the two
// known tags is KindUnknown.
func KindOfTag(tag string) CreationKind {
	switch tag {
	case TagSpawn:
		return KindSpawn
	case TagContinuation:
		return KindContinuation
	default:
		return KindUnknown
	}
}

// Label renders the kind the way normalized records spell it. Unknown kinds
// keep the historical lowercase fallback so downstream consumers matching on
// the capitalized tags skip them.
func (k CreationKind) Label() string {
	switch k {
	case KindSpawn:
		return TagSpawn
	case KindContinuation:
		return TagContinuation
	default:
		return "continuation"
	}
}

// Creation is one task creation extracted from a raw case line.
type Creation struct {
	Kind     CreationKind
	Child    string
	ChildID  int
	Parent   string
	ParentID int
}
