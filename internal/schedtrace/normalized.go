package schedtrace

import "fmt"

// Token positions of the normalized schema. A summary record reads
//
//	SUMMARY: Spawn TaskB (ID = 7) created by TaskA (ID = 3)
//	   0       1     2    3  4  5     6    7    8    9 ...
//
// and a context switch record reads
//
//	CONTEXT_SWITCH: Scheduled: TaskA
//	       0            1        2
const (
	normIdxTag      = 1
	normIdxParent   = 8
	normIdxSwitched = 2
)

// NormKind discriminates normalized records.
type NormKind int

const (
	NormIgnored NormKind = iota
	NormSummary
	NormSwitch
)

// KindOfNormalized classifies a normalized line by its first token. Lines
// that are neither summaries nor switches, including empty ones, are ignored.
func KindOfNormalized(tokens []string) NormKind {
	if len(tokens) == 0 {
		return NormIgnored
	}
	switch tokens[0] {
	case SummaryMarker:
		return NormSummary
	case SwitchMarker:
		return NormSwitch
	default:
		return NormIgnored
	}
}

// SummaryTag returns the record tag of a summary line, the creation type for
// creation records and "No" for the no-new-task text.
func SummaryTag(tokens []string) (string, error) {
	if len(tokens) <= normIdxTag {
		return "", fmt.Errorf("%w: summary has no tag", ErrTruncatedLine)
	}
	return tokens[normIdxTag], nil
}

// IsCreationTag reports whether a summary tag marks a task creation record.
// Lowercase fallback tags from unrecognized creations do not count.
func IsCreationTag(tag string) bool {
	return tag == TagSpawn || tag == TagContinuation
}

// ParentFromSummary returns the parent task name of a creation record.
func ParentFromSummary(tokens []string) (string, error) {
	if len(tokens) <= normIdxParent {
		return "", fmt.Errorf("%w: summary has no parent task", ErrTruncatedLine)
	}
	return tokens[normIdxParent], nil
}

// ScheduledFromSwitch returns the task name of a context switch record.
func ScheduledFromSwitch(tokens []string) (string, error) {
	if len(tokens) <= normIdxSwitched {
		return "", fmt.Errorf("%w: switch has no task", ErrTruncatedLine)
	}
	return tokens[normIdxSwitched], nil
}
