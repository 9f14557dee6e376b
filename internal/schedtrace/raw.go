package schedtrace

import (
	"fmt"
	"strconv"
)

// Token positions of the raw schema. A case line reads
//
//	<TaskSummaryLog> T-case 2.): Spawn task TaskB (ID = 7) created by TaskA (ID = 3).
//	        0           1    2     3    4    5   6  7  8    9     10   11   12 13 14
//
// and a scheduling line reads
//
//	<TaskSummaryLog> Scheduled: TaskA
//	        0            1        2
const (
	rawIdxKind       = 1
	rawIdxCaseTag    = 2
	rawIdxCreateType = 3
	rawIdxChildName  = 5
	rawIdxChildID    = 8
	rawIdxParentName = 11
	rawIdxParentID   = 14
	rawIdxScheduled  = 2
)

// Trailing punctuation on id tokens: "7)" on the child, "3)." on the parent.
const (
	childIDTrim  = 1
	parentIDTrim = 2
)

// RawKind discriminates recognized raw lines.
type RawKind int

const (
	RawUnknown RawKind = iota
	RawCase
	RawScheduled
)

// IsMarked reports whether the tokens belong to the task summary log.
func IsMarked(tokens []string) bool {
	return len(tokens) > 0 && tokens[0] == RawMarker
}

// KindOfRaw classifies a marked line by its second token.
func KindOfRaw(tokens []string) (RawKind, error) {
	if len(tokens) <= rawIdxKind {
		return RawUnknown, fmt.Errorf("%w: no kind token", ErrTruncatedLine)
	}
	switch tokens[rawIdxKind] {
	case RawCaseToken:
		return RawCase, nil
	case RawScheduledToken:
		return RawScheduled, nil
	default:
		return RawUnknown, nil
	}
}

// CaseTag returns the case discriminator of a T-case line, "1.):" for the
// no-new-task case and "2.):" for creations.
func CaseTag(tokens []string) (string, error) {
	if len(tokens) <= rawIdxCaseTag {
		return "", fmt.Errorf("%w: no case tag", ErrTruncatedLine)
	}
	return tokens[rawIdxCaseTag], nil
}

// CreationFromCase extracts the creation record from a T-case creation line.
func CreationFromCase(tokens []string) (Creation, error) {
	if len(tokens) <= rawIdxParentID {
		return Creation{}, fmt.Errorf("%w: creation needs %d tokens, got %d",
			ErrTruncatedLine, rawIdxParentID+1, len(tokens))
	}
	childID, err := parseTaskID(tokens[rawIdxChildID], childIDTrim)
	if err != nil {
		return Creation{}, err
	}
	parentID, err := parseTaskID(tokens[rawIdxParentID], parentIDTrim)
	if err != nil {
		return Creation{}, err
	}
	return Creation{
		Kind:     KindOfTag(tokens[rawIdxCreateType]),
		Child:    tokens[rawIdxChildName],
		ChildID:  childID,
		Parent:   tokens[rawIdxParentName],
		ParentID: parentID,
	}, nil
}

// ScheduledFromRaw returns the task name of a raw scheduling line.
func ScheduledFromRaw(tokens []string) (string, error) {
	if len(tokens) <= rawIdxScheduled {
		return "", fmt.Errorf("%w: no scheduled task", ErrTruncatedLine)
	}
	return tokens[rawIdxScheduled], nil
}

func parseTaskID(tok string, trim int) (int, error) {
	id, err := strconv.Atoi(trimTail(tok, trim))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadTaskID, tok)
	}
	return id, nil
}

// trimTail drops n trailing bytes, yielding "" rather than failing when the
// token is too short.
func trimTail(s string, n int) string {
	if len(s) <= n {
		return ""
	}
	return s[:len(s)-n]
}
