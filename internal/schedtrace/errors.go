package schedtrace

import "errors"

var (
	// ErrTruncatedLine reports a recognized line with fewer tokens than its
	// fixed layout requires.
	ErrTruncatedLine = errors.New("schedtrace: line shorter than its token layout")

	// ErrBadTaskID reports an id token that did not survive integer parsing
	// after its trailing punctuation was stripped.
	ErrBadTaskID = errors.New("schedtrace: task id is not an integer")
)
