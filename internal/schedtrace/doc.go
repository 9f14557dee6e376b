// Package schedtrace defines the two line schemas spoken by the coyote
// filters and the field extraction for both.
//
// # Raw schema
//
// Raw scheduler traces are line-oriented. A line belongs to the task summary
// log when its first whitespace-separated token is "<TaskSummaryLog>"; all
// other lines are noise. Recognized lines carry either a case summary
// ("T-case": a task creation, or the "no new task" case) or a scheduling
// event ("Scheduled:"). Fields sit at fixed token positions; the upstream
// tracer never quotes or escapes, so whitespace splitting is the whole
// tokenizer. Task id tokens carry trailing punctuation (one character on the
// child id, two on the parent id) that is stripped before integer parsing.
//
// # Normalized schema
//
// The formatter emits one-line records: "SUMMARY:" creation records with the
// parent name at token 8, and "CONTEXT_SWITCH:" scheduling records with the
// task name at token 2. The detector consumes exactly these positions.
//
// # Brittleness contract
//
// The fixed positions are a convention with the upstream trace format, not a
// negotiated protocol. A recognized line that is too short for its layout, or
// whose id tokens do not parse, yields ErrTruncatedLine/ErrBadTaskID; callers
// treat those as a silent end of the pass rather than a reportable failure,
// matching how the tooling has always behaved against format drift.
package schedtrace
