// Package resume implements the detector pass: it consumes normalized
// records and flags parents that get scheduled again after their last
// spawn or continuation creation.
package resume

import "fmt"

// Registry tracks parent tasks since their most recent creation event.
// A parent's count is zeroed on every creation it appears in and bumped
// each time it is scheduled afterwards, so any nonzero count is a parent
// that resumed behind an await point.
//
// The detector runs single-threaded; Registry is not synchronized.
type Registry struct {
	m map[string]int
}

func NewRegistry() *Registry {
	return &Registry{m: map[string]int{}}
}

// Reset registers name as a fresh parent, zeroing any reschedule count.
func (r *Registry) Reset(name string) {
	r.m[name] = 0
}

// Bump increments the reschedule count of a registered parent. ok reports
// whether name was registered; unknown names are the common case and leave
// the registry untouched.
func (r *Registry) Bump(name string) (count int, ok bool) {
	if _, ok := r.m[name]; !ok {
		return 0, false
	}
	r.m[name]++
	return r.m[name], true
}

// Len returns the number of tracked parents.
func (r *Registry) Len() int { return len(r.m) }

// Snapshot returns a copy of the counts.
func (r *Registry) Snapshot() map[string]int {
	cp := make(map[string]int, len(r.m))
	for k, v := range r.m {
		cp[k] = v
	}
	return cp
}

// String renders the counts in fmt's map notation, sorted by task name.
func (r *Registry) String() string {
	return fmt.Sprint(r.m)
}
