package resume

import "testing"

func TestRegistryBumpRequiresReset(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	if _, ok := r.Bump("TaskA"); ok {
		t.Fatal("Bump() succeeded on an unregistered task")
	}
	r.Reset("TaskA")
	if n, ok := r.Bump("TaskA"); !ok || n != 1 {
		t.Fatalf("Bump() = %d, %v, want 1, true", n, ok)
	}
	if n, ok := r.Bump("TaskA"); !ok || n != 2 {
		t.Fatalf("second Bump() = %d, %v, want 2, true", n, ok)
	}
	r.Reset("TaskA")
	if n, ok := r.Bump("TaskA"); !ok || n != 1 {
		t.Fatalf("Bump() after Reset() = %d, %v, want 1, true", n, ok)
	}
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.Reset("TaskA")
	snap := r.Snapshot()
	snap["TaskA"] = 99
	if n, _ := r.Bump("TaskA"); n != 1 {
		t.Fatalf("registry mutated through snapshot: count = %d, want 1", n)
	}
}

func TestRegistryString(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	if got := r.String(); got != "map[]" {
		t.Fatalf("String() = %q, want %q", got, "map[]")
	}
	r.Reset("TaskB")
	r.Reset("TaskA")
	r.Bump("TaskB")
	// fmt renders map keys sorted, independent of insertion order.
	if got := r.String(); got != "map[TaskA:0 TaskB:1]" {
		t.Fatalf("String() = %q, want %q", got, "map[TaskA:0 TaskB:1]")
	}
}
