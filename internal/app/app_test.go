package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Tests share the process-global color switch, so they run serially with
// color forced off.
func testOpts() Options {
	return Options{LogLevel: "error", ColorMode: "never"}
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func stopApp(t *testing.T, a *App) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	a, err := New(testOpts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer stopApp(t, a)

	cfg := a.current()
	if cfg.Logging.Level != "info" {
		t.Fatalf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if a.effectiveEcho() {
		t.Fatal("effectiveEcho() = true, want false")
	}
}

func TestNewReadsConfigFile(t *testing.T) {
	path := writeConfig(t, "coyote.json",
		`{"logging":{"level":"warn","console":false},"detect":{"echo":true}}`)

	opts := testOpts()
	opts.ConfigPath = path
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer stopApp(t, a)

	if got := a.current().Logging.Level; got != "warn" {
		t.Fatalf("Logging.Level = %q, want %q", got, "warn")
	}
	if !a.effectiveEcho() {
		t.Fatal("effectiveEcho() = false, want true")
	}
}

func TestEchoFlagOverridesFile(t *testing.T) {
	path := writeConfig(t, "coyote.json", `{"detect":{"echo":true}}`)

	off := false
	opts := testOpts()
	opts.ConfigPath = path
	opts.Echo = &off
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer stopApp(t, a)

	if a.effectiveEcho() {
		t.Fatal("effectiveEcho() = true, want flag override false")
	}
}

func TestNewRejectsBadColorMode(t *testing.T) {
	opts := testOpts()
	opts.ColorMode = "sometimes"
	if _, err := New(opts); err == nil {
		t.Fatal("New() error = nil, want bad color mode error")
	}
}

func TestNewRejectsBadSchedule(t *testing.T) {
	path := writeConfig(t, "coyote.json", `{"progress":{"schedule":"every 30s"}}`)

	opts := testOpts()
	opts.ConfigPath = path
	if _, err := New(opts); err == nil {
		t.Fatal("New() error = nil, want bad schedule error")
	}
}

func TestNewMissingConfigFile(t *testing.T) {
	opts := testOpts()
	opts.ConfigPath = filepath.Join(t.TempDir(), "absent.json")
	if _, err := New(opts); err == nil {
		t.Fatal("New() error = nil, want load failure")
	}
}

func TestRunFormat(t *testing.T) {
	a, err := New(testOpts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer stopApp(t, a)

	in := strings.NewReader(strings.Join([]string{
		"<TaskSummaryLog> T-case 2.): Spawn task TaskB (ID = 7) created by TaskA (ID = 3).",
		"<TaskSummaryLog> Scheduled: TaskB",
	}, "\n"))
	var out bytes.Buffer
	if err := a.RunFormat(context.Background(), in, &out); err != nil {
		t.Fatalf("RunFormat() error = %v", err)
	}

	want := "Scheduled: Task(0)\n\nCONTEXT_SWITCH: Scheduled: TaskB\n\n"
	if got := out.String(); got != want {
		t.Fatalf("RunFormat() output = %q, want %q", got, want)
	}
}

func TestRunDetect(t *testing.T) {
	a, err := New(testOpts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer stopApp(t, a)

	in := strings.NewReader(strings.Join([]string{
		"     SUMMARY: Spawn TaskB (ID = 7) created by TaskA (ID = 3)",
		"",
		"CONTEXT_SWITCH: Scheduled: TaskA",
	}, "\n"))
	var out bytes.Buffer
	if err := a.RunDetect(context.Background(), in, &out); err != nil {
		t.Fatalf("RunDetect() error = %v", err)
	}

	want := strings.Join([]string{
		"parent_task: TaskA",
		"registry: map[TaskA:0]",
		"scheduled_task: TaskA",
		"UNEXPECTED: parent got scheduled after last creation of a spawn and/or continuation task.",
		"",
		"=== Parent reschedule report ===",
		"parents: 1  rescheduled: 1",
		"  TaskA  1",
		"",
	}, "\n")
	if got := out.String(); got != want {
		t.Fatalf("RunDetect() output = %q, want %q", got, want)
	}
}

func TestRunPipeline(t *testing.T) {
	a, err := New(testOpts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer stopApp(t, a)

	in := strings.NewReader(strings.Join([]string{
		"<TaskSummaryLog> T-case 2.): Spawn task TaskB (ID = 7) created by TaskA (ID = 3).",
		"<TaskSummaryLog> T-case 3.): Continuation task TaskC (ID = 9) created by TaskA (ID = 3).",
		"<TaskSummaryLog> Scheduled: TaskA",
	}, "\n"))
	var out bytes.Buffer
	if err := a.RunPipeline(context.Background(), in, &out); err != nil {
		t.Fatalf("RunPipeline() error = %v", err)
	}

	want := strings.Join([]string{
		"parent_task: TaskA",
		"registry: map[TaskA:0]",
		"scheduled_task: TaskA",
		"UNEXPECTED: parent got scheduled after last creation of a spawn and/or continuation task.",
		"",
		"=== Parent reschedule report ===",
		"parents: 1  rescheduled: 1",
		"  TaskA  1",
		"",
	}, "\n")
	if got := out.String(); got != want {
		t.Fatalf("RunPipeline() output = %q, want %q", got, want)
	}
}

func TestStartStop(t *testing.T) {
	a, err := New(testOpts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stopApp(t, a)
}

func TestWatchAppliesEchoChange(t *testing.T) {
	path := writeConfig(t, "coyote.json", `{"detect":{"echo":false}}`)

	opts := testOpts()
	opts.ConfigPath = path
	opts.WatchConfig = true
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stopApp(t, a)

	if err := os.WriteFile(path, []byte(`{"detect":{"echo":true}}`), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	// Watcher debounce is 250ms; give the reload generous room.
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if a.effectiveEcho() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("echo change never reached the app")
}
