package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestParseJSONOverDefaults(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "coyote.json", `{"detect": {"echo": true}}`)
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cfg.Detect.Echo {
		t.Fatal("Detect.Echo = false, want true")
	}
	// Omitted sections keep their defaults.
	if cfg.Logging.Level != "info" || !cfg.Logging.Console {
		t.Fatalf("Logging = %+v, want default info console", cfg.Logging)
	}
	if cfg.Progress.EffectiveSchedule() != DefaultProgressSchedule {
		t.Fatalf("schedule = %q, want default", cfg.Progress.EffectiveSchedule())
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "coyote.yaml", strings.Join([]string{
		"logging:",
		"  level: debug",
		"  console: false",
		"  file:",
		"    enabled: true",
		"    path: /tmp/coyote.log",
		"report:",
		"  color: never",
	}, "\n"))
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Console {
		t.Fatalf("Logging = %+v", cfg.Logging)
	}
	if !cfg.Logging.File.Enabled || cfg.Logging.File.Path != "/tmp/coyote.log" {
		t.Fatalf("Logging.File = %+v", cfg.Logging.File)
	}
	if cfg.Report.Color != ColorNever {
		t.Fatalf("Report.Color = %q, want %q", cfg.Report.Color, ColorNever)
	}
}

func TestParseTOML(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "coyote.toml", strings.Join([]string{
		"[logging]",
		`level = "warn"`,
		"console = true",
		"[progress]",
		"enabled = false",
		`schedule = "@every 5s"`,
	}, "\n"))
	cfg, err := NewManager(path).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Progress.On() {
		t.Fatal("Progress.On() = true, want explicit false")
	}
	if cfg.Progress.Schedule != "@every 5s" {
		t.Fatalf("Progress.Schedule = %q", cfg.Progress.Schedule)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "c.json", `{"detekt": {"echo": true}}`},
		{"yaml", "c.yaml", "detekt:\n  echo: true\n"},
		{"toml", "c.toml", "[detekt]\necho = true\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeTemp(t, tt.file, tt.content)
			if _, err := NewManager(path).Parse(); err == nil {
				t.Fatal("Parse() accepted an unknown key")
			}
		})
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "c.json", `{"detect": {"echo": true}} {"report": {}}`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("Parse() accepted trailing data")
	}
}

func TestParseRejectsBadSyntax(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "c.yaml", "logging: [unclosed\n")
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("Parse() accepted broken yaml")
	}
}

func TestLoadCommits(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "c.json", `{"report": {"color": "always"}}`)
	m := NewManager(path)
	if got := m.Get(); got != nil {
		t.Fatalf("Get() before Load = %+v, want nil", got)
	}
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Get() != cfg {
		t.Fatal("Get() did not return the committed config")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	m := NewManager(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := m.Load(); !os.IsNotExist(err) {
		t.Fatalf("Load() error = %v, want not-exist", err)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	t.Parallel()
	m := NewManager("unused")
	ch := m.Subscribe(1)
	m.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel still open after Unsubscribe")
	}
	// Unsubscribing twice is harmless.
	m.Unsubscribe(ch)
}
