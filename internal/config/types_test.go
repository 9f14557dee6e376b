package config

import "testing"

func TestNormalizeColor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", ColorAuto, false},
		{"auto", ColorAuto, false},
		{"Always", ColorAlways, false},
		{" never ", ColorNever, false},
		{"rainbow", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("NormalizeColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("NormalizeColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProgressDefaults(t *testing.T) {
	t.Parallel()
	var p ProgressConfig
	if !p.On() {
		t.Fatal("On() = false for omitted flag, want true")
	}
	off := false
	p.Enabled = &off
	if p.On() {
		t.Fatal("On() = true for explicit false")
	}
	if got := p.EffectiveSchedule(); got != DefaultProgressSchedule {
		t.Fatalf("EffectiveSchedule() = %q, want default", got)
	}
	p.Schedule = "@every 2m"
	if got := p.EffectiveSchedule(); got != "@every 2m" {
		t.Fatalf("EffectiveSchedule() = %q", got)
	}
}

func TestSummarizeChange(t *testing.T) {
	t.Parallel()
	oldCfg := Default()
	newCfg := Default()
	if changed, _ := SummarizeChange(oldCfg, newCfg); len(changed) != 0 {
		t.Fatalf("changed = %v, want none", changed)
	}

	newCfg.Logging.Level = "debug"
	newCfg.Detect.Echo = true
	changed, attrs := SummarizeChange(oldCfg, newCfg)
	if len(changed) != 2 || changed[0] != "detect" || changed[1] != "logging" {
		t.Fatalf("changed = %v, want [detect logging]", changed)
	}
	if len(attrs) == 0 {
		t.Fatal("attrs empty for a real change")
	}
}

func TestSummarizeChangeNilSafe(t *testing.T) {
	t.Parallel()
	changed, _ := SummarizeChange(nil, Default())
	// A nil old config differs from defaults in every defaulted field.
	if len(changed) == 0 {
		t.Fatal("changed empty for nil -> default transition")
	}
}
