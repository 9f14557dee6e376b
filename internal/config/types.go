package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Logging  LoggingConfig  `json:"logging"`
	Detect   DetectConfig   `json:"detect"`
	Report   ReportConfig   `json:"report"`
	Progress ProgressConfig `json:"progress"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// DetectConfig controls the detector pass.
type DetectConfig struct {
	// Echo reprints every input line and its token split before the
	// diagnostics. Off by default; it multiplies output volume.
	Echo bool `json:"echo"`
}

// ReportConfig controls the end-of-run report.
type ReportConfig struct {
	// Color is one of "auto", "always" or "never".
	Color string `json:"color"`
}

// ProgressConfig controls the heartbeat that logs run counters while a
// long pipe is being consumed.
//
// Enabled is a pointer so an omitted flag can default to on while an
// explicit false still turns the heartbeat off.
type ProgressConfig struct {
	Enabled *bool `json:"enabled,omitempty"`
	// Schedule is a cron spec, 5-field, 6-field with seconds, or a
	// descriptor like "@every 30s".
	Schedule string `json:"schedule,omitempty"`
}

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultProgressSchedule is the heartbeat cadence when none is configured.
const DefaultProgressSchedule = "@every 30s"

// Default returns the configuration used when no file is given. Parse
// decodes files over these values, so omitted sections keep them.
func Default() *Config {
	return &Config{
		Logging:  LoggingConfig{Level: "info", Console: true},
		Report:   ReportConfig{Color: ColorAuto},
		Progress: ProgressConfig{Schedule: DefaultProgressSchedule},
	}
}

// NormalizeColor validates a color mode and maps the empty string to auto.
func NormalizeColor(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways:
		return ColorAlways, nil
	case ColorNever:
		return ColorNever, nil
	default:
		return "", fmt.Errorf("config: unknown color mode %q", s)
	}
}

// On reports the effective heartbeat switch; an omitted flag means on.
func (p ProgressConfig) On() bool {
	return p.Enabled == nil || *p.Enabled
}

// EffectiveSchedule returns the configured cadence or the default when the
// field is blank.
func (p ProgressConfig) EffectiveSchedule() string {
	if strings.TrimSpace(p.Schedule) == "" {
		return DefaultProgressSchedule
	}
	return p.Schedule
}
