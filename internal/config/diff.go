package config

import (
	"sort"
	"strings"

	"github.com/oleg-peresada/coyote/pkg/logx"
)

// SummarizeChange returns a compact list of changed sections plus
// structured attrs describing the new values, ready for the reload log
// line.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	attrs := make([]logx.Field, 0, 12)

	if oldCfg.Logging.Level != newCfg.Logging.Level ||
		oldCfg.Logging.Console != newCfg.Logging.Console ||
		oldCfg.Logging.File.Enabled != newCfg.Logging.File.Enabled ||
		strings.TrimSpace(oldCfg.Logging.File.Path) != strings.TrimSpace(newCfg.Logging.File.Path) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if oldCfg.Detect.Echo != newCfg.Detect.Echo {
		changed = append(changed, "detect")
		attrs = append(attrs, logx.Bool("detect.echo", newCfg.Detect.Echo))
	}

	if strings.TrimSpace(oldCfg.Report.Color) != strings.TrimSpace(newCfg.Report.Color) {
		changed = append(changed, "report")
		attrs = append(attrs, logx.String("report.color", strings.TrimSpace(newCfg.Report.Color)))
	}

	if oldCfg.Progress.On() != newCfg.Progress.On() ||
		oldCfg.Progress.EffectiveSchedule() != newCfg.Progress.EffectiveSchedule() {
		changed = append(changed, "progress")
		attrs = append(attrs,
			logx.Bool("progress.enabled", newCfg.Progress.On()),
			logx.String("progress.schedule", newCfg.Progress.EffectiveSchedule()),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}
