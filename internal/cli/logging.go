package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"nmai-api/internal/config"
	"nmai-api/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Timezone: %s", cfg.Location()),
		fmt.Sprintf("Margin (contract/fx): %s / %s", formatFloat(cfg.Calc.ContractSize), formatFloat(cfg.Calc.FXRate)),
		fmt.Sprintf("History: %s (limit %d)", cfg.History.Driver, cfg.History.Limit),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Host) != "")),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		personaLine(cfg.PersonaPath()),
		sectionLine("LLM config", cfg.LLM),
		sectionLine("Ollama config", cfg.Ollama),
		sectionLine("Market config", cfg.Market),
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func personaLine(path string) string {
	if path == "" {
		return "Persona: embedded"
	}
	return fmt.Sprintf("Persona: %s", path)
}

func formatFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case section.Loaded():
		return fmt.Sprintf("%s: %s", name, section.File)
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s (not loaded)", name, section.File)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
