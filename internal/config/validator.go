package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

var requiredPaths = []string{
	"paths.samples",
	"paths.binaries",
	"paths.results",
	"paths.report",
	"paths.manifest",
	"toolchain.clang",
	"toolchain.gsa",
	"toolchain.python",
	"toolchain.cmake",
}

// ValidateConfig validates configuration values and returns an error listing
// every violation. Call it after Load.
func ValidateConfig() error {
	var errors []string

	for _, key := range requiredPaths {
		if strings.TrimSpace(viper.GetString(key)) == "" {
			errors = append(errors, fmt.Sprintf("%s must not be empty", key))
		}
	}

	if report := viper.GetString("paths.report"); report != "" && !strings.HasSuffix(strings.ToLower(report), ".xlsx") {
		errors = append(errors, fmt.Sprintf("paths.report must be an .xlsx file, got: %s", report))
	}

	switch t := viper.GetString("history.type"); t {
	case "sqlite", "postgres":
		if viper.GetString("history.dsn") == "" {
			errors = append(errors, "history.dsn must not be empty")
		}
	case "none":
	default:
		errors = append(errors, fmt.Sprintf("history.type must be sqlite, postgres or none, got: %q", t))
	}

	for name, target := range viper.GetStringMapString("targets") {
		if strings.TrimSpace(target) == "" {
			errors = append(errors, fmt.Sprintf("targets.%s must not be empty", name))
		}
	}

	if hook := viper.GetString("notifications.slack.webhook_url"); hook != "" {
		u, err := url.Parse(hook)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("notifications.slack.webhook_url must be an http(s) URL, got: %s", hook))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}
	return nil
}
