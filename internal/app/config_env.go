package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, envKey string) {
		if *dst == "" {
			*dst = strings.TrimSpace(os.Getenv(envKey))
		}
	}
	setString(&cfg.URL, "GRIDSCRAPE_URL")
	setString(&cfg.InputFile, "GRIDSCRAPE_FILE")
	setString(&cfg.OutputPath, "GRIDSCRAPE_OUTPUT")
	setString(&cfg.OutputPDFPath, "GRIDSCRAPE_OUTPUT_PDF")
	setString(&cfg.UserAgent, "GRIDSCRAPE_USER_AGENT")
	setString(&cfg.CacheDir, "CACHE_DIR")

	if cfg.HeaderTokens == nil {
		if list := splitList(os.Getenv("GRIDSCRAPE_HEADERS")); len(list) > 0 {
			cfg.HeaderTokens = list
		}
	}
	if cfg.MaxAttempts == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("HTTP_MAX_ATTEMPTS"))); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}

	setDuration := func(dst *time.Duration, envKey string) {
		if *dst != 0 {
			return
		}
		if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(envKey))); err == nil {
			*dst = d
		}
	}
	setDuration(&cfg.HTTPTimeout, "HTTP_TIMEOUT")
	setDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE")

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheBypass, "CACHE_BYPASS")
	setBool(&cfg.Verbose, "VERBOSE")
}

// ApplyDefaults fills whatever is still unset after flags, env and file.
func ApplyDefaults(cfg *Config) {
	if cfg.URL == "" && cfg.InputFile == "" {
		cfg.URL = DefaultURL
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = "-"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
}

// splitList parses a comma-separated list, dropping blank entries.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			list = append(list, v)
		}
	}
	return list
}
