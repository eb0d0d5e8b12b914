package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration schema. Durations are written as
// Go duration strings ("24h").
type FileConfig struct {
	URL       string `yaml:"url" json:"url" toml:"url"`
	File      string `yaml:"file" json:"file" toml:"file"`
	Output    string `yaml:"output" json:"output" toml:"output"`
	OutputPDF string `yaml:"outputPDF" json:"outputPDF" toml:"outputPDF"`

	Table struct {
		Headers []string `yaml:"headers" json:"headers" toml:"headers"`
		Labels  []string `yaml:"labels" json:"labels" toml:"labels"`
	} `yaml:"table" json:"table" toml:"table"`

	Fetch struct {
		UserAgent   string `yaml:"userAgent" json:"userAgent" toml:"userAgent"`
		Timeout     string `yaml:"timeout" json:"timeout" toml:"timeout"`
		MaxAttempts int    `yaml:"maxAttempts" json:"maxAttempts" toml:"maxAttempts"`
	} `yaml:"fetch" json:"fetch" toml:"fetch"`

	Cache struct {
		Dir    string `yaml:"dir" json:"dir" toml:"dir"`
		MaxAge string `yaml:"maxAge" json:"maxAge" toml:"maxAge"`
		Clear  bool   `yaml:"clear" json:"clear" toml:"clear"`
		Bypass bool   `yaml:"bypass" json:"bypass" toml:"bypass"`
	} `yaml:"cache" json:"cache" toml:"cache"`

	Verbose bool `yaml:"verbose" json:"verbose" toml:"verbose"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/gridscrape/config.yaml (or any
// XDG config dir holding it) when it exists, else "".
func DefaultConfigPath() string {
	p, err := xdg.SearchConfigFile(filepath.Join("gridscrape", "config.yaml"))
	if err != nil {
		return ""
	}
	return p
}

// DefaultCacheDir is the cache location used by --cache.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "gridscrape")
}

// LoadConfigFile reads YAML, JSON or TOML into FileConfig, chosen by extension.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse toml: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig fills fields of cfg that are still unset from fc. Values
// already set by flags or the environment win.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	if cfg.URL == "" {
		cfg.URL = fc.URL
	}
	if cfg.InputFile == "" {
		cfg.InputFile = fc.File
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = fc.Output
	}
	if cfg.OutputPDFPath == "" {
		cfg.OutputPDFPath = fc.OutputPDF
	}
	if cfg.HeaderTokens == nil && len(fc.Table.Headers) > 0 {
		cfg.HeaderTokens = fc.Table.Headers
	}
	if cfg.Labels == nil && len(fc.Table.Labels) > 0 {
		cfg.Labels = fc.Table.Labels
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = fc.Fetch.MaxAttempts
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheBypass && fc.Cache.Bypass {
		cfg.CacheBypass = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}

	var errs []error
	if cfg.HTTPTimeout == 0 && fc.Fetch.Timeout != "" {
		d, err := time.ParseDuration(fc.Fetch.Timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch.timeout: %w", err))
		}
		cfg.HTTPTimeout = d
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge != "" {
		d, err := time.ParseDuration(fc.Cache.MaxAge)
		if err != nil {
			errs = append(errs, fmt.Errorf("cache.maxAge: %w", err))
		}
		cfg.CacheMaxAge = d
	}
	return errors.Join(errs...)
}
