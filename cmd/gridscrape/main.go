package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/gridscrape/internal/app"
)

// errConfig marks failures to assemble configuration; they exit with 2.
var errConfig = errors.New("config")

type options struct {
	file        string
	output      string
	outputPDF   string
	headers     []string
	configPath  string
	envFiles    []string
	userAgent   string
	timeout     time.Duration
	maxAttempts int
	useCache    bool
	cacheDir    string
	cacheMaxAge time.Duration
	cacheClear  bool
	cacheBypass bool
	verbose     bool
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("run failed")
		if errors.Is(err, errConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "gridscrape [url]",
		Short: "Render the character grid encoded in an HTML table",
		Long: "gridscrape fetches a published HTML document, finds the table of\n" +
			"(x-coordinate, character, y-coordinate) rows and prints the grid it describes.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(o, args)
			if err != nil {
				return fmt.Errorf("%w: %v", errConfig, err)
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.file, "file", "", "Read the document from a local file instead of fetching a URL")
	f.StringVarP(&o.output, "output", "o", "", "Write grid rows to this path ('-' for stdout)")
	f.StringVar(&o.outputPDF, "output.pdf", "", "Also write the grid as a PDF to this path")
	f.StringSliceVar(&o.headers, "headers", nil, "Header labels that identify the grid table (comma-separated)")
	f.StringVar(&o.configPath, "config", "", "Path to a YAML, JSON or TOML config file")
	f.StringSliceVar(&o.envFiles, "env", []string{".env", ".env.local"}, "Dotenv files to load before reading the environment")
	f.StringVar(&o.userAgent, "user-agent", "", "User-Agent header for the fetch")
	f.DurationVar(&o.timeout, "timeout", 0, "Per-request timeout (0 disables)")
	f.IntVar(&o.maxAttempts, "max-attempts", 0, "Fetch attempts including the first; only 5xx and timeouts are retried")
	f.BoolVar(&o.useCache, "cache", false, "Cache the document under the XDG cache directory")
	f.StringVar(&o.cacheDir, "cache.dir", "", "Cache directory (enables caching)")
	f.DurationVar(&o.cacheMaxAge, "cache.maxAge", 0, "Purge cached documents older than this (e.g. 24h)")
	f.BoolVar(&o.cacheClear, "cache.clear", false, "Clear the cache directory before fetching")
	f.BoolVar(&o.cacheBypass, "cache.bypass", false, "Skip revalidation and fetch fresh, still saving to cache")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Verbose logging")
	return cmd
}

// buildConfig layers flags over dotenv/env over the config file, then
// applies defaults.
func buildConfig(o options, args []string) (app.Config, error) {
	cfg := app.Config{
		InputFile:     o.file,
		OutputPath:    o.output,
		OutputPDFPath: o.outputPDF,
		HeaderTokens:  o.headers,
		UserAgent:     o.userAgent,
		HTTPTimeout:   o.timeout,
		MaxAttempts:   o.maxAttempts,
		CacheDir:      o.cacheDir,
		CacheMaxAge:   o.cacheMaxAge,
		CacheClear:    o.cacheClear,
		CacheBypass:   o.cacheBypass,
		Verbose:       o.verbose,
	}
	if len(args) == 1 {
		cfg.URL = args[0]
	}
	if cfg.CacheDir == "" && o.useCache {
		cfg.CacheDir = app.DefaultCacheDir()
	}

	if err := app.LoadEnvFiles(o.envFiles...); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}
	app.ApplyEnvToConfig(&cfg)

	path := o.configPath
	if path == "" {
		path = app.DefaultConfigPath()
	}
	if path != "" {
		fc, err := app.LoadConfigFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return cfg, fmt.Errorf("apply config %s: %w", path, err)
		}
	}
	app.ApplyDefaults(&cfg)
	return cfg, nil
}

func run(ctx context.Context, cfg app.Config, stdout io.Writer) error {
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	a.Stdout = stdout
	return a.Run(ctx)
}
