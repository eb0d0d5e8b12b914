package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gridscrape/internal/cache"
	"github.com/hyperifyio/gridscrape/internal/fetch"
	"github.com/hyperifyio/gridscrape/internal/grid"
	"github.com/hyperifyio/gridscrape/internal/reconstruct"
)

// App runs one fetch-parse-render pass.
type App struct {
	cfg      Config
	client   *fetch.Client
	docCache *cache.DocumentCache

	// Stdout receives grid rows when OutputPath is "-".
	Stdout io.Writer
}

// New prepares the fetch client and, when configured, the document cache.
// Cache maintenance failures are logged and do not stop the run.
func New(cfg Config) (*App, error) {
	if cfg.URL == "" && cfg.InputFile == "" {
		return nil, errors.New("no URL or input file configured")
	}
	a := &App{cfg: cfg, Stdout: os.Stdout}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Dur("maxAge", cfg.CacheMaxAge).Msg("purged cached documents")
			}
		}
		a.docCache = &cache.DocumentCache{Dir: cfg.CacheDir}
	}
	a.client = &fetch.Client{
		HTTPClient:        newHTTPClient(),
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.MaxAttempts,
		PerRequestTimeout: cfg.HTTPTimeout,
		Cache:             a.docCache,
		BypassCache:       cfg.CacheBypass,
	}
	return a, nil
}

// Run loads the document, reconstructs the grid and writes it out. Every
// returned error is terminal for the run.
func (a *App) Run(ctx context.Context) error {
	doc, err := a.load(ctx)
	if err != nil {
		return err
	}

	res, err := reconstruct.Reconstruct(doc.Body, reconstruct.Options{
		HeaderTokens: a.cfg.HeaderTokens,
		Labels:       a.cfg.Labels,
	})
	if errors.Is(err, reconstruct.ErrNoTableFound) {
		return err
	}
	if !res.HeaderMatched {
		log.Warn().Int("table", res.TableIndex).Msg("no table carries all header labels; using the first table")
	}
	if err != nil {
		var nte *reconstruct.NoTriplesError
		if errors.As(err, &nte) {
			log.Info().Int("cells", res.CellCount).Int("dataTokens", res.TokenCount).Msg("table tokens")
			log.Info().Strs("sample", nte.Sample).Msg("sample tokens (first 30)")
		}
		return err
	}
	log.Info().Int("cells", res.CellCount).Int("dataTokens", res.TokenCount).Msg("table tokens")
	log.Info().Int("records", len(res.Triples)).Str("method", res.Method).Msg("parsed records")
	logAdvisories(res.Grid)

	if err := a.writeRows(res.Grid.Rows); err != nil {
		return fmt.Errorf("write grid: %w", err)
	}
	if a.cfg.OutputPDFPath != "" {
		if err := writeGridPDF(res.Grid.Rows, res.Grid.Width, a.cfg.OutputPDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("path", a.cfg.OutputPDFPath).Msg("wrote PDF")
	}
	return nil
}

func (a *App) load(ctx context.Context) (fetch.Document, error) {
	if a.cfg.InputFile != "" {
		log.Info().Str("file", a.cfg.InputFile).Msg("reading document")
		doc, err := fetch.ReadFile(a.cfg.InputFile)
		if err != nil {
			return doc, fmt.Errorf("read input: %w", err)
		}
		return doc, nil
	}
	log.Info().Str("url", a.cfg.URL).Msg("fetching URL")
	doc, err := a.client.Get(ctx, a.cfg.URL)
	if err != nil {
		return doc, err
	}
	log.Debug().Int("bytes", len(doc.Body)).Bool("cached", doc.FromCache).Str("contentType", doc.ContentType).Msg("fetched document")
	return doc, nil
}

func logAdvisories(g grid.Grid) {
	adv := g.Advisories
	if adv.LargeGrid {
		log.Warn().Int("width", g.Width).Int("height", g.Height).Msg("grid is large; output may be unwieldy")
	}
	if adv.OffGrid > 0 {
		log.Warn().Int("count", adv.OffGrid).Msg("triples with negative coordinates were not drawn")
	}
	if adv.WideRunes > 0 {
		log.Warn().Int("count", adv.WideRunes).Msg("grid contains wide characters; columns may not align")
	}
}

func (a *App) writeRows(rows []string) error {
	var w io.Writer = a.Stdout
	if a.cfg.OutputPath != "" && a.cfg.OutputPath != "-" {
		f, err := os.Create(a.cfg.OutputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		if _, err := bw.WriteString(row + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
