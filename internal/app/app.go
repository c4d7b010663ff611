package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/net/html/charset"

	"github.com/hyperifyio/gopnl/internal/cache"
	"github.com/hyperifyio/gopnl/internal/extract"
	"github.com/hyperifyio/gopnl/internal/fetch"
	"github.com/hyperifyio/gopnl/internal/store"
	"github.com/hyperifyio/gopnl/internal/verify"
	"github.com/hyperifyio/gopnl/internal/wallet"
)

// ErrDocumentUnavailable is returned when the wallet page cannot be read or
// fetched. The CLI maps it to exit code 2.
var ErrDocumentUnavailable = errors.New("document unavailable")

type App struct {
	cfg      Config
	ai       *openai.Client
	fetcher  *fetch.Client
	verifier *verify.Verifier

	// Out receives the JSON record. Defaults to stdout.
	Out io.Writer
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	httpClient := newHTTPClient()
	a := &App{cfg: cfg, Out: os.Stdout}

	var pages *cache.PageCache
	var verdicts *cache.VerdictCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		pagesDir := filepath.Join(cfg.CacheDir, "http")
		verdictsDir := filepath.Join(cfg.CacheDir, "llm")
		if cfg.CacheMaxAge > 0 {
			n1, _ := cache.PurgePagesByAge(pagesDir, cfg.CacheMaxAge)
			n2, _ := cache.PurgeVerdictsByAge(verdictsDir, cfg.CacheMaxAge)
			log.Debug().Int("pages", n1).Int("verdicts", n2).Msg("purged expired cache entries")
		}
		pages = &cache.PageCache{Dir: pagesDir, StrictPerms: cfg.CacheStrictPerms}
		verdicts = &cache.VerdictCache{Dir: verdictsDir, StrictPerms: cfg.CacheStrictPerms}
	}

	a.fetcher = &fetch.Client{
		HTTPClient:        httpClient,
		MaxAttempts:       2,
		PerRequestTimeout: 20 * time.Second,
		Cache:             pages,
		RedirectMaxHops:   5,
		BypassCache:       cfg.CacheClear,
	}
	a.verifier = &verify.Verifier{Cache: verdicts, SystemPrompt: cfg.VerifySystemPrompt}

	if cfg.LLMModel != "" {
		transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
		if cfg.LLMBaseURL != "" {
			transportCfg.BaseURL = cfg.LLMBaseURL
		}
		transportCfg.HTTPClient = httpClient
		a.ai = openai.NewClientWithConfig(transportCfg)
		a.verifier.Client = a.ai

		// Best-effort preflight; the assessment falls back to heuristics anyway.
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if models, err := a.ai.ListModels(pctx); err != nil {
			log.Warn().Err(err).Msg("LLM model list failed; continuing")
		} else {
			log.Debug().Int("count", len(models.Models)).Msg("LLM models available")
		}
	}
	return a, nil
}

// Run acquires the page, extracts the figure, assesses it, persists it and
// prints the record. A page without a figure is a successful run.
func (a *App) Run(ctx context.Context) error {
	rec, err := a.Process(ctx)
	if err != nil {
		return err
	}
	if !a.cfg.NoExcel {
		wb := store.Workbook{Path: a.cfg.XLSXPath}
		if err := wb.Append(rec.row()); err != nil {
			log.Warn().Err(err).Str("path", a.cfg.XLSXPath).Msg("workbook write failed")
		} else {
			log.Info().Str("path", a.cfg.XLSXPath).Msg("row appended")
		}
	}
	if a.cfg.OutputPDFPath != "" {
		if err := writeSummaryPDF(rec, a.cfg.OutputPDFPath); err != nil {
			log.Warn().Err(err).Str("path", a.cfg.OutputPDFPath).Msg("pdf write failed")
		} else {
			log.Info().Str("path", a.cfg.OutputPDFPath).Msg("wrote pdf")
		}
	}
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// Process runs acquisition, extraction and assessment without side effects.
func (a *App) Process(ctx context.Context) (Record, error) {
	html, src, err := a.acquire(ctx)
	if err != nil {
		return Record{}, err
	}
	res := extract.Extract(html, extract.Options{Verbose: true})
	trust, err := a.verifier.Assess(ctx, res, a.cfg.LLMModel)
	if err != nil {
		return Record{}, fmt.Errorf("assess: %w", err)
	}
	ev := log.Info().Str("strategy", string(res.Strategy)).Float64("confidence", trust.Confidence)
	if res.Found() {
		ev = ev.Float64("pnl_7d", *res.Value)
	}
	ev.Msg("extraction finished")
	log.Debug().Str("source", trust.Source).Str("reason", trust.Reason).Msg("trust assessment")
	return newRecord(a.cfg, src, res, trust), nil
}

func (a *App) acquire(ctx context.Context) (string, source, error) {
	switch {
	case a.cfg.HTMLPath != "":
		b, err := os.ReadFile(a.cfg.HTMLPath)
		if err != nil {
			return "", source{}, fmt.Errorf("%w: %v", ErrDocumentUnavailable, err)
		}
		return decode(b, ""), source{file: a.cfg.HTMLPath}, nil
	case a.cfg.URL != "":
		return a.fetchPage(ctx, a.cfg.URL)
	default:
		u, err := wallet.PageURL(a.cfg.BaseURL, a.cfg.Chain, a.cfg.WalletAddress)
		if err != nil {
			return "", source{}, err
		}
		return a.fetchPage(ctx, u)
	}
}

func (a *App) fetchPage(ctx context.Context, u string) (string, source, error) {
	log.Info().Str("url", u).Msg("fetching wallet page")
	b, ct, err := a.fetcher.Get(ctx, u)
	if err != nil {
		return "", source{}, fmt.Errorf("%w: %v", ErrDocumentUnavailable, err)
	}
	return decode(b, ct), source{url: u}, nil
}

// decode converts the body to UTF-8. A declared charset wins; otherwise
// valid UTF-8 is kept as is and anything else goes through the sniffed one.
func decode(b []byte, contentType string) string {
	enc, name, certain := charset.DetermineEncoding(b, contentType)
	if name == "utf-8" || (!certain && utf8.Valid(b)) {
		return string(b)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
