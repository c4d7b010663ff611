package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gopnl/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// exitCode maps an unreadable or unreachable page to 2 and every other
// failure to 1. A page without a figure is not a failure.
func exitCode(err error) int {
	if errors.Is(err, app.ErrDocumentUnavailable) {
		return 2
	}
	return 1
}

// parseConfig resolves flags > environment > config file > defaults.
func parseConfig(fs *flag.FlagSet, args []string) (app.Config, error) {
	def := app.DefaultConfig()
	var (
		cfg        = def
		excel      bool
		noExcel    bool
		configPath string
		envFiles   string
		promptFile string
	)
	fs.StringVar(&cfg.HTMLPath, "html", "", "Path to a saved wallet page")
	fs.StringVar(&cfg.URL, "url", "", "Wallet page URL to fetch")
	fs.StringVar(&cfg.WalletAddress, "wallet-address", "", "Wallet address; the page URL is built from -base.url and -chain")
	fs.StringVar(&cfg.WalletLabel, "wallet", "", "Wallet label for the output record (default: shortened address)")
	fs.StringVar(&cfg.Chain, "chain", def.Chain, "Chain segment of the page URL")
	fs.StringVar(&cfg.BaseURL, "base.url", def.BaseURL, "Base URL of the wallet site")
	fs.BoolVar(&cfg.Debug, "debug", false, "Include the matched context in the output record")
	fs.BoolVar(&excel, "excel", true, "Append the record to the XLSX workbook")
	fs.BoolVar(&noExcel, "no-excel", false, "Do not write the XLSX workbook")
	fs.StringVar(&cfg.XLSXPath, "xlsx", def.XLSXPath, "XLSX workbook path")
	fs.StringVar(&cfg.OutputPDFPath, "output.pdf", "", "Optional path for a one-page PDF summary")
	fs.StringVar(&configPath, "config", os.Getenv("GOPNL_CONFIG"), "Path to a YAML or JSON config file")
	fs.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files; later files override earlier ones")
	fs.StringVar(&cfg.CacheDir, "cache.dir", def.CacheDir, "Cache directory path (empty disables caching)")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Purge cache entries older than this (e.g. 24h); 0 disables")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear the cache directory before the run")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.StringVar(&cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL for the optional trust assessment")
	fs.StringVar(&cfg.LLMModel, "llm.model", "", "Model name; empty disables the model assessment")
	fs.StringVar(&cfg.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server")
	fs.StringVar(&cfg.VerifySystemPrompt, "verify.systemPrompt", "", "Override the trust assessment system prompt")
	fs.StringVar(&promptFile, "verify.systemPromptFile", "", "File containing the trust assessment system prompt")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}
	if fs.NArg() > 0 {
		return app.Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	cfg.NoExcel = noExcel || !excel

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
		return app.Config{}, err
	}

	// Start from defaults, layer file then env, then put explicit flags back.
	resolved := def
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&resolved, fc)
	}
	app.ApplyEnvOverrides(&resolved)
	overlayFlags(&resolved, cfg, set)

	if promptFile != "" {
		b, err := os.ReadFile(promptFile)
		if err != nil {
			return app.Config{}, fmt.Errorf("read prompt file: %w", err)
		}
		resolved.VerifySystemPrompt = string(b)
	}
	if err := app.ValidateConfig(resolved); err != nil {
		return app.Config{}, err
	}
	return resolved, nil
}

// overlayFlags copies every explicitly set flag from flags into dst.
func overlayFlags(dst *app.Config, flags app.Config, set map[string]bool) {
	str := map[string][2]*string{
		"html":                {&dst.HTMLPath, &flags.HTMLPath},
		"url":                 {&dst.URL, &flags.URL},
		"wallet-address":      {&dst.WalletAddress, &flags.WalletAddress},
		"wallet":              {&dst.WalletLabel, &flags.WalletLabel},
		"chain":               {&dst.Chain, &flags.Chain},
		"base.url":            {&dst.BaseURL, &flags.BaseURL},
		"xlsx":                {&dst.XLSXPath, &flags.XLSXPath},
		"output.pdf":          {&dst.OutputPDFPath, &flags.OutputPDFPath},
		"cache.dir":           {&dst.CacheDir, &flags.CacheDir},
		"llm.base":            {&dst.LLMBaseURL, &flags.LLMBaseURL},
		"llm.model":           {&dst.LLMModel, &flags.LLMModel},
		"llm.key":             {&dst.LLMAPIKey, &flags.LLMAPIKey},
		"verify.systemPrompt": {&dst.VerifySystemPrompt, &flags.VerifySystemPrompt},
	}
	// Input modes are one choice: an explicit mode replaces whatever lower
	// layers selected.
	if set["html"] || set["url"] || set["wallet-address"] {
		dst.HTMLPath, dst.URL, dst.WalletAddress = "", "", ""
	}
	for name, p := range str {
		if set[name] {
			*p[0] = *p[1]
		}
	}
	boolean := map[string][2]*bool{
		"debug":             {&dst.Debug, &flags.Debug},
		"cache.clear":       {&dst.CacheClear, &flags.CacheClear},
		"cache.strictPerms": {&dst.CacheStrictPerms, &flags.CacheStrictPerms},
		"v":                 {&dst.Verbose, &flags.Verbose},
	}
	for name, p := range boolean {
		if set[name] {
			*p[0] = *p[1]
		}
	}
	if set["excel"] || set["no-excel"] {
		dst.NoExcel = flags.NoExcel
	}
	if set["cache.maxAge"] {
		dst.CacheMaxAge = flags.CacheMaxAge
	}
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	return a.Run(ctx)
}
