package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema.
type FileConfig struct {
    HTML string `yaml:"html" json:"html"`
    URL  string `yaml:"url" json:"url"`

    Wallet struct {
        Address string `yaml:"address" json:"address"`
        Label   string `yaml:"label" json:"label"`
        Chain   string `yaml:"chain" json:"chain"`
        BaseURL string `yaml:"base" json:"base"`
    } `yaml:"wallet" json:"wallet"`

    Output struct {
        // Excel, when set, turns workbook persistence on or off.
        Excel *bool  `yaml:"excel" json:"excel"`
        XLSX  string `yaml:"xlsx" json:"xlsx"`
        PDF   string `yaml:"pdf" json:"pdf"`
        Debug bool   `yaml:"debug" json:"debug"`
    } `yaml:"output" json:"output"`

    LLM struct {
        BaseURL string `yaml:"base" json:"base"`
        Model   string `yaml:"model" json:"model"`
        APIKey  string `yaml:"key" json:"key"`
    } `yaml:"llm" json:"llm"`

    Cache struct {
        Dir         string        `yaml:"dir" json:"dir"`
        MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
        Clear       bool          `yaml:"clear" json:"clear"`
        StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
    } `yaml:"cache" json:"cache"`

    Prompts struct {
        VerifySystemPrompt     string `yaml:"verifySystemPrompt" json:"verifySystemPrompt"`
        VerifySystemPromptFile string `yaml:"verifySystemPromptFile" json:"verifySystemPromptFile"`
    } `yaml:"prompts" json:"prompts"`

    Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig, by extension, trying
// YAML then JSON for anything else.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := strings.ToLower(filepath.Ext(path)); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    if p := strings.TrimSpace(fc.Prompts.VerifySystemPromptFile); p != "" {
        if !filepath.IsAbs(p) {
            p = filepath.Join(filepath.Dir(path), p)
        }
        pb, err := os.ReadFile(p)
        if err != nil {
            return fc, fmt.Errorf("read verify prompt: %w", err)
        }
        fc.Prompts.VerifySystemPrompt = string(pb)
    }
    return fc, nil
}

// ApplyFileConfig fills fields of cfg that are unset or still at their
// default from fc.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil {
        return
    }
    fill := func(dst *string, def, v string) {
        if (*dst == "" || *dst == def) && v != "" {
            *dst = v
        }
    }
    fill(&cfg.HTMLPath, "", fc.HTML)
    fill(&cfg.URL, "", fc.URL)
    fill(&cfg.WalletAddress, "", fc.Wallet.Address)
    fill(&cfg.WalletLabel, "", fc.Wallet.Label)
    fill(&cfg.Chain, DefaultChain, fc.Wallet.Chain)
    fill(&cfg.BaseURL, DefaultBaseURL, fc.Wallet.BaseURL)

    fill(&cfg.XLSXPath, DefaultXLSXPath, fc.Output.XLSX)
    fill(&cfg.OutputPDFPath, "", fc.Output.PDF)
    if fc.Output.Excel != nil {
        cfg.NoExcel = !*fc.Output.Excel
    }
    if !cfg.Debug && fc.Output.Debug {
        cfg.Debug = true
    }

    fill(&cfg.LLMBaseURL, "", fc.LLM.BaseURL)
    fill(&cfg.LLMModel, "", fc.LLM.Model)
    fill(&cfg.LLMAPIKey, "", fc.LLM.APIKey)
    fill(&cfg.VerifySystemPrompt, "", fc.Prompts.VerifySystemPrompt)

    fill(&cfg.CacheDir, DefaultCacheDir, fc.Cache.Dir)
    if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
        cfg.CacheMaxAge = fc.Cache.MaxAge
    }
    if !cfg.CacheClear && fc.Cache.Clear {
        cfg.CacheClear = true
    }
    if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
        cfg.CacheStrictPerms = true
    }
    if !cfg.Verbose && fc.Verbose {
        cfg.Verbose = true
    }
}

// ErrMode is returned when zero or several input modes are configured.
var ErrMode = errors.New("config: exactly one of -html, -url or -wallet-address is required")

// ValidateConfig checks that the run is well defined.
func ValidateConfig(cfg Config) error {
    modes := 0
    for _, s := range []string{cfg.HTMLPath, cfg.URL, cfg.WalletAddress} {
        if strings.TrimSpace(s) != "" {
            modes++
        }
    }
    if modes != 1 {
        return ErrMode
    }
    if !cfg.NoExcel && strings.TrimSpace(cfg.XLSXPath) == "" {
        return errors.New("config: xlsx path is required unless excel output is disabled")
    }
    if cfg.CacheMaxAge < 0 {
        return errors.New("config: negative cache max age is not allowed")
    }
    return nil
}
