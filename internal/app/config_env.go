package app

import (
    "os"
    "strings"
    "time"
)

// ApplyEnvOverrides overrides cfg fields whose env vars are set. It runs
// after the config file and before explicit flags.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil {
        return
    }
    set := func(dst *string, key string) {
        if v := os.Getenv(key); v != "" {
            *dst = v
        }
    }
    set(&cfg.LLMBaseURL, "LLM_BASE_URL")
    set(&cfg.LLMModel, "LLM_MODEL")
    set(&cfg.LLMAPIKey, "LLM_API_KEY")
    set(&cfg.CacheDir, "CACHE_DIR")
    set(&cfg.BaseURL, "GMGN_BASE_URL")
    set(&cfg.Chain, "CHAIN")
    set(&cfg.XLSXPath, "XLSX_PATH")

    if d, ok := envDuration("CACHE_MAX_AGE"); ok {
        cfg.CacheMaxAge = d
    }
    setBool := func(dst *bool, key string) {
        if v, ok := envBool(key); ok {
            *dst = v
        }
    }
    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.Debug, "DEBUG")
    setBool(&cfg.NoExcel, "NO_EXCEL")
}

func envBool(key string) (bool, bool) {
    switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
    case "1", "true", "yes", "on":
        return true, true
    case "0", "false", "no", "off":
        return false, true
    }
    return false, false
}

func envDuration(key string) (time.Duration, bool) {
    s := strings.TrimSpace(os.Getenv(key))
    if s == "" {
        return 0, false
    }
    d, err := time.ParseDuration(s)
    if err != nil {
        return 0, false
    }
    return d, true
}
