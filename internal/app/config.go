package app

import "time"

// Defaults applied by the CLI flags. File config and env only replace a
// field while it still holds its default.
const (
	DefaultChain    = "sol"
	DefaultBaseURL  = "https://gmgn.ai"
	DefaultXLSXPath = "profit.xlsx"
	DefaultCacheDir = ".gopnl-cache"
)

// Config holds runtime configuration for one extraction run.
type Config struct {
	// Input: exactly one of HTMLPath, URL, WalletAddress.
	HTMLPath      string
	URL           string
	WalletAddress string
	WalletLabel   string
	Chain         string
	BaseURL       string

	// Output
	Debug         bool
	NoExcel       bool
	XLSXPath      string
	OutputPDFPath string

	// LLM trust assessment, optional
	LLMBaseURL         string
	LLMModel           string
	LLMAPIKey          string
	VerifySystemPrompt string

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	Verbose bool
}

// DefaultConfig returns the values the CLI starts from.
func DefaultConfig() Config {
	return Config{
		Chain:    DefaultChain,
		BaseURL:  DefaultBaseURL,
		XLSXPath: DefaultXLSXPath,
		CacheDir: DefaultCacheDir,
	}
}
