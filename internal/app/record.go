package app

import (
	"github.com/hyperifyio/gopnl/internal/extract"
	"github.com/hyperifyio/gopnl/internal/store"
	"github.com/hyperifyio/gopnl/internal/verify"
	"github.com/hyperifyio/gopnl/internal/wallet"
)

// Record is the JSON document printed for one run. Absent values are null.
type Record struct {
	Wallet       string   `json:"wallet"`
	File         *string  `json:"file"`
	URL          *string  `json:"url"`
	Currency     string   `json:"currency"`
	PnL7D        *float64 `json:"pnl_7d"`
	TextValue    *string  `json:"text_value"`
	Confidence   float64  `json:"confidence"`
	Strategy     string   `json:"strategy"`
	DebugContext *string  `json:"debug_context,omitempty"`

	// address is the full wallet address when known; it is what the
	// workbook stores.
	address string
}

// source describes where the markup came from.
type source struct {
	file string
	url  string
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newRecord(cfg Config, src source, res extract.Result, trust verify.Assessment) Record {
	addr := cfg.WalletAddress
	if addr == "" && src.url != "" {
		addr = wallet.AddressFromURL(src.url)
	}
	label := cfg.WalletLabel
	if label == "" {
		label = "Unknown"
		if addr != "" {
			label = wallet.Label(addr)
		}
	}
	rec := Record{
		Wallet:     label,
		File:       strPtr(src.file),
		URL:        strPtr(src.url),
		Currency:   "USD",
		PnL7D:      res.Value,
		TextValue:  strPtr(res.Raw),
		Confidence: trust.Confidence,
		Strategy:   string(res.Strategy),
		address:    addr,
	}
	if cfg.Debug && res.Context != "" {
		rec.DebugContext = strPtr(res.Context)
	}
	return rec
}

// row maps the record to a workbook row. The full address is preferred over
// the display label.
func (r Record) row() store.Row {
	w := r.address
	if w == "" {
		w = r.Wallet
	}
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return store.Row{
		Wallet:     w,
		PnL:        r.PnL7D,
		Currency:   r.Currency,
		TextValue:  deref(r.TextValue),
		Confidence: r.Confidence,
		Strategy:   r.Strategy,
		URL:        deref(r.URL),
		File:       deref(r.File),
	}
}
