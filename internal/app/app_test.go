package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/gopnl/internal/store"
)

const walletPage = `<html><body><div class="stats">
  <div class="label">7D Realized PnL</div>
  <div class="flex items-center font-medium text-[12px] ml-[4px]">$-1,234.56</div>
</div></body></html>`

const addr = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

func newTestApp(t *testing.T, cfg Config) (*App, *bytes.Buffer) {
	t.Helper()
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	var out bytes.Buffer
	a.Out = &out
	return a, &out
}

func decodeRecord(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode record: %v\n%s", err, b)
	}
	return m
}

func TestRun_HTMLFile_WritesRecordWorkbookAndPDF(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "wallet.html")
	if err := os.WriteFile(page, []byte(walletPage), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.HTMLPath = page
	cfg.WalletLabel = "My_Wallet"
	cfg.XLSXPath = filepath.Join(dir, "profit.xlsx")
	cfg.OutputPDFPath = filepath.Join(dir, "summary.pdf")
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.Debug = true

	a, out := newTestApp(t, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	rec := decodeRecord(t, out.Bytes())
	if rec["wallet"] != "My_Wallet" || rec["file"] != page || rec["url"] != nil {
		t.Fatalf("unexpected identity fields: %v", rec)
	}
	if rec["pnl_7d"] != -1234.56 || rec["strategy"] != "structural-class" || rec["currency"] != "USD" {
		t.Fatalf("unexpected value fields: %v", rec)
	}
	if rec["text_value"] != "$-1,234.56" || rec["confidence"] != 0.8 {
		t.Fatalf("text_value/confidence: %v", rec)
	}
	if ctx, _ := rec["debug_context"].(string); !strings.Contains(ctx, "7D Realized PnL") {
		t.Fatalf("debug_context missing: %v", rec)
	}

	rows, err := store.Workbook{Path: cfg.XLSXPath}.Load()
	if err != nil || len(rows) != 1 {
		t.Fatalf("rows=%v err=%v", rows, err)
	}
	if rows[0].Wallet != "My_Wallet" || rows[0].PnL == nil || *rows[0].PnL != -1234.56 {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if b, err := os.ReadFile(cfg.OutputPDFPath); err != nil || !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("pdf not written: err=%v", err)
	}
}

func TestRun_NotFoundIsSuccess(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "empty.html")
	_ = os.WriteFile(page, []byte("<html><body>nothing here</body></html>"), 0o644)
	cfg := DefaultConfig()
	cfg.HTMLPath = page
	cfg.NoExcel = true
	cfg.CacheDir = ""

	a, out := newTestApp(t, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	rec := decodeRecord(t, out.Bytes())
	if rec["pnl_7d"] != nil || rec["strategy"] != "none" || rec["confidence"] != 0.0 || rec["wallet"] != "Unknown" {
		t.Fatalf("unexpected not-found record: %v", rec)
	}
	if _, ok := rec["debug_context"]; ok {
		t.Fatalf("debug_context must be omitted without -debug")
	}
	if _, err := os.Stat(filepath.Join(dir, "profit.xlsx")); err == nil {
		t.Fatalf("workbook written despite NoExcel")
	}
}

func TestRun_MissingFileIsDocumentUnavailable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTMLPath = filepath.Join(t.TempDir(), "missing.html")
	cfg.NoExcel = true
	a, _ := newTestApp(t, cfg)
	if err := a.Run(context.Background()); !errors.Is(err, ErrDocumentUnavailable) {
		t.Fatalf("expected ErrDocumentUnavailable, got %v", err)
	}
}

func TestRun_WalletAddressFetchesBuiltURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(walletPage))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.WalletAddress = addr
	cfg.BaseURL = srv.URL
	cfg.XLSXPath = filepath.Join(dir, "profit.xlsx")
	cfg.CacheDir = filepath.Join(dir, "cache")

	a, out := newTestApp(t, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if gotPath != "/sol/address/"+addr {
		t.Fatalf("fetched %q", gotPath)
	}
	rec := decodeRecord(t, out.Bytes())
	if rec["wallet"] != "7xKXtg2C...gAsU" || rec["url"] != srv.URL+"/sol/address/"+addr {
		t.Fatalf("unexpected record: %v", rec)
	}
	rows, err := store.Workbook{Path: cfg.XLSXPath}.Load()
	if err != nil || len(rows) != 1 || rows[0].Wallet != addr {
		t.Fatalf("workbook should carry the full address: %+v err=%v", rows, err)
	}
}

func TestRun_URLModeFetchErrorIsDocumentUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()
	cfg := DefaultConfig()
	cfg.URL = srv.URL + "/sol/address/" + addr
	cfg.NoExcel = true
	cfg.CacheDir = ""
	a, _ := newTestApp(t, cfg)
	if err := a.Run(context.Background()); !errors.Is(err, ErrDocumentUnavailable) {
		t.Fatalf("expected ErrDocumentUnavailable, got %v", err)
	}
}

func TestRun_InvalidWalletAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WalletAddress = "../etc"
	cfg.NoExcel = true
	a, _ := newTestApp(t, cfg)
	err := a.Run(context.Background())
	if err == nil || errors.Is(err, ErrDocumentUnavailable) {
		t.Fatalf("expected a config error, got %v", err)
	}
}

func TestRun_LLMAssessmentBlendsConfidence(t *testing.T) {
	var chatCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"stub","object":"model"}]}`))
		case "/v1/chat/completions":
			chatCalls++
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]string{
					"role":    "assistant",
					"content": `{"supported":true,"confidence":1.0,"reason":"labelled 7D Realized PnL"}`,
				}}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	page := filepath.Join(dir, "wallet.html")
	_ = os.WriteFile(page, []byte(walletPage), 0o644)
	cfg := DefaultConfig()
	cfg.HTMLPath = page
	cfg.NoExcel = true
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.LLMBaseURL = srv.URL + "/v1"
	cfg.LLMModel = "stub"

	a, out := newTestApp(t, cfg)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	rec := decodeRecord(t, out.Bytes())
	if rec["confidence"] != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", rec["confidence"])
	}
	if chatCalls != 1 {
		t.Fatalf("chat calls = %d", chatCalls)
	}
}

func TestDecode_Charset(t *testing.T) {
	latin1 := []byte("<p>Profit \xa3</p>")
	got := decode(latin1, "text/html; charset=iso-8859-1")
	if !strings.Contains(got, "£") {
		t.Fatalf("decode = %q", got)
	}
	if got := decode([]byte("<p>ok</p>"), ""); got != "<p>ok</p>" {
		t.Fatalf("utf-8 passthrough = %q", got)
	}
}
