// Package store appends extraction records to an XLSX workbook.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/hyperifyio/gopnl/internal/money"
)

const (
	DefaultPath  = "profit.xlsx"
	DefaultSheet = "Sheet1"
)

// Columns is the header written to new workbooks, in order.
var Columns = []string{"Wallet_Address", "PnL_7D", "Currency", "Text_Value", "Confidence", "Strategy", "URL", "File"}

// Row is one persisted extraction. PnL is nil when nothing was found.
type Row struct {
	Wallet     string
	PnL        *float64
	Currency   string
	TextValue  string
	Confidence float64
	Strategy   string
	URL        string
	File       string
}

func (r Row) cells() map[string]any {
	var pnl any = ""
	if r.PnL != nil {
		pnl = *r.PnL
	}
	return map[string]any{
		"Wallet_Address": r.Wallet,
		"PnL_7D":         pnl,
		"Currency":       r.Currency,
		"Text_Value":     r.TextValue,
		"Confidence":     r.Confidence,
		"Strategy":       r.Strategy,
		"URL":            r.URL,
		"File":           r.File,
	}
}

// Workbook appends rows to Sheet of the file at Path.
type Workbook struct {
	Path  string
	Sheet string
}

func (w Workbook) path() string {
	if w.Path == "" {
		return DefaultPath
	}
	return w.Path
}

func (w Workbook) sheet() string {
	if w.Sheet == "" {
		return DefaultSheet
	}
	return w.Sheet
}

// Append adds rows below the existing data. Columns already in the header
// keep their position; missing ones are added to the right and older rows
// leave them empty. A workbook that cannot be read is replaced.
func (w Workbook) Append(rows ...Row) error {
	path, sheet := w.path(), w.sheet()
	f, existing, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	header := Columns
	next := 2
	if len(existing) > 0 {
		header = unionColumns(existing[0], Columns)
		next = len(existing) + 1
	}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}
	for _, r := range rows {
		vals := r.cells()
		for i, h := range header {
			v, ok := vals[h]
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, next)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("xlsx cell %s: %w", cell, err)
			}
		}
		next++
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx save: %w", err)
	}
	log.Debug().Str("path", path).Int("rows", len(rows)).Msg("workbook updated")
	return nil
}

// open returns the workbook and the existing rows of the sheet, or a fresh
// workbook when the file is missing or unreadable.
func (w Workbook) open() (*excelize.File, [][]string, error) {
	path, sheet := w.path(), w.sheet()
	f, err := excelize.OpenFile(path)
	if err == nil {
		idx, _ := f.GetSheetIndex(sheet)
		if idx == -1 {
			if _, err := f.NewSheet(sheet); err != nil {
				f.Close()
				return nil, nil, fmt.Errorf("xlsx sheet: %w", err)
			}
			return f, nil, nil
		}
		rows, rerr := f.GetRows(sheet)
		if rerr == nil {
			return f, rows, nil
		}
		f.Close()
		err = rerr
	}
	if !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("workbook unreadable; recreating")
	}
	f = excelize.NewFile()
	if sheet != DefaultSheet {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("xlsx sheet: %w", err)
		}
		f.SetActiveSheet(idx)
	}
	return f, nil, nil
}

func unionColumns(have, want []string) []string {
	out := append([]string(nil), have...)
	seen := make(map[string]bool, len(have))
	for _, h := range have {
		seen[h] = true
	}
	for _, c := range want {
		if !seen[c] {
			out = append(out, c)
		}
	}
	return out
}

// Load reads the sheet back as header-keyed rows. PnL_7D cells that hold a
// number are parsed into Row.PnL. The CLI only appends; Load exists so
// callers and tests can check what Append wrote.
func (w Workbook) Load() ([]Row, error) {
	f, err := excelize.OpenFile(w.path())
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := f.GetRows(w.sheet())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	var out []Row
	for _, raw := range rows[1:] {
		get := func(name string) string {
			for i, h := range header {
				if h == name && i < len(raw) {
					return raw[i]
				}
			}
			return ""
		}
		r := Row{
			Wallet:    get("Wallet_Address"),
			Currency:  get("Currency"),
			TextValue: get("Text_Value"),
			Strategy:  get("Strategy"),
			URL:       get("URL"),
			File:      get("File"),
		}
		if v, ok := money.Parse(get("PnL_7D")); ok {
			r.PnL = &v
		}
		if v, ok := money.Parse(get("Confidence")); ok {
			r.Confidence = v
		}
		out = append(out, r)
	}
	return out, nil
}
