package money

import (
    "math"
    "regexp"
    "strconv"
    "strings"

    "golang.org/x/text/language"
    "golang.org/x/text/message"
)

// Pattern is the money-shaped substring: a dollar amount with an optional sign
// before or after the currency marker, optional thousands grouping and an
// optional fractional part.
const Pattern = `(?:[-−]\$\s?|\+?\$\s?[-−]?)(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?`

var (
    moneyRe = regexp.MustCompile(Pattern)
    bareRe  = regexp.MustCompile(`^[-+−]?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?$`)
)

var decoration = strings.NewReplacer("$", "", ",", "", " ", "", "\t", "", "\n", "", "−", "-")

// Amount is a signed quantity together with the text it was parsed from.
type Amount struct {
    Value float64
    Raw   string
}

// Find returns the first money-shaped substring of s, or "" when none exists.
func Find(s string) string {
    return moneyRe.FindString(s)
}

// Contains reports whether s holds a money-shaped substring.
func Contains(s string) bool {
    return moneyRe.MatchString(s)
}

// Normalize converts the first money-shaped substring of text into an Amount.
// A bare number without a currency marker is accepted only when it makes up
// the whole (trimmed) text.
func Normalize(text string) (Amount, bool) {
    raw := moneyRe.FindString(text)
    if raw == "" {
        t := strings.TrimSpace(text)
        if !bareRe.MatchString(t) {
            return Amount{}, false
        }
        raw = t
    }
    v, ok := parseNumeric(raw)
    if !ok {
        return Amount{}, false
    }
    return Amount{Value: v, Raw: raw}, true
}

// Parse reads a numeric string that may or may not carry the currency marker,
// e.g. a cell read back from a spreadsheet.
func Parse(s string) (float64, bool) {
    if raw := moneyRe.FindString(s); raw != "" {
        return parseNumeric(raw)
    }
    t := strings.TrimSpace(s)
    if !bareRe.MatchString(t) {
        return 0, false
    }
    return parseNumeric(t)
}

func parseNumeric(raw string) (float64, bool) {
    s := decoration.Replace(raw)
    s = strings.TrimPrefix(s, "+")
    if s == "" || s == "-" {
        return 0, false
    }
    v, err := strconv.ParseFloat(s, 64)
    if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
        return 0, false
    }
    return v, true
}

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders v as a currency-prefixed, thousands-grouped string with two
// decimals, e.g. -$1,234.56.
func FormatUSD(v float64) string {
    sign := ""
    if v < 0 {
        sign = "-"
        v = -v
    }
    return sign + "$" + usd.Sprintf("%.2f", v)
}
