package extract

import (
    "regexp"

    "github.com/hyperifyio/gopnl/internal/money"
)

var labelRes = []*regexp.Regexp{
    regexp.MustCompile(`(?i)Realized\s*(?:Profit|PnL)[^\n]*?(` + money.Pattern + `)`),
    regexp.MustCompile(`(?i)\bPnL\b[^\n]*?(` + money.Pattern + `)`),
}

func findLabel(doc *Document) (Candidate, bool) {
    for _, re := range labelRes {
        if m := re.FindStringSubmatch(doc.Raw); m != nil {
            return Candidate{Raw: m[1], Strategy: StrategyLabel, Context: clip(m[0], 120)}, true
        }
    }
    return Candidate{}, false
}
