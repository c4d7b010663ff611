package extract

import "github.com/hyperifyio/gopnl/internal/money"

const (
    windowBefore = 200
    windowAfter  = 400
)

// findRawProximity scans the unparsed markup around each 7-day token, so it
// still works when the tree is broken.
func findRawProximity(doc *Document) (Candidate, bool) {
    raw := doc.Raw
    for _, loc := range sevenDayRe.FindAllStringIndex(raw, -1) {
        lo := loc[0] - windowBefore
        if lo < 0 {
            lo = 0
        }
        hi := loc[1] + windowAfter
        if hi > len(raw) {
            hi = len(raw)
        }
        window := raw[lo:hi]
        if m := money.Find(window); m != "" {
            return Candidate{Raw: m, Strategy: StrategyRawProximity, Context: clip(window, 200)}, true
        }
    }
    return Candidate{}, false
}
