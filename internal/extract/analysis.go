package extract

import (
    "regexp"
    "strings"

    "golang.org/x/net/html"

    "github.com/hyperifyio/gopnl/internal/money"
)

const (
    sectionTitle     = "Analysis"
    maxContainerHops = 5
    sevenDayWindow   = 300
)

var (
    cardClassPrefixes = []string{"bg-", "p-", "rounded-"}
    sevenDayRe        = regexp.MustCompile(`(?i)7\s*D`)
    keywordOrderRes   = []*regexp.Regexp{
        regexp.MustCompile(`(?i)7\s*D[^\n]*?(?:Realized|Profit|PnL)[^\n]*?(` + money.Pattern + `)`),
        regexp.MustCompile(`(?i)(?:Realized|Profit|PnL)[^\n]*?7\s*D[^\n]*?(` + money.Pattern + `)`),
    }
)

// findAnalysisCard locates the card holding the "Analysis" heading and looks
// for the 7-day figure inside its text.
func findAnalysisCard(doc *Document) (Candidate, bool) {
    card := analysisContainer(doc.root())
    if card == nil {
        return Candidate{}, false
    }
    joined := strings.Join(strippedStrings(card), " \n ")

    for _, re := range keywordOrderRes {
        if m := re.FindStringSubmatch(joined); m != nil {
            return Candidate{Raw: m[1], Strategy: StrategyAnalysisCard, Context: clip(m[0], 200)}, true
        }
    }
    if loc := sevenDayRe.FindStringIndex(joined); loc != nil {
        end := loc[0] + sevenDayWindow
        if end > len(joined) {
            end = len(joined)
        }
        seg := joined[loc[0]:end]
        if raw := money.Find(seg); raw != "" {
            return Candidate{Raw: raw, Strategy: StrategyAnalysisCard, Context: clip(seg, 200)}, true
        }
    }
    // Last resort: first amount anywhere in the card. Often right, not always.
    if raw := money.Find(joined); raw != "" {
        return Candidate{Raw: raw, Strategy: StrategyAnalysisCardLoose, Context: "Analysis card: " + clip(joined, 160)}, true
    }
    return Candidate{}, false
}

// analysisContainer returns the nearest card-like ancestor (within five hops)
// of the first "Analysis" text node that has one.
func analysisContainer(root *html.Node) *html.Node {
    var card *html.Node
    walk(root, func(n *html.Node) bool {
        if n.Type != html.TextNode || strings.TrimSpace(n.Data) != sectionTitle {
            return true
        }
        p := n
        for i := 0; i < maxContainerHops && p.Parent != nil; i++ {
            p = p.Parent
            if hasClassPrefix(p, cardClassPrefixes...) {
                card = p
                return false
            }
        }
        return true
    })
    return card
}
