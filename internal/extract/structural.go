package extract

import (
    "regexp"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html"

    "github.com/hyperifyio/gopnl/internal/money"
)

// Signatures of the styled container the wallet page uses for the figure.
var (
    moneyClassRe    = regexp.MustCompile(`flex.*font-medium.*text-\[12px\].*ml-\[4px\]`)
    decreaseStyleRe = regexp.MustCompile(`color:\s*rgb\(242,\s*102,\s*130\)`)
    topicRe         = regexp.MustCompile(`(?i)7\s*D|Realized|PnL|Profit`)
)

const maxAncestorHops = 25

func findStructuralClass(doc *Document) (Candidate, bool) {
    return scanStyledDivs(doc, "class", moneyClassRe, StrategyStructuralClass)
}

func findStructuralStyle(doc *Document) (Candidate, bool) {
    return scanStyledDivs(doc, "style", decreaseStyleRe, StrategyStructuralStyle)
}

// scanStyledDivs returns the first div, in document order, whose attribute
// matches sig, whose text holds an amount, and which sits under topical text.
func scanStyledDivs(doc *Document, attrName string, sig *regexp.Regexp, id StrategyID) (Candidate, bool) {
    tree := doc.Tree()
    if tree == nil {
        return Candidate{}, false
    }
    var out Candidate
    found := false
    tree.Find("div[" + attrName + "]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
        v, _ := s.Attr(attrName)
        if !sig.MatchString(v) {
            return true
        }
        n := s.Get(0)
        text := strippedText(n)
        raw := money.Find(text)
        if raw == "" {
            return true
        }
        topical, ok := topicalContext(n, text)
        if !ok {
            return true
        }
        out = Candidate{
            Raw:      raw,
            Strategy: id,
            Context:  "div: " + clip(text, 80) + "; context: " + clip(topical, 100),
        }
        found = true
        return false
    })
    return out, found
}

// topicalContext walks up from n and returns the first ancestor text carrying
// a topical keyword, falling back to the element's own text.
func topicalContext(n *html.Node, own string) (string, bool) {
    hops := 0
    for p := n.Parent; p != nil && hops < maxAncestorHops; p = p.Parent {
        hops++
        if p.Type != html.ElementNode {
            continue
        }
        if t := strippedText(p); topicRe.MatchString(t) {
            return t, true
        }
    }
    if topicRe.MatchString(own) {
        return own, true
    }
    return "", false
}
