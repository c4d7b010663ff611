package extract

import (
    "math"
    "regexp"
    "strconv"
    "strings"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html"

    "github.com/hyperifyio/gopnl/internal/extract/jsontree"
    "github.com/hyperifyio/gopnl/internal/money"
)

const maxJSONDepth = 64

var (
    scriptHints   = []string{"7d", "realiz", "pnl"}
    embeddedKeyRe = regexp.MustCompile(`(?is)(7\s*d|seven\s*day).*?(realiz|pnl|profit)|(realiz|pnl|profit).*?(7\s*d|seven\s*day)`)
)

type dataBlock struct {
    source string
    text   string
}

// embeddedBlocks lists script bodies that may carry page state: the Next.js
// hydration payload, JSON-typed scripts, then any script mentioning the topic.
func embeddedBlocks(tree *goquery.Document) []dataBlock {
    seen := make(map[*html.Node]bool)
    var blocks []dataBlock
    add := func(n *html.Node, source string) {
        if seen[n] {
            return
        }
        text := rawText(n)
        if strings.TrimSpace(text) == "" {
            return
        }
        seen[n] = true
        blocks = append(blocks, dataBlock{source: source, text: text})
    }

    if s := tree.Find("script#__NEXT_DATA__").First(); s.Length() > 0 {
        add(s.Get(0), "script#__NEXT_DATA__")
    }
    tree.Find("script[type]").Each(func(_ int, s *goquery.Selection) {
        typ, _ := s.Attr("type")
        if strings.Contains(strings.ToLower(typ), "json") {
            add(s.Get(0), "script[type="+typ+"]")
        }
    })
    tree.Find("script").Each(func(_ int, s *goquery.Selection) {
        n := s.Get(0)
        if containsAny(strings.ToLower(rawText(n)), scriptHints) {
            add(n, "inline script")
        }
    })
    return blocks
}

func findEmbeddedData(doc *Document) (Candidate, bool) {
    tree := doc.Tree()
    if tree == nil {
        return Candidate{}, false
    }
    for _, b := range embeddedBlocks(tree) {
        raw := strings.TrimSpace(b.text)
        root, err := jsontree.Parse(raw, maxJSONDepth)
        if err == nil {
            if h, ok := searchNode(root, 0); ok {
                ctx := b.source + " key " + strconv.Quote(h.key)
                if h.key == "" {
                    ctx = b.source + " string value"
                }
                return Candidate{Raw: h.raw, Strategy: StrategyEmbeddedData, Context: ctx}, true
            }
            continue
        }
        // Not strict JSON: accept the first amount when the block mentions the key.
        if embeddedKeyRe.MatchString(raw) {
            if m := money.Find(raw); m != "" {
                return Candidate{Raw: m, Strategy: StrategyEmbeddedData, Context: b.source + " (raw text)"}, true
            }
        }
    }
    return Candidate{}, false
}

type hit struct {
    raw string
    key string
}

// searchNode walks the tree depth-first in document order looking for a
// 7-day realized key with a money-convertible value.
func searchNode(n jsontree.Node, depth int) (hit, bool) {
    if depth > maxJSONDepth {
        return hit{}, false
    }
    switch n.Kind {
    case jsontree.Object:
        for i, k := range n.Keys {
            v := n.Values[i]
            if embeddedKeyRe.MatchString(k) {
                switch v.Kind {
                case jsontree.Number:
                    if lit := plainNumber(v.Text); lit != "" {
                        if m := money.Find("$" + lit); m != "" {
                            return hit{raw: m, key: k}, true
                        }
                    }
                case jsontree.String:
                    if m := money.Find(v.Text); m != "" {
                        return hit{raw: m, key: k}, true
                    }
                }
            }
            if h, ok := searchNode(v, depth+1); ok {
                return h, true
            }
        }
    case jsontree.Array:
        for _, v := range n.Values {
            if h, ok := searchNode(v, depth+1); ok {
                return h, true
            }
        }
    case jsontree.String:
        if embeddedKeyRe.MatchString(n.Text) {
            if m := money.Find(n.Text); m != "" {
                return hit{raw: m}, true
            }
        }
    }
    return hit{}, false
}

// plainNumber rewrites exponent notation as a plain decimal so the money
// pattern sees every digit. Literals outside float64 range yield "".
func plainNumber(lit string) string {
    f, err := strconv.ParseFloat(lit, 64)
    if err != nil || math.IsInf(f, 0) {
        return ""
    }
    if !strings.ContainsAny(lit, "eE") {
        return lit
    }
    return strconv.FormatFloat(f, 'f', -1, 64)
}
