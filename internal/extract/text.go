package extract

import (
    "strings"
    "unicode/utf8"

    "golang.org/x/net/html"
)

// walk visits n and its descendants depth-first in document order until fn
// returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
    if n == nil {
        return true
    }
    if !fn(n) {
        return false
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        if !walk(c, fn) {
            return false
        }
    }
    return true
}

// strippedStrings returns the whitespace-trimmed, non-empty visible text nodes
// under n in document order. Script and style bodies are not visible text.
func strippedStrings(n *html.Node) []string {
    var out []string
    var dfs func(*html.Node)
    dfs = func(cur *html.Node) {
        if cur.Type == html.ElementNode {
            switch strings.ToLower(cur.Data) {
            case "script", "style", "noscript", "template":
                return
            }
        }
        if cur.Type == html.TextNode {
            if s := strings.TrimSpace(cur.Data); s != "" {
                out = append(out, s)
            }
            return
        }
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            dfs(c)
        }
    }
    if n != nil {
        dfs(n)
    }
    return out
}

// strippedText concatenates the stripped strings of n without separators.
func strippedText(n *html.Node) string {
    return strings.Join(strippedStrings(n), "")
}

// rawText returns the concatenated text children of n, e.g. a script body.
func rawText(n *html.Node) string {
    var b strings.Builder
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        if c.Type == html.TextNode {
            b.WriteString(c.Data)
        }
    }
    return b.String()
}

func attr(n *html.Node, key string) (string, bool) {
    for _, a := range n.Attr {
        if strings.EqualFold(a.Key, key) {
            return a.Val, true
        }
    }
    return "", false
}

// hasClassPrefix reports whether any class token of n starts with one of the
// given prefixes.
func hasClassPrefix(n *html.Node, prefixes ...string) bool {
    if n == nil || n.Type != html.ElementNode {
        return false
    }
    cls, ok := attr(n, "class")
    if !ok {
        return false
    }
    for _, c := range strings.Fields(cls) {
        for _, p := range prefixes {
            if strings.HasPrefix(c, p) {
                return true
            }
        }
    }
    return false
}

func containsAny(s string, needles []string) bool {
    for _, n := range needles {
        if strings.Contains(s, n) {
            return true
        }
    }
    return false
}

// clip bounds s to max runes and drops invalid UTF-8 left by byte windows.
func clip(s string, max int) string {
    s = strings.ToValidUTF8(s, "")
    if max <= 0 || utf8.RuneCountInString(s) <= max {
        return s
    }
    i := 0
    for pos := range s {
        if i == max {
            return s[:pos]
        }
        i++
    }
    return s
}
