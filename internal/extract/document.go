package extract

import (
    "strings"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html"
)

// Document is the raw markup of one page plus its lazily parsed element tree.
// It is read-only and never shared between extraction calls.
type Document struct {
    Raw string

    tree   *goquery.Document
    parsed bool
}

// NewDocument wraps raw markup without parsing it.
func NewDocument(raw string) *Document {
    return &Document{Raw: raw}
}

// Tree parses the markup on first use. It returns nil when the markup cannot
// be parsed, in which case tree-based strategies have no opinion.
func (d *Document) Tree() *goquery.Document {
    if d.parsed {
        return d.tree
    }
    d.parsed = true
    tree, err := goquery.NewDocumentFromReader(strings.NewReader(d.Raw))
    if err != nil {
        return nil
    }
    d.tree = tree
    return d.tree
}

// root returns the document node of the parsed tree, or nil.
func (d *Document) root() *html.Node {
    tree := d.Tree()
    if tree == nil || len(tree.Nodes) == 0 {
        return nil
    }
    return tree.Nodes[0]
}
