package extract

import (
    "strings"
    "testing"
)

func TestStructural_RequiresTopicalContext(t *testing.T) {
    html := `<html><body><div><span>Balance</span>
      <div class="flex font-medium text-[12px] ml-[4px]">$10.00</div></div></body></html>`
    if c, ok := findStructuralClass(NewDocument(html)); ok {
        t.Fatalf("expected no candidate without topical ancestor, got %+v", c)
    }
    own := `<div class="flex font-medium text-[12px] ml-[4px]">PnL $10.00</div>`
    c, ok := findStructuralClass(NewDocument(own))
    if !ok || c.Raw != "$10.00" {
        t.Fatalf("expected own-text keyword to qualify, got %+v ok=%v", c, ok)
    }
}

func TestStructural_FirstQualifyingElementWins(t *testing.T) {
    html := `<div>Profit
      <div style="color: rgb(242, 102, 130)">no amount</div>
      <div style="color:rgb(242,102,130)">$-1.50</div>
      <div style="color:rgb(242,102,130)">$-2.50</div></div>`
    c, ok := findStructuralStyle(NewDocument(html))
    if !ok || c.Raw != "$-1.50" || c.Strategy != StrategyStructuralStyle {
        t.Fatalf("got %+v ok=%v", c, ok)
    }
}

func TestAnalysisCard_KeywordOrderings(t *testing.T) {
    cases := map[string]string{
        "7d first":      `<div class="p-3"><span>Analysis</span><p>7D Realized PnL +$1,050.25</p></div>`,
        "keyword first": `<div class="p-3"><span>Analysis</span><p>Realized PnL (7D) $1,050.25</p></div>`,
    }
    for name, html := range cases {
        c, ok := findAnalysisCard(NewDocument(html))
        if !ok || c.Strategy != StrategyAnalysisCard {
            t.Fatalf("%s: got %+v ok=%v", name, c, ok)
        }
        if !strings.Contains(c.Raw, "1,050.25") {
            t.Fatalf("%s: raw=%q", name, c.Raw)
        }
    }
}

func TestAnalysisCard_TakesAmountAfterKeywords(t *testing.T) {
    html := `<div class="bg-x"><span>Analysis</span><p>7D $1.00 Realized PnL $2.00</p></div>`
    c, ok := findAnalysisCard(NewDocument(html))
    if !ok || c.Raw != "$2.00" {
        t.Fatalf("got %+v ok=%v", c, ok)
    }
}

func TestAnalysisCard_LooseFallbackIsFlagged(t *testing.T) {
    html := `<div class="rounded-lg"><span>Analysis</span><p>Total volume</p><p>$99.00</p></div>`
    c, ok := findAnalysisCard(NewDocument(html))
    if !ok || c.Strategy != StrategyAnalysisCardLoose || c.Raw != "$99.00" {
        t.Fatalf("got %+v ok=%v", c, ok)
    }
}

func TestAnalysisCard_ContainerMustBeWithinFiveHops(t *testing.T) {
    html := `<div class="bg-card"><div><div><div><div><div><span>Analysis</span></div></div></div></div></div><p>7D PnL $5.00</p></div>`
    if c, ok := findAnalysisCard(NewDocument(html)); ok {
        t.Fatalf("expected no container beyond five hops, got %+v", c)
    }
    near := `<div class="bg-card"><div><div><span>Analysis</span></div></div><p>7D PnL $5.00</p></div>`
    if _, ok := findAnalysisCard(NewDocument(near)); !ok {
        t.Fatalf("expected container within five hops")
    }
}

func TestAnalysisCard_TitleMustMatchExactly(t *testing.T) {
    html := `<div class="bg-card"><span>Analysis overview</span><p>7D PnL $5.00</p></div>`
    if _, ok := findAnalysisCard(NewDocument(html)); ok {
        t.Fatalf("title with extra words must not select a card")
    }
}

func TestRawProximity_WorksOnBrokenMarkup(t *testing.T) {
    raw := `<div <<< 7d realised <span class=" $-15.75 >>> </`
    c, ok := findRawProximity(NewDocument(raw))
    if !ok || c.Raw != "$-15.75" {
        t.Fatalf("got %+v ok=%v", c, ok)
    }
}

func TestRawProximity_WindowBounds(t *testing.T) {
    far := "7D" + strings.Repeat("x", 500) + "$1.00"
    if _, ok := findRawProximity(NewDocument(far)); ok {
        t.Fatalf("amount beyond 400 chars after the token must not match")
    }
    before := "$3.00" + strings.Repeat("y", 150) + "7 D"
    c, ok := findRawProximity(NewDocument(before))
    if !ok || c.Raw != "$3.00" {
        t.Fatalf("amount within 200 chars before the token should match, got %+v", c)
    }
    second := "7D" + strings.Repeat("x", 700) + "7d then $4.00"
    c, ok = findRawProximity(NewDocument(second))
    if !ok || c.Raw != "$4.00" {
        t.Fatalf("expected later occurrence to match, got %+v", c)
    }
}

func TestLabel_PatternPriorityAndFullAmount(t *testing.T) {
    c, ok := findLabel(NewDocument(`<p>PnL $1.00</p><p>Realized Profit: $1,050.25</p>`))
    if !ok || c.Raw != "$1,050.25" {
        t.Fatalf("realized label should win over bare PnL, got %+v", c)
    }
    c, ok = findLabel(NewDocument(`<p>Unrealized pnl -$3.10</p>`))
    if !ok || c.Raw != "-$3.10" {
        t.Fatalf("got %+v ok=%v", c, ok)
    }
    wide := `<span>Realized PnL</span>` + strings.Repeat(`<div class="flex items-center gap-x-[4px]">`, 6) + `<span>+$912.40</span>`
    c, ok = findLabel(NewDocument(wide))
    if !ok || c.Raw != "+$912.40" {
        t.Fatalf("amount far along the same line should match, got %+v ok=%v", c, ok)
    }
    if _, ok := findLabel(NewDocument("Realized PnL\n$5.00")); ok {
        t.Fatalf("label and amount on different lines must not match")
    }
}

func TestEmbedded_RawFallbackOnMalformedJSON(t *testing.T) {
    html := `<script type="application/json">{sevenDayProfit: "$42.00"}</script>`
    c, ok := findEmbeddedData(NewDocument(html))
    if !ok || c.Raw != "$42.00" || !strings.Contains(c.Context, "raw text") {
        t.Fatalf("got %+v ok=%v", c, ok)
    }
    r := Extract(html, Options{})
    if r.Strategy != StrategyEmbeddedData || *r.Value != 42 {
        t.Fatalf("cascade got %+v", r)
    }
}

func TestEmbedded_NoFallbackForValidJSON(t *testing.T) {
    html := `<script type="application/json">{"title":"pnl 7d","price":"$5.00"}</script>`
    if c, ok := findEmbeddedData(NewDocument(html)); ok {
        t.Fatalf("valid JSON without a matching key must not fall back to raw search, got %+v", c)
    }
}

func TestEmbedded_TraversalOrderAndValueKinds(t *testing.T) {
    cases := []struct {
        name string
        body string
        raw  string
    }{
        {"array element", `{"stats":[{"name":"x"},{"pnl_7d":-12.5}]}`, "$-12.5"},
        {"exponent", `{"realized_profit_7d":1.5e3}`, "$1500"},
        {"string value", `{"data":{"7d_realized":"-$8.40 USD"}}`, "-$8.40"},
        {"first key wins", `{"a":{"pnl7d":1},"b":{"pnl7d":2}}`, "$1"},
        {"non-matching key recursed", `{"wallet":{"summary":{"sevenDayPnl":3.25}}}`, "$3.25"},
        {"bare string", `["realized pnl 7d is $6.00"]`, "$6.00"},
        {"out of range number skipped", `{"pnl_7d":1e400,"stats":{"pnl7d":-2.5}}`, "$-2.5"},
        {"out of range integer skipped", `{"pnl_7d":` + strings.Repeat("9", 400) + `,"x":{"pnl7d":4}}`, "$4"},
    }
    for _, c := range cases {
        html := `<script id="__NEXT_DATA__" type="application/json">` + c.body + `</script>`
        got, ok := findEmbeddedData(NewDocument(html))
        if !ok || got.Raw != c.raw {
            t.Fatalf("%s: got %+v ok=%v, want raw %q", c.name, got, ok, c.raw)
        }
    }
}

func TestEmbedded_BlockOrderAndDedup(t *testing.T) {
    html := `<script>var x = {"pnl_7d": 1}</script>
      <script type="application/ld+json">{"pnl_7d": 2}</script>
      <script id="__NEXT_DATA__" type="application/json">{"pnl_7d": 3}</script>`
    tree := NewDocument(html).Tree()
    blocks := embeddedBlocks(tree)
    if len(blocks) != 3 {
        t.Fatalf("expected 3 distinct blocks, got %d", len(blocks))
    }
    if blocks[0].source != "script#__NEXT_DATA__" || !strings.Contains(blocks[1].source, "ld+json") || blocks[2].source != "inline script" {
        t.Fatalf("unexpected order: %+v", blocks)
    }
    c, ok := findEmbeddedData(NewDocument(html))
    if !ok || c.Raw != "$3" {
        t.Fatalf("hydration payload should be searched first, got %+v", c)
    }
}

func TestEmbedded_DeepNestingFallsBack(t *testing.T) {
    body := strings.Repeat(`{"x":`, 100) + `"pnl 7d $1.00"` + strings.Repeat("}", 100)
    html := `<script type="application/json">` + body + `</script>`
    c, ok := findEmbeddedData(NewDocument(html))
    if !ok || !strings.Contains(c.Context, "raw text") {
        t.Fatalf("over-deep payload should use the raw fallback, got %+v ok=%v", c, ok)
    }
}
