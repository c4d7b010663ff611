package extract

import (
    "github.com/rs/zerolog/log"

    "github.com/hyperifyio/gopnl/internal/money"
)

// StrategyID names the heuristic that produced a result.
type StrategyID string

const (
    StrategyNone              StrategyID = "none"
    StrategyStructuralClass   StrategyID = "structural-class"
    StrategyStructuralStyle   StrategyID = "structural-style"
    StrategyAnalysisCard      StrategyID = "analysis-card"
    StrategyAnalysisCardLoose StrategyID = "analysis-card-loose"
    StrategyRawProximity      StrategyID = "raw-proximity"
    StrategyLabel             StrategyID = "label"
    StrategyEmbeddedData      StrategyID = "embedded-data"
)

// maxContextRunes caps the provenance snippet carried by a Result.
const maxContextRunes = 200

// Candidate is an unconfirmed match: the money text a strategy found, which
// identifier it reports, and a short snippet of where it was found.
type Candidate struct {
    Raw      string
    Strategy StrategyID
    Context  string
}

// Strategy is one independently failing heuristic of the cascade.
type Strategy struct {
    Name string
    Find func(*Document) (Candidate, bool)
}

// Default is the fixed priority order. The first strategy whose candidate
// normalizes wins.
var Default = []Strategy{
    {Name: "structural-class", Find: findStructuralClass},
    {Name: "structural-style", Find: findStructuralStyle},
    {Name: "analysis-card", Find: findAnalysisCard},
    {Name: "raw-proximity", Find: findRawProximity},
    {Name: "label", Find: findLabel},
    {Name: "embedded-data", Find: findEmbeddedData},
}

// Options controls provenance capture.
type Options struct {
    // Verbose fills Result.Raw and Result.Context.
    Verbose bool
}

// Result is the outcome of one extraction. Value is nil exactly when Strategy
// is StrategyNone; a found zero is a non-nil pointer to 0.
type Result struct {
    Value    *float64   `json:"value"`
    Strategy StrategyID `json:"strategy"`
    Raw      string     `json:"raw,omitempty"`
    Context  string     `json:"context,omitempty"`
}

// Found reports whether any strategy produced a value.
func (r Result) Found() bool { return r.Value != nil }

// Extract runs the default cascade over html.
func Extract(html string, opts Options) Result {
    return run(NewDocument(html), Default, opts)
}

func run(doc *Document, chain []Strategy, opts Options) Result {
    for _, s := range chain {
        c, ok := s.Find(doc)
        if !ok {
            log.Debug().Str("strategy", s.Name).Msg("no candidate")
            continue
        }
        amt, ok := money.Normalize(c.Raw)
        if !ok {
            log.Debug().Str("strategy", s.Name).Str("raw", c.Raw).Msg("candidate did not normalize")
            continue
        }
        v := amt.Value
        res := Result{Value: &v, Strategy: c.Strategy}
        if opts.Verbose {
            res.Raw = c.Raw
            res.Context = clip(c.Context, maxContextRunes)
        }
        log.Debug().Str("strategy", string(c.Strategy)).Str("raw", c.Raw).Float64("value", v).Msg("matched")
        return res
    }
    return Result{Strategy: StrategyNone}
}

// Outcome reports what a single strategy would return on its own.
type Outcome struct {
    Name      string
    Matched   bool
    Candidate Candidate
    Value     *float64
}

// Explain runs every default strategy without short-circuiting. It exists for
// diagnosing why a page resolved the way it did.
func Explain(html string) []Outcome {
    doc := NewDocument(html)
    out := make([]Outcome, 0, len(Default))
    for _, s := range Default {
        o := Outcome{Name: s.Name}
        if c, ok := s.Find(doc); ok {
            o.Matched = true
            o.Candidate = c
            o.Candidate.Context = clip(c.Context, maxContextRunes)
            if amt, ok := money.Normalize(c.Raw); ok {
                v := amt.Value
                o.Value = &v
            }
        }
        out = append(out, o)
    }
    return out
}
