package extract

// Extractor defines the extraction surface used by callers so the strategy
// chain can be swapped in tests.
type Extractor interface {
    // Extract returns the 7-day realized PnL found in html, if any.
    // Implementations must be deterministic and free of side effects.
    Extract(html string, opts Options) Result
}

// Cascade runs Strategies in order; a nil slice means Default.
type Cascade struct {
    Strategies []Strategy
}

func (c Cascade) Extract(html string, opts Options) Result {
    chain := c.Strategies
    if chain == nil {
        chain = Default
    }
    return run(NewDocument(html), chain, opts)
}
